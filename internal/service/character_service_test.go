package service

import (
	"context"
	"errors"
	"testing"

	"github.com/RLP0AI/roleplay-ai-app/internal/model"
	"github.com/RLP0AI/roleplay-ai-app/internal/repository"

	"github.com/rs/zerolog"
)

func newTestCharacterService(characterRepo *mockCharacterRepo) CharacterService {
	return NewCharacterService(characterRepo, NewBannedWordModerator(), zerolog.Nop())
}

func cleanProfile() CharacterProfile {
	return CharacterProfile{
		Name:        "Captain Vale",
		Role:        "starship captain",
		Personality: "stoic",
		Style:       "clipped",
		Backstory:   "veteran of the outer colonies",
	}
}

func TestCreateCharacter(t *testing.T) {
	characterRepo := &mockCharacterRepo{}
	svc := newTestCharacterService(characterRepo)

	character, err := svc.CreateCharacter(context.Background(), testUserID, cleanProfile())
	if err != nil {
		t.Fatalf("CreateCharacter: %v", err)
	}
	if character.ID == "" {
		t.Error("character has no ID")
	}
	if character.UserID != testUserID {
		t.Errorf("UserID = %q", character.UserID)
	}
	if characterRepo.CreateCalls != 1 {
		t.Errorf("repo called %d times, want 1", characterRepo.CreateCalls)
	}
}

func TestCreateCharacterModeration(t *testing.T) {
	characterRepo := &mockCharacterRepo{}
	svc := newTestCharacterService(characterRepo)

	// The check covers every profile field, not just the name.
	profile := cleanProfile()
	profile.Backstory = "expert in HARMFUL experiments"
	if _, err := svc.CreateCharacter(context.Background(), testUserID, profile); !errors.Is(err, ErrInappropriateContent) {
		t.Fatalf("got %v, want ErrInappropriateContent", err)
	}
	if characterRepo.CreateCalls != 0 {
		t.Error("repo called despite failed moderation")
	}
}

func TestGetCharacterOwnership(t *testing.T) {
	characterRepo := &mockCharacterRepo{
		GetCharacterByIDFunc: func(_ context.Context, id string) (*model.Character, error) {
			return &model.Character{ID: id, UserID: "someone-else"}, nil
		},
	}
	svc := newTestCharacterService(characterRepo)

	if _, err := svc.GetCharacter(context.Background(), "c1", testUserID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("got %v, want ErrForbidden", err)
	}

	characterRepo.GetCharacterByIDFunc = func(_ context.Context, _ string) (*model.Character, error) {
		return nil, repository.ErrNotFound
	}
	if _, err := svc.GetCharacter(context.Background(), "c1", testUserID); !errors.Is(err, ErrCharacterNotFound) {
		t.Fatalf("got %v, want ErrCharacterNotFound", err)
	}
}

func TestUpdateCharacterChecksOwnershipFirst(t *testing.T) {
	updateCalled := false
	characterRepo := &mockCharacterRepo{
		GetCharacterByIDFunc: func(_ context.Context, id string) (*model.Character, error) {
			return &model.Character{ID: id, UserID: "someone-else"}, nil
		},
		UpdateCharacterFunc: func(_ context.Context, _ string, _ repository.CharacterUpdate) (*model.Character, error) {
			updateCalled = true
			return nil, nil
		},
	}
	svc := newTestCharacterService(characterRepo)

	name := "New Name"
	_, err := svc.UpdateCharacter(context.Background(), "c1", testUserID, repository.CharacterUpdate{Name: &name})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("got %v, want ErrForbidden", err)
	}
	if updateCalled {
		t.Error("update ran against a foreign character")
	}
}

func TestDeleteCharacterChecksOwnershipFirst(t *testing.T) {
	deleteCalled := false
	characterRepo := &mockCharacterRepo{
		GetCharacterByIDFunc: func(_ context.Context, _ string) (*model.Character, error) {
			return nil, repository.ErrNotFound
		},
		DeleteCharacterFunc: func(_ context.Context, _ string) error {
			deleteCalled = true
			return nil
		},
	}
	svc := newTestCharacterService(characterRepo)

	if err := svc.DeleteCharacter(context.Background(), "c1", testUserID); !errors.Is(err, ErrCharacterNotFound) {
		t.Fatalf("got %v, want ErrCharacterNotFound", err)
	}
	if deleteCalled {
		t.Error("delete ran against a missing character")
	}
}
