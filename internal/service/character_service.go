package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/RLP0AI/roleplay-ai-app/internal/model"
	"github.com/RLP0AI/roleplay-ai-app/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrInappropriateContent is returned when a character profile fails the
// moderation check.
var ErrInappropriateContent = errors.New("character contains inappropriate content")

// CharacterProfile is the full set of user-authored persona fields.
type CharacterProfile struct {
	Name        string
	Role        string
	Personality string
	Style       string
	Backstory   string
	NSFW        bool
}

type CharacterService interface {
	CreateCharacter(ctx context.Context, userID string, profile CharacterProfile) (*model.Character, error)
	ListCharacters(ctx context.Context, userID string) ([]model.Character, error)
	GetCharacter(ctx context.Context, id, userID string) (*model.Character, error)
	UpdateCharacter(ctx context.Context, id, userID string, upd repository.CharacterUpdate) (*model.Character, error)
	DeleteCharacter(ctx context.Context, id, userID string) error
}

type characterService struct {
	characterRepo repository.CharacterRepository
	moderator     ContentModerator
	logger        zerolog.Logger
}

func NewCharacterService(characterRepo repository.CharacterRepository, moderator ContentModerator, logger zerolog.Logger) CharacterService {
	return &characterService{
		characterRepo: characterRepo,
		moderator:     moderator,
		logger:        logger.With().Str("service", "CharacterService").Logger(),
	}
}

func (s *characterService) CreateCharacter(ctx context.Context, userID string, profile CharacterProfile) (*model.Character, error) {
	content := strings.Join([]string{
		profile.Name, profile.Role, profile.Personality, profile.Style, profile.Backstory,
	}, " ")
	if !s.moderator.Check(content) {
		return nil, ErrInappropriateContent
	}

	character := &model.Character{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        profile.Name,
		Role:        profile.Role,
		Personality: profile.Personality,
		Style:       profile.Style,
		Backstory:   profile.Backstory,
		NSFW:        profile.NSFW,
	}
	if err := s.characterRepo.CreateCharacter(ctx, character); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to create character")
		return nil, fmt.Errorf("creating character: %w", err)
	}
	return character, nil
}

func (s *characterService) ListCharacters(ctx context.Context, userID string) ([]model.Character, error) {
	characters, err := s.characterRepo.ListCharactersByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to list characters")
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	return characters, nil
}

// loadOwned fetches a character and enforces ownership: a missing record is
// ErrCharacterNotFound, someone else's record is ErrForbidden.
func (s *characterService) loadOwned(ctx context.Context, id, userID string) (*model.Character, error) {
	character, err := s.characterRepo.GetCharacterByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCharacterNotFound
		}
		return nil, fmt.Errorf("getting character: %w", err)
	}
	if character.UserID != userID {
		return nil, ErrForbidden
	}
	return character, nil
}

func (s *characterService) GetCharacter(ctx context.Context, id, userID string) (*model.Character, error) {
	return s.loadOwned(ctx, id, userID)
}

func (s *characterService) UpdateCharacter(ctx context.Context, id, userID string, upd repository.CharacterUpdate) (*model.Character, error) {
	if _, err := s.loadOwned(ctx, id, userID); err != nil {
		return nil, err
	}
	character, err := s.characterRepo.UpdateCharacter(ctx, id, upd)
	if err != nil {
		s.logger.Error().Err(err).Str("character_id", id).Msg("Failed to update character")
		return nil, fmt.Errorf("updating character: %w", err)
	}
	return character, nil
}

func (s *characterService) DeleteCharacter(ctx context.Context, id, userID string) error {
	if _, err := s.loadOwned(ctx, id, userID); err != nil {
		return err
	}
	if err := s.characterRepo.DeleteCharacter(ctx, id); err != nil {
		s.logger.Error().Err(err).Str("character_id", id).Msg("Failed to delete character")
		return fmt.Errorf("deleting character: %w", err)
	}
	return nil
}
