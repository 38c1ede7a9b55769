package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/RLP0AI/roleplay-ai-app/internal/model"
	"github.com/RLP0AI/roleplay-ai-app/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// CreditsPerMessage is the cost of one chat exchange.
	CreditsPerMessage int64 = 1
	// MaxMessageLength caps user-authored message content.
	MaxMessageLength = 2000
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrCharacterNotFound = errors.New("character not found")
	ErrChatNotFound      = errors.New("chat not found")
	ErrForbidden         = errors.New("access denied")
	ErrMessageTooLong    = fmt.Errorf("message too long, maximum %d characters allowed", MaxMessageLength)
	ErrGenerationFailed  = errors.New("failed to generate response")
)

// InsufficientCreditsError reports the admission-check failure with the
// balance the user would need and the one they have.
type InsufficientCreditsError struct {
	Required int64
	Current  int64
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: required %d, current %d", e.Required, e.Current)
}

// SendMessageResult is the outcome of one successful chat exchange.
type SendMessageResult struct {
	UserMessage      model.Message
	AIMessage        model.Message
	CreditsRemaining int64
	CreditsDeducted  int64
	ChatID           string
}

type ChatService interface {
	CreateChat(ctx context.Context, userID, characterID string) (*model.Chat, error)
	// SendMessage runs the credit-metered chat transaction: admission check,
	// generation, persistence, debit, audit. chatID may be empty, in which
	// case a new chat is created.
	SendMessage(ctx context.Context, userID, characterID, chatID, content string) (*SendMessageResult, error)
	// StreamMessage is SendMessage with the completion delivered
	// incrementally through onDelta. Persistence and the debit happen only
	// after the provider stream completes; a mid-stream failure leaves the
	// chat and the balance untouched.
	StreamMessage(ctx context.Context, userID, characterID, chatID, content string, onDelta func(delta string) error) (*SendMessageResult, error)
	ListChats(ctx context.Context, userID, characterID string) ([]model.Chat, error)
	DeleteChat(ctx context.Context, chatID, userID string) error
}

type chatService struct {
	userRepo      repository.UserRepository
	characterRepo repository.CharacterRepository
	chatRepo      repository.ChatRepository
	ledgerRepo    repository.LedgerRepository
	provider      GenerationProvider
	logger        zerolog.Logger
}

func NewChatService(
	userRepo repository.UserRepository,
	characterRepo repository.CharacterRepository,
	chatRepo repository.ChatRepository,
	ledgerRepo repository.LedgerRepository,
	provider GenerationProvider,
	logger zerolog.Logger,
) ChatService {
	return &chatService{
		userRepo:      userRepo,
		characterRepo: characterRepo,
		chatRepo:      chatRepo,
		ledgerRepo:    ledgerRepo,
		provider:      provider,
		logger:        logger.With().Str("service", "ChatService").Logger(),
	}
}

func (s *chatService) CreateChat(ctx context.Context, userID, characterID string) (*model.Chat, error) {
	character, err := s.loadOwnedCharacter(ctx, characterID, userID)
	if err != nil {
		return nil, err
	}
	chat := &model.Chat{
		ID:            uuid.NewString(),
		UserID:        userID,
		CharacterID:   characterID,
		CharacterName: character.Name,
	}
	if err := s.chatRepo.CreateChat(ctx, chat); err != nil {
		s.logger.Error().Err(err).Str("character_id", characterID).Msg("Failed to create chat")
		return nil, fmt.Errorf("creating chat: %w", err)
	}
	return chat, nil
}

// admission holds everything the chat transaction loads before calling the
// generation provider. No state has been mutated at this point.
type admission struct {
	user       *model.User
	character  *model.Character
	chat       *model.Chat
	transcript []ChatMessage
}

// admit runs steps 1-6 of the chat transaction: validation, balance
// admission, character and chat ownership, transcript assembly. The chat is
// created here when no chatID was supplied; that is the only write.
func (s *chatService) admit(ctx context.Context, userID, characterID, chatID, content string) (*admission, error) {
	if len(content) > MaxMessageLength {
		return nil, ErrMessageTooLong
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if user.Credits < CreditsPerMessage {
		return nil, &InsufficientCreditsError{Required: CreditsPerMessage, Current: user.Credits}
	}

	character, err := s.loadOwnedCharacter(ctx, characterID, userID)
	if err != nil {
		return nil, err
	}

	var chat *model.Chat
	var transcript []ChatMessage
	if chatID != "" {
		chat, err = s.chatRepo.GetChatByID(ctx, chatID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrChatNotFound
			}
			return nil, fmt.Errorf("loading chat: %w", err)
		}
		if chat.UserID != userID {
			return nil, ErrForbidden
		}
		prior, err := s.chatRepo.ListMessages(ctx, chat.ID)
		if err != nil {
			return nil, fmt.Errorf("loading chat messages: %w", err)
		}
		transcript = make([]ChatMessage, 0, len(prior)+1)
		for _, m := range prior {
			transcript = append(transcript, ChatMessage{Role: m.Role, Content: m.Content})
		}
	} else {
		chat = &model.Chat{
			ID:            uuid.NewString(),
			UserID:        userID,
			CharacterID:   characterID,
			CharacterName: character.Name,
		}
		if err := s.chatRepo.CreateChat(ctx, chat); err != nil {
			return nil, fmt.Errorf("creating chat: %w", err)
		}
	}
	transcript = append(transcript, ChatMessage{Role: model.RoleUser, Content: content})

	return &admission{user: user, character: character, chat: chat, transcript: transcript}, nil
}

// commit runs steps 8-10: persist both messages, debit, audit. Persistence
// comes before the debit so a crash in between leaves an under-debited,
// user-favorable account.
func (s *chatService) commit(ctx context.Context, adm *admission, content, reply string) (*SendMessageResult, error) {
	userMsg := &model.Message{ID: uuid.NewString(), Role: model.RoleUser, Content: content}
	aiMsg := &model.Message{ID: uuid.NewString(), Role: model.RoleAssistant, Content: reply}
	if err := s.chatRepo.AppendExchange(ctx, adm.chat.ID, userMsg, aiMsg); err != nil {
		s.logger.Error().Err(err).Str("chat_id", adm.chat.ID).Msg("Failed to persist exchange")
		return nil, fmt.Errorf("persisting exchange: %w", err)
	}

	deducted := CreditsPerMessage
	remaining, err := s.ledgerRepo.DebitForMessage(ctx, adm.user.UserID, CreditsPerMessage, adm.character.ID, adm.chat.ID)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientCredits) {
			// A concurrent request drained the balance between the admission
			// check and the debit. The exchange is already persisted; skip
			// the debit rather than drive the balance negative.
			s.logger.Warn().Str("user_id", adm.user.UserID).Str("chat_id", adm.chat.ID).
				Msg("Balance drained before debit, exchange kept without charge")
			deducted = 0
			remaining = 0
			if current, lookupErr := s.userRepo.GetUserByID(ctx, adm.user.UserID); lookupErr == nil {
				remaining = current.Credits
			}
		} else {
			s.logger.Error().Err(err).Str("user_id", adm.user.UserID).Msg("Failed to debit credits")
			return nil, fmt.Errorf("debiting credits: %w", err)
		}
	}

	return &SendMessageResult{
		UserMessage:      *userMsg,
		AIMessage:        *aiMsg,
		CreditsRemaining: remaining,
		CreditsDeducted:  deducted,
		ChatID:           adm.chat.ID,
	}, nil
}

func (s *chatService) SendMessage(ctx context.Context, userID, characterID, chatID, content string) (*SendMessageResult, error) {
	adm, err := s.admit(ctx, userID, characterID, chatID, content)
	if err != nil {
		return nil, err
	}

	reply, err := s.provider.Complete(ctx, adm.transcript, adm.character)
	if err != nil {
		// Nothing persisted, nothing debited on this path.
		s.logger.Error().Err(err).Str("character_id", characterID).Msg("Generation failed")
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	return s.commit(ctx, adm, content, reply)
}

func (s *chatService) StreamMessage(ctx context.Context, userID, characterID, chatID, content string, onDelta func(string) error) (*SendMessageResult, error) {
	adm, err := s.admit(ctx, userID, characterID, chatID, content)
	if err != nil {
		return nil, err
	}

	reply, err := s.provider.Stream(ctx, adm.transcript, adm.character, onDelta)
	if err != nil {
		s.logger.Error().Err(err).Str("character_id", characterID).Msg("Streaming generation failed")
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	return s.commit(ctx, adm, content, reply)
}

func (s *chatService) ListChats(ctx context.Context, userID, characterID string) ([]model.Chat, error) {
	chats, err := s.chatRepo.ListChatsByCharacter(ctx, userID, characterID, 10)
	if err != nil {
		s.logger.Error().Err(err).Str("character_id", characterID).Msg("Failed to list chats")
		return nil, fmt.Errorf("listing chats: %w", err)
	}
	for i := range chats {
		messages, err := s.chatRepo.ListMessages(ctx, chats[i].ID)
		if err != nil {
			return nil, fmt.Errorf("loading chat messages: %w", err)
		}
		if messages == nil {
			messages = []model.Message{}
		}
		chats[i].Messages = messages
	}
	return chats, nil
}

func (s *chatService) DeleteChat(ctx context.Context, chatID, userID string) error {
	chat, err := s.chatRepo.GetChatByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrChatNotFound
		}
		return fmt.Errorf("loading chat: %w", err)
	}
	if chat.UserID != userID {
		return ErrForbidden
	}
	if err := s.chatRepo.DeleteChat(ctx, chatID); err != nil {
		s.logger.Error().Err(err).Str("chat_id", chatID).Msg("Failed to delete chat")
		return fmt.Errorf("deleting chat: %w", err)
	}
	return nil
}

func (s *chatService) loadOwnedCharacter(ctx context.Context, characterID, userID string) (*model.Character, error) {
	character, err := s.characterRepo.GetCharacterByID(ctx, characterID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCharacterNotFound
		}
		return nil, fmt.Errorf("loading character: %w", err)
	}
	if character.UserID != userID {
		return nil, ErrForbidden
	}
	return character, nil
}
