package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/RLP0AI/roleplay-ai-app/internal/model"
	"github.com/RLP0AI/roleplay-ai-app/internal/repository"

	"github.com/rs/zerolog"
)

// Balance is the credit read returned to the owning user.
type Balance struct {
	Credits int64
	Email   string
}

type CreditService interface {
	GetBalance(ctx context.Context, userID string) (*Balance, error)
	GetTransactions(ctx context.Context, userID string, limit int) ([]model.Transaction, error)
}

type creditService struct {
	userRepo   repository.UserRepository
	ledgerRepo repository.LedgerRepository
	logger     zerolog.Logger
}

func NewCreditService(userRepo repository.UserRepository, ledgerRepo repository.LedgerRepository, logger zerolog.Logger) CreditService {
	return &creditService{
		userRepo:   userRepo,
		ledgerRepo: ledgerRepo,
		logger:     logger.With().Str("service", "CreditService").Logger(),
	}
}

func (s *creditService) GetBalance(ctx context.Context, userID string) (*Balance, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}
	return &Balance{Credits: user.Credits, Email: user.Email}, nil
}

func (s *creditService) GetTransactions(ctx context.Context, userID string, limit int) ([]model.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	txs, err := s.ledgerRepo.ListTransactions(ctx, userID, limit)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to list transactions")
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	return txs, nil
}
