package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/RLP0AI/roleplay-ai-app/internal/model"
	"github.com/RLP0AI/roleplay-ai-app/internal/repository"
	"github.com/RLP0AI/roleplay-ai-app/internal/util"

	"github.com/rs/zerolog"
)

type AuthService interface {
	// Register creates the user record for an identity already created by
	// the auth provider. New users start with zero credits.
	Register(ctx context.Context, uid, email, displayName string) (*model.User, error)
	Login(ctx context.Context, uid string) (*model.User, error)
	// VerifyToken checks a bearer credential and returns the stable user ID
	// and email it carries.
	VerifyToken(token string) (uid, email string, err error)
}

type authService struct {
	userRepo  repository.UserRepository
	jwtSecret string
	logger    zerolog.Logger
}

func NewAuthService(userRepo repository.UserRepository, jwtSecret string, logger zerolog.Logger) AuthService {
	return &authService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		logger:    logger.With().Str("service", "AuthService").Logger(),
	}
}

func (s *authService) Register(ctx context.Context, uid, email, displayName string) (*model.User, error) {
	if displayName == "" {
		displayName = strings.Split(email, "@")[0]
	}
	user := &model.User{
		UserID:      uid,
		Email:       email,
		DisplayName: displayName,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		s.logger.Error().Err(err).Str("user_id", uid).Msg("Failed to register user")
		return nil, fmt.Errorf("registering user: %w", err)
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, uid string) (*model.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}
	return user, nil
}

func (s *authService) VerifyToken(token string) (string, string, error) {
	claims, err := util.ValidateJWT(token, s.jwtSecret)
	if err != nil {
		return "", "", fmt.Errorf("verifying token: %w", err)
	}
	return claims.Subject, claims.Email, nil
}
