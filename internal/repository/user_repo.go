package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/RLP0AI/roleplay-ai-app/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

type UserRepository interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

type userRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) UserRepository {
	return &userRepo{pool: pool}
}

func (r *userRepo) CreateUser(ctx context.Context, u *model.User) error {
	query := `INSERT INTO users (user_id, email, display_name, credits)
              VALUES ($1, $2, $3, 0)
              RETURNING user_id, email, display_name, credits, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query, u.UserID, u.Email, u.DisplayName).Scan(
		&u.UserID, &u.Email, &u.DisplayName, &u.Credits, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

func (r *userRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	query := `SELECT user_id, email, display_name, credits, created_at, updated_at
              FROM users WHERE user_id = $1`
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.UserID, &u.Email, &u.DisplayName, &u.Credits, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return &u, nil
}
