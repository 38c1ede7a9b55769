package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/RLP0AI/roleplay-ai-app/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CharacterUpdate carries the subset of character fields present in an
// update request. Nil fields are left untouched.
type CharacterUpdate struct {
	Name        *string
	Role        *string
	Personality *string
	Style       *string
	Backstory   *string
	NSFW        *bool
}

type CharacterRepository interface {
	CreateCharacter(ctx context.Context, c *model.Character) error
	GetCharacterByID(ctx context.Context, id string) (*model.Character, error)
	ListCharactersByUser(ctx context.Context, userID string) ([]model.Character, error)
	UpdateCharacter(ctx context.Context, id string, upd CharacterUpdate) (*model.Character, error)
	DeleteCharacter(ctx context.Context, id string) error
}

type characterRepo struct {
	pool *pgxpool.Pool
}

func NewCharacterRepo(pool *pgxpool.Pool) CharacterRepository {
	return &characterRepo{pool: pool}
}

const characterColumns = `id, user_id, name, role, personality, style, backstory, nsfw, created_at, updated_at`

func scanCharacter(row pgx.Row, c *model.Character) error {
	return row.Scan(
		&c.ID, &c.UserID, &c.Name, &c.Role, &c.Personality,
		&c.Style, &c.Backstory, &c.NSFW, &c.CreatedAt, &c.UpdatedAt,
	)
}

func (r *characterRepo) CreateCharacter(ctx context.Context, c *model.Character) error {
	query := `
		INSERT INTO characters (id, user_id, name, role, personality, style, backstory, nsfw)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + characterColumns
	row := r.pool.QueryRow(ctx, query,
		c.ID, c.UserID, c.Name, c.Role, c.Personality, c.Style, c.Backstory, c.NSFW,
	)
	if err := scanCharacter(row, c); err != nil {
		return fmt.Errorf("creating character: %w", err)
	}
	return nil
}

func (r *characterRepo) GetCharacterByID(ctx context.Context, id string) (*model.Character, error) {
	query := `SELECT ` + characterColumns + ` FROM characters WHERE id = $1`
	var c model.Character
	if err := scanCharacter(r.pool.QueryRow(ctx, query, id), &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting character: %w", err)
	}
	return &c, nil
}

func (r *characterRepo) ListCharactersByUser(ctx context.Context, userID string) ([]model.Character, error) {
	query := `SELECT ` + characterColumns + `
		FROM characters
		WHERE user_id = $1
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying characters: %w", err)
	}
	defer rows.Close()

	var characters []model.Character
	for rows.Next() {
		var c model.Character
		if err := scanCharacter(rows, &c); err != nil {
			return nil, fmt.Errorf("scanning character row: %w", err)
		}
		characters = append(characters, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating character rows: %w", err)
	}
	return characters, nil
}

func (r *characterRepo) UpdateCharacter(ctx context.Context, id string, upd CharacterUpdate) (*model.Character, error) {
	query := `
		UPDATE characters SET
			name        = COALESCE($2, name),
			role        = COALESCE($3, role),
			personality = COALESCE($4, personality),
			style       = COALESCE($5, style),
			backstory   = COALESCE($6, backstory),
			nsfw        = COALESCE($7, nsfw),
			updated_at  = NOW()
		WHERE id = $1
		RETURNING ` + characterColumns
	var c model.Character
	row := r.pool.QueryRow(ctx, query, id,
		upd.Name, upd.Role, upd.Personality, upd.Style, upd.Backstory, upd.NSFW,
	)
	if err := scanCharacter(row, &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("updating character: %w", err)
	}
	return &c, nil
}

func (r *characterRepo) DeleteCharacter(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM characters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting character: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
