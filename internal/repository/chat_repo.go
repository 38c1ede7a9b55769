package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/RLP0AI/roleplay-ai-app/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ChatRepository interface {
	CreateChat(ctx context.Context, c *model.Chat) error
	GetChatByID(ctx context.Context, chatID string) (*model.Chat, error)
	ListChatsByCharacter(ctx context.Context, userID, characterID string, limit int) ([]model.Chat, error)
	DeleteChat(ctx context.Context, chatID string) error
	ListMessages(ctx context.Context, chatID string) ([]model.Message, error)
	// AppendExchange appends the user and assistant messages and refreshes
	// the chat's updated_at in one transaction. Messages are append-only;
	// nothing else in the chat row is touched.
	AppendExchange(ctx context.Context, chatID string, userMsg, assistantMsg *model.Message) error
}

type chatRepo struct {
	pool *pgxpool.Pool
}

func NewChatRepo(pool *pgxpool.Pool) ChatRepository {
	return &chatRepo{pool: pool}
}

const chatColumns = `id, user_id, character_id, character_name, created_at, updated_at`

func scanChat(row pgx.Row, c *model.Chat) error {
	return row.Scan(
		&c.ID, &c.UserID, &c.CharacterID, &c.CharacterName, &c.CreatedAt, &c.UpdatedAt,
	)
}

func (r *chatRepo) CreateChat(ctx context.Context, c *model.Chat) error {
	query := `
		INSERT INTO chats (id, user_id, character_id, character_name)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + chatColumns
	row := r.pool.QueryRow(ctx, query, c.ID, c.UserID, c.CharacterID, c.CharacterName)
	if err := scanChat(row, c); err != nil {
		return fmt.Errorf("creating chat: %w", err)
	}
	if c.Messages == nil {
		c.Messages = []model.Message{}
	}
	return nil
}

func (r *chatRepo) GetChatByID(ctx context.Context, chatID string) (*model.Chat, error) {
	query := `SELECT ` + chatColumns + ` FROM chats WHERE id = $1`
	var c model.Chat
	if err := scanChat(r.pool.QueryRow(ctx, query, chatID), &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting chat: %w", err)
	}
	return &c, nil
}

func (r *chatRepo) ListChatsByCharacter(ctx context.Context, userID, characterID string, limit int) ([]model.Chat, error) {
	query := `SELECT ` + chatColumns + `
		FROM chats
		WHERE user_id = $1 AND character_id = $2
		ORDER BY updated_at DESC
		LIMIT $3`
	rows, err := r.pool.Query(ctx, query, userID, characterID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying chats: %w", err)
	}
	defer rows.Close()

	var chats []model.Chat
	for rows.Next() {
		var c model.Chat
		if err := scanChat(rows, &c); err != nil {
			return nil, fmt.Errorf("scanning chat row: %w", err)
		}
		chats = append(chats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chat rows: %w", err)
	}
	return chats, nil
}

func (r *chatRepo) DeleteChat(ctx context.Context, chatID string) error {
	// Messages go with the chat (ON DELETE CASCADE); they are not retained.
	result, err := r.pool.Exec(ctx, `DELETE FROM chats WHERE id = $1`, chatID)
	if err != nil {
		return fmt.Errorf("deleting chat: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *chatRepo) ListMessages(ctx context.Context, chatID string) ([]model.Message, error) {
	query := `
		SELECT id, chat_id, role, content, created_at
		FROM messages
		WHERE chat_id = $1
		ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.Role, &m.Content, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning message row: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating message rows: %w", err)
	}
	return messages, nil
}

func (r *chatRepo) AppendExchange(ctx context.Context, chatID string, userMsg, assistantMsg *model.Message) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("starting append transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	const insertQ = `
		INSERT INTO messages (id, chat_id, role, content)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`
	for _, m := range []*model.Message{userMsg, assistantMsg} {
		m.ChatID = chatID
		if err := tx.QueryRow(ctx, insertQ, m.ID, chatID, m.Role, m.Content).Scan(&m.Timestamp); err != nil {
			return fmt.Errorf("appending %s message: %w", m.Role, err)
		}
	}

	if _, err := tx.Exec(ctx, `UPDATE chats SET updated_at = NOW() WHERE id = $1`, chatID); err != nil {
		return fmt.Errorf("touching chat: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing append transaction: %w", err)
	}
	return nil
}
