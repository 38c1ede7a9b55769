package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/RLP0AI/roleplay-ai-app/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrInsufficientCredits is returned when a conditional debit finds the
// balance below the requested amount.
var ErrInsufficientCredits = errors.New("insufficient credits")

type LedgerRepository interface {
	// DebitForMessage atomically deducts amount from the user's balance and
	// appends the matching debit transaction. The decrement is conditional
	// on credits >= amount, so the balance can never go negative even under
	// concurrent requests. Returns the balance after the debit.
	DebitForMessage(ctx context.Context, userID string, amount int64, characterID, chatID string) (int64, error)
	ListTransactions(ctx context.Context, userID string, limit int) ([]model.Transaction, error)
}

type ledgerRepo struct {
	pool *pgxpool.Pool
}

func NewLedgerRepo(pool *pgxpool.Pool) LedgerRepository {
	return &ledgerRepo{pool: pool}
}

func (r *ledgerRepo) DebitForMessage(ctx context.Context, userID string, amount int64, characterID, chatID string) (int64, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("starting debit transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	const debitQ = `
		UPDATE users
		SET credits = credits - $2, updated_at = NOW()
		WHERE user_id = $1 AND credits >= $2
		RETURNING credits`
	var remaining int64
	if err := tx.QueryRow(ctx, debitQ, userID, amount).Scan(&remaining); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrInsufficientCredits
		}
		return 0, fmt.Errorf("debiting user %s: %w", userID, err)
	}

	const logQ = `
		INSERT INTO transactions (id, user_id, type, amount, reason, character_id, chat_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := tx.Exec(ctx, logQ,
		uuid.NewString(), userID, model.TransactionDebit, amount, model.ReasonChatMessage, characterID, chatID,
	); err != nil {
		return 0, fmt.Errorf("logging debit for user %s: %w", userID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing debit transaction: %w", err)
	}
	return remaining, nil
}

func (r *ledgerRepo) ListTransactions(ctx context.Context, userID string, limit int) ([]model.Transaction, error) {
	query := `
		SELECT id, user_id, type, amount, reason,
		       COALESCE(character_id, ''), COALESCE(chat_id, ''),
		       COALESCE(payment_id, ''), COALESCE(order_id, ''),
		       created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()

	var txs []model.Transaction
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.Type, &t.Amount, &t.Reason,
			&t.CharacterID, &t.ChatID, &t.PaymentID, &t.OrderID, &t.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scanning transaction row: %w", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transaction rows: %w", err)
	}
	return txs, nil
}
