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

// ErrAlreadyProcessed is returned when a payment has already transitioned
// to completed; the credit must not be applied twice.
var ErrAlreadyProcessed = errors.New("payment already processed")

type PaymentRepository interface {
	CreatePending(ctx context.Context, p *model.Payment) error
	GetByOrderAndUser(ctx context.Context, orderID, userID string) (*model.Payment, error)
	// CompleteAndCredit flips the payment to completed, adds its credits to
	// the user's balance and appends the credit transaction, all in one
	// database transaction. The status flip is conditional on the payment
	// still being pending, which makes the whole operation idempotent:
	// a replay gets ErrAlreadyProcessed and no second credit.
	CompleteAndCredit(ctx context.Context, payment *model.Payment, gatewayPaymentID, signature string) (int64, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]model.Payment, error)
}

type paymentRepo struct {
	pool *pgxpool.Pool
}

func NewPaymentRepo(pool *pgxpool.Pool) PaymentRepository {
	return &paymentRepo{pool: pool}
}

func (r *paymentRepo) CreatePending(ctx context.Context, p *model.Payment) error {
	query := `
		INSERT INTO payments (id, user_id, order_id, amount, credits, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`
	p.Status = model.PaymentPending
	err := r.pool.QueryRow(ctx, query,
		p.ID, p.UserID, p.OrderID, p.Amount, p.Credits, p.Status,
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating pending payment: %w", err)
	}
	return nil
}

func (r *paymentRepo) GetByOrderAndUser(ctx context.Context, orderID, userID string) (*model.Payment, error) {
	query := `
		SELECT id, user_id, order_id, COALESCE(payment_id, ''), amount, credits, status,
		       COALESCE(signature, ''), created_at, completed_at
		FROM payments
		WHERE order_id = $1 AND user_id = $2
		LIMIT 1`
	var p model.Payment
	err := r.pool.QueryRow(ctx, query, orderID, userID).Scan(
		&p.ID, &p.UserID, &p.OrderID, &p.PaymentID, &p.Amount, &p.Credits,
		&p.Status, &p.Signature, &p.CreatedAt, &p.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting payment: %w", err)
	}
	return &p, nil
}

func (r *paymentRepo) CompleteAndCredit(ctx context.Context, payment *model.Payment, gatewayPaymentID, signature string) (int64, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("starting credit transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	const completeQ = `
		UPDATE payments
		SET status = $2, payment_id = $3, signature = $4, completed_at = NOW()
		WHERE id = $1 AND status = $5`
	result, err := tx.Exec(ctx, completeQ,
		payment.ID, model.PaymentCompleted, gatewayPaymentID, signature, model.PaymentPending,
	)
	if err != nil {
		return 0, fmt.Errorf("completing payment %s: %w", payment.ID, err)
	}
	if result.RowsAffected() == 0 {
		return 0, ErrAlreadyProcessed
	}

	const creditQ = `
		UPDATE users
		SET credits = credits + $2, updated_at = NOW()
		WHERE user_id = $1
		RETURNING credits`
	var total int64
	if err := tx.QueryRow(ctx, creditQ, payment.UserID, payment.Credits).Scan(&total); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("crediting user %s: %w", payment.UserID, err)
	}

	const logQ = `
		INSERT INTO transactions (id, user_id, type, amount, reason, payment_id, order_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := tx.Exec(ctx, logQ,
		uuid.NewString(), payment.UserID, model.TransactionCredit, payment.Credits,
		model.ReasonPayment, gatewayPaymentID, payment.OrderID,
	); err != nil {
		return 0, fmt.Errorf("logging credit for user %s: %w", payment.UserID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing credit transaction: %w", err)
	}
	return total, nil
}

func (r *paymentRepo) ListByUser(ctx context.Context, userID string, limit int) ([]model.Payment, error) {
	// The signature column is deliberately left out of the projection.
	query := `
		SELECT id, user_id, order_id, COALESCE(payment_id, ''), amount, credits, status,
		       created_at, completed_at
		FROM payments
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying payments: %w", err)
	}
	defer rows.Close()

	var payments []model.Payment
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.OrderID, &p.PaymentID, &p.Amount, &p.Credits,
			&p.Status, &p.CreatedAt, &p.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning payment row: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payment rows: %w", err)
	}
	return payments, nil
}
