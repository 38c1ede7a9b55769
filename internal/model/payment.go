package model

import "time"

// Payment statuses. A payment transitions pending -> completed exactly
// once and never reverses.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
)

// Payment tracks one gateway order from creation to reconciliation.
// The gateway signature is stored for audit but never returned to clients.
type Payment struct {
	ID          string     `db:"id" json:"id"`
	UserID      string     `db:"user_id" json:"user_id"`
	OrderID     string     `db:"order_id" json:"order_id"`
	PaymentID   string     `db:"payment_id" json:"payment_id,omitempty"`
	Amount      float64    `db:"amount" json:"amount"`
	Credits     int64      `db:"credits" json:"credits"`
	Status      string     `db:"status" json:"status"`
	Signature   string     `db:"signature" json:"-"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}
