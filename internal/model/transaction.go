package model

import "time"

// Transaction types.
const (
	TransactionDebit  = "debit"
	TransactionCredit = "credit"
)

// Transaction reasons.
const (
	ReasonChatMessage = "chat_message"
	ReasonPayment     = "payment"
)

// Transaction is one row of the append-only audit log; exactly one is
// written per balance mutation.
type Transaction struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Type        string    `db:"type" json:"type"`
	Amount      int64     `db:"amount" json:"amount"`
	Reason      string    `db:"reason" json:"reason"`
	CharacterID string    `db:"character_id" json:"character_id,omitempty"`
	ChatID      string    `db:"chat_id" json:"chat_id,omitempty"`
	PaymentID   string    `db:"payment_id" json:"payment_id,omitempty"`
	OrderID     string    `db:"order_id" json:"order_id,omitempty"`
	Timestamp   time.Time `db:"created_at" json:"timestamp"`
}
