package model

import "time"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Chat is an ordered, append-only message history tied to one
// user/character pair. CharacterName is denormalized for list views.
type Chat struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	CharacterID   string    `db:"character_id" json:"character_id"`
	CharacterName string    `db:"character_name" json:"character_name"`
	Messages      []Message `json:"messages"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Message is a single chat turn. Immutable once appended.
type Message struct {
	ID        string    `db:"id" json:"-"`
	ChatID    string    `db:"chat_id" json:"-"`
	Role      string    `db:"role" json:"role"`
	Content   string    `db:"content" json:"content"`
	Timestamp time.Time `db:"created_at" json:"timestamp"`
}
