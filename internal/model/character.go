package model

import "time"

// Character is a user-authored persona consumed by the generation
// provider as role-play instructions. Visible and mutable only by its owner.
type Character struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Name        string    `db:"name" json:"name"`
	Role        string    `db:"role" json:"role"`
	Personality string    `db:"personality" json:"personality"`
	Style       string    `db:"style" json:"style"`
	Backstory   string    `db:"backstory" json:"backstory"`
	NSFW        bool      `db:"nsfw" json:"nsfw"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
