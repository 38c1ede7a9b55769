package service

import "strings"

// ContentModerator decides whether user-authored profile text is
// acceptable. The default is a naive banned-substring list; it exists as
// an interface so a real moderation backend can replace it.
type ContentModerator interface {
	Check(text string) bool
}

type bannedWordModerator struct {
	banned []string
}

// NewBannedWordModerator returns the default moderator with the stock
// banned-word list.
func NewBannedWordModerator() ContentModerator {
	return &bannedWordModerator{
		banned: []string{"illegal", "harmful", "dangerous"},
	}
}

// Check reports whether text is free of banned words. Matching is a
// case-insensitive substring scan.
func (m *bannedWordModerator) Check(text string) bool {
	lowered := strings.ToLower(text)
	for _, word := range m.banned {
		if strings.Contains(lowered, word) {
			return false
		}
	}
	return true
}
