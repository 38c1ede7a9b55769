package service

import "testing"

func TestBannedWordModerator(t *testing.T) {
	m := NewBannedWordModerator()

	cases := []struct {
		text string
		ok   bool
	}{
		{"a friendly starship captain", true},
		{"", true},
		{"does illegal things", false},
		{"ILLEGAL in caps", false},
		{"Harmful habits", false},
		{"a dangerously charming rogue", false}, // substring match
		{"fond of danger", true},
	}
	for _, tc := range cases {
		if got := m.Check(tc.text); got != tc.ok {
			t.Errorf("Check(%q) = %v, want %v", tc.text, got, tc.ok)
		}
	}
}
