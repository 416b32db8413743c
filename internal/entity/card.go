package entity

import (
	"time"

	"github.com/google/uuid"
)

// CardDraft is one candidate structured record produced by a single
// (recognition pass, classification strategy) combination. Empty string means
// "unknown"; a draft is never rejected for missing fields, only scored lower.
type CardDraft struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	Company string `json:"company"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Website string `json:"website"`
	Address string `json:"address"`

	// Source labels the pass/strategy that produced the draft ("pass2/layout").
	// Kept for scoring diagnostics; not a card field.
	Source string `json:"-"`
}

// BusinessCard is a finalized draft with a stable identity, owned by the
// caller once returned.
type BusinessCard struct {
	ID uuid.UUID `json:"id"`
	CardDraft
	Score     int       `json:"score"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// NewBusinessCard assigns a fresh ID to a draft.
func NewBusinessCard(d CardDraft, score int, status string) BusinessCard {
	return BusinessCard{
		ID:        uuid.New(),
		CardDraft: d,
		Score:     score,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
}
