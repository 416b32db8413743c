package parser

import (
	"strings"

	"github.com/ocrtools/cardscan/internal/entity"
)

// Weights rank candidate drafts against each other. They are empirically
// tuned heuristics with no documented derivation; relative ordering matters,
// absolute values do not.
type Weights struct {
	Name          int
	Company       int
	Title         int
	Email         int
	Phone         int
	Website       int
	Address       int
	MultiWordName int // name has at least two words
	LongAddress   int // address longer than 20 chars

	// Penalties for suspicious values.
	ShortCompany int // company shorter than 2 chars
	DigitInName  int // digits inside the name
	ShortTitle   int // title shorter than 3 chars
}

// DefaultWeights is the standard ranking table.
var DefaultWeights = Weights{
	Name:          45,
	Company:       30,
	Title:         20,
	Email:         40,
	Phone:         30,
	Website:       15,
	Address:       20,
	MultiWordName: 10,
	LongAddress:   8,
	ShortCompany:  25,
	DigitInName:   30,
	ShortTitle:    10,
}

// Score ranks a draft with DefaultWeights.
func Score(d entity.CardDraft) int { return ScoreWith(DefaultWeights, d) }

// ScoreWith ranks a draft: a pure heuristic ordering, not a probability.
// Invalid contact values contribute nothing. Ties between drafts break
// toward the earlier-produced one (the orchestrator's concern).
func ScoreWith(w Weights, d entity.CardDraft) int {
	score := 0
	if d.Name != "" {
		score += w.Name
		if len(strings.Fields(d.Name)) >= 2 {
			score += w.MultiWordName
		}
		if hasDigit(d.Name) {
			score -= w.DigitInName
		}
	}
	if d.Company != "" {
		score += w.Company
		if len([]rune(d.Company)) < 2 {
			score -= w.ShortCompany
		}
	}
	if d.Title != "" {
		score += w.Title
		if len([]rune(d.Title)) < 3 {
			score -= w.ShortTitle
		}
	}
	if d.Email != "" && strictEmailRe.MatchString(d.Email) {
		score += w.Email
	}
	if d.Phone != "" {
		if n := len(digitsOf(d.Phone)); n >= phoneMinDigits && n <= phoneMaxDigits {
			score += w.Phone
		}
	}
	if d.Website != "" && !strings.Contains(d.Website, "@") {
		score += w.Website
	}
	if d.Address != "" {
		score += w.Address
		if len(d.Address) > 20 {
			score += w.LongAddress
		}
	}
	return score
}
