package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ocrtools/cardscan/internal/entity"
)

// NOTE: the weight values encode tuned heuristics, not ground truth; tests
// pin relative ordering, not absolute numbers.

func draft(name, title, company, email, phone, website, address string) entity.CardDraft {
	return entity.CardDraft{
		Name: name, Title: title, Company: company,
		Email: email, Phone: phone, Website: website, Address: address,
	}
}

func TestScoreEmptyDraftIsZero(t *testing.T) {
	assert.Equal(t, 0, Score(entity.CardDraft{}))
}

func TestScoreMonotonicInFields(t *testing.T) {
	d := draft("John Smith", "", "", "", "", "", "")
	base := Score(d)
	d.Company = "Acme Corp"
	withCompany := Score(d)
	assert.Greater(t, withCompany, base)

	d.Email = "john@acme.com"
	assert.Greater(t, Score(d), withCompany)
}

func TestScoreInvalidContactsContributeNothing(t *testing.T) {
	valid := draft("", "", "", "john@acme.com", "+1 415 555 0100", "acme.com", "")
	invalid := draft("", "", "", "not-an-email", "12", "user@host", "")
	assert.Greater(t, Score(valid), 0)
	assert.Equal(t, 0, Score(invalid))
}

func TestScorePenalties(t *testing.T) {
	clean := draft("John Smith", "Engineer", "Acme", "", "", "", "")
	digits := draft("J0hn Sm1th", "Engineer", "Acme", "", "", "", "")
	assert.Greater(t, Score(clean), Score(digits))

	shortCo := draft("John Smith", "Engineer", "A", "", "", "", "")
	assert.Greater(t, Score(clean), Score(shortCo))
}

func TestScoreBonuses(t *testing.T) {
	single := draft("Cher", "", "", "", "", "", "")
	multi := draft("John Smith", "", "", "", "", "", "")
	assert.Greater(t, Score(multi), Score(single))

	shortAddr := draft("", "", "", "", "", "", "Main St 1")
	longAddr := draft("", "", "", "", "", "", "123 Main Street, Springfield, IL 62704")
	assert.Greater(t, Score(longAddr), Score(shortAddr))
}

func TestScoreWithCustomWeights(t *testing.T) {
	w := DefaultWeights
	w.Name = 100
	d := draft("John Smith", "", "", "", "", "", "")
	assert.Equal(t, 110, ScoreWith(w, d)) // name + multi-word bonus
	assert.Equal(t, 55, Score(d))
}
