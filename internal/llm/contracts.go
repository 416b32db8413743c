package llm

import (
	"context"

	"github.com/ocrtools/cardscan/internal/entity"
)

// CardFields is the normalized shape we want from the model.
type CardFields struct {
	Name            string  `json:"name,omitempty"`
	Title           string  `json:"title,omitempty"`
	Company         string  `json:"company,omitempty"`
	Email           string  `json:"email,omitempty"`
	Phone           string  `json:"phone,omitempty"`
	Website         string  `json:"website,omitempty"`
	Address         string  `json:"address,omitempty"`
	ModelConfidence float32 `json:"confidence,omitempty"` // optional (0..1)
}

// Draft converts provider output into a candidate card draft, scored and
// ranked like any heuristic draft.
func (f CardFields) Draft() entity.CardDraft {
	return entity.CardDraft{
		Name:    f.Name,
		Title:   f.Title,
		Company: f.Company,
		Email:   f.Email,
		Phone:   f.Phone,
		Website: f.Website,
		Address: f.Address,
		Source:  "llm",
	}
}

// ExtractRequest carries everything the provider call needs.
type ExtractRequest struct {
	OCRText      string
	FilenameHint string

	// FilePath enables the vision path: the card photo is attached as a
	// data URL when the heuristic extraction scored low.
	FilePath  string
	PrepScore int // best heuristic draft score, 0 if unknown
}

// FieldExtractor is the interface the CLI depends on for the AI-provider
// alternative extraction path.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, req ExtractRequest) (CardFields, []byte /*rawJSON*/, error)
}
