// Package parser converts raw recognized text (and optionally word-level
// bounding boxes) into scored, best-effort business card drafts. Everything
// here is heuristic: a draft is never rejected for missing fields, only
// scored lower.
package parser

import (
	"strings"

	"github.com/ocrtools/cardscan/internal/entity"
)

// ParseText runs the linear strategy over recognized plain text.
func ParseText(text string) entity.CardDraft {
	return ClassifyLinear(strings.Split(text, "\n"))
}

// ParseWords runs the layout strategy over word boxes: filter, cluster into
// visual lines, split into columns, classify per column. The second return
// is false when layout analysis found nothing usable.
func ParseWords(words []entity.RecognizedWord) (entity.CardDraft, bool) {
	lines := ClusterWords(FilterWords(words))
	if len(lines) == 0 {
		return entity.CardDraft{}, false
	}
	left, right := SplitColumns(lines)
	if len(left) == 0 && len(right) == 0 {
		// single-column card: no spatial signal beyond line order
		return entity.CardDraft{}, false
	}
	return ClassifyLayout(left, right)
}
