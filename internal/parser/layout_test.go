package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocrtools/cardscan/internal/entity"
)

func word(text string, x0, y0, x1, y1, conf float64) entity.RecognizedWord {
	return entity.RecognizedWord{
		Text:       text,
		Confidence: conf,
		Box:        entity.Box{X0: x0, Y0: y0, X1: x1, Y1: y1},
	}
}

func TestFilterWords(t *testing.T) {
	words := []entity.RecognizedWord{
		word("John", 0, 0, 40, 20, 90),
		word("  ", 50, 0, 60, 20, 90),          // empty after normalization
		word("Smith", 100, 0, 90, 20, 90),      // degenerate box (x1 < x0)
		word("ab", 0, 40, 20, 60, 10),          // short and low confidence
		word("ab", 30, 40, 50, 60, 80),         // short but confident
		word("###", 60, 40, 90, 60, 95),        // no content rune
		word("+7", 100, 40, 120, 60, 80),       // '+' counts as content
	}
	got := FilterWords(words)
	require.Len(t, got, 3)
	assert.Equal(t, "John", got[0].Text)
	assert.Equal(t, "ab", got[1].Text)
	assert.Equal(t, "+7", got[2].Text)
}

func TestClusterWordsGroupsByRow(t *testing.T) {
	words := []entity.RecognizedWord{
		word("Smith", 50, 0, 100, 20, 90),
		word("John", 0, 2, 45, 22, 90), // slight vertical jitter, same row
		word("Director", 0, 50, 80, 70, 90),
	}
	lines := ClusterWords(words)
	require.Len(t, lines, 2)
	assert.Equal(t, "John Smith", lines[0].Text) // x-order restored
	assert.Equal(t, "Director", lines[1].Text)
}

func TestClusterWordsThresholdScalesWithHeight(t *testing.T) {
	// tall words: rows 30px apart still merge under 0.7 * median height
	tall := []entity.RecognizedWord{
		word("BIG", 0, 0, 60, 50, 90),
		word("TYPE", 70, 30, 140, 80, 90),
	}
	assert.Len(t, ClusterWords(tall), 1)

	// small words: the same 30px gap separates rows
	small := []entity.RecognizedWord{
		word("fine", 0, 0, 30, 10, 90),
		word("print", 0, 30, 40, 40, 90),
	}
	assert.Len(t, ClusterWords(small), 2)
}

func TestSplitColumns(t *testing.T) {
	lines := []Line{
		{CenterX: 50, CenterY: 10, Text: "Acme Corp"},
		{CenterX: 60, CenterY: 40, Text: "123 Main street"},
		{CenterX: 400, CenterY: 15, Text: "John Smith"},
		{CenterX: 410, CenterY: 45, Text: "Senior Engineer"},
	}
	left, right := SplitColumns(lines)
	require.Len(t, left, 2)
	require.Len(t, right, 2)
	assert.Equal(t, "Acme Corp", left[0].Text)
	assert.Equal(t, "John Smith", right[0].Text)
}

func TestSplitColumnsDeadZone(t *testing.T) {
	// all centroids within +-10px of the median: no column signal
	lines := []Line{
		{CenterX: 100, Text: "a"},
		{CenterX: 105, Text: "b"},
		{CenterX: 95, Text: "c"},
	}
	left, right := SplitColumns(lines)
	assert.Empty(t, left)
	assert.Empty(t, right)
}

func TestSplitColumnsEmpty(t *testing.T) {
	left, right := SplitColumns(nil)
	assert.Nil(t, left)
	assert.Nil(t, right)
}
