package parser

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/ocrtools/cardscan/internal/entity"
)

// Line groups recognized words believed to lie on one visual line.
// Centroids are recomputed while words are being assigned and frozen after
// clustering finishes.
type Line struct {
	Words   []entity.RecognizedWord
	CenterX float64
	CenterY float64
	Text    string
}

// Clustering thresholds.
const (
	minLineHeightPx   = 8.0
	lineHeightFactor  = 0.7
	columnDeadZonePx  = 10.0
	shortTokenLen     = 3
	shortTokenMinConf = 20.0
)

// FilterWords drops recognizer output that cannot carry card content:
// empty post-normalization text, degenerate or non-finite boxes, very short
// low-confidence tokens, and tokens without a single alphanumeric/@/./+.
func FilterWords(words []entity.RecognizedWord) []entity.RecognizedWord {
	out := make([]entity.RecognizedWord, 0, len(words))
	for _, w := range words {
		text := NormalizeLine(w.Text)
		if text == "" {
			continue
		}
		b := w.Box
		if !finite(b.X0) || !finite(b.Y0) || !finite(b.X1) || !finite(b.Y1) {
			continue
		}
		if b.X1 <= b.X0 || b.Y1 <= b.Y0 {
			continue
		}
		if len([]rune(text)) <= shortTokenLen && w.Confidence < shortTokenMinConf {
			continue
		}
		if !hasContentRune(text) {
			continue
		}
		w.Text = text
		out = append(out, w)
	}
	return out
}

// ClusterWords groups filtered words into visual lines by vertical proximity.
// Words are taken top-to-bottom; each joins the existing line whose running
// vertical centroid is nearest within the line-height threshold, otherwise it
// starts a new line. Line centroids drift as words join, so later words can
// pull a line toward them.
func ClusterWords(words []entity.RecognizedWord) []Line {
	words = append([]entity.RecognizedWord(nil), words...)
	sort.SliceStable(words, func(i, j int) bool {
		ci, cj := words[i].Box.CenterY(), words[j].Box.CenterY()
		if ci != cj {
			return ci < cj
		}
		return words[i].Box.X0 < words[j].Box.X0
	})

	threshold := math.Max(minLineHeightPx, lineHeightFactor*medianHeight(words))

	var lines []Line
	for _, w := range words {
		best := -1
		bestDist := threshold
		for i := range lines {
			d := math.Abs(lines[i].CenterY - w.Box.CenterY())
			if d <= bestDist {
				best, bestDist = i, d
			}
		}
		if best < 0 {
			lines = append(lines, Line{Words: []entity.RecognizedWord{w}})
			recenter(&lines[len(lines)-1])
			continue
		}
		lines[best].Words = append(lines[best].Words, w)
		recenter(&lines[best])
	}

	for i := range lines {
		sort.SliceStable(lines[i].Words, func(a, b int) bool {
			return lines[i].Words[a].Box.X0 < lines[i].Words[b].Box.X0
		})
		texts := make([]string, 0, len(lines[i].Words))
		for _, w := range lines[i].Words {
			texts = append(texts, w.Text)
		}
		lines[i].Text = strings.Join(texts, " ")
	}
	sort.SliceStable(lines, func(a, b int) bool { return lines[a].CenterY < lines[b].CenterY })
	return lines
}

// SplitColumns divides lines into left/right columns around the median
// horizontal centroid. Lines inside the ±10px dead zone belong to neither:
// precision over recall for column assignment.
func SplitColumns(lines []Line) (left, right []Line) {
	if len(lines) == 0 {
		return nil, nil
	}
	xs := make([]float64, 0, len(lines))
	for _, ln := range lines {
		xs = append(xs, ln.CenterX)
	}
	med := median(xs)
	for _, ln := range lines {
		switch {
		case ln.CenterX < med-columnDeadZonePx:
			left = append(left, ln)
		case ln.CenterX > med+columnDeadZonePx:
			right = append(right, ln)
		}
	}
	return left, right
}

func recenter(ln *Line) {
	var sx, sy float64
	for _, w := range ln.Words {
		sx += w.Box.CenterX()
		sy += w.Box.CenterY()
	}
	n := float64(len(ln.Words))
	ln.CenterX, ln.CenterY = sx/n, sy/n
}

func medianHeight(words []entity.RecognizedWord) float64 {
	if len(words) == 0 {
		return 0
	}
	hs := make([]float64, 0, len(words))
	for _, w := range words {
		hs = append(hs, w.Box.Height())
	}
	return median(hs)
}

func median(vals []float64) float64 {
	s := append([]float64(nil), vals...)
	sort.Float64s(s)
	n := len(s)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func hasContentRune(s string) bool {
	for _, r := range s {
		if r == '@' || r == '.' || r == '+' {
			return true
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
