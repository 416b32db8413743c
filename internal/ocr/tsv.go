package ocr

import (
	"strconv"
	"strings"

	"github.com/ocrtools/cardscan/internal/entity"
)

// Tesseract TSV columns:
// level page_num block_num par_num line_num word_num left top width height conf text
const (
	tsvCols      = 12
	tsvWordLevel = "5"
)

// ParseTSV turns tesseract TSV output into word boxes and reassembled plain
// text (words joined by spaces within a line, lines by newlines, in TSV
// order). Malformed rows are skipped.
func ParseTSV(b []byte) (string, []entity.RecognizedWord) {
	var (
		words    []entity.RecognizedWord
		text     strings.Builder
		lastLine string
	)
	for i, row := range strings.Split(string(b), "\n") {
		if i == 0 || strings.TrimSpace(row) == "" {
			continue // header
		}
		cols := strings.Split(row, "\t")
		if len(cols) < tsvCols {
			continue
		}
		if cols[0] != tsvWordLevel {
			continue
		}
		token := cols[len(cols)-1]
		if strings.TrimSpace(token) == "" {
			continue
		}
		left, err1 := strconv.ParseFloat(cols[6], 64)
		top, err2 := strconv.ParseFloat(cols[7], 64)
		width, err3 := strconv.ParseFloat(cols[8], 64)
		height, err4 := strconv.ParseFloat(cols[9], 64)
		conf, err5 := strconv.ParseFloat(cols[10], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
			continue
		}
		words = append(words, entity.RecognizedWord{
			Text:       token,
			Confidence: conf,
			Box:        entity.Box{X0: left, Y0: top, X1: left + width, Y1: top + height},
		})

		// page/block/par/line identify the visual line
		lineKey := strings.Join(cols[1:5], "/")
		if text.Len() > 0 {
			if lineKey == lastLine {
				text.WriteByte(' ')
			} else {
				text.WriteByte('\n')
			}
		}
		text.WriteString(token)
		lastLine = lineKey
	}
	return text.String(), words
}
