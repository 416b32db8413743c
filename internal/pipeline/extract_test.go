package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocrtools/cardscan/constants"
	"github.com/ocrtools/cardscan/internal/llm"
	"github.com/ocrtools/cardscan/internal/ocr"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// cardTSV builds tesseract TSV for plain text lines, one word per column row.
func cardTSV(lines ...string) string {
	rows := []string{"level\tpage\tblock\tpar\tline\tword\tleft\ttop\twidth\theight\tconf\ttext"}
	for li, ln := range lines {
		words := strings.Fields(ln)
		x := 10
		for wi, w := range words {
			rows = append(rows, strings.Join([]string{
				"5", "1", "1", "1", fmt.Sprint(li + 1), fmt.Sprint(wi + 1),
				fmt.Sprint(x), fmt.Sprint(10 + 40*li), fmt.Sprint(12 * len(w)), "20",
				"90", w,
			}, "\t"))
			x += 12*len(w) + 10
		}
	}
	return strings.Join(rows, "\n")
}

// passRunner serves --list-langs plus per-pass TSV: one payload for default
// segmentation, another for sparse (--psm 11). Either can be failed.
type passRunner struct {
	defaultTSV  string
	sparseTSV   string
	failDefault bool
	failSparse  bool
	failLangs   bool
	calls       atomic.Int32
}

func (r *passRunner) Run(_ context.Context, _ string, args ...string) ([]byte, []byte, error) {
	if len(args) == 1 && args[0] == "--list-langs" {
		if r.failLangs {
			return nil, nil, errors.New("exit status 127")
		}
		return []byte("eng\nrus\n"), nil, nil
	}
	r.calls.Add(1)
	sparse := slices.Contains(args, "--psm")
	if sparse {
		if r.failSparse {
			return nil, []byte("sparse failed"), errors.New("exit status 1")
		}
		return []byte(r.sparseTSV), nil, nil
	}
	if r.failDefault {
		return nil, []byte("default failed"), errors.New("exit status 1")
	}
	return []byte(r.defaultTSV), nil, nil
}

func newTestExtractor(t *testing.T, r ocr.Runner) *Extractor {
	t.Helper()
	session := ocr.NewSession(ocr.Config{Tesseract: "tesseract", Languages: "eng"}, r, testLogger())
	return New(session, "eng", t.TempDir(), testLogger())
}

var fullCard = []string{
	"John Smith",
	"Senior Engineer",
	"Acme Corp",
	"john.smith@acme.com",
	"+1 415 555 0100",
	"www.acme.com",
	"123 Main Street, Springfield",
}

func TestExtractFieldsBestDraftWins(t *testing.T) {
	r := &passRunner{
		defaultTSV: cardTSV("Acme Corp"),   // weak draft
		sparseTSV:  cardTSV(fullCard...),   // strong draft
	}
	x := newTestExtractor(t, r)

	card, err := x.ExtractFields(context.Background(), "card.jpg", nil)
	require.NoError(t, err)

	assert.Equal(t, "John Smith", card.Name)
	assert.Equal(t, "Acme Corp", card.Company)
	assert.Equal(t, "john.smith@acme.com", card.Email)
	assert.Equal(t, string(constants.ScanStatusOK), card.Status)
	assert.GreaterOrEqual(t, card.Score, constants.ReviewThreshold)
	assert.NotEqual(t, "", card.ID.String())
}

func TestExtractFieldsPassFailureTolerated(t *testing.T) {
	r := &passRunner{
		failDefault: true,
		sparseTSV:   cardTSV(fullCard...),
	}
	x := newTestExtractor(t, r)

	card, err := x.ExtractFields(context.Background(), "card.jpg", nil)
	require.NoError(t, err)
	assert.Equal(t, "John Smith", card.Name)
}

func TestExtractFieldsAllPassesFailed(t *testing.T) {
	r := &passRunner{failDefault: true, failSparse: true}
	x := newTestExtractor(t, r)

	_, err := x.ExtractFields(context.Background(), "card.jpg", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all recognition passes failed")
}

func TestExtractFieldsInitErrorPropagates(t *testing.T) {
	r := &passRunner{failLangs: true}
	x := newTestExtractor(t, r)

	_, err := x.ExtractFields(context.Background(), "card.jpg", nil)
	require.Error(t, err)
	var initErr *ocr.InitError
	assert.ErrorAs(t, err, &initErr)
}

func TestExtractFieldsNeedsReview(t *testing.T) {
	r := &passRunner{
		defaultTSV: cardTSV("Acme Corp"),
		sparseTSV:  cardTSV("Acme Corp"),
	}
	x := newTestExtractor(t, r)

	card, err := x.ExtractFields(context.Background(), "card.jpg", nil)
	require.NoError(t, err)
	assert.Equal(t, string(constants.ScanStatusNeedsReview), card.Status)
	assert.Less(t, card.Score, constants.ReviewThreshold)
}

func TestExtractFieldsProgressReported(t *testing.T) {
	r := &passRunner{
		defaultTSV: cardTSV(fullCard...),
		sparseTSV:  cardTSV(fullCard...),
	}
	x := newTestExtractor(t, r)

	var phases []string
	var last float64
	progress := func(f float64, phase string) {
		phases = append(phases, phase)
		assert.GreaterOrEqual(t, f, last)
		last = f
	}
	_, err := x.ExtractFields(context.Background(), "card.jpg", progress)
	require.NoError(t, err)

	assert.Equal(t, "original", phases[0])
	assert.Equal(t, "done", phases[len(phases)-1])
	assert.Equal(t, 1.0, last)
}

func writeCardPNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 100, 60))
	for y := 0; y < 60; y++ {
		for x := 0; x < 100; x++ {
			v := uint8(150)
			if y%10 < 3 {
				v = 100
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

// dirCheckRunner records the scratch dir state when the sparse pass runs.
type dirCheckRunner struct {
	passRunner
	tempDir         string
	sawSparse       atomic.Bool
	sparseLeftovers atomic.Int32
}

func (r *dirCheckRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	if slices.Contains(args, "--psm") {
		r.sawSparse.Store(true)
		entries, _ := os.ReadDir(r.tempDir)
		r.sparseLeftovers.Store(int32(len(entries)))
	}
	return r.passRunner.Run(ctx, name, args...)
}

func TestExtractFieldsRemovesVariantAfterItsPass(t *testing.T) {
	img := filepath.Join(t.TempDir(), "card.png")
	writeCardPNG(t, img)

	tempDir := t.TempDir()
	r := &dirCheckRunner{tempDir: tempDir}
	r.defaultTSV = cardTSV(fullCard...)
	r.sparseTSV = cardTSV(fullCard...)

	session := ocr.NewSession(ocr.Config{Tesseract: "tesseract", Languages: "eng"}, r, testLogger())
	x := New(session, "eng", tempDir, testLogger())

	_, err := x.ExtractFields(context.Background(), img, nil)
	require.NoError(t, err)

	require.True(t, r.sawSparse.Load())
	assert.Zero(t, r.sparseLeftovers.Load())
	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// fixedFields is a canned model-backed extractor.
type fixedFields struct {
	fields llm.CardFields
	err    error
	called atomic.Bool
}

func (f *fixedFields) ExtractFields(_ context.Context, _ llm.ExtractRequest) (llm.CardFields, []byte, error) {
	f.called.Store(true)
	return f.fields, nil, f.err
}

func TestExtractFieldsModelCandidateWins(t *testing.T) {
	r := &passRunner{
		defaultTSV: cardTSV("Acme Corp"),
		sparseTSV:  cardTSV("Acme Corp"),
	}
	x := newTestExtractor(t, r)
	model := &fixedFields{fields: llm.CardFields{
		Name: "John Smith", Title: "Engineer", Company: "Acme Corp",
		Email: "john@acme.com", Phone: "+1 415 555 0100",
	}}
	x.UseFieldExtractor(model)

	card, err := x.ExtractFields(context.Background(), "card.jpg", nil)
	require.NoError(t, err)
	assert.True(t, model.called.Load())
	assert.Equal(t, "John Smith", card.Name)
	assert.Equal(t, "llm", card.Source)
}

func TestExtractFieldsModelFailureTolerated(t *testing.T) {
	r := &passRunner{
		defaultTSV: cardTSV(fullCard...),
		sparseTSV:  cardTSV(fullCard...),
	}
	x := newTestExtractor(t, r)
	x.UseFieldExtractor(&fixedFields{err: errors.New("rate limited")})

	card, err := x.ExtractFields(context.Background(), "card.jpg", nil)
	require.NoError(t, err)
	assert.Equal(t, "John Smith", card.Name)
}
