// Package pipeline orchestrates multi-pass recognition: it runs the
// recognizer against several image variants, parses each pass through the
// linear and layout strategies, scores every resulting draft and keeps the
// best one.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/ocrtools/cardscan/constants"
	"github.com/ocrtools/cardscan/internal/entity"
	"github.com/ocrtools/cardscan/internal/llm"
	"github.com/ocrtools/cardscan/internal/ocr"
	"github.com/ocrtools/cardscan/internal/parser"
)

// ProgressFunc receives coarse extraction progress. The exec recognizer
// reports nothing mid-pass, so the callback fires at pass boundaries.
type ProgressFunc func(fraction float64, phase string)

// Candidate is one scored draft, kept (not discarded early) so pass-level
// behavior stays testable.
type Candidate struct {
	Draft entity.CardDraft
	Score int
}

// Extractor runs the recognition passes for one card image. Safe for
// concurrent use across images; the only shared state is the Session.
type Extractor struct {
	logger  *slog.Logger
	session *ocr.Session
	langs   string
	tempDir string
	fields  llm.FieldExtractor
}

// New builds an Extractor around a recognizer session.
func New(session *ocr.Session, langs, tempDir string, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger, session: session, langs: langs, tempDir: tempDir}
}

// UseFieldExtractor adds a model-backed extraction stage. Its draft competes
// with the heuristic drafts on score; a provider failure only costs the extra
// candidate.
func (x *Extractor) UseFieldExtractor(fe llm.FieldExtractor) {
	x.fields = fe
}

type pass struct {
	label      string
	opts       ocr.Options
	preprocess bool
}

// passes: original image, contrast-enhanced variant (best effort), original
// again under sparse segmentation for multi-column cards. Sequential on
// purpose: one decoded image in memory at a time.
var passes = []pass{
	{label: "original", opts: ocr.Options{}},
	{label: "enhanced", opts: ocr.Options{}, preprocess: true},
	{label: "sparse", opts: ocr.Options{PSM: ocr.PSMSparse}},
}

// ExtractFields runs all passes over the image and returns the best-scoring
// draft as a finalized BusinessCard. Individual pass failures are logged and
// skipped; the call fails only when every pass failed, with the last error.
func (x *Extractor) ExtractFields(ctx context.Context, imagePath string, progress ProgressFunc) (entity.BusinessCard, error) {
	start := time.Now()

	eng, err := x.session.Engine(ctx, x.langs)
	if err != nil {
		return entity.BusinessCard{}, err
	}

	candidates, text, lastErr := x.runPasses(ctx, eng, imagePath, progress)
	if len(candidates) == 0 {
		if lastErr == nil {
			lastErr = fmt.Errorf("no recognition pass produced output")
		}
		x.logger.Error("extract.failed", "image", imagePath, "error", lastErr)
		return entity.BusinessCard{}, fmt.Errorf("all recognition passes failed: %w", lastErr)
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		// ties break toward the earlier-produced draft
		if c.Score > best.Score {
			best = c
		}
	}

	if x.fields != nil {
		if c, ok := x.modelCandidate(ctx, imagePath, text, best.Score); ok {
			candidates = append(candidates, c)
			if c.Score > best.Score {
				best = c
			}
		}
	}
	if progress != nil {
		progress(1, "done")
	}

	status := constants.StatusForScore(best.Score)
	card := entity.NewBusinessCard(best.Draft, best.Score, string(status))
	x.logger.Info("extract.ok",
		"image", imagePath,
		"source", best.Draft.Source,
		"score", best.Score,
		"status", card.Status,
		"candidates", len(candidates),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return card, nil
}

// modelCandidate runs the model-backed stage over the recognized text.
func (x *Extractor) modelCandidate(ctx context.Context, imagePath, text string, prepScore int) (Candidate, bool) {
	fields, _, err := x.fields.ExtractFields(ctx, llm.ExtractRequest{
		OCRText:      text,
		FilenameHint: filepath.Base(imagePath),
		FilePath:     imagePath,
		PrepScore:    prepScore,
	})
	if err != nil {
		x.logger.Warn("extract.model.failed", "image", imagePath, "error", err)
		return Candidate{}, false
	}
	draft := fields.Draft()
	return Candidate{Draft: draft, Score: parser.Score(draft)}, true
}

func (x *Extractor) runPasses(ctx context.Context, eng *ocr.Engine, imagePath string, progress ProgressFunc) ([]Candidate, string, error) {
	var candidates []Candidate
	var bestText string
	var lastErr error

	for i, p := range passes {
		if ctx.Err() != nil {
			return candidates, bestText, ctx.Err()
		}
		if progress != nil {
			progress(float64(i)/float64(len(passes)), p.label)
		}

		path := imagePath
		cleanup := func() {}
		if p.preprocess {
			enhanced, rm, err := ocr.EnhanceContrast(imagePath, x.tempDir)
			if err != nil {
				// best effort: a variant we cannot build is a pass we skip
				x.logger.Warn("extract.pass.preprocess_failed", "pass", p.label, "error", err)
				continue
			}
			path = enhanced
			cleanup = rm
		}

		res, err := eng.Recognize(ctx, path, p.opts)
		cleanup()
		if err != nil {
			x.logger.Warn("extract.pass.failed", "pass", p.label, "error", err)
			lastErr = err
			continue
		}

		if len(res.Text) > len(bestText) {
			bestText = res.Text
		}
		linear := parser.ParseText(res.Text)
		linear.Source = p.label + "/linear"
		candidates = append(candidates, Candidate{Draft: linear, Score: parser.Score(linear)})

		if len(res.Words) > 0 {
			if layout, ok := parser.ParseWords(res.Words); ok {
				merged := parser.Merge(layout, linear)
				merged.Source = p.label + "/layout"
				candidates = append(candidates, Candidate{Draft: merged, Score: parser.Score(merged)})
			}
		}
		x.logger.Debug("extract.pass.ok", "pass", p.label, "words", len(res.Words), "text_bytes", len(res.Text))
	}
	return candidates, bestText, lastErr
}
