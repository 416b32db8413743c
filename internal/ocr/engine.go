package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ocrtools/cardscan/internal/entity"
)

// Config holds recognizer invocation settings.
type Config struct {
	Tesseract   string // binary name or absolute path; if empty -> "tesseract"
	Languages   string // tesseract language set, e.g. "eng+rus"
	TessdataDir string
	DPI         int // user_defined_dpi hint; 0 = let the engine guess
}

// Options selects per-pass recognizer behavior.
type Options struct {
	// PSM is the page segmentation mode; 0 keeps the engine default.
	// PSM 11 (sparse text) helps on multi-column cards.
	PSM int
}

// PSMSparse is the segmentation mode for sparse/multi-column text.
const PSMSparse = 11

// Result is one recognition pass's output: linearized text plus word-level
// boxes with confidences.
type Result struct {
	Text  string
	Words []entity.RecognizedWord
}

// Engine invokes tesseract through a Runner. One Engine is bound to one
// language set; the Session hands out and recycles Engines per language key.
type Engine struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

// NewEngine builds an Engine without verifying the binary; the Session's
// init path does the verification.
func NewEngine(cfg Config, runner Runner, logger *slog.Logger) *Engine {
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Languages == "" {
		cfg.Languages = "eng"
	}
	if runner == nil {
		runner = execRunner{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{cfg: cfg, runner: runner, logger: logger}
}

// Recognize runs one pass over the image at path. TSV output supplies both
// the word boxes and the text (reassembled line by line), so a pass costs a
// single exec.
func (e *Engine) Recognize(ctx context.Context, path string, opts Options) (Result, error) {
	args := []string{path, "stdout", "-l", e.cfg.Languages}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	if opts.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", opts.PSM))
	}
	if e.cfg.DPI > 0 {
		args = append(args, "-c", fmt.Sprintf("user_defined_dpi=%d", e.cfg.DPI))
	}
	args = append(args, "tsv")

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return Result{}, fmt.Errorf("tesseract: %w (stderr: %s)", err, truncate(string(errb), 512))
	}
	text, words := ParseTSV(out)
	return Result{Text: Normalize(text), Words: words}, nil
}

// Terminate releases the engine handle. The exec-backed engine holds no
// process state between passes, so this only logs.
func (e *Engine) Terminate() error {
	e.logger.Debug("ocr.engine.terminate", "languages", e.cfg.Languages)
	return nil
}

// listLangs asks the binary for its installed language packs.
func (e *Engine) listLangs(ctx context.Context) (map[string]struct{}, error) {
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, "--list-langs")
	if err != nil {
		return nil, fmt.Errorf("list langs: %w (stderr: %s)", err, truncate(string(errb), 512))
	}
	langs := map[string]struct{}{}
	for _, ln := range strings.Split(string(out), "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" || strings.Contains(ln, " ") {
			// skip the "List of available languages" header
			continue
		}
		langs[ln] = struct{}{}
	}
	return langs, nil
}
