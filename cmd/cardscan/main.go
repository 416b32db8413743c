package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/ocrtools/cardscan/internal/async"
	"github.com/ocrtools/cardscan/internal/common"
	"github.com/ocrtools/cardscan/internal/entity"
	"github.com/ocrtools/cardscan/internal/export"
	"github.com/ocrtools/cardscan/internal/ingest"
	"github.com/ocrtools/cardscan/internal/llm/openai"
	"github.com/ocrtools/cardscan/internal/ocr"
	"github.com/ocrtools/cardscan/internal/pipeline"
	"github.com/ocrtools/cardscan/internal/store"
)

const langsSettingKey = "ocr.languages"

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		cfgPath = flag.String("config", "", "optional YAML config file")
		langs   = flag.String("langs", "", "recognizer language set, e.g. eng+rus (persisted)")
		dbPath  = flag.String("db", "", "sqlite database path (overrides config)")
		out     = flag.String("o", "", "export file path; format by extension: .xlsx, .csv, .vcf")
		save    = flag.Bool("save", false, "save scanned cards to the database")
		useLLM  = flag.Bool("llm", false, "also run the AI extraction path (needs OPENAI_API_KEY)")
		dir     = flag.String("dir", "", "scan every card image under this directory")
		watch   = flag.Bool("watch", false, "with -dir: keep watching for new images")
		workers = flag.Int("workers", 2, "concurrent scans in batch/watch mode")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	// logs on stderr, card JSON on stdout
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := common.LoadConfigFile(*cfgPath)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.Store.Path = *dbPath
	}
	if *langs != "" {
		cfg.OCR.Languages = *langs
	}
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(cfg.Store.Path, logger)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = st.Close() }()

	// the language set persists across runs; an explicit -langs updates it
	if *langs != "" {
		if err := st.SetSetting(ctx, langsSettingKey, *langs); err != nil {
			logger.Warn("settings.save_failed", "error", err)
		}
	} else if saved, err := st.GetSetting(ctx, langsSettingKey); err == nil && saved != "" {
		cfg.OCR.Languages = saved
	}

	session := ocr.NewSession(ocr.Config{
		Tesseract:   cfg.OCR.Tesseract,
		Languages:   cfg.OCR.Languages,
		TessdataDir: cfg.OCR.TessdataDir,
		DPI:         cfg.OCR.DPI,
	}, nil, logger)
	extractor := pipeline.New(session, cfg.OCR.Languages, cfg.OCR.TempDir, logger)

	if *useLLM {
		if os.Getenv("OPENAI_API_KEY") == "" && cfg.LLM.APIKey == "" {
			printError("Error: -llm requires OPENAI_API_KEY\n")
			os.Exit(2)
		}
		client := openai.NewClient(openai.Config{
			APIKey:          cfg.LLM.APIKey,
			BaseURL:         cfg.LLM.BaseURL,
			Model:           cfg.LLM.Model,
			Temperature:     cfg.LLM.Temperature,
			Timeout:         cfg.LLM.Timeout,
			LenientOptional: true,
		}, logger)
		extractor.UseFieldExtractor(client)
	}

	paths := flag.Args()
	if len(paths) == 0 && *dir == "" && *out == "" {
		printError("Usage: cardscan [flags] image.jpg [image2.png ...]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	var (
		mu      sync.Mutex
		scanned []entity.BusinessCard
		failed  int
	)
	scanOne := func(ctx context.Context, job async.Job) error {
		card, err := extractor.ExtractFields(ctx, job.Path, nil)
		if err != nil {
			return err
		}
		if *save {
			if err := st.SaveCard(ctx, card); err != nil {
				return err
			}
		}
		mu.Lock()
		printCard(job.Path, card)
		scanned = append(scanned, card)
		mu.Unlock()
		return nil
	}

	switch {
	case *dir != "":
		pool := async.NewPool(scanOne, logger)
		pool.OnError = func(async.Job, error) { mu.Lock(); failed++; mu.Unlock() }
		pool.Start(ctx, *workers)
		if *watch {
			runWatch(ctx, *dir, pool, logger)
		} else {
			runBatch(ctx, *dir, pool, logger)
		}
		pool.Shutdown()
	default:
		for _, p := range paths {
			if err := scanOne(ctx, async.Job{Path: p, SubmittedAt: time.Now()}); err != nil {
				printError("Error: %s: %v\n", p, err)
				failed++
			}
		}
	}

	if *out != "" {
		if err := writeExport(ctx, *out, cfg.Export.SheetName, scanned, st, logger); err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func runBatch(ctx context.Context, dir string, pool *async.Pool, logger *slog.Logger) {
	files, stats, err := ingest.Discover(ctx, dir, true)
	if err != nil {
		printError("Error: %v\n", err)
		return
	}
	logger.Info("batch.discovered",
		"dir", dir, "matched", stats.Matched, "deduplicated", stats.Deduplicated, "failed", stats.Failed)
	for _, f := range files {
		if err := pool.Enqueue(ctx, async.Job{Path: f.Path}); err != nil {
			return
		}
	}
}

func runWatch(ctx context.Context, dir string, pool *async.Pool, logger *slog.Logger) {
	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{dir},
		InitialScan: true,
		Debounce:    500 * time.Millisecond,
	}, logger)
	if err != nil {
		printError("Error: %v\n", err)
		return
	}
	logger.Info("watch.started", "dir", dir)
	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-events:
			if !ok {
				return
			}
			if err := pool.Enqueue(ctx, async.Job{Path: p}); err != nil {
				return
			}
		case <-errs:
		}
	}
}

// writeExport serializes cards to path, picking the format from the
// extension. With no freshly scanned cards it exports the stored ones.
func writeExport(ctx context.Context, path, sheet string, cards []entity.BusinessCard, st *store.Store, logger *slog.Logger) error {
	if len(cards) == 0 {
		var err error
		cards, err = st.ListCards(ctx)
		if err != nil {
			return err
		}
	}
	svc := export.NewService(sheet, logger)

	var b []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		b, err = svc.CardsXLSX(cards)
	case ".csv":
		b, err = svc.CardsCSV(cards)
	case ".vcf":
		b, err = svc.CardsVCF(cards)
	default:
		return fmt.Errorf("unsupported export format %q (use .xlsx, .csv or .vcf)", filepath.Ext(path))
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return err
	}
	logger.Info("export.written", "path", path, "cards", len(cards))
	return nil
}

func printCard(path string, card entity.BusinessCard) {
	type outCard struct {
		Image string `json:"image"`
		entity.BusinessCard
	}
	b, err := json.MarshalIndent(outCard{Image: path, BusinessCard: card}, "", "  ")
	if err != nil {
		return
	}
	fmt.Println(string(b))
}
