package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// InitError reports a failed recognizer handle initialization (missing
// binary, unsupported language pack). The session invalidates its memo on
// init failure so a later call can retry.
type InitError struct {
	Languages string
	Cause     error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("recognizer init for %q: %v", e.Languages, e.Cause)
}

func (e *InitError) Unwrap() error { return e.Cause }

// Session owns the lazily-initialized recognizer handle shared across
// concurrent extractions. The handle is memoized per language key:
// first-callers for the same key share one in-flight initialization instead
// of racing to create duplicates. Requesting a different key tears down the
// old handle asynchronously (teardown failure is logged and ignored) and
// initializes a replacement.
type Session struct {
	cfg    Config
	runner Runner
	logger *slog.Logger

	mu   sync.Mutex
	key  string
	init *engineInit
}

type engineInit struct {
	key    string
	done   chan struct{}
	engine *Engine
	err    error
}

// NewSession builds a session around cfg. The configured language set is the
// default key; Engine may be asked for a different one at any time.
func NewSession(cfg Config, runner Runner, logger *slog.Logger) *Session {
	if runner == nil {
		runner = execRunner{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{cfg: cfg, runner: runner, logger: logger}
}

// Engine returns the shared engine for langs, initializing it if needed.
// The create-or-reuse check is atomic with respect to concurrent callers.
func (s *Session) Engine(ctx context.Context, langs string) (*Engine, error) {
	if langs == "" {
		langs = s.cfg.Languages
	}

	s.mu.Lock()
	if s.init != nil && s.key == langs {
		in := s.init
		s.mu.Unlock()
		return s.await(ctx, in)
	}
	if s.init != nil {
		s.teardownLocked()
	}
	in := &engineInit{key: langs, done: make(chan struct{})}
	s.key, s.init = langs, in
	s.mu.Unlock()

	cfg := s.cfg
	cfg.Languages = langs
	eng := NewEngine(cfg, s.runner, s.logger)
	in.engine, in.err = eng, s.verify(ctx, eng, langs)
	close(in.done)

	if in.err != nil {
		// invalidate the memo so the next caller can retry
		s.mu.Lock()
		if s.init == in {
			s.init = nil
		}
		s.mu.Unlock()
		return nil, &InitError{Languages: langs, Cause: in.err}
	}
	s.logger.Info("ocr.session.ready", "languages", langs)
	return eng, nil
}

// Reset tears down the current handle and initializes one for langs.
func (s *Session) Reset(ctx context.Context, langs string) error {
	s.mu.Lock()
	if s.init != nil {
		s.teardownLocked()
		s.init = nil
	}
	s.mu.Unlock()
	_, err := s.Engine(ctx, langs)
	return err
}

// await joins an in-flight or completed initialization.
func (s *Session) await(ctx context.Context, in *engineInit) (*Engine, error) {
	select {
	case <-in.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if in.err != nil {
		return nil, &InitError{Languages: in.key, Cause: in.err}
	}
	return in.engine, nil
}

// teardownLocked schedules asynchronous termination of the current handle.
// Caller holds s.mu.
func (s *Session) teardownLocked() {
	old := s.init
	logger := s.logger
	go func() {
		<-old.done
		if old.engine == nil {
			return
		}
		if err := old.engine.Terminate(); err != nil {
			logger.Warn("ocr.session.teardown_failed", "error", err)
		}
	}()
}

// verify checks the binary and requested language packs up front so that a
// bad language set fails the initialization, not the first pass.
func (s *Session) verify(ctx context.Context, eng *Engine, langs string) error {
	installed, err := eng.listLangs(ctx)
	if err != nil {
		return err
	}
	for _, l := range strings.Split(langs, "+") {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, ok := installed[l]; !ok {
			return fmt.Errorf("language %q not installed", l)
		}
	}
	return nil
}
