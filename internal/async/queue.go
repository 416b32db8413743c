// Package async runs scan jobs through a bounded worker pool so batch and
// watch modes can recognize several images without unbounded concurrency.
package async

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job is one image to scan.
type Job struct {
	Path        string
	SubmittedAt time.Time
}

// Handler processes one job. Errors are reported through the pool's
// OnError callback; a failed job does not stop the pool.
type Handler func(ctx context.Context, job Job) error

// Pool fans jobs out to a fixed number of workers.
type Pool struct {
	handler Handler
	logger  *slog.Logger
	jobs    chan Job
	wg      sync.WaitGroup

	// OnError, if set, observes per-job failures. Set before Start.
	OnError func(job Job, err error)
}

func NewPool(handler Handler, logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{handler: handler, logger: logger, jobs: make(chan Job, 64)}
}

// Start launches workers that drain the queue until Shutdown.
func (p *Pool) Start(ctx context.Context, workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.work(ctx)
	}
}

// Enqueue submits a job, blocking if the queue is full.
func (p *Pool) Enqueue(ctx context.Context, job Job) error {
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	select {
	case p.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting jobs and waits for in-flight work to finish.
func (p *Pool) Shutdown() {
	close(p.jobs)
	p.wg.Wait()
}

func (p *Pool) work(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			if err := p.handler(ctx, job); err != nil {
				p.logger.Warn("scan.job.failed", "path", job.Path, "error", err)
				if p.OnError != nil {
					p.OnError(job, err)
				}
			}
		}
	}
}
