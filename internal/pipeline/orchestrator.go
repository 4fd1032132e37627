package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/docwiki/internal/config"
	"github.com/dgallion1/docwiki/internal/parser"
	"github.com/dgallion1/docwiki/internal/wikistore"
	"github.com/dgallion1/docwiki/internal/wikitext"
)

// ErrQueueFull is returned by Submit when no queue slot is free.
var ErrQueueFull = errors.New("job queue is full")

// Publisher stores rendered pages.
type Publisher interface {
	PutPage(ctx context.Context, path string, page wikistore.Page) error
}

// Orchestrator manages the document conversion pipeline.
type Orchestrator struct {
	jobs     *JobStore
	queue    chan *Job
	dialects *wikitext.Registry
	pub      Publisher
	stats    *RenderStats
	log      *slog.Logger
	cfg      config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. pub may be nil when publishing is
// not configured.
func NewOrchestrator(cfg config.Config, dialects *wikitext.Registry, pub Publisher, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:     NewJobStore(cfg.JobTTL),
		queue:    make(chan *Job, cfg.MaxQueueSize),
		dialects: dialects,
		pub:      pub,
		stats:    NewRenderStats(cfg.StatsWindow),
		log:      log,
		cfg:      cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := o.newWorker()
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

func (o *Orchestrator) newWorker() *Worker {
	w := NewWorker(o.dialects, o.pub, o.jobs, o.stats, o.log)
	w.parserOpts = parser.Options{FallbackPdftotext: o.cfg.PDFFallbackPdftotext}
	w.publishPrefix = o.cfg.PublishPrefix
	return w
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.AddError("queue full")
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("%w (%d)", ErrQueueFull, o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Dialects returns the dialect registry used for rendering.
func (o *Orchestrator) Dialects() *wikitext.Registry {
	return o.dialects
}

// Stats returns the render latency tracker.
func (o *Orchestrator) Stats() *RenderStats {
	return o.stats
}

// PublishEnabled reports whether jobs can publish pages.
func (o *Orchestrator) PublishEnabled() bool {
	return o.pub != nil
}
