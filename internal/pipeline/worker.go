package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/dgallion1/docwiki/internal/doctree"
	"github.com/dgallion1/docwiki/internal/parser"
	"github.com/dgallion1/docwiki/internal/wikistore"
	"github.com/dgallion1/docwiki/internal/wikitext"
)

// Worker processes a single document job.
type Worker struct {
	dialects *wikitext.Registry
	pub      Publisher
	jobs     *JobStore
	stats    *RenderStats
	log      *slog.Logger

	parserOpts    parser.Options
	publishPrefix string
	backoff       func(attempt int) time.Duration
}

func NewWorker(dialects *wikitext.Registry, pub Publisher, jobs *JobStore, stats *RenderStats, log *slog.Logger) *Worker {
	return &Worker{
		dialects:      dialects,
		pub:           pub,
		jobs:          jobs,
		stats:         stats,
		log:           log,
		publishPrefix: "wiki/pages",
		backoff:       Backoff,
	}
}

// Process parses, renders and optionally publishes a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename, w.parserOpts)
	if err != nil {
		w.fail(log, job, "parsing", err)
		return
	}
	doc, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		w.fail(log, job, "parsing", fmt.Errorf("parse: %w", err))
		return
	}
	job.SetFileData(nil)

	d, err := w.dialects.Get(job.Dialect)
	if err != nil {
		w.fail(log, job, "rendering", err)
		return
	}
	title := job.resolve(doc.Title, d.Name)

	hash, err := documentHash(doc.Body)
	if err != nil {
		w.fail(log, job, "parsing", err)
		return
	}
	job.SetContentHash(hash)

	// Phase 1.5: Dedup check. A publishing job only skips when the same
	// page was already written.
	pageTitle := ""
	if job.Publish {
		pageTitle = title
	}
	if prev := w.jobs.FindCompleted(hash, d.Name, job.ID, pageTitle); prev != nil {
		log.Info("duplicate document, skipping", "existing_job_id", prev.ID)
		job.MarkDuplicate(prev)
		return
	}

	// Phase 2: Render
	job.SetStatus(StatusRendering, "rendering")
	start := time.Now()
	out, err := wikitext.New(d).Serialize(doc.Body)
	if err != nil {
		w.fail(log, job, "rendering", fmt.Errorf("render: %w", err))
		return
	}
	w.stats.Record(time.Since(start), len(out))
	job.SetResult(out)
	log.Info("rendered document", "dialect", d.Name, "bytes", len(out))

	if !job.Publish {
		job.SetStatus(StatusCompleted, "done")
		return
	}

	// Phase 3: Publish
	job.SetStatus(StatusPublishing, "publishing")
	if w.pub == nil {
		job.AddError("publish: wikistore is not configured")
		job.SetStatus(StatusPartial, "done")
		return
	}
	pagePath := path.Join(w.publishPrefix, wikistore.Slug(title))
	page := wikistore.Page{
		Title:       title,
		Content:     out,
		Dialect:     d.Name,
		ContentHash: hash,
		Source:      "docwiki:" + job.Filename,
	}
	if err := w.publish(ctx, log, pagePath, page); err != nil {
		log.Error("publish failed", "path", pagePath, "error", err)
		job.AddError(fmt.Sprintf("publish %s: %s", pagePath, err))
		job.SetStatus(StatusPartial, "done")
		return
	}
	job.SetPublished(pagePath)
	log.Info("published page", "path", pagePath)
	job.SetStatus(StatusCompleted, "done")
}

// publish stores the page, retrying transient failures with backoff.
func (w *Worker) publish(ctx context.Context, log *slog.Logger, pagePath string, page wikistore.Page) error {
	var lastErr error
	for attempt := range MaxRetries {
		lastErr = w.pub.PutPage(ctx, pagePath, page)
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		log.Warn("retryable publish error", "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(w.backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

func (w *Worker) fail(log *slog.Logger, job *Job, phase string, err error) {
	log.Error("job failed", "phase", phase, "error", err)
	job.AddError(err.Error())
	job.SetStatus(StatusFailed, phase)
}

// documentHash hashes the canonical JSON encoding of a document body.
func documentHash(body *doctree.Node) (string, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("hash document: %w", err)
	}
	return ContentHashHex(data), nil
}
