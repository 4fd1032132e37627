package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the state of a conversion job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusParsing    JobStatus = "parsing"
	StatusRendering  JobStatus = "rendering"
	StatusPublishing JobStatus = "publishing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusPartial    JobStatus = "partial"
	StatusDupSkipped JobStatus = "duplicate_skipped"
)

// Job tracks the state of a single document conversion.
type Job struct {
	mu sync.Mutex

	ID       string
	Filename string
	Title    string
	Dialect  string
	Publish  bool

	Status JobStatus
	Phase  string

	ContentHash string
	PagePath    string
	DuplicateOf string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Internal: not serialized.
	fileData []byte
	wikitext string
	errors   []string
}

// NewJob returns a queued job with a fresh ID.
func NewJob(filename, title, dialect string, publish bool) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		Filename:  filename,
		Title:     title,
		Dialect:   dialect,
		Publish:   publish,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Result is the rendered output of a finished job.
type Result struct {
	Wikitext string `json:"wikitext"`
	Bytes    int    `json:"bytes"`
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// FindCompleted returns a completed job other than exclude that rendered
// the same content with the same dialect, or nil. A non-empty page title
// further restricts the match to jobs that published a page under it.
func (s *JobStore) FindCompleted(hash, dialect, exclude, pageTitle string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, job := range s.jobs {
		if id == exclude {
			continue
		}
		job.mu.Lock()
		match := job.Status == StatusCompleted && job.ContentHash == hash && job.Dialect == dialect
		if pageTitle != "" {
			match = match && job.PagePath != "" && job.Title == pageTitle
		}
		job.mu.Unlock()
		if match {
			return job
		}
	}
	return nil
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
		}
	}
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.UpdatedAt = time.Now()
}

// resolve fills in the parsed title when none was given and records the
// dialect actually used. It returns the final title.
func (j *Job) resolve(title, dialect string) string {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Title == "" {
		j.Title = title
	}
	j.Dialect = dialect
	return j.Title
}

// SetContentHash records the hash of the parsed document.
func (j *Job) SetContentHash(hash string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ContentHash = hash
}

// SetResult stores the rendered wiki text.
func (j *Job) SetResult(wikitext string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.wikitext = wikitext
	j.UpdatedAt = time.Now()
}

// Result returns the rendered output and whether rendering has finished.
func (j *Job) Result() (Result, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	switch j.Status {
	case StatusCompleted, StatusPartial, StatusDupSkipped:
		return Result{Wikitext: j.wikitext, Bytes: len(j.wikitext)}, true
	}
	return Result{}, false
}

// SetPublished records where the page was published.
func (j *Job) SetPublished(path string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.PagePath = path
	j.UpdatedAt = time.Now()
}

// MarkDuplicate copies the output of an earlier identical job.
func (j *Job) MarkDuplicate(of *Job) {
	res, _ := of.Result()
	of.mu.Lock()
	path := of.PagePath
	of.mu.Unlock()

	j.mu.Lock()
	defer j.mu.Unlock()
	j.DuplicateOf = of.ID
	j.PagePath = path
	j.wikitext = res.Wikitext
	j.Status = StatusDupSkipped
	j.Phase = "dedup"
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	Filename    string    `json:"filename"`
	Title       string    `json:"title"`
	Dialect     string    `json:"dialect"`
	ContentHash string    `json:"content_hash,omitempty"`
	PagePath    string    `json:"page_path,omitempty"`
	DuplicateOf string    `json:"duplicate_of,omitempty"`
	Errors      []string  `json:"errors"`
	Result      *Result   `json:"result,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	res, done := j.Result()

	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.errors...)
	snap := JobSnapshot{
		ID:          j.ID,
		Status:      j.Status,
		Phase:       j.Phase,
		Filename:    j.Filename,
		Title:       j.Title,
		Dialect:     j.Dialect,
		ContentHash: j.ContentHash,
		PagePath:    j.PagePath,
		DuplicateOf: j.DuplicateOf,
		Errors:      errs,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
	if done {
		snap.Result = &res
	}
	return snap
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
