package pipeline

import (
	"sync"
	"time"

	"github.com/entweave/chunkd/internal/chunker"
)

// JobStatus represents the state of a batch chunking job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusChunking  JobStatus = "chunking"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Document is one unit of work inside a batch job: already-decoded text
// plus the proposed entity list, grouped by category label.
type Document struct {
	DocumentID string                      `json:"document_id"`
	Text       string                      `json:"text"`
	Entities   map[string][]chunker.Entity `json:"entities"`
}

// DocumentResult is the chunking outcome for one document.
type DocumentResult struct {
	DocumentID string            `json:"document_id"`
	Chunks     []chunker.Chunk   `json:"chunks"`
	Warnings   []chunker.Warning `json:"warnings"`
}

// Job tracks the state of one batch submission.
type Job struct {
	mu sync.Mutex

	ID string `json:"job_id"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	docs    []Document
	results []DocumentResult
	errors  []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalDocuments     int      `json:"total_documents"`
	DocumentsProcessed int      `json:"documents_processed"`
	ChunksProduced     int      `json:"chunks_produced"`
	Warnings           int      `json:"warnings"`
	Errors             []string `json:"errors"`
}

// NewJob creates a queued job for the given documents.
func NewJob(docs []Document) *Job {
	now := time.Now()
	j := &Job{
		ID:        generateULID(),
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
		docs:      docs,
	}
	j.Progress.TotalDocuments = len(docs)
	return j
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

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
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
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// AddResult records a finished document.
func (j *Job) AddResult(res DocumentResult) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.results = append(j.results, res)
	j.Progress.DocumentsProcessed++
	j.Progress.ChunksProduced += len(res.Chunks)
	j.Progress.Warnings += len(res.Warnings)
	j.UpdatedAt = time.Now()
}

// Documents returns the job's input documents.
func (j *Job) Documents() []Document {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.docs
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string           `json:"job_id"`
	Status   JobStatus        `json:"status"`
	Phase    string           `json:"phase"`
	Progress Progress         `json:"progress"`
	Results  []DocumentResult `json:"results,omitempty"`
}

// Snapshot returns a JSON-safe copy of the job state. Results are
// included only once the job has completed.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	snap := JobSnapshot{
		ID:     j.ID,
		Status: j.Status,
		Phase:  j.Phase,
		Progress: Progress{
			TotalDocuments:     j.Progress.TotalDocuments,
			DocumentsProcessed: j.Progress.DocumentsProcessed,
			ChunksProduced:     j.Progress.ChunksProduced,
			Warnings:           j.Progress.Warnings,
			Errors:             errs,
		},
	}
	if j.Status == StatusCompleted || j.Status == StatusFailed {
		snap.Results = append([]DocumentResult(nil), j.results...)
	}
	return snap
}
