package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the state of a corpus build job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusNormalizing JobStatus = "normalizing"
	StatusCounting    JobStatus = "counting"
	StatusSelecting   JobStatus = "selecting"
	StatusCompleted   JobStatus = "completed"
	StatusReused      JobStatus = "vocabulary_reused"
	StatusFailed      JobStatus = "failed"
)

// Job tracks the state of a single corpus build.
type Job struct {
	mu sync.Mutex

	ID string `json:"job_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`

	// SourcePath points at a dump already on disk; used instead of an
	// upload for dumps too large to move over HTTP.
	SourcePath string `json:"source_path,omitempty"`

	// RebuildCorpus forces renormalization even when a corpus artifact
	// already exists.
	RebuildCorpus bool `json:"rebuild_corpus"`

	// VocabSize overrides the configured K when positive.
	VocabSize int `json:"vocab_size"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	errors   []string
}

// Progress tracks corpus build progress.
type Progress struct {
	Documents     int64    `json:"documents"`
	Sentences     int64    `json:"sentences"`
	Tokens        int64    `json:"tokens"`
	DistinctForms int      `json:"distinct_forms"`
	VocabWords    int      `json:"vocab_words"`
	Coverage      string   `json:"coverage"`
	Errors        []string `json:"errors"`
}

// NewJobID returns a fresh job identifier.
func NewJobID() string {
	return uuid.NewString()
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

// AddDocument accumulates per-document normalization progress.
func (j *Job) AddDocument(sentences int64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Documents++
	j.Progress.Sentences += sentences
	j.UpdatedAt = time.Now()
}

// SetNormalized records the final normalization totals.
func (j *Job) SetNormalized(documents, sentences, tokens int64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Documents = documents
	j.Progress.Sentences = sentences
	j.Progress.Tokens = tokens
	j.UpdatedAt = time.Now()
}

// SetSelection records the vocabulary outcome.
func (j *Job) SetSelection(distinctForms, vocabWords int, coverage string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.DistinctForms = distinctForms
	j.Progress.VocabWords = vocabWords
	j.Progress.Coverage = coverage
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw uploaded dump bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw uploaded dump bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// ReleaseFileData drops the upload buffer once the corpus is written.
func (j *Job) ReleaseFileData() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = nil
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string    `json:"job_id"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`
	Progress Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:       j.ID,
		Status:   j.Status,
		Phase:    j.Phase,
		Filename: j.Filename,
		Progress: Progress{
			Documents:     j.Progress.Documents,
			Sentences:     j.Progress.Sentences,
			Tokens:        j.Progress.Tokens,
			DistinctForms: j.Progress.DistinctForms,
			VocabWords:    j.Progress.VocabWords,
			Coverage:      j.Progress.Coverage,
			Errors:        errs,
		},
	}
}
