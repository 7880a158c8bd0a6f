package reports

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrJobNotFound is returned for unknown job IDs
var ErrJobNotFound = errors.New("job not found")

// JobTracker keeps the state of asynchronous generations in memory.
// Jobs are not persisted across restarts.
type JobTracker struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]*Job
	now  func() time.Time
}

// NewJobTracker creates an empty tracker
func NewJobTracker() *JobTracker {
	return &JobTracker{
		jobs: make(map[uuid.UUID]*Job),
		now:  time.Now,
	}
}

// Create registers a pending job for filename
func (t *JobTracker) Create(filename string) Job {
	job := &Job{
		ID:          uuid.New(),
		Filename:    filename,
		Status:      JobStatusPending,
		SubmittedAt: t.now(),
	}

	t.mu.Lock()
	t.jobs[job.ID] = job
	t.mu.Unlock()

	return *job
}

// Complete records the result of a job
func (t *JobTracker) Complete(id uuid.UUID, result GenerationResult, archiveKey string) (Job, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok {
		return Job{}, ErrJobNotFound
	}

	completedAt := t.now()
	job.Status = JobStatusFailed
	if result.Success {
		job.Status = JobStatusCompleted
	}
	job.Result = &result
	job.ArchiveKey = archiveKey
	job.CompletedAt = &completedAt

	return *job, nil
}

// Get returns a snapshot of the job
func (t *JobTracker) Get(id uuid.UUID) (Job, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	job, ok := t.jobs[id]
	if !ok {
		return Job{}, ErrJobNotFound
	}
	return *job, nil
}
