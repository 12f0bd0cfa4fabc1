package usecase

import (
	"sync"
	"time"

	emaildomain "jobtrail-backend/internal/email/domain"

	"github.com/google/uuid"
)

// JobTracker owns the ingestion job lifecycle. It enforces at most one
// live job per mailbox with an atomic check-and-set under its lock, and
// keeps terminal results around for pollers until the next job for the
// same mailbox supersedes them.
type JobTracker struct {
	mu        sync.Mutex
	byID      map[string]*emaildomain.IngestionJob
	byMailbox map[string]*emaildomain.IngestionJob
}

// NewJobTracker creates a new instance of JobTracker
func NewJobTracker() *JobTracker {
	return &JobTracker{
		byID:      make(map[string]*emaildomain.IngestionJob),
		byMailbox: make(map[string]*emaildomain.IngestionJob),
	}
}

// Start registers a new pending job for the mailbox. A mailbox with a
// job still pending or running rejects the request with ErrAlreadyRunning.
func (t *JobTracker) Start(mailboxID string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if current := t.byMailbox[mailboxID]; current != nil && !current.Terminal() {
		return "", emaildomain.ErrAlreadyRunning
	}

	// Supersede the previous terminal job for this mailbox.
	if previous := t.byMailbox[mailboxID]; previous != nil {
		delete(t.byID, previous.JobID)
	}

	job := &emaildomain.IngestionJob{
		JobID:     uuid.New().String(),
		MailboxID: mailboxID,
		State:     emaildomain.JobPending,
		StartedAt: time.Now(),
	}
	t.byID[job.JobID] = job
	t.byMailbox[mailboxID] = job
	return job.JobID, nil
}

// Poll returns a snapshot of the job. It is read-only and safe to call
// at any frequency; a completed job keeps returning the same terminal
// result until a new job supersedes it.
func (t *JobTracker) Poll(jobID string) (*emaildomain.IngestionJob, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.byID[jobID]
	if !ok {
		return nil, emaildomain.ErrJobNotFound
	}
	snapshot := *job
	return &snapshot, nil
}

// MarkRunning transitions a pending job to running.
func (t *JobTracker) MarkRunning(jobID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if job, ok := t.byID[jobID]; ok && job.State == emaildomain.JobPending {
		job.State = emaildomain.JobRunning
	}
}

// SetProgress updates the processed/total counters of a running job.
func (t *JobTracker) SetProgress(jobID string, processed, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if job, ok := t.byID[jobID]; ok && !job.Terminal() {
		job.Processed = processed
		job.Total = total
	}
}

// Complete finishes the job successfully. A non-empty detail records a
// partial failure without changing the terminal state.
func (t *JobTracker) Complete(jobID, redirectTarget, detail string) {
	t.finish(jobID, emaildomain.JobComplete, redirectTarget, detail)
}

// Fail finishes the job with a stable error detail.
func (t *JobTracker) Fail(jobID, detail string) {
	t.finish(jobID, emaildomain.JobError, "", detail)
}

func (t *JobTracker) finish(jobID string, state emaildomain.JobState, redirectTarget, detail string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.byID[jobID]
	if !ok || job.Terminal() {
		return
	}
	job.State = state
	job.RedirectTarget = redirectTarget
	job.ErrorDetail = detail
	job.FinishedAt = time.Now()
}
