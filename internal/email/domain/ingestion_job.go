package domain

import "time"

// JobState is the client-visible lifecycle of one ingestion job.
type JobState string

const (
	JobPending  JobState = "pending"
	JobRunning  JobState = "running"
	JobComplete JobState = "complete"
	JobError    JobState = "error"
)

// IngestionJob tracks one fetch cycle for a mailbox. At most one job per
// mailbox is live at a time; a finished job keeps returning the same
// terminal result to pollers until the next job supersedes it.
type IngestionJob struct {
	JobID          string    `json:"job_id"`
	MailboxID      string    `json:"mailbox_id"`
	State          JobState  `json:"state"`
	RedirectTarget string    `json:"redirect_target,omitempty"`
	ErrorDetail    string    `json:"detail,omitempty"`
	Processed      int       `json:"processed_emails"`
	Total          int       `json:"total_emails"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at,omitempty"`
}

// Terminal reports whether the job reached a final state.
func (j *IngestionJob) Terminal() bool {
	return j.State == JobComplete || j.State == JobError
}
