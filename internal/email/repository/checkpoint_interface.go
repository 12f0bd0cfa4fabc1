package repository

import (
	"time"

	emaildomain "jobtrail-backend/internal/email/domain"
)

// CheckpointRepository defines the interface for fetch checkpoint operations
type CheckpointRepository interface {
	// Get the checkpoint for a mailbox, nil when none exists yet
	Get(mailboxID string) (*emaildomain.FetchCheckpoint, error)
	// Advance moves the checkpoint forward, creating it on first use.
	// Moving backward fails with ErrCheckpointRegressed; monotonicity is
	// enforced here, not assumed of callers.
	Advance(mailboxID string, ts time.Time) error
	// Reset overwrites the checkpoint with a user-chosen start date.
	// This is the only sanctioned way to move it backward.
	Reset(mailboxID string, ts time.Time) error
}
