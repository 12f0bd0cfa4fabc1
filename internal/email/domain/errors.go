package domain

import "errors"

var (
	// ErrConfiguration means a fetch had no usable start point: the
	// mailbox has no checkpoint and the request carried no start date.
	ErrConfiguration = errors.New("no checkpoint and no start date configured")

	// ErrAlreadyRunning rejects a fetch trigger for a mailbox that
	// already has a live ingestion job.
	ErrAlreadyRunning = errors.New("an ingestion job is already running for this mailbox")

	// ErrJobNotFound is returned when polling an unknown or superseded job.
	ErrJobNotFound = errors.New("ingestion job not found")

	// ErrCheckpointRegressed guards checkpoint monotonicity at the store.
	ErrCheckpointRegressed = errors.New("checkpoint may not move backward")

	// ErrMailboxNotFound is returned when a user has no registered mailbox.
	ErrMailboxNotFound = errors.New("no mailbox registered for user")
)
