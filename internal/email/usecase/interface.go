package usecase

import (
	"context"
	"io"
	"time"

	emaildomain "jobtrail-backend/internal/email/domain"
	emaildto "jobtrail-backend/internal/email/dto"
)

// EmailUsecase defines the interface for email ingestion use cases
type EmailUsecase interface {
	// RegisterMailbox creates a user's tracked mailbox and issues its
	// tracking address
	RegisterMailbox(userID string, req *emaildto.RegisterMailboxRequest) (*emaildomain.TrackedMailbox, error)
	// BootstrapMailbox registers a mailbox with defaults at signup time
	BootstrapMailbox(userID, address string)
	// GetMailbox returns the user's tracked mailbox
	GetMailbox(userID string) (*emaildomain.TrackedMailbox, error)
	// GrantForwarding installs the Gmail forwarding filter for the
	// user's tracking address
	GrantForwarding(ctx context.Context, userID, accessToken, refreshToken string) error
	// TriggerFetch starts one asynchronous ingestion job for the
	// user's mailbox
	TriggerFetch(userID string, startDate *time.Time) (jobID string, err error)
	// PollJob reports the current state of an ingestion job
	PollJob(jobID string) (*emaildto.JobStatusResponse, error)
	// ListRecords returns stored records, newest first, optionally
	// narrowed by a fuzzy query over company, subject and sender
	ListRecords(userID, query string) ([]*emaildto.EmailRecordResponse, error)
	// ExportCSV writes records as delimited text in a fixed column order
	ExportCSV(userID string, w io.Writer) error
}
