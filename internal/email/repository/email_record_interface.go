package repository

import emaildomain "jobtrail-backend/internal/email/domain"

// EmailRecordRepository defines the interface for the append-only record store
type EmailRecordRepository interface {
	// Insert stores a record. Re-inserting the same logical record
	// (mailbox_id, sender, subject, received_at) is a no-op; the bool
	// reports whether a new row was written.
	Insert(record *emaildomain.EmailRecord) (inserted bool, err error)
	// List all records for a mailbox, newest received_at first; records
	// without a timestamp sort last
	ListByMailbox(mailboxID string) ([]*emaildomain.EmailRecord, error)
	// Count records for a mailbox
	CountByMailbox(mailboxID string) (int64, error)
}
