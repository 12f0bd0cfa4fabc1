package repository

import emaildomain "jobtrail-backend/internal/email/domain"

// MailboxRepository defines the interface for tracked mailbox operations
type MailboxRepository interface {
	// Create a new tracked mailbox
	Create(mailbox *emaildomain.TrackedMailbox) error
	// Find a mailbox by its ID, nil when not found
	FindByID(id string) (*emaildomain.TrackedMailbox, error)
	// Find the mailbox owned by a user, nil when not found
	FindByUserID(userID string) (*emaildomain.TrackedMailbox, error)
	// Find a mailbox by tracking address, nil when not found; used for
	// allocator collision checks
	FindByTrackingAddress(address string) (*emaildomain.TrackedMailbox, error)
	// Update a mailbox
	Update(mailbox *emaildomain.TrackedMailbox) error
	// Update only the forwarding status
	UpdateForwardingStatus(id string, status emaildomain.ForwardingStatus) error
}
