package usecase

import (
	"fmt"
	"strings"

	emaildomain "jobtrail-backend/internal/email/domain"
	"jobtrail-backend/internal/email/repository"

	"github.com/google/uuid"
)

const allocatorMaxAttempts = 5

// AddressAllocator mints the per-user tracking address. Allocation is
// idempotent: a user that already holds an address gets the same one back.
type AddressAllocator struct {
	mailboxRepo repository.MailboxRepository
	domain      string
}

// NewAddressAllocator creates a new instance of AddressAllocator
func NewAddressAllocator(mailboxRepo repository.MailboxRepository, domain string) *AddressAllocator {
	return &AddressAllocator{
		mailboxRepo: mailboxRepo,
		domain:      domain,
	}
}

// Allocate assigns a tracking address to the user's mailbox and records
// it. Candidates are collision-checked against the store before being
// issued.
func (a *AddressAllocator) Allocate(userID string) (string, error) {
	mailbox, err := a.mailboxRepo.FindByUserID(userID)
	if err != nil {
		return "", err
	}
	if mailbox == nil {
		return "", emaildomain.ErrMailboxNotFound
	}
	if mailbox.TrackingAddress != "" {
		return mailbox.TrackingAddress, nil
	}

	for i := 0; i < allocatorMaxAttempts; i++ {
		candidate := fmt.Sprintf("track+%s@%s", a.token(), a.domain)

		existing, err := a.mailboxRepo.FindByTrackingAddress(candidate)
		if err != nil {
			return "", err
		}
		if existing != nil {
			continue
		}

		mailbox.TrackingAddress = candidate
		if err := a.mailboxRepo.Update(mailbox); err != nil {
			return "", err
		}
		return candidate, nil
	}
	return "", fmt.Errorf("could not allocate a unique tracking address for user %s", userID)
}

func (a *AddressAllocator) token() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}
