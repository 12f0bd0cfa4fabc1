package domain

import (
	"strings"
	"time"
)

// Provider identifies the mail provider behind a registered address.
type Provider string

const (
	ProviderGmail   Provider = "gmail"
	ProviderOutlook Provider = "outlook"
	ProviderOther   Provider = "other"
)

// ForwardingStatus tracks how far forwarding setup has progressed for a mailbox.
type ForwardingStatus string

const (
	ForwardingNotStarted ForwardingStatus = "not_started"
	ForwardingPending    ForwardingStatus = "pending"
	ForwardingActive     ForwardingStatus = "active"
	ForwardingError      ForwardingStatus = "error"
)

// TrackedMailbox is the per-user mailbox registration. The tracking
// address is immutable once issued; forwarding status is mutated only by
// the allocator and by forwarding-setup outcomes.
type TrackedMailbox struct {
	ID              string           `json:"id" gorm:"primaryKey"`
	UserID          string           `json:"user_id" gorm:"uniqueIndex;not null"`
	Address         string           `json:"address" gorm:"not null"`
	TrackingAddress string           `json:"tracking_address" gorm:"uniqueIndex"`
	Provider        Provider         `json:"provider" gorm:"not null"`
	ForwardingState ForwardingStatus `json:"forwarding_status" gorm:"column:forwarding_status;not null;default:not_started"`

	// IMAP credentials for mailboxes fetched directly rather than via
	// forwarding. Never serialized.
	IMAPHost     string `json:"-"`
	IMAPPort     int    `json:"-"`
	IMAPPassword string `json:"-"`
	IMAPUseTLS   bool   `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DetectProvider classifies an email address by its domain.
func DetectProvider(address string) Provider {
	addr := strings.ToLower(strings.TrimSpace(address))
	switch {
	case strings.HasSuffix(addr, "@gmail.com"), strings.HasSuffix(addr, "@googlemail.com"):
		return ProviderGmail
	case strings.HasSuffix(addr, "@outlook.com"), strings.HasSuffix(addr, "@hotmail.com"), strings.HasSuffix(addr, "@live.com"):
		return ProviderOutlook
	default:
		return ProviderOther
	}
}
