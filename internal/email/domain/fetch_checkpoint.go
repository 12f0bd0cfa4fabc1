package domain

import "time"

// CursorStrategy names how the fetch window lower bound is derived.
type CursorStrategy string

const (
	CursorSinceDate CursorStrategy = "since_date"
	CursorSinceUID  CursorStrategy = "since_uid"
)

// FetchCheckpoint records the newest durably stored message timestamp
// per mailbox. It only moves forward, except through an explicit Reset
// when the user picks a new start date.
type FetchCheckpoint struct {
	MailboxID      string         `json:"mailbox_id" gorm:"primaryKey"`
	LastFetchedAt  time.Time      `json:"last_fetched_at" gorm:"not null"`
	CursorStrategy CursorStrategy `json:"cursor_strategy" gorm:"not null;default:since_date"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
