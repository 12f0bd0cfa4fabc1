package domain

import "time"

// EmailRecord is one ingested message header, stored append-only.
// Sender and Subject distinguish a missing header field from a present
// but empty one; ReceivedAt is nil when the Date header was missing or
// unparsable, never defaulted to the ingestion time.
type EmailRecord struct {
	ID        string `json:"id" gorm:"primaryKey"`
	MailboxID string `json:"mailbox_id" gorm:"index;not null;uniqueIndex:idx_record_identity"`

	Sender     string `json:"sender" gorm:"uniqueIndex:idx_record_identity"`
	HasSender  bool   `json:"has_sender"`
	Subject    string `json:"subject" gorm:"uniqueIndex:idx_record_identity"`
	HasSubject bool   `json:"has_subject"`

	ReceivedAt *time.Time `json:"received_at" gorm:"uniqueIndex:idx_record_identity"`

	// Downstream classification columns. Filled with a sender-domain
	// proxy at ingestion time; an external classifier may overwrite.
	CompanyName       string `json:"company_name"`
	ApplicationStatus string `json:"application_status"`

	CreatedAt time.Time `json:"created_at"`
}
