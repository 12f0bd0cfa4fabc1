package dto

import (
	"time"

	emaildomain "jobtrail-backend/internal/email/domain"
)

type RegisterMailboxRequest struct {
	Address      string `json:"address" binding:"required,email"`
	IMAPHost     string `json:"imap_host"`
	IMAPPort     int    `json:"imap_port"`
	IMAPPassword string `json:"imap_password"`
	IMAPUseTLS   *bool  `json:"imap_use_tls"`
}

type MailboxResponse struct {
	Mailbox *emaildomain.TrackedMailbox `json:"mailbox"`
}

type GrantForwardingRequest struct {
	AccessToken  string `json:"access_token" binding:"required"`
	RefreshToken string `json:"refresh_token"`
}

type TriggerFetchRequest struct {
	// StartDate optionally re-anchors the fetch window, formatted
	// 2006-01-02.
	StartDate string `json:"start_date"`
}

type TriggerFetchResponse struct {
	JobID string `json:"job_id"`
}

type JobStatusResponse struct {
	State          emaildomain.JobState `json:"state"`
	RedirectTarget string               `json:"redirect_target,omitempty"`
	Detail         string               `json:"detail,omitempty"`
	Processed      int                  `json:"processed_emails"`
	Total          int                  `json:"total_emails"`
}

// EmailRecordResponse is the user-facing projection of a stored record.
type EmailRecordResponse struct {
	ID                string     `json:"id"`
	CompanyName       string     `json:"company_name"`
	ApplicationStatus string     `json:"application_status"`
	ReceivedAt        *time.Time `json:"received_at"`
	Subject           string     `json:"subject"`
	EmailFrom         string     `json:"email_from"`
}

type EmailRecordsResponse struct {
	Emails []*EmailRecordResponse `json:"emails"`
	Total  int                    `json:"total"`
}
