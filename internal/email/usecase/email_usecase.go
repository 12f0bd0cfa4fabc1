package usecase

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	emaildomain "jobtrail-backend/internal/email/domain"
	emaildto "jobtrail-backend/internal/email/dto"
	"jobtrail-backend/internal/email/repository"
	"jobtrail-backend/pkg/config"
	"jobtrail-backend/pkg/fuzzy"
	"jobtrail-backend/pkg/gmail"
	imapclient "jobtrail-backend/pkg/imap"
)

// emailUsecase implements EmailUsecase interface
type emailUsecase struct {
	mailboxRepo  repository.MailboxRepository
	recordRepo   repository.EmailRecordRepository
	allocator    *AddressAllocator
	tracker      *JobTracker
	orchestrator *FetchOrchestrator
	gmailService *gmail.Service
	config       *config.Config
}

// NewEmailUsecase creates a new instance of emailUsecase
func NewEmailUsecase(
	mailboxRepo repository.MailboxRepository,
	recordRepo repository.EmailRecordRepository,
	allocator *AddressAllocator,
	tracker *JobTracker,
	orchestrator *FetchOrchestrator,
	gmailService *gmail.Service,
	cfg *config.Config,
) EmailUsecase {
	return &emailUsecase{
		mailboxRepo:  mailboxRepo,
		recordRepo:   recordRepo,
		allocator:    allocator,
		tracker:      tracker,
		orchestrator: orchestrator,
		gmailService: gmailService,
		config:       cfg,
	}
}

func (u *emailUsecase) RegisterMailbox(userID string, req *emaildto.RegisterMailboxRequest) (*emaildomain.TrackedMailbox, error) {
	existing, err := u.mailboxRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}

	useTLS := true
	if req.IMAPUseTLS != nil {
		useTLS = *req.IMAPUseTLS
	}
	port := req.IMAPPort
	if port == 0 && req.IMAPHost != "" {
		port = 993
	}

	if existing != nil {
		// Re-registering updates the mailbox endpoint; the tracking
		// address is immutable once issued.
		existing.Address = req.Address
		existing.Provider = emaildomain.DetectProvider(req.Address)
		existing.IMAPHost = req.IMAPHost
		existing.IMAPPort = port
		existing.IMAPPassword = req.IMAPPassword
		existing.IMAPUseTLS = useTLS
		if err := u.mailboxRepo.Update(existing); err != nil {
			return nil, err
		}
	} else {
		mailbox := &emaildomain.TrackedMailbox{
			UserID:          userID,
			Address:         req.Address,
			Provider:        emaildomain.DetectProvider(req.Address),
			ForwardingState: emaildomain.ForwardingNotStarted,
			IMAPHost:        req.IMAPHost,
			IMAPPort:        port,
			IMAPPassword:    req.IMAPPassword,
			IMAPUseTLS:      useTLS,
		}
		if err := u.mailboxRepo.Create(mailbox); err != nil {
			return nil, err
		}
	}

	if _, err := u.allocator.Allocate(userID); err != nil {
		return nil, err
	}
	return u.mailboxRepo.FindByUserID(userID)
}

func (u *emailUsecase) BootstrapMailbox(userID, address string) {
	mailbox, err := u.RegisterMailbox(userID, &emaildto.RegisterMailboxRequest{Address: address})
	if err != nil {
		log.Printf("user %s: bootstrap mailbox: %v", userID, err)
		return
	}
	log.Printf("user %s: mailbox registered with tracking address %s", userID, mailbox.TrackingAddress)
}

func (u *emailUsecase) GetMailbox(userID string) (*emaildomain.TrackedMailbox, error) {
	mailbox, err := u.mailboxRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}
	if mailbox == nil {
		return nil, emaildomain.ErrMailboxNotFound
	}
	return mailbox, nil
}

func (u *emailUsecase) GrantForwarding(ctx context.Context, userID, accessToken, refreshToken string) error {
	mailbox, err := u.GetMailbox(userID)
	if err != nil {
		return err
	}
	if mailbox.Provider != emaildomain.ProviderGmail {
		return fmt.Errorf("forwarding grants are only supported for gmail; %s requires manual forwarding setup", mailbox.Provider)
	}
	if mailbox.TrackingAddress == "" {
		return errors.New("mailbox has no tracking address yet")
	}

	if err := u.mailboxRepo.UpdateForwardingStatus(mailbox.ID, emaildomain.ForwardingPending); err != nil {
		return err
	}

	err = u.gmailService.CreateForwardingFilter(ctx, accessToken, refreshToken, mailbox.TrackingAddress, nil)
	if err != nil {
		if statusErr := u.mailboxRepo.UpdateForwardingStatus(mailbox.ID, emaildomain.ForwardingError); statusErr != nil {
			log.Printf("user %s: update forwarding status: %v", userID, statusErr)
		}
		return err
	}
	return u.mailboxRepo.UpdateForwardingStatus(mailbox.ID, emaildomain.ForwardingActive)
}

func (u *emailUsecase) TriggerFetch(userID string, startDate *time.Time) (string, error) {
	mailbox, err := u.GetMailbox(userID)
	if err != nil {
		return "", err
	}

	jobID, err := u.tracker.Start(mailbox.ID)
	if err != nil {
		return "", err
	}

	go u.runJob(jobID, mailbox.ID, startDate)
	return jobID, nil
}

// runJob executes one fetch cycle in the background and records its
// terminal state on the job.
func (u *emailUsecase) runJob(jobID, mailboxID string, startDate *time.Time) {
	u.tracker.MarkRunning(jobID)
	log.Printf("mailbox %s: ingestion job %s started", mailboxID, jobID)

	ctx := context.Background()
	result, err := u.orchestrator.RunFetch(ctx, mailboxID, startDate, func(processed, total int) {
		u.tracker.SetProgress(jobID, processed, total)
	})
	if err != nil {
		detail := detailForError(err)
		log.Printf("mailbox %s: ingestion job %s failed: %v", mailboxID, jobID, err)
		u.tracker.Fail(jobID, detail)
		return
	}

	redirect := u.config.AppURL + "/dashboard"
	u.tracker.Complete(jobID, redirect, result.Detail)
	log.Printf("mailbox %s: ingestion job %s finished: %s (stored %d, deduplicated %d, failed %d of %d)",
		mailboxID, jobID, result.State, result.Stored, result.Deduplicated, result.Failed, result.Total)
}

func (u *emailUsecase) PollJob(jobID string) (*emaildto.JobStatusResponse, error) {
	job, err := u.tracker.Poll(jobID)
	if err != nil {
		return nil, err
	}
	return &emaildto.JobStatusResponse{
		State:          job.State,
		RedirectTarget: job.RedirectTarget,
		Detail:         job.ErrorDetail,
		Processed:      job.Processed,
		Total:          job.Total,
	}, nil
}

func (u *emailUsecase) ListRecords(userID, query string) ([]*emaildto.EmailRecordResponse, error) {
	mailbox, err := u.GetMailbox(userID)
	if err != nil {
		return nil, err
	}

	records, err := u.recordRepo.ListByMailbox(mailbox.ID)
	if err != nil {
		return nil, err
	}

	// No results is an empty success, not an error.
	out := make([]*emaildto.EmailRecordResponse, 0, len(records))
	for _, r := range records {
		if query != "" && !fuzzy.MatchRecord(query, r.CompanyName, r.Subject, r.Sender) {
			continue
		}
		out = append(out, &emaildto.EmailRecordResponse{
			ID:                r.ID,
			CompanyName:       r.CompanyName,
			ApplicationStatus: r.ApplicationStatus,
			ReceivedAt:        r.ReceivedAt,
			Subject:           r.Subject,
			EmailFrom:         r.Sender,
		})
	}
	return out, nil
}

// csvColumns is the fixed export column order.
var csvColumns = []string{"id", "company_name", "application_status", "received_at", "subject", "email_from"}

func (u *emailUsecase) ExportCSV(userID string, w io.Writer) error {
	records, err := u.ListRecords(userID, "")
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvColumns); err != nil {
		return err
	}
	for _, r := range records {
		receivedAt := ""
		if r.ReceivedAt != nil {
			receivedAt = r.ReceivedAt.UTC().Format(time.RFC3339)
		}
		row := []string{r.ID, r.CompanyName, r.ApplicationStatus, receivedAt, r.Subject, r.EmailFrom}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// detailForError maps internal errors to the stable detail strings shown
// to polling clients; raw protocol errors are never passed through.
func detailForError(err error) string {
	switch {
	case errors.Is(err, emaildomain.ErrConfiguration):
		return "no start date given and no previous fetch found"
	case errors.Is(err, emaildomain.ErrMailboxNotFound):
		return "no mailbox registered"
	case errors.Is(err, imapclient.ErrAuth):
		return "mailbox authentication failed"
	case errors.Is(err, imapclient.ErrTimeout):
		return "mailbox connection timed out"
	case errors.Is(err, imapclient.ErrNetwork):
		return "could not reach the mailbox server"
	case errors.Is(err, imapclient.ErrConnectionLost):
		return "connection to the mailbox was lost"
	case errors.Is(err, imapclient.ErrProtocol):
		return "the mailbox server returned an unexpected response"
	default:
		return "email ingestion failed"
	}
}
