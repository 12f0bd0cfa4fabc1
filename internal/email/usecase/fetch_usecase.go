package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	emaildomain "jobtrail-backend/internal/email/domain"
	"jobtrail-backend/internal/email/repository"
	imapclient "jobtrail-backend/pkg/imap"
	"jobtrail-backend/pkg/mailparse"
)

// MailConnection is one open mailbox session, scoped to a single fetch cycle.
type MailConnection interface {
	Search(since time.Time) ([]uint32, error)
	FetchHeaders(uids []uint32) (<-chan imapclient.RawHeader, error)
	Close() error
}

// MailConnector opens mailbox sessions.
type MailConnector interface {
	Connect(ctx context.Context, creds imapclient.Credentials) (MailConnection, error)
}

// HeaderParser converts raw header blocks into normalized headers.
type HeaderParser interface {
	Parse(raw []byte) (*mailparse.Header, error)
}

// Classifier assigns the company/application-status projection to a
// parsed header. The real classifier is an external collaborator; the
// default derives a company proxy from the sender domain.
type Classifier interface {
	Classify(sender, subject string) (companyName, applicationStatus string)
}

// NewIMAPConnector adapts the IMAP service to the MailConnector interface.
func NewIMAPConnector(svc *imapclient.Service) MailConnector {
	return imapConnector{svc: svc}
}

type imapConnector struct {
	svc *imapclient.Service
}

func (c imapConnector) Connect(ctx context.Context, creds imapclient.Credentials) (MailConnection, error) {
	conn, err := c.svc.Connect(ctx, creds)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// CycleState is the terminal outcome of one fetch cycle.
type CycleState string

const (
	CycleComplete CycleState = "complete"
	CyclePartial  CycleState = "partial_failure"
	CycleFailed   CycleState = "failed"
)

// CycleResult summarizes one finished fetch cycle.
type CycleResult struct {
	State        CycleState
	Stored       int
	Deduplicated int
	Failed       int
	Total        int
	Detail       string
}

// FetchOrchestrator drives one ingestion cycle per call: resolve the
// fetch window, search, fetch and parse headers through a bounded worker
// pool, insert each record as it parses, then advance the checkpoint.
type FetchOrchestrator struct {
	connector      MailConnector
	parser         HeaderParser
	recordRepo     repository.EmailRecordRepository
	checkpointRepo repository.CheckpointRepository
	mailboxRepo    repository.MailboxRepository
	classifier     Classifier
	workers        int
}

// NewFetchOrchestrator creates a new instance of FetchOrchestrator
func NewFetchOrchestrator(
	connector MailConnector,
	parser HeaderParser,
	recordRepo repository.EmailRecordRepository,
	checkpointRepo repository.CheckpointRepository,
	mailboxRepo repository.MailboxRepository,
	workers int,
) *FetchOrchestrator {
	if workers <= 0 {
		workers = 4
	}
	return &FetchOrchestrator{
		connector:      connector,
		parser:         parser,
		recordRepo:     recordRepo,
		checkpointRepo: checkpointRepo,
		mailboxRepo:    mailboxRepo,
		classifier:     senderDomainClassifier{},
		workers:        workers,
	}
}

// SetClassifier replaces the default sender-domain classifier.
func (o *FetchOrchestrator) SetClassifier(c Classifier) {
	if c != nil {
		o.classifier = c
	}
}

// RunFetch executes one fetch cycle for the mailbox. The optional start
// date resets the checkpoint when it lies before the current one; with
// neither a start date nor a checkpoint the cycle fails with
// ErrConfiguration. progress may be nil.
func (o *FetchOrchestrator) RunFetch(ctx context.Context, mailboxID string, startDate *time.Time, progress func(processed, total int)) (*CycleResult, error) {
	if progress == nil {
		progress = func(int, int) {}
	}

	mailbox, err := o.mailboxRepo.FindByID(mailboxID)
	if err != nil {
		return nil, err
	}
	if mailbox == nil {
		return nil, emaildomain.ErrMailboxNotFound
	}
	if mailbox.IMAPHost == "" {
		return nil, fmt.Errorf("%w: mailbox has no IMAP endpoint", emaildomain.ErrConfiguration)
	}

	since, baseline, err := o.resolveWindow(mailboxID, startDate)
	if err != nil {
		return nil, err
	}

	conn, err := o.connector.Connect(ctx, imapclient.Credentials{
		Host:     mailbox.IMAPHost,
		Port:     mailbox.IMAPPort,
		Username: mailbox.Address,
		Password: mailbox.IMAPPassword,
		UseTLS:   mailbox.IMAPUseTLS,
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.Printf("mailbox %s: close connection: %v", mailboxID, err)
		}
	}()

	uids, err := conn.Search(since)
	if err != nil {
		return nil, err
	}

	total := len(uids)
	progress(0, total)
	if total == 0 {
		// Empty success: zero results are not an error, and the
		// checkpoint stays where it is.
		return &CycleResult{State: CycleComplete, Total: 0}, nil
	}

	headers, err := conn.FetchHeaders(uids)
	if err != nil {
		return nil, err
	}

	var (
		mu        sync.Mutex
		stored    int
		deduped   int
		failed    int
		processed int
		maxSeen   *time.Time
	)

	var wg sync.WaitGroup
	for i := 0; i < o.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range headers {
				outcome, receivedAt := o.ingestOne(mailboxID, item)

				mu.Lock()
				switch outcome {
				case ingestFailed:
					failed++
				case ingestStored:
					stored++
				case ingestDeduplicated:
					deduped++
				}
				if outcome != ingestFailed && receivedAt != nil && (maxSeen == nil || receivedAt.After(*maxSeen)) {
					maxSeen = receivedAt
				}
				processed++
				done := processed
				mu.Unlock()
				progress(done, total)
			}
		}()
	}
	wg.Wait()

	succeeded := stored + deduped
	if succeeded == 0 && failed > 0 {
		return nil, fmt.Errorf("all %d messages failed during fetch", failed)
	}

	// Advance only past records that were durably stored, and never
	// backward past the pre-cycle baseline.
	if stored > 0 && maxSeen != nil && maxSeen.After(baseline) {
		if err := o.checkpointRepo.Advance(mailboxID, *maxSeen); err != nil {
			return nil, fmt.Errorf("advance checkpoint: %w", err)
		}
	}

	result := &CycleResult{
		State:        CycleComplete,
		Stored:       stored,
		Deduplicated: deduped,
		Failed:       failed,
		Total:        total,
	}
	if failed > 0 {
		result.State = CyclePartial
		result.Detail = fmt.Sprintf("%d of %d messages failed; stored %d", failed, total, stored)
	}
	return result, nil
}

// resolveWindow returns the search lower bound and the checkpoint
// baseline the cycle may advance from. An explicit start date wins the
// window and resets the checkpoint when it lies before it.
func (o *FetchOrchestrator) resolveWindow(mailboxID string, startDate *time.Time) (time.Time, time.Time, error) {
	cp, err := o.checkpointRepo.Get(mailboxID)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if startDate == nil {
		if cp == nil {
			return time.Time{}, time.Time{}, emaildomain.ErrConfiguration
		}
		return cp.LastFetchedAt, cp.LastFetchedAt, nil
	}

	if cp == nil {
		// First fetch: any stored record may create the checkpoint.
		return *startDate, time.Time{}, nil
	}
	if startDate.Before(cp.LastFetchedAt) {
		if err := o.checkpointRepo.Reset(mailboxID, *startDate); err != nil {
			return time.Time{}, time.Time{}, err
		}
		return *startDate, *startDate, nil
	}
	return *startDate, cp.LastFetchedAt, nil
}

type ingestOutcome int

const (
	ingestFailed ingestOutcome = iota
	ingestStored
	ingestDeduplicated
)

// ingestOne parses and stores a single fetched header. It reports the
// outcome and the record's timestamp; failures never abort the cycle.
func (o *FetchOrchestrator) ingestOne(mailboxID string, item imapclient.RawHeader) (ingestOutcome, *time.Time) {
	if item.Err != nil {
		log.Printf("mailbox %s: fetch message %d: %v", mailboxID, item.UID, item.Err)
		return ingestFailed, nil
	}

	header, err := o.parser.Parse(item.Raw)
	if err != nil {
		log.Printf("mailbox %s: parse message %d: %v", mailboxID, item.UID, err)
		return ingestFailed, nil
	}

	company, status := o.classifier.Classify(header.Sender, header.Subject)
	record := &emaildomain.EmailRecord{
		MailboxID:         mailboxID,
		Sender:            header.Sender,
		HasSender:         header.HasSender,
		Subject:           header.Subject,
		HasSubject:        header.HasSubject,
		ReceivedAt:        header.ReceivedAt,
		CompanyName:       company,
		ApplicationStatus: status,
	}

	inserted, err := o.recordRepo.Insert(record)
	if err != nil {
		log.Printf("mailbox %s: store message %d: %v", mailboxID, item.UID, err)
		return ingestFailed, nil
	}
	if inserted {
		return ingestStored, record.ReceivedAt
	}
	return ingestDeduplicated, record.ReceivedAt
}

// senderDomainClassifier is the default projection: the company proxy is
// the registrable label of the sender domain, the status is unknown
// until an external classifier fills it in.
type senderDomainClassifier struct{}

func (senderDomainClassifier) Classify(sender, _ string) (string, string) {
	return companyFromAddress(sender), "unknown"
}

func companyFromAddress(address string) string {
	at := strings.LastIndex(address, "@")
	if at < 0 || at == len(address)-1 {
		return "unknown"
	}
	labels := strings.Split(strings.ToLower(address[at+1:]), ".")
	if len(labels) < 2 {
		return "unknown"
	}
	return labels[len(labels)-2]
}
