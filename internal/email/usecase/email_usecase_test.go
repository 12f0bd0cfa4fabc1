package usecase

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	emaildomain "jobtrail-backend/internal/email/domain"
	emaildto "jobtrail-backend/internal/email/dto"
	"jobtrail-backend/pkg/config"
)

func newUsecaseFixture(t *testing.T) (EmailUsecase, *fakeMailboxRepo, *fakeRecordRepo) {
	t.Helper()

	mailboxes := newFakeMailboxRepo()
	records := &fakeRecordRepo{}
	allocator := NewAddressAllocator(mailboxes, "track.example.com")
	tracker := NewJobTracker()

	uc := NewEmailUsecase(mailboxes, records, allocator, tracker, nil, nil, &config.Config{AppURL: "http://localhost:3000"})
	return uc, mailboxes, records
}

func seedRecords(t *testing.T, records *fakeRecordRepo) {
	t.Helper()

	early := ts(5)
	late := ts(15)
	for _, r := range []*emaildomain.EmailRecord{
		{ID: "r-1", MailboxID: "mb-1", Sender: "hr@acme.com", HasSender: true, Subject: "Application received", HasSubject: true, ReceivedAt: &late, CompanyName: "acme", ApplicationStatus: "unknown"},
		{ID: "r-2", MailboxID: "mb-1", Sender: "jobs@globex.com", HasSender: true, Subject: "Interview invite", HasSubject: true, ReceivedAt: &early, CompanyName: "globex", ApplicationStatus: "unknown"},
		{ID: "r-3", MailboxID: "mb-1", Sender: "noreply@initech.io", HasSender: true, Subject: "undated followup", HasSubject: true, CompanyName: "initech", ApplicationStatus: "unknown"},
	} {
		if _, err := records.Insert(r); err != nil {
			t.Fatalf("seed Insert failed: %v", err)
		}
	}
}

func TestListRecords_EmptySuccess(t *testing.T) {
	uc, mailboxes, _ := newUsecaseFixture(t)
	mailboxes.Create(&emaildomain.TrackedMailbox{ID: "mb-1", UserID: "u-1", Address: "me@gmail.com"})

	out, err := uc.ListRecords("u-1", "")
	if err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}
	if out == nil {
		t.Fatal("expected empty slice, not nil")
	}
	if len(out) != 0 {
		t.Errorf("expected no records, got %d", len(out))
	}
}

func TestListRecords_NoMailbox(t *testing.T) {
	uc, _, _ := newUsecaseFixture(t)

	if _, err := uc.ListRecords("u-1", ""); !errors.Is(err, emaildomain.ErrMailboxNotFound) {
		t.Fatalf("expected ErrMailboxNotFound, got %v", err)
	}
}

func TestListRecords_FuzzyQuery(t *testing.T) {
	uc, mailboxes, records := newUsecaseFixture(t)
	mailboxes.Create(&emaildomain.TrackedMailbox{ID: "mb-1", UserID: "u-1", Address: "me@gmail.com"})
	seedRecords(t, records)

	out, err := uc.ListRecords("u-1", "globex")
	if err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}
	if len(out) != 1 || out[0].CompanyName != "globex" {
		t.Fatalf("expected the globex record, got %+v", out)
	}

	all, err := uc.ListRecords("u-1", "")
	if err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected all records without a query, got %d", len(all))
	}
}

func TestExportCSV(t *testing.T) {
	uc, mailboxes, records := newUsecaseFixture(t)
	mailboxes.Create(&emaildomain.TrackedMailbox{ID: "mb-1", UserID: "u-1", Address: "me@gmail.com"})
	seedRecords(t, records)

	var buf bytes.Buffer
	if err := uc.ExportCSV("u-1", &buf); err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse CSV: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d", len(rows))
	}

	wantHeader := []string{"id", "company_name", "application_status", "received_at", "subject", "email_from"}
	for i, col := range wantHeader {
		if rows[0][i] != col {
			t.Errorf("header column %d = %q, want %q", i, rows[0][i], col)
		}
	}

	// Rows carry RFC 3339 timestamps, empty when the record is undated.
	byID := map[string][]string{}
	for _, row := range rows[1:] {
		byID[row[0]] = row
	}
	if got := byID["r-1"][3]; got != ts(15).Format(time.RFC3339) {
		t.Errorf("r-1 received_at = %q", got)
	}
	if got := byID["r-3"][3]; got != "" {
		t.Errorf("undated record should export an empty timestamp, got %q", got)
	}
}

func TestExportCSV_NoMailbox(t *testing.T) {
	uc, _, _ := newUsecaseFixture(t)

	var buf bytes.Buffer
	if err := uc.ExportCSV("u-1", &buf); !errors.Is(err, emaildomain.ErrMailboxNotFound) {
		t.Fatalf("expected ErrMailboxNotFound, got %v", err)
	}
}

func TestRegisterMailbox_IssuesTrackingAddress(t *testing.T) {
	uc, _, _ := newUsecaseFixture(t)

	mb, err := uc.RegisterMailbox("u-1", &emaildto.RegisterMailboxRequest{Address: "me@gmail.com"})
	if err != nil {
		t.Fatalf("RegisterMailbox failed: %v", err)
	}
	if mb.Provider != emaildomain.ProviderGmail {
		t.Errorf("expected gmail provider, got %s", mb.Provider)
	}
	if mb.TrackingAddress == "" {
		t.Error("expected a tracking address to be issued")
	}

	// Re-registering keeps the issued address.
	again, err := uc.RegisterMailbox("u-1", &emaildto.RegisterMailboxRequest{Address: "me@gmail.com"})
	if err != nil {
		t.Fatalf("second RegisterMailbox failed: %v", err)
	}
	if again.TrackingAddress != mb.TrackingAddress {
		t.Errorf("tracking address changed on re-registration: %q vs %q", again.TrackingAddress, mb.TrackingAddress)
	}
}
