package usecase

import (
	"errors"
	"strings"
	"testing"

	emaildomain "jobtrail-backend/internal/email/domain"
)

// fakeMailboxRepo is an in-memory MailboxRepository for allocator and
// orchestrator tests.
type fakeMailboxRepo struct {
	byUserID map[string]*emaildomain.TrackedMailbox
	taken    map[string]bool
}

func newFakeMailboxRepo() *fakeMailboxRepo {
	return &fakeMailboxRepo{
		byUserID: make(map[string]*emaildomain.TrackedMailbox),
		taken:    make(map[string]bool),
	}
}

func (r *fakeMailboxRepo) Create(mailbox *emaildomain.TrackedMailbox) error {
	r.byUserID[mailbox.UserID] = mailbox
	return nil
}

func (r *fakeMailboxRepo) FindByID(id string) (*emaildomain.TrackedMailbox, error) {
	for _, mb := range r.byUserID {
		if mb.ID == id {
			return mb, nil
		}
	}
	return nil, nil
}

func (r *fakeMailboxRepo) FindByUserID(userID string) (*emaildomain.TrackedMailbox, error) {
	return r.byUserID[userID], nil
}

func (r *fakeMailboxRepo) FindByTrackingAddress(address string) (*emaildomain.TrackedMailbox, error) {
	if r.taken[address] {
		return &emaildomain.TrackedMailbox{TrackingAddress: address}, nil
	}
	for _, mb := range r.byUserID {
		if mb.TrackingAddress == address {
			return mb, nil
		}
	}
	return nil, nil
}

func (r *fakeMailboxRepo) Update(mailbox *emaildomain.TrackedMailbox) error {
	r.byUserID[mailbox.UserID] = mailbox
	return nil
}

func (r *fakeMailboxRepo) UpdateForwardingStatus(id string, status emaildomain.ForwardingStatus) error {
	for _, mb := range r.byUserID {
		if mb.ID == id {
			mb.ForwardingState = status
			return nil
		}
	}
	return nil
}

func TestAllocate_IssuesAddress(t *testing.T) {
	repo := newFakeMailboxRepo()
	repo.Create(&emaildomain.TrackedMailbox{ID: "mb-1", UserID: "u-1", Address: "me@gmail.com"})

	alloc := NewAddressAllocator(repo, "track.example.com")
	addr, err := alloc.Allocate("u-1")
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}

	if !strings.HasPrefix(addr, "track+") || !strings.HasSuffix(addr, "@track.example.com") {
		t.Errorf("unexpected address format: %q", addr)
	}

	mb, _ := repo.FindByUserID("u-1")
	if mb.TrackingAddress != addr {
		t.Errorf("address not recorded on mailbox: %q vs %q", mb.TrackingAddress, addr)
	}
}

func TestAllocate_Idempotent(t *testing.T) {
	repo := newFakeMailboxRepo()
	repo.Create(&emaildomain.TrackedMailbox{ID: "mb-1", UserID: "u-1", Address: "me@gmail.com"})

	alloc := NewAddressAllocator(repo, "track.example.com")
	first, err := alloc.Allocate("u-1")
	if err != nil {
		t.Fatalf("first Allocate failed: %v", err)
	}
	second, err := alloc.Allocate("u-1")
	if err != nil {
		t.Fatalf("second Allocate failed: %v", err)
	}
	if first != second {
		t.Errorf("expected same address on re-allocation, got %q then %q", first, second)
	}
}

func TestAllocate_NoMailbox(t *testing.T) {
	alloc := NewAddressAllocator(newFakeMailboxRepo(), "track.example.com")

	if _, err := alloc.Allocate("u-1"); !errors.Is(err, emaildomain.ErrMailboxNotFound) {
		t.Fatalf("expected ErrMailboxNotFound, got %v", err)
	}
}

func TestAllocate_DistinctPerUser(t *testing.T) {
	repo := newFakeMailboxRepo()
	repo.Create(&emaildomain.TrackedMailbox{ID: "mb-1", UserID: "u-1", Address: "a@gmail.com"})
	repo.Create(&emaildomain.TrackedMailbox{ID: "mb-2", UserID: "u-2", Address: "b@gmail.com"})

	alloc := NewAddressAllocator(repo, "track.example.com")
	first, err := alloc.Allocate("u-1")
	if err != nil {
		t.Fatalf("Allocate u-1 failed: %v", err)
	}
	second, err := alloc.Allocate("u-2")
	if err != nil {
		t.Fatalf("Allocate u-2 failed: %v", err)
	}
	if first == second {
		t.Errorf("two users got the same tracking address %q", first)
	}
}
