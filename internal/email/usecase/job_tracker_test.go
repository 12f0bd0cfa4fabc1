package usecase

import (
	"errors"
	"sync"
	"testing"

	emaildomain "jobtrail-backend/internal/email/domain"
)

func TestJobTracker_Lifecycle(t *testing.T) {
	tracker := NewJobTracker()

	jobID, err := tracker.Start("mb-1")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	job, err := tracker.Poll(jobID)
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if job.State != emaildomain.JobPending {
		t.Errorf("expected pending, got %s", job.State)
	}

	tracker.MarkRunning(jobID)
	tracker.SetProgress(jobID, 3, 10)

	job, _ = tracker.Poll(jobID)
	if job.State != emaildomain.JobRunning {
		t.Errorf("expected running, got %s", job.State)
	}
	if job.Processed != 3 || job.Total != 10 {
		t.Errorf("expected 3/10, got %d/%d", job.Processed, job.Total)
	}

	tracker.Complete(jobID, "/dashboard", "")

	job, _ = tracker.Poll(jobID)
	if job.State != emaildomain.JobComplete {
		t.Errorf("expected complete, got %s", job.State)
	}
	if job.RedirectTarget != "/dashboard" {
		t.Errorf("expected redirect target, got %q", job.RedirectTarget)
	}
}

func TestJobTracker_RejectsConcurrentStart(t *testing.T) {
	tracker := NewJobTracker()

	if _, err := tracker.Start("mb-1"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if _, err := tracker.Start("mb-1"); !errors.Is(err, emaildomain.ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}

	// A different mailbox is unaffected.
	if _, err := tracker.Start("mb-2"); err != nil {
		t.Fatalf("Start for other mailbox failed: %v", err)
	}
}

func TestJobTracker_StartRace(t *testing.T) {
	tracker := NewJobTracker()

	const attempts = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	started := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := tracker.Start("mb-1"); err == nil {
				mu.Lock()
				started++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if started != 1 {
		t.Fatalf("expected exactly one job to start, got %d", started)
	}
}

func TestJobTracker_TerminalResultStable(t *testing.T) {
	tracker := NewJobTracker()

	jobID, _ := tracker.Start("mb-1")
	tracker.Fail(jobID, "mailbox authentication failed")

	// Late progress and finish calls must not alter the terminal result.
	tracker.SetProgress(jobID, 5, 5)
	tracker.Complete(jobID, "/dashboard", "")

	for i := 0; i < 3; i++ {
		job, err := tracker.Poll(jobID)
		if err != nil {
			t.Fatalf("Poll failed: %v", err)
		}
		if job.State != emaildomain.JobError {
			t.Fatalf("expected error state, got %s", job.State)
		}
		if job.ErrorDetail != "mailbox authentication failed" {
			t.Fatalf("expected stable detail, got %q", job.ErrorDetail)
		}
		if job.Processed != 0 {
			t.Fatalf("terminal progress should be frozen, got %d", job.Processed)
		}
	}
}

func TestJobTracker_NewJobSupersedesOldResult(t *testing.T) {
	tracker := NewJobTracker()

	first, _ := tracker.Start("mb-1")
	tracker.Complete(first, "/dashboard", "")

	second, err := tracker.Start("mb-1")
	if err != nil {
		t.Fatalf("Start after terminal job failed: %v", err)
	}

	if _, err := tracker.Poll(first); !errors.Is(err, emaildomain.ErrJobNotFound) {
		t.Errorf("expected superseded job to be gone, got %v", err)
	}
	if _, err := tracker.Poll(second); err != nil {
		t.Errorf("Poll of new job failed: %v", err)
	}
}

func TestJobTracker_PollUnknownJob(t *testing.T) {
	tracker := NewJobTracker()

	if _, err := tracker.Poll("nope"); !errors.Is(err, emaildomain.ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}
