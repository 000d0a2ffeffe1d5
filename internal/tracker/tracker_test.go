package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/jobsai/shortlister/internal/candidate"
)

// stubSender records deliveries and fails the addresses it is told to fail.
type stubSender struct {
	mu       sync.Mutex
	sent     []string
	failFor  map[string]int
	attempts map[string]int
}

func newStubSender() *stubSender {
	return &stubSender{
		failFor:  make(map[string]int),
		attempts: make(map[string]int),
	}
}

func (s *stubSender) Send(_ context.Context, to, _, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempts[to]++
	if remaining := s.failFor[to]; remaining > 0 {
		s.failFor[to] = remaining - 1
		return fmt.Errorf("smtp rejected %s", to)
	}
	s.sent = append(s.sent, to)
	return nil
}

func recompose(c *candidate.Candidate) {
	c.FinalScore = c.ATSScore / 10
	if c.HRScore != nil {
		c.FinalScore = (c.ATSScore/10 + *c.HRScore) / 2
	}
	c.IsShortlisted = c.FinalScore >= 7
}

func seedStore(t *testing.T, emails ...string) (*candidate.MemoryStore, []string) {
	t.Helper()
	store := candidate.NewMemoryStore(recompose)

	ids := make([]string, 0, len(emails))
	for i, email := range emails {
		c := &candidate.Candidate{
			Name:     fmt.Sprintf("Candidate %d", i+1),
			Email:    email,
			JobRole:  "Backend Engineer",
			Filename: fmt.Sprintf("cv_%d.pdf", i+1),
			ATSScore: 80,
			Test: []candidate.TestQuestion{
				{ID: 1, Question: "q1", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 1},
				{ID: 2, Question: "q2", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 0},
			},
		}
		created, _, err := store.Upsert(c)
		if err != nil {
			t.Fatalf("seeding store: %v", err)
		}
		ids = append(ids, created.ID)
	}
	return store, ids
}

func newTestTracker(store candidate.Store, sender *stubSender, retries int) *Tracker {
	cfg := Config{TestLinkBase: "https://jobs.example.com/test/", MaxRetries: retries}
	return New(store, sender, cfg, zap.NewNop())
}

func TestSendInvites(t *testing.T) {
	store, ids := seedStore(t, "a@example.com", "b@example.com")
	sender := newStubSender()

	report := newTestTracker(store, sender, 1).SendInvites(context.Background(), ids)
	if report.Sent() != 2 || report.Failed() != 0 {
		t.Fatalf("expected 2 sent, got %s", report.Summary())
	}

	for _, id := range ids {
		c, _ := store.Get(id)
		if c.Stage != candidate.StageInvited {
			t.Fatalf("expected stage invited, got %s", c.Stage)
		}
		if c.EmailStatus != candidate.EmailSent {
			t.Fatalf("expected email sent, got %s", c.EmailStatus)
		}
		if c.TestStatus != candidate.TestSent {
			t.Fatalf("expected test sent, got %s", c.TestStatus)
		}
		if !strings.HasPrefix(c.MeetingLink, "https://meet.jit.si/") {
			t.Fatalf("expected a meeting link, got %q", c.MeetingLink)
		}
	}
}

func TestSendInvitesPartialFailure(t *testing.T) {
	store, ids := seedStore(t,
		"a@example.com", "b@example.com", "c@example.com", "d@example.com", "e@example.com")
	sender := newStubSender()
	sender.failFor["c@example.com"] = 10

	report := newTestTracker(store, sender, 1).SendInvites(context.Background(), ids)
	if report.Sent() != 4 || report.Failed() != 1 {
		t.Fatalf("expected 4 sent and 1 failed, got %s", report.Summary())
	}

	// The failed candidate keeps its pre-invite state.
	failed, _ := store.Get(ids[2])
	if failed.Stage != candidate.StageScreened || failed.EmailStatus != candidate.EmailNotSent {
		t.Fatalf("expected failed candidate untouched, got %s/%s", failed.Stage, failed.EmailStatus)
	}

	// The candidates after the failure were still delivered to.
	last, _ := store.Get(ids[4])
	if last.Stage != candidate.StageInvited {
		t.Fatalf("expected later candidate invited, got %s", last.Stage)
	}
}

func TestSendInvitesNoEmail(t *testing.T) {
	store, ids := seedStore(t, "", "b@example.com")
	sender := newStubSender()

	report := newTestTracker(store, sender, 1).SendInvites(context.Background(), ids)
	if report.Sent() != 1 || report.Failed() != 1 {
		t.Fatalf("expected 1 sent and 1 failed, got %s", report.Summary())
	}

	var failure InviteOutcome
	for _, o := range report.Outcomes {
		if o.Err != nil {
			failure = o
		}
	}
	if !candidate.IsValidation(failure.Err) {
		t.Fatalf("expected a validation error for the missing email, got %v", failure.Err)
	}
}

func TestSendInvitesUnknownID(t *testing.T) {
	store, _ := seedStore(t, "a@example.com")
	sender := newStubSender()

	report := newTestTracker(store, sender, 1).SendInvites(context.Background(), []string{"nope"})
	if report.Failed() != 1 {
		t.Fatalf("expected failure, got %s", report.Summary())
	}
	if !errors.Is(report.Outcomes[0].Err, candidate.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", report.Outcomes[0].Err)
	}
}

func TestSendInvitesRetries(t *testing.T) {
	store, ids := seedStore(t, "a@example.com")
	sender := newStubSender()
	sender.failFor["a@example.com"] = 1

	report := newTestTracker(store, sender, 2).SendInvites(context.Background(), ids)
	if report.Sent() != 1 {
		t.Fatalf("expected the retry to succeed, got %s", report.Summary())
	}
	if sender.attempts["a@example.com"] != 2 {
		t.Fatalf("expected 2 attempts, got %d", sender.attempts["a@example.com"])
	}
}

func TestSendInvitesIdempotent(t *testing.T) {
	store, ids := seedStore(t, "a@example.com")
	sender := newStubSender()
	tr := newTestTracker(store, sender, 1)

	first := tr.SendInvites(context.Background(), ids)
	if first.Sent() != 1 {
		t.Fatalf("expected first invite to succeed, got %s", first.Summary())
	}
	invited, _ := store.Get(ids[0])
	link := invited.MeetingLink

	second := tr.SendInvites(context.Background(), ids)
	if second.Sent() != 1 {
		t.Fatalf("expected re-invite to succeed, got %s", second.Summary())
	}

	again, _ := store.Get(ids[0])
	if again.Stage != candidate.StageInvited || again.EmailStatus != candidate.EmailSent {
		t.Fatalf("expected state unchanged, got %s/%s", again.Stage, again.EmailStatus)
	}
	if again.MeetingLink != link {
		t.Fatal("expected the meeting link to be stable across re-invites")
	}
}

func TestSubmitTest(t *testing.T) {
	store, ids := seedStore(t, "a@example.com")
	tr := newTestTracker(store, newStubSender(), 1)

	grade, updated, err := tr.SubmitTest(ids[0], map[int]int{1: 1, 2: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if grade.ScorePercent != 50 || grade.CorrectCount != 1 {
		t.Fatalf("expected 1/2 correct (50%%), got %+v", grade)
	}
	if updated.MCQScore == nil || *updated.MCQScore != 50 {
		t.Fatal("expected the mcq score to be recorded")
	}
	if updated.TestStatus != candidate.TestCompleted {
		t.Fatalf("expected test completed, got %s", updated.TestStatus)
	}
	if updated.Stage != candidate.StageTested {
		t.Fatalf("expected stage tested, got %s", updated.Stage)
	}
}

func TestSubmitTestAlreadyCompleted(t *testing.T) {
	store, ids := seedStore(t, "a@example.com")
	tr := newTestTracker(store, newStubSender(), 1)

	if _, _, err := tr.SubmitTest(ids[0], map[int]int{1: 1, 2: 0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, _, err := tr.SubmitTest(ids[0], map[int]int{1: 0, 2: 0})
	if !candidate.IsValidation(err) {
		t.Fatalf("expected a validation error, got %v", err)
	}

	// The first score survives the rejected resubmission.
	c, _ := store.Get(ids[0])
	if c.MCQScore == nil || *c.MCQScore != 100 {
		t.Fatalf("expected the original score to stand, got %v", c.MCQScore)
	}
}

func TestSubmitTestWithoutAssignedTest(t *testing.T) {
	store := candidate.NewMemoryStore(recompose)
	created, _, err := store.Upsert(&candidate.Candidate{
		Name:    "Jane",
		Email:   "jane@example.com",
		JobRole: "Backend Engineer",
	})
	if err != nil {
		t.Fatalf("seeding store: %v", err)
	}
	tr := newTestTracker(store, newStubSender(), 1)

	_, _, err = tr.SubmitTest(created.ID, map[int]int{1: 0})
	if !candidate.IsValidation(err) {
		t.Fatalf("expected a validation error, got %v", err)
	}

	// The rejected submission leaves the record unscored.
	c, _ := store.Get(created.ID)
	if c.MCQScore != nil || c.TestStatus != candidate.TestNotSent {
		t.Fatalf("expected an untouched record, got score=%v status=%s", c.MCQScore, c.TestStatus)
	}
}

func TestSetHRScore(t *testing.T) {
	store, ids := seedStore(t, "a@example.com")
	tr := newTestTracker(store, newStubSender(), 1)

	updated, err := tr.SetHRScore(ids[0], 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.HRScore == nil || *updated.HRScore != 8 {
		t.Fatal("expected the hr score to be recorded")
	}
	if updated.Stage != candidate.StageReviewed {
		t.Fatalf("expected stage reviewed, got %s", updated.Stage)
	}

	// The returned record already carries the recomposed final score.
	if updated.FinalScore != 8 {
		t.Fatalf("expected recomposed final score 8, got %v", updated.FinalScore)
	}
	if !updated.IsShortlisted {
		t.Fatal("expected the candidate to be shortlisted")
	}
}

func TestSetHRScoreValidation(t *testing.T) {
	store, ids := seedStore(t, "a@example.com")
	tr := newTestTracker(store, newStubSender(), 1)

	for _, bad := range []float64{-0.5, 10.5} {
		if _, err := tr.SetHRScore(ids[0], bad); !candidate.IsValidation(err) {
			t.Fatalf("expected a validation error for %v, got %v", bad, err)
		}
	}

	if _, err := tr.SetHRScore("nope", 5); !errors.Is(err, candidate.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSchedule(t *testing.T) {
	store, ids := seedStore(t, "a@example.com", "b@example.com")
	tr := newTestTracker(store, newStubSender(), 1)

	at := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)
	report := tr.Schedule(append(ids, "nope"), at)

	if report.Scheduled() != 2 {
		t.Fatalf("expected 2 scheduled, got %s", report.Summary())
	}

	var unknownErr error
	for _, o := range report.Outcomes {
		if o.CandidateID == "nope" {
			unknownErr = o.Err
		}
	}
	if !errors.Is(unknownErr, candidate.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for the unknown id, got %v", unknownErr)
	}

	for _, id := range ids {
		c, _ := store.Get(id)
		if c.InterviewTime == nil || !c.InterviewTime.Equal(at) {
			t.Fatalf("expected interview time %v, got %v", at, c.InterviewTime)
		}
		if c.Stage != candidate.StageScheduled {
			t.Fatalf("expected stage scheduled, got %s", c.Stage)
		}
		if c.MeetingLink == "" {
			t.Fatal("expected a meeting link to be generated")
		}
	}
}

func TestScheduleLastWriteWins(t *testing.T) {
	store, ids := seedStore(t, "a@example.com")
	tr := newTestTracker(store, newStubSender(), 1)

	first := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)
	tr.Schedule(ids, first)
	c, _ := store.Get(ids[0])
	link := c.MeetingLink

	second := time.Date(2026, 9, 20, 15, 30, 0, 0, time.UTC)
	report := tr.Schedule(ids, second)
	if report.Scheduled() != 1 {
		t.Fatalf("expected reschedule to succeed, got %s", report.Summary())
	}

	c, _ = store.Get(ids[0])
	if !c.InterviewTime.Equal(second) {
		t.Fatalf("expected the later schedule to win, got %v", c.InterviewTime)
	}
	if c.MeetingLink != link {
		t.Fatal("expected the meeting link to be reused on reschedule")
	}
}

func TestDelete(t *testing.T) {
	store, ids := seedStore(t, "a@example.com")
	tr := newTestTracker(store, newStubSender(), 1)

	if err := tr.Delete(ids[0]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tr.Delete(ids[0]); !errors.Is(err, candidate.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
