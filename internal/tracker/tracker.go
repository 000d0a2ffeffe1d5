// Package tracker advances candidates through the recruiting pipeline:
// screened, invited, tested, reviewed, scheduled. Every trigger is
// idempotent so batch operations can safely include candidates that were
// already processed.
package tracker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jobsai/shortlister/internal/candidate"
	"github.com/jobsai/shortlister/internal/mailer"
	"github.com/jobsai/shortlister/internal/mcq"
	"github.com/jobsai/shortlister/internal/util"
)

const (
	defaultMaxRetries = 3
	retryBackoff      = time.Second
)

// Config tunes invite delivery and the test link embedded in invitations.
type Config struct {
	// TestLinkBase is prepended to the candidate id to form the MCQ test
	// URL included in invites.
	TestLinkBase string

	// MaxRetries bounds delivery attempts per recipient; Delay paces
	// consecutive sends to stay clear of spam filters.
	MaxRetries int
	Delay      time.Duration
}

type Tracker struct {
	store  candidate.Store
	sender mailer.Sender
	cfg    Config
	logger *zap.Logger
}

func New(store candidate.Store, sender mailer.Sender, cfg Config, logger *zap.Logger) *Tracker {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	return &Tracker{
		store:  store,
		sender: sender,
		cfg:    cfg,
		logger: logger,
	}
}

// InviteOutcome is the per-candidate result of a bulk invite.
type InviteOutcome struct {
	CandidateID string
	Name        string
	Email       string
	Err         error
}

// InviteReport aggregates a bulk invite. One candidate's failure never
// blocks delivery to the others.
type InviteReport struct {
	Outcomes []InviteOutcome
}

func (r *InviteReport) Sent() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err == nil {
			n++
		}
	}
	return n
}

func (r *InviteReport) Failed() int {
	return len(r.Outcomes) - r.Sent()
}

// Summary renders the operator-facing outcome line.
func (r *InviteReport) Summary() string {
	return fmt.Sprintf("sent %d invites, %d failed", r.Sent(), r.Failed())
}

// SendInvites delivers interview invitations to the given candidates,
// marking each successful recipient as invited. Re-inviting an already
// invited candidate re-sends the email and leaves the record state intact.
func (t *Tracker) SendInvites(ctx context.Context, ids []string) *InviteReport {
	report := &InviteReport{}

	for idx, id := range ids {
		if ctx.Err() != nil {
			report.Outcomes = append(report.Outcomes, InviteOutcome{CandidateID: id, Err: ctx.Err()})
			continue
		}

		outcome := t.invite(ctx, id)
		report.Outcomes = append(report.Outcomes, outcome)

		if outcome.Err != nil {
			t.logger.Warn("invite failed",
				zap.String("candidate_id", id),
				zap.Error(outcome.Err),
			)
		} else {
			t.logger.Info("invite sent",
				zap.String("candidate_id", id),
				zap.String("email", outcome.Email),
			)
		}

		if idx < len(ids)-1 {
			if err := util.WaitFor(ctx, t.cfg.Delay); err != nil {
				continue
			}
		}
	}
	return report
}

func (t *Tracker) invite(ctx context.Context, id string) InviteOutcome {
	c, err := t.store.Get(id)
	if err != nil {
		return InviteOutcome{CandidateID: id, Err: err}
	}

	outcome := InviteOutcome{CandidateID: id, Name: c.Name, Email: c.Email}
	if !c.HasEmail() {
		outcome.Err = candidate.NewValidationError("email", "candidate has no email address")
		return outcome
	}

	// The meeting link is generated once and reused for reschedules.
	meetingLink := c.MeetingLink
	if meetingLink == "" {
		meetingLink = mailer.MeetingLink(c.JobRole)
	}

	invite := mailer.Invite{
		CandidateName: c.Name,
		JobTitle:      c.JobRole,
		ATSScore:      c.ATSScore,
		MeetingLink:   meetingLink,
		TestLink:      t.testLink(c.ID),
	}
	if c.InterviewTime != nil {
		invite.InterviewTime = c.InterviewTime.Format(time.RFC1123)
	}

	var sendErr error
	for attempt := 0; attempt < t.cfg.MaxRetries; attempt++ {
		sendErr = t.sender.Send(ctx, c.Email, invite.Subject(), invite.Body())
		if sendErr == nil {
			break
		}
		if attempt < t.cfg.MaxRetries-1 {
			if err := util.WaitFor(ctx, retryBackoff); err != nil {
				sendErr = err
				break
			}
		}
	}
	if sendErr != nil {
		outcome.Err = sendErr
		return outcome
	}

	_, err = t.store.Update(id, func(c *candidate.Candidate) error {
		c.EmailStatus = candidate.EmailSent
		if c.TestStatus == candidate.TestNotSent {
			c.TestStatus = candidate.TestSent
		}
		if c.MeetingLink == "" {
			c.MeetingLink = meetingLink
		}
		c.AdvanceStage(candidate.StageInvited)
		return nil
	})
	outcome.Err = err
	return outcome
}

func (t *Tracker) testLink(id string) string {
	if t.cfg.TestLinkBase == "" {
		return ""
	}
	return t.cfg.TestLinkBase + id
}

// ScheduleOutcome is the per-candidate result of a bulk schedule.
type ScheduleOutcome struct {
	CandidateID string
	Err         error
}

// ScheduleReport aggregates a bulk schedule.
type ScheduleReport struct {
	Outcomes []ScheduleOutcome
}

func (r *ScheduleReport) Scheduled() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err == nil {
			n++
		}
	}
	return n
}

func (r *ScheduleReport) Summary() string {
	return fmt.Sprintf("scheduled %d candidates, %d failed", r.Scheduled(), len(r.Outcomes)-r.Scheduled())
}

// Schedule applies one interview timestamp to every candidate in the batch,
// overwriting any prior schedule (last write wins). Unknown ids are reported
// per-item; the remaining candidates are still scheduled.
func (t *Tracker) Schedule(ids []string, interviewTime time.Time) *ScheduleReport {
	report := &ScheduleReport{}

	for _, id := range ids {
		_, err := t.store.Update(id, func(c *candidate.Candidate) error {
			at := interviewTime
			c.InterviewTime = &at
			if c.MeetingLink == "" {
				c.MeetingLink = mailer.MeetingLink(c.JobRole)
			}
			c.Stage = candidate.StageScheduled
			return nil
		})
		report.Outcomes = append(report.Outcomes, ScheduleOutcome{CandidateID: id, Err: err})
		if err != nil {
			t.logger.Warn("schedule failed", zap.String("candidate_id", id), zap.Error(err))
		}
	}

	t.logger.Info("interviews scheduled",
		zap.Int("scheduled", report.Scheduled()),
		zap.Time("interview_time", interviewTime),
	)
	return report
}

// SubmitTest grades the candidate's submitted answers and records the MCQ
// score. Submitting an already completed test is rejected; the grading and
// the final-score recomposition happen atomically under the record lock.
func (t *Tracker) SubmitTest(id string, answers map[int]int) (*mcq.GradeResult, *candidate.Candidate, error) {
	var grade mcq.GradeResult

	updated, err := t.store.Update(id, func(c *candidate.Candidate) error {
		if c.TestStatus == candidate.TestCompleted {
			return candidate.NewValidationError("test_status", "test already completed")
		}
		if len(c.Test) == 0 {
			return candidate.NewValidationError("test", "no test assigned")
		}

		grade = mcq.Grade(answers, c.Test)
		score := grade.ScorePercent
		c.MCQScore = &score
		c.TestStatus = candidate.TestCompleted
		c.AdvanceStage(candidate.StageTested)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	t.logger.Info("test completed",
		zap.String("candidate_id", id),
		zap.Float64("mcq_score", grade.ScorePercent),
		zap.Float64("final_score", updated.FinalScore),
	)
	return &grade, updated, nil
}

// SetHRScore records the human reviewer score (0..10) and returns the record
// with its recomposed final score. The write and the recomposition are one
// atomic step: a concurrent reader never sees the new HR score paired with
// the old final score.
func (t *Tracker) SetHRScore(id string, score float64) (*candidate.Candidate, error) {
	if score < 0 || score > 10 {
		return nil, candidate.NewValidationError("hr_score", "must be within [0,10]")
	}

	updated, err := t.store.Update(id, func(c *candidate.Candidate) error {
		v := score
		c.HRScore = &v
		c.AdvanceStage(candidate.StageReviewed)
		return nil
	})
	if err != nil {
		return nil, err
	}

	t.logger.Info("hr score recorded",
		zap.String("candidate_id", id),
		zap.Float64("hr_score", score),
		zap.Float64("final_score", updated.FinalScore),
		zap.Bool("shortlisted", updated.IsShortlisted),
	)
	return updated, nil
}

// Delete removes the candidate permanently. There is no undo.
func (t *Tracker) Delete(id string) error {
	if err := t.store.Delete(id); err != nil {
		return err
	}
	t.logger.Info("candidate deleted", zap.String("candidate_id", id))
	return nil
}
