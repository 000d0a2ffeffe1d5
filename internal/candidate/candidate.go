package candidate

import (
	"strings"
	"time"
)

// Stage is the lifecycle position of a candidate in the recruiting pipeline.
type Stage string

const (
	StageScreened  Stage = "screened"
	StageInvited   Stage = "invited"
	StageTested    Stage = "tested"
	StageReviewed  Stage = "reviewed"
	StageScheduled Stage = "scheduled"
)

var stageRank = map[Stage]int{
	StageScreened:  0,
	StageInvited:   1,
	StageTested:    2,
	StageReviewed:  3,
	StageScheduled: 4,
}

// Before reports whether s comes strictly earlier in the pipeline than other.
func (s Stage) Before(other Stage) bool {
	return stageRank[s] < stageRank[other]
}

type TestStatus string

const (
	TestNotSent   TestStatus = "not_sent"
	TestSent      TestStatus = "sent"
	TestCompleted TestStatus = "completed"
)

type EmailStatus string

const (
	EmailNotSent EmailStatus = "not_sent"
	EmailSent    EmailStatus = "sent"
)

// TestQuestion is a single multiple-choice question attached to a candidate.
// CorrectAnswer is the index into Options and must never be exposed to the
// candidate before submission.
type TestQuestion struct {
	ID            int      `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
}

// Candidate is one (resume, job application) pair tracked by the pipeline.
//
// MCQScore and HRScore are pointers so that "not yet scored" is
// distinguishable from a real zero. FinalScore and IsShortlisted are derived
// and recomputed on every write that touches a component score; callers must
// never set them directly.
type Candidate struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	JobRole  string `json:"job_role"`
	Filename string `json:"filename,omitempty"`

	ATSScore     float64  `json:"ats_score"`
	OverallGrade string   `json:"overall_grade,omitempty"`
	MCQScore     *float64 `json:"mcq_score,omitempty"`
	HRScore      *float64 `json:"hr_score,omitempty"`
	FinalScore   float64  `json:"final_score"`

	IsShortlisted bool        `json:"is_shortlisted"`
	Stage         Stage       `json:"stage"`
	TestStatus    TestStatus  `json:"test_status"`
	EmailStatus   EmailStatus `json:"email_status"`

	Test []TestQuestion `json:"test,omitempty"`

	InterviewTime *time.Time `json:"interview_time,omitempty"`
	MeetingLink   string     `json:"meeting_link,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasEmail reports whether the candidate can be contacted.
func (c *Candidate) HasEmail() bool {
	return strings.TrimSpace(c.Email) != ""
}

// Key is the natural dedup key within a job posting: lower-cased email plus
// job role. Candidates without an extractable email fall back to the resume
// filename so re-ingesting the same file does not duplicate them.
func (c *Candidate) Key() string {
	return MatchKey(c.Email, c.Filename, c.JobRole)
}

// MatchKey builds the (email, job role) upsert key used by the record store.
func MatchKey(email, filename, jobRole string) string {
	id := strings.ToLower(strings.TrimSpace(email))
	if id == "" {
		id = strings.ToLower(strings.TrimSpace(filename))
	}
	return id + "|" + strings.ToLower(strings.TrimSpace(jobRole))
}

// AdvanceStage moves the candidate forward to target if it is not already
// there or further along. Scheduling is the exception handled by the tracker:
// it may be applied from any stage.
func (c *Candidate) AdvanceStage(target Stage) {
	if c.Stage.Before(target) {
		c.Stage = target
	}
}
