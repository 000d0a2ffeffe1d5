// Package mailer delivers interview invitations. Delivery failures are
// per-recipient: the tracker records each outcome and keeps going, so one
// bad address never blocks the rest of a batch.
package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	gomail "github.com/wneessen/go-mail"
)

// Sender is the outbound email capability.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPConfig carries the connection settings for the SMTP sender.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	From     string `mapstructure:"from"`
	Password string `mapstructure:"-"`

	// MaxRetries is how many times one recipient is attempted before the
	// failure is recorded. Delay paces consecutive sends.
	MaxRetries int           `mapstructure:"max-retries"`
	Delay      time.Duration `mapstructure:"delay"`
}

// SMTPSender sends mail through a single SMTP account with STARTTLS.
type SMTPSender struct {
	cfg SMTPConfig
}

func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if strings.TrimSpace(cfg.From) == "" || strings.TrimSpace(cfg.Password) == "" {
		return nil, fmt.Errorf("smtp credentials are not configured")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPSender{cfg: cfg}, nil
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	client, err := gomail.NewClient(s.cfg.Host,
		gomail.WithPort(s.cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.cfg.From),
		gomail.WithPassword(s.cfg.Password),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send to %s: %w", to, err)
	}
	return nil
}

// MeetingLink generates a unique Jitsi-style room URL for the job title.
func MeetingLink(jobTitle string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	room := strings.ReplaceAll(strings.TrimSpace(jobTitle), " ", "-")
	return fmt.Sprintf("https://meet.jit.si/%s-%s", room, suffix)
}

// Invite contains everything the invitation body needs.
type Invite struct {
	CandidateName string
	JobTitle      string
	ATSScore      float64
	InterviewTime string
	MeetingLink   string
	TestLink      string
}

// Subject renders the invitation subject line.
func (i Invite) Subject() string {
	return fmt.Sprintf("Interview Invitation - %s Position", i.JobTitle)
}

// Body renders the plain-text invitation.
func (i Invite) Body() string {
	interviewTime := i.InterviewTime
	if interviewTime == "" {
		interviewTime = "To be scheduled"
	}
	testLink := i.TestLink
	if testLink == "" {
		testLink = "#"
	}

	return fmt.Sprintf(`Dear %s,

Congratulations! We are pleased to inform you that your application for the %s position has been shortlisted.

Your Profile Score: %.0f/100

Interview Scheduled: %s
Interview Meeting Link: %s

Technical Assessment (Round 2):
Please complete the mandatory MCQ test before the interview.
Test Link: %s

Our recruitment team is looking forward to meeting you.

Best regards,
Recruitment Team`,
		i.CandidateName, i.JobTitle, i.ATSScore, interviewTime, i.MeetingLink, testLink)
}
