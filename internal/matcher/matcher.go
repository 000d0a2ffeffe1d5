// Package matcher orchestrates batch resume matching: document text in,
// scored candidate records out. One resume failing to score never aborts the
// batch; each item gets its own outcome.
package matcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jobsai/shortlister/internal/ai"
	"github.com/jobsai/shortlister/internal/candidate"
	"github.com/jobsai/shortlister/internal/extract"
	"github.com/jobsai/shortlister/internal/logger"
)

const defaultWorkers = 6

// Resume is one unit of batch input.
type Resume struct {
	Filename string
	Text     string
}

// Outcome is the per-resume result of a batch match.
type Outcome struct {
	Filename    string
	CandidateID string
	Created     bool
	Err         error
}

// BatchResult aggregates per-item outcomes. Failures are recorded here, not
// raised, so sibling items always complete.
type BatchResult struct {
	Outcomes []Outcome
}

func (r *BatchResult) Matched() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err == nil {
			n++
		}
	}
	return n
}

func (r *BatchResult) Failed() int {
	return len(r.Outcomes) - r.Matched()
}

type Matcher struct {
	scorer    ai.Scorer
	store     candidate.Store
	extractor extract.TextExtractor
	logger    *zap.Logger
	workers   int
}

func New(scorer ai.Scorer, store candidate.Store, extractor extract.TextExtractor, logger *zap.Logger, workers int) *Matcher {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Matcher{
		scorer:    scorer,
		store:     store,
		extractor: extractor,
		logger:    logger,
		workers:   workers,
	}
}

// Match scores one resume against the job description and upserts the
// candidate record keyed by (email, job role). Re-matching the same resume
// replaces the ATS score and identity fields but preserves any MCQ/HR scores
// and stage state already set. It reports whether a new record was created.
func (m *Matcher) Match(ctx context.Context, resume Resume, jobTitle, jobDescription string, test []candidate.TestQuestion) (*candidate.Candidate, bool, error) {
	if strings.TrimSpace(resume.Text) == "" {
		return nil, false, candidate.NewValidationError("resume_text", "must not be empty")
	}
	if strings.TrimSpace(jobTitle) == "" {
		return nil, false, candidate.NewValidationError("job_title", "must not be empty")
	}
	if strings.TrimSpace(jobDescription) == "" {
		return nil, false, candidate.NewValidationError("job_description", "must not be empty")
	}

	result, err := m.scorer.ScoreResume(ctx, resume.Text, jobTitle, jobDescription)
	if err != nil {
		return nil, false, fmt.Errorf("ai scoring: %w", err)
	}
	if result.Score < 0 || result.Score > 100 {
		return nil, false, fmt.Errorf("ai scoring: score %v is outside [0,100]", result.Score)
	}

	// Regex extraction fills whatever identity fields the model missed.
	contact := extract.Contact(resume.Text)
	name := firstNonEmpty(result.Name, contact.Name)
	email := firstNonEmpty(result.Email, contact.Email)
	phone := firstNonEmpty(result.Phone, contact.Phone)

	record, created, err := m.store.Upsert(&candidate.Candidate{
		Name:         name,
		Email:        email,
		Phone:        phone,
		JobRole:      jobTitle,
		Filename:     resume.Filename,
		ATSScore:     result.Score,
		OverallGrade: result.Grade,
		Test:         test,
	})
	if err != nil {
		return nil, false, err
	}

	m.logger.Info("resume matched",
		zap.String("candidate_id", record.ID),
		zap.String("name", record.Name),
		zap.String(logger.FieldJobRole, record.JobRole),
		zap.Float64("ats_score", record.ATSScore),
		zap.Bool("created", created),
	)
	return record, created, nil
}

// MatchBatch scores the given resumes concurrently, respecting the worker
// limit. Per-item failures are collected into the batch result; the only
// error returned is context cancellation, and a canceled batch still reports
// the outcomes of the items that ran.
func (m *Matcher) MatchBatch(ctx context.Context, resumes []Resume, jobTitle, jobDescription string, test []candidate.TestQuestion) (*BatchResult, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return nil, candidate.NewValidationError("job_description", "must not be empty")
	}

	result := &BatchResult{}

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(m.workers)

	for _, resume := range resumes {
		if groupCtx.Err() != nil {
			break
		}

		group.Go(func() error {
			record, created, err := m.Match(groupCtx, resume, jobTitle, jobDescription, test)

			outcome := Outcome{Filename: resume.Filename, Err: err}
			if err == nil {
				outcome.CandidateID = record.ID
				outcome.Created = created
			} else {
				m.logger.Warn("resume match failed",
					zap.String("filename", resume.Filename),
					zap.Error(err),
				)
			}

			mu.Lock()
			result.Outcomes = append(result.Outcomes, outcome)
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return result, err
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	sort.Slice(result.Outcomes, func(i, j int) bool {
		return result.Outcomes[i].Filename < result.Outcomes[j].Filename
	})
	return result, nil
}

// MatchDirectory loads every resume document in dir and matches the batch.
// Files that cannot be converted to text fail individually.
func (m *Matcher) MatchDirectory(ctx context.Context, dir, jobTitle, jobDescription string, test []candidate.TestQuestion) (*BatchResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading resume directory: %w", err)
	}

	result := &BatchResult{}

	resumes := make([]Resume, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		text, err := m.extractor.Text(path)
		if err != nil {
			m.logger.Warn("resume text extraction failed",
				zap.String("filename", entry.Name()),
				zap.Error(err),
			)
			result.Outcomes = append(result.Outcomes, Outcome{Filename: entry.Name(), Err: err})
			continue
		}
		resumes = append(resumes, Resume{Filename: entry.Name(), Text: text})
	}

	batch, err := m.MatchBatch(ctx, resumes, jobTitle, jobDescription, test)
	if batch != nil {
		result.Outcomes = append(result.Outcomes, batch.Outcomes...)
	}
	if err != nil {
		return result, err
	}
	return result, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
