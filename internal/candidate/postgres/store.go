// Package postgres persists candidates in PostgreSQL. It implements the same
// store contract as the in-memory backend, using row locks for per-record
// atomicity so several pipeline processes can share one database.
package postgres

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/jobsai/shortlister/internal/candidate"
)

// row is the database shape of a candidate. Test questions are stored as a
// jsonb document; MatchKey carries the (email, job role) dedup key with a
// unique index so concurrent upserts of the same applicant collapse into one
// row.
type row struct {
	ID       string `gorm:"type:uuid;primaryKey"`
	MatchKey string `gorm:"type:varchar(512);uniqueIndex"`
	Name     string `gorm:"type:varchar(255)"`
	Email    string `gorm:"type:varchar(255)"`
	Phone    string `gorm:"type:varchar(64)"`
	JobRole  string `gorm:"type:varchar(255)"`
	Filename string `gorm:"type:varchar(512)"`

	ATSScore     float64  `gorm:"type:float"`
	OverallGrade string   `gorm:"type:varchar(64)"`
	MCQScore     *float64 `gorm:"type:float"`
	HRScore      *float64 `gorm:"type:float"`
	FinalScore   float64  `gorm:"type:float"`

	IsShortlisted bool
	Stage         string `gorm:"type:varchar(32)"`
	TestStatus    string `gorm:"type:varchar(32)"`
	EmailStatus   string `gorm:"type:varchar(32)"`

	Test string `gorm:"type:jsonb"`

	InterviewTime *time.Time
	MeetingLink   string `gorm:"type:varchar(512)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (row) TableName() string { return "candidates" }

func toRow(c *candidate.Candidate) (*row, error) {
	test := ""
	if len(c.Test) > 0 {
		raw, err := json.Marshal(c.Test)
		if err != nil {
			return nil, fmt.Errorf("encode test questions: %w", err)
		}
		test = string(raw)
	}
	return &row{
		ID:            c.ID,
		MatchKey:      c.Key(),
		Name:          c.Name,
		Email:         c.Email,
		Phone:         c.Phone,
		JobRole:       c.JobRole,
		Filename:      c.Filename,
		ATSScore:      c.ATSScore,
		OverallGrade:  c.OverallGrade,
		MCQScore:      c.MCQScore,
		HRScore:       c.HRScore,
		FinalScore:    c.FinalScore,
		IsShortlisted: c.IsShortlisted,
		Stage:         string(c.Stage),
		TestStatus:    string(c.TestStatus),
		EmailStatus:   string(c.EmailStatus),
		Test:          test,
		InterviewTime: c.InterviewTime,
		MeetingLink:   c.MeetingLink,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}, nil
}

func (r *row) toCandidate() (*candidate.Candidate, error) {
	c := &candidate.Candidate{
		ID:            r.ID,
		Name:          r.Name,
		Email:         r.Email,
		Phone:         r.Phone,
		JobRole:       r.JobRole,
		Filename:      r.Filename,
		ATSScore:      r.ATSScore,
		OverallGrade:  r.OverallGrade,
		MCQScore:      r.MCQScore,
		HRScore:       r.HRScore,
		FinalScore:    r.FinalScore,
		IsShortlisted: r.IsShortlisted,
		Stage:         candidate.Stage(r.Stage),
		TestStatus:    candidate.TestStatus(r.TestStatus),
		EmailStatus:   candidate.EmailStatus(r.EmailStatus),
		InterviewTime: r.InterviewTime,
		MeetingLink:   r.MeetingLink,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if strings.TrimSpace(r.Test) != "" {
		if err := json.Unmarshal([]byte(r.Test), &c.Test); err != nil {
			return nil, fmt.Errorf("decode test questions for %s: %w", r.ID, err)
		}
	}
	return c, nil
}

// Store is the PostgreSQL candidate store.
type Store struct {
	db        *gorm.DB
	recompose candidate.Recomposer
}

// Open connects to the database, migrates the candidates table and returns a
// ready store. recompose is applied on every write, same as the in-memory
// backend.
func Open(dsn string, recompose candidate.Recomposer) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := db.AutoMigrate(&row{}); err != nil {
		return nil, fmt.Errorf("migrate candidates table: %w", err)
	}
	return New(db, recompose), nil
}

// New wraps an existing gorm handle. Used by tests and callers that manage
// the connection themselves.
func New(db *gorm.DB, recompose candidate.Recomposer) *Store {
	if recompose == nil {
		recompose = func(*candidate.Candidate) {}
	}
	return &Store{db: db, recompose: recompose}
}

func (s *Store) Get(id string) (*candidate.Candidate, error) {
	var r row
	err := s.db.First(&r, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, candidate.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.toCandidate()
}

func (s *Store) Upsert(c *candidate.Candidate) (*candidate.Candidate, bool, error) {
	if c == nil {
		return nil, false, candidate.NewValidationError("candidate", "is required")
	}
	if strings.TrimSpace(c.JobRole) == "" {
		return nil, false, candidate.NewValidationError("job_role", "must not be empty")
	}

	out, created, err := s.upsertOnce(c)
	if errors.Is(err, candidate.ErrConflict) {
		// A concurrent insert of the same key won the race. Retry once: the
		// probe now finds the winner's row and merges into it. A second
		// conflict is surfaced as is.
		out, created, err = s.upsertOnce(c)
	}
	return out, created, err
}

func (s *Store) upsertOnce(c *candidate.Candidate) (*candidate.Candidate, bool, error) {
	var (
		out     *candidate.Candidate
		created bool
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing row
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&existing, "match_key = ?", c.Key()).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			fresh := *c
			if fresh.ID == "" {
				fresh.ID = uuid.NewString()
			}
			if fresh.Stage == "" {
				fresh.Stage = candidate.StageScreened
			}
			if fresh.TestStatus == "" {
				fresh.TestStatus = candidate.TestNotSent
			}
			if fresh.EmailStatus == "" {
				fresh.EmailStatus = candidate.EmailNotSent
			}
			now := time.Now().UTC()
			fresh.CreatedAt = now
			fresh.UpdatedAt = now
			s.recompose(&fresh)

			r, err := toRow(&fresh)
			if err != nil {
				return err
			}
			if err := tx.Create(r).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return candidate.ErrConflict
				}
				return err
			}
			out, created = &fresh, true
			return nil
		}
		if err != nil {
			return err
		}

		current, err := existing.toCandidate()
		if err != nil {
			return err
		}
		mergeMatched(current, c)
		current.UpdatedAt = time.Now().UTC()
		s.recompose(current)

		r, err := toRow(current)
		if err != nil {
			return err
		}
		if err := tx.Save(r).Error; err != nil {
			return err
		}
		out = current
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, created, nil
}

func (s *Store) Update(id string, fn func(*candidate.Candidate) error) (*candidate.Candidate, error) {
	var out *candidate.Candidate

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var r row
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&r, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return candidate.ErrNotFound
		}
		if err != nil {
			return err
		}

		c, err := r.toCandidate()
		if err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}
		c.UpdatedAt = time.Now().UTC()
		s.recompose(c)

		next, err := toRow(c)
		if err != nil {
			return err
		}
		if err := tx.Save(next).Error; err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) List() (*candidate.Candidates, error) {
	var rows []row
	if err := s.db.Order("created_at asc, id asc").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := &candidate.Candidates{Items: make([]*candidate.Candidate, 0, len(rows))}
	for i := range rows {
		c, err := rows[i].toCandidate()
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, c)
	}
	return out, nil
}

func (s *Store) Delete(id string) error {
	res := s.db.Delete(&row{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return candidate.ErrNotFound
	}
	return nil
}

// mergeMatched mirrors the in-memory merge: fresh match data overwrites the
// matcher-owned fields, pipeline state is preserved.
func mergeMatched(dst, src *candidate.Candidate) {
	if strings.TrimSpace(src.Name) != "" {
		dst.Name = src.Name
	}
	if strings.TrimSpace(src.Email) != "" {
		dst.Email = src.Email
	}
	if strings.TrimSpace(src.Phone) != "" {
		dst.Phone = src.Phone
	}
	if strings.TrimSpace(src.Filename) != "" {
		dst.Filename = src.Filename
	}
	dst.ATSScore = src.ATSScore
	dst.OverallGrade = src.OverallGrade
	if len(src.Test) > 0 {
		dst.Test = src.Test
	}
}
