package candidate

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// record pairs a candidate with its exclusive-update lock. The lock covers
// the whole read-modify-write of one Update call, so a reader never observes
// a record with one field updated and the derived score stale.
type record struct {
	mu sync.Mutex
	c  *Candidate
}

// MemoryStore keeps candidates in process memory. It is the default backend
// for CLI runs (wrapped by FileStore for persistence between invocations)
// and the reference implementation for the concurrency contract.
type MemoryStore struct {
	mu        sync.RWMutex
	records   map[string]*record
	byKey     map[string]string
	order     []string
	recompose Recomposer
}

// NewMemoryStore builds an empty store. recompose is applied on every write;
// a nil recomposer leaves derived fields untouched.
func NewMemoryStore(recompose Recomposer) *MemoryStore {
	if recompose == nil {
		recompose = func(*Candidate) {}
	}
	return &MemoryStore{
		records:   make(map[string]*record),
		byKey:     make(map[string]string),
		recompose: recompose,
	}
}

func (s *MemoryStore) Get(id string) (*Candidate, error) {
	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	return clone(rec.c), nil
}

func (s *MemoryStore) Upsert(c *Candidate) (*Candidate, bool, error) {
	if c == nil {
		return nil, false, NewValidationError("candidate", "is required")
	}
	if strings.TrimSpace(c.JobRole) == "" {
		return nil, false, NewValidationError("job_role", "must not be empty")
	}

	key := c.Key()

	s.mu.Lock()
	id, exists := s.byKey[key]
	if !exists {
		created := clone(c)
		if created.ID == "" {
			created.ID = uuid.NewString()
		}
		if created.Stage == "" {
			created.Stage = StageScreened
		}
		if created.TestStatus == "" {
			created.TestStatus = TestNotSent
		}
		if created.EmailStatus == "" {
			created.EmailStatus = EmailNotSent
		}
		now := time.Now().UTC()
		created.CreatedAt = now
		created.UpdatedAt = now
		s.recompose(created)

		s.records[created.ID] = &record{c: created}
		s.byKey[key] = created.ID
		s.order = append(s.order, created.ID)
		s.mu.Unlock()
		return clone(created), true, nil
	}
	rec := s.records[id]
	s.mu.Unlock()

	rec.mu.Lock()
	defer rec.mu.Unlock()

	mergeMatched(rec.c, c)
	rec.c.UpdatedAt = time.Now().UTC()
	s.recompose(rec.c)
	return clone(rec.c), false, nil
}

func (s *MemoryStore) Update(id string, fn func(*Candidate) error) (*Candidate, error) {
	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	next := clone(rec.c)
	if err := fn(next); err != nil {
		return nil, err
	}
	next.UpdatedAt = time.Now().UTC()
	s.recompose(next)
	rec.c = next
	return clone(next), nil
}

func (s *MemoryStore) List() (*Candidates, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := &Candidates{Items: make([]*Candidate, 0, len(s.order))}
	for _, id := range s.order {
		rec := s.records[id]
		rec.mu.Lock()
		out.Items = append(out.Items, clone(rec.c))
		rec.mu.Unlock()
	}
	return out, nil
}

func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	// An in-flight Update swaps rec.c under rec.mu, so the key read takes
	// the record lock too. s.mu is already held, same order as List.
	rec.mu.Lock()
	key := rec.c.Key()
	rec.mu.Unlock()
	delete(s.byKey, key)
	for idx, ordered := range s.order {
		if ordered == id {
			s.order = append(s.order[:idx], s.order[idx+1:]...)
			break
		}
	}
	return nil
}

// mergeMatched overwrites the matcher-owned fields of dst with the values
// from a fresh match, preserving everything the pipeline has set since the
// record was created.
func mergeMatched(dst, src *Candidate) {
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

func clone(c *Candidate) *Candidate {
	out := *c
	if c.MCQScore != nil {
		v := *c.MCQScore
		out.MCQScore = &v
	}
	if c.HRScore != nil {
		v := *c.HRScore
		out.HRScore = &v
	}
	if c.InterviewTime != nil {
		v := *c.InterviewTime
		out.InterviewTime = &v
	}
	if len(c.Test) > 0 {
		out.Test = make([]TestQuestion, len(c.Test))
		copy(out.Test, c.Test)
		for i := range out.Test {
			opts := make([]string, len(c.Test[i].Options))
			copy(opts, c.Test[i].Options)
			out.Test[i].Options = opts
		}
	}
	return &out
}
