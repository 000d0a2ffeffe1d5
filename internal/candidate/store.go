package candidate

// Recomposer recomputes the derived fields (FinalScore, IsShortlisted) of a
// record from its component scores. Stores apply it on every write so derived
// values are never stale relative to their inputs.
type Recomposer func(*Candidate)

// Store is the authoritative candidate collection. Implementations must
// guarantee per-record atomicity: two concurrent updates to the same id never
// interleave partially, while unrelated records update independently.
//
// All methods return copies; mutating a returned record has no effect on the
// store.
type Store interface {
	// Get returns the candidate with the given id, or ErrNotFound.
	Get(id string) (*Candidate, error)

	// Upsert creates the candidate or, when a record with the same
	// (email, job role) key exists, replaces its matcher-owned fields
	// (name, contact, ATS score, grade, test questions) while preserving
	// the pipeline state (MCQ/HR scores, stage, statuses, schedule).
	// It reports whether a new record was created.
	Upsert(c *Candidate) (*Candidate, bool, error)

	// Update applies fn to the record under its exclusive lock. If fn
	// returns an error the record is left untouched and the error is
	// returned as-is. Derived fields are recomposed before commit.
	Update(id string, fn func(*Candidate) error) (*Candidate, error)

	// List returns all candidates in insertion order. An empty store
	// yields an empty collection, not an error.
	List() (*Candidates, error)

	// Delete removes the candidate permanently. Deleting an unknown id
	// returns ErrNotFound.
	Delete(id string) error
}
