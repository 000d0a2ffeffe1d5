package candidate

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")

	store, err := NewFileStore(path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	created, _, err := store.Upsert(newCandidate("Jane", "jane@example.com", "backend"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hr := 8.0
	if _, err := store.Update(created.ID, func(c *Candidate) error {
		c.HRScore = &hr
		c.Stage = StageReviewed
		return nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A fresh store over the same file sees the persisted state.
	reopened, err := NewFileStore(path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := reopened.Get(created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Jane" || got.Stage != StageReviewed {
		t.Fatalf("unexpected reloaded record: %+v", got)
	}
	if got.HRScore == nil || *got.HRScore != 8 {
		t.Fatal("expected hr score to survive reload")
	}

	// The upsert key is rebuilt from the file too.
	_, fresh, err := reopened.Upsert(newCandidate("Jane", "jane@example.com", "backend"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fresh {
		t.Fatal("expected the reloaded store to merge, not duplicate")
	}
}

func TestFileStoreRecomposesOnLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")

	lenient := func(c *Candidate) {
		c.FinalScore = c.ATSScore / 10
		c.IsShortlisted = c.FinalScore >= 7
	}
	store, err := NewFileStore(path, lenient)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	created, _, err := store.Upsert(newCandidate("Jane", "jane@example.com", "backend"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created.IsShortlisted {
		t.Fatal("expected the candidate to be shortlisted under the lenient threshold")
	}

	// A reopened store with a stricter threshold serves recomputed flags
	// without waiting for the next write.
	strict := func(c *Candidate) {
		c.FinalScore = c.ATSScore / 10
		c.IsShortlisted = c.FinalScore >= 9
	}
	reopened, err := NewFileStore(path, strict)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := reopened.Get(created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.IsShortlisted {
		t.Fatal("expected the reloaded flag to honor the stricter threshold")
	}
}

func TestFileStoreMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.json")

	store, err := NewFileStore(path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	all, err := store.List()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if all.Len() != 0 {
		t.Fatalf("expected empty store, got %d records", all.Len())
	}
}

func TestFileStoreEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	store, err := NewFileStore(path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if all, _ := store.List(); all.Len() != 0 {
		t.Fatal("expected empty store for empty file")
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFileStore(path, nil); err == nil {
		t.Fatal("expected an error for a corrupt history file")
	}
}

func TestFileStoreDeletePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")

	store, _ := NewFileStore(path, nil)
	created, _, _ := store.Upsert(newCandidate("Jane", "jane@example.com", "backend"))

	if err := store.Delete(created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reopened, err := NewFileStore(path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := reopened.Get(created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after reload, got %v", err)
	}
}
