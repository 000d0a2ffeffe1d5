package candidate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists the candidate history to a JSON file so state survives
// between CLI invocations. It delegates the record semantics to an in-memory
// store and rewrites the file after every successful mutation.
type FileStore struct {
	mem  *MemoryStore
	path string

	// saveMu serializes file rewrites; record-level locking stays with
	// the in-memory store.
	saveMu sync.Mutex
}

// NewFileStore loads the history file at path, creating parent directories
// as needed. A missing or empty file yields an empty store.
func NewFileStore(path string, recompose Recomposer) (*FileStore, error) {
	s := &FileStore{
		mem:  NewMemoryStore(recompose),
		path: path,
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("opening history file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if stat.Size() == 0 {
		return s, nil
	}

	var items []*Candidate
	if err := json.NewDecoder(file).Decode(&items); err != nil {
		return nil, fmt.Errorf("parsing history file %q: %w", path, err)
	}

	for _, item := range items {
		// Weights or the shortlist threshold may have changed since the
		// file was written, so derived fields are recomputed on load.
		s.mem.recompose(item)
		s.mem.mu.Lock()
		s.mem.records[item.ID] = &record{c: item}
		s.mem.byKey[item.Key()] = item.ID
		s.mem.order = append(s.mem.order, item.ID)
		s.mem.mu.Unlock()
	}
	return s, nil
}

func (s *FileStore) Get(id string) (*Candidate, error) {
	return s.mem.Get(id)
}

func (s *FileStore) Upsert(c *Candidate) (*Candidate, bool, error) {
	out, created, err := s.mem.Upsert(c)
	if err != nil {
		return nil, false, err
	}
	return out, created, s.save()
}

func (s *FileStore) Update(id string, fn func(*Candidate) error) (*Candidate, error) {
	out, err := s.mem.Update(id, fn)
	if err != nil {
		return nil, err
	}
	return out, s.save()
}

func (s *FileStore) List() (*Candidates, error) {
	return s.mem.List()
}

func (s *FileStore) Delete(id string) error {
	if err := s.mem.Delete(id); err != nil {
		return err
	}
	return s.save()
}

func (s *FileStore) save() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	all, err := s.mem.List()
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	file, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(all.Items); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
