package gallery

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	apperr "github.com/matzehuels/mondrian/pkg/errors"
)

// FileStore keeps one JSON file per record in a directory.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore opens (and creates) a store in dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create gallery dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the store directory.
func (s *FileStore) Path() string { return s.dir }

func (s *FileStore) recordPath(id string) (string, error) {
	if err := apperr.ValidateRecordID(id); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, id+".json"), nil
}

func (s *FileStore) Put(_ context.Context, r *Record) error {
	path, err := s.recordPath(r.ID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, id string) (*Record, error) {
	path, err := s.recordPath(id)
	if err != nil {
		return nil, ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return readRecord(path)
}

func (s *FileStore) List(_ context.Context, limit int) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read gallery dir: %w", err)
	}
	var out []*Record
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		r, err := readRecord(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			continue
		}
		out = append(out, r)
	}
	sortNewestFirst(out)
	return out[:min(len(out), clampLimit(limit))], nil
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	path, err := s.recordPath(id)
	if err != nil {
		return ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("remove record: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

func readRecord(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read record: %w", err)
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse record: %w", err)
	}
	return &r, nil
}

var _ Store = (*FileStore)(nil)
