package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"listing-writer/internal/domain"
)

// FileStore keeps the history as a JSON array in a single file, newest first.
// It serializes its own reads and writes; it is not safe to share the file
// between processes.
type FileStore struct {
	path  string
	limit int
	mu    sync.Mutex
}

func NewFileStore(path string, limit int) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("repository: data file path must not be empty")
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &FileStore{path: path, limit: limit}, nil
}

func (s *FileStore) SaveProduct(_ context.Context, rec domain.ProductRecord) error {
	if rec.ID == "" {
		return errors.New("repository: SaveProduct: id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.read()
	if err != nil {
		return fmt.Errorf("repository: SaveProduct: %w", err)
	}
	recs = append([]domain.ProductRecord{rec}, recs...)
	if len(recs) > s.limit {
		recs = recs[:s.limit]
	}
	if err := s.write(recs); err != nil {
		return fmt.Errorf("repository: SaveProduct: %w", err)
	}
	return nil
}

func (s *FileStore) ListProducts(_ context.Context) ([]domain.ProductRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.read()
	if err != nil {
		return nil, fmt.Errorf("repository: ListProducts: %w", err)
	}
	if len(recs) > s.limit {
		recs = recs[:s.limit]
	}
	return recs, nil
}

// read returns an empty history when the file does not exist yet.
func (s *FileStore) read() ([]domain.ProductRecord, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.ProductRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	recs := []domain.ProductRecord{}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return recs, nil
	}
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return recs, nil
}

// write replaces the file through a temp file and rename.
func (s *FileStore) write(recs []domain.ProductRecord) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	buf, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(buf); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
