// Package filestore implements the simple fallback store: a single JSON
// document on disk, fully read and rewritten per operation. It trades the
// transactional store's durability and query characteristics for having no
// failure modes beyond plain file I/O.
package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"context"

	"github.com/bnema/lacquer/internal/domain/entity"
)

const (
	dirPerm  = 0o750
	filePerm = 0o600
)

// document is the on-disk shape. Records and state live in one file so a
// fallback process has exactly one thing to scan.
type document struct {
	Records map[string]entity.SkinRecord `json:"records"`
	State   map[string]string            `json:"state"`
}

// Store is a repository.Store backed by a JSON file.
type Store struct {
	mu   sync.Mutex
	path string
}

// Open prepares the store at path, creating parent directories. The file
// itself is created lazily on first write.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("store path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &Store{path: path}, nil
}

func (s *Store) load() (*document, error) {
	doc := &document{
		Records: make(map[string]entity.SkinRecord),
		State:   make(map[string]string),
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store file: %w", err)
	}

	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("decode store file: %w", err)
	}
	if doc.Records == nil {
		doc.Records = make(map[string]entity.SkinRecord)
	}
	if doc.State == nil {
		doc.State = make(map[string]string)
	}
	return doc, nil
}

// save writes via a temp file and rename so a crash mid-write never leaves a
// truncated document behind.
func (s *Store) save(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store file: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, filePerm); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}

// Put inserts or replaces a skin record.
func (s *Store) Put(_ context.Context, record entity.SkinRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if record.InsertedAt.IsZero() {
		record.InsertedAt = time.Now()
	}
	doc.Records[record.ID] = record
	return s.save(doc)
}

// Get returns the record for id, or (nil, nil) when absent.
func (s *Store) Get(_ context.Context, id string) (*entity.SkinRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	record, ok := doc.Records[id]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// List returns all persisted records.
func (s *Store) List(_ context.Context) ([]entity.SkinRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	records := make([]entity.SkinRecord, 0, len(doc.Records))
	for _, record := range doc.Records {
		records = append(records, record)
	}
	return records, nil
}

// Delete removes a record. Deleting a missing id is not an error.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := doc.Records[id]; !ok {
		return nil
	}
	delete(doc.Records, id)
	return s.save(doc)
}

// GetValue returns the state value for key, reporting presence explicitly.
func (s *Store) GetValue(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return "", false, err
	}
	value, ok := doc.State[key]
	return value, ok, nil
}

// SetValue inserts or replaces a state value.
func (s *Store) SetValue(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	doc.State[key] = value
	return s.save(doc)
}

// DeleteValue removes a state key. Missing keys are not an error.
func (s *Store) DeleteValue(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := doc.State[key]; !ok {
		return nil
	}
	delete(doc.State, key)
	return s.save(doc)
}

// Close is a no-op; the file is never held open between operations.
func (s *Store) Close() error {
	return nil
}
