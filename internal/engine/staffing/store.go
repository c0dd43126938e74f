package staffing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/anatolykoptev/go_staffing/internal/engine"
)

// InsightStore persists generated insights keyed by resource ID.
// Upsert replaces whole records, last write wins; backends self-initialize
// missing files or schema. Callers serialize writer access.
type InsightStore interface {
	Load(ctx context.Context) ([]StoredInsight, error)
	Upsert(ctx context.Context, records []StoredInsight) error
}

// FileStore keeps insights in a single JSON array file. Writes go through
// a temp file and rename so readers never see a half-written store.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the given JSON file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads all stored insights. A missing or empty file is an empty store.
func (s *FileStore) Load(_ context.Context) ([]StoredInsight, error) {
	engine.IncrStoreLoads()
	return s.readAll()
}

// Upsert merges the given records into the store by resource ID.
func (s *FileStore) Upsert(_ context.Context, records []StoredInsight) error {
	if len(records) == 0 {
		return nil
	}
	engine.IncrStoreUpserts()
	current, err := s.readAll()
	if err != nil {
		return err
	}

	index := make(map[string]int, len(current))
	for i, rec := range current {
		index[rec.ResourceID] = i
	}
	for _, rec := range records {
		if rec.ResourceID == "" {
			return errors.New("insight record without resource id")
		}
		if i, ok := index[rec.ResourceID]; ok {
			current[i] = rec
		} else {
			index[rec.ResourceID] = len(current)
			current = append(current, rec)
		}
	}
	return s.writeAll(current)
}

func (s *FileStore) readAll() ([]StoredInsight, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []StoredInsight{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read insight store: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []StoredInsight{}, nil
	}
	var out []StoredInsight
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode insight store %s: %w", s.path, err)
	}
	return out, nil
}

func (s *FileStore) writeAll(records []StoredInsight) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("create store dir %s: %w", dir, err)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode insight store: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".insights-*.json")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write insight store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close insight store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace insight store: %w", err)
	}
	return nil
}
