// Package state persists the sports bots' seen-market state on local disk.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/alanyoungcy/polyarb/internal/domain"
)

// FileStore keeps SeenState in a single JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the state file. A missing file yields an empty state.
func (s *FileStore) Load(_ context.Context) (domain.SeenState, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.SeenState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("state: read %s: %w", s.path, err)
	}

	st := domain.SeenState{}
	if len(data) == 0 {
		return st, nil
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("state: decode %s: %w", s.path, err)
	}
	return st, nil
}

// Save writes the state to a temp file in the same directory and renames it
// over the old file, so a crash never leaves a truncated state behind.
func (s *FileStore) Save(_ context.Context, st domain.SeenState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("state: encode: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("state: mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("state: create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("state: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("state: close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("state: rename to %s: %w", s.path, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.StateStore = (*FileStore)(nil)
