package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alanyoungcy/polyarb/internal/domain"
)

// StateStore keeps the sports bot's seen-market state as one JSON object in
// the bucket, so stateless runners (CI jobs, containers) share it.
type StateStore struct {
	reader domain.BlobReader
	writer domain.BlobWriter
	key    string
}

// NewStateStore creates a StateStore reading and writing key.
func NewStateStore(r domain.BlobReader, w domain.BlobWriter, key string) *StateStore {
	return &StateStore{reader: r, writer: w, key: key}
}

// Load returns the stored state, or an empty state when none was saved yet.
func (s *StateStore) Load(ctx context.Context) (domain.SeenState, error) {
	body, err := s.reader.Get(ctx, s.key)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.SeenState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("s3blob: load state: %w", err)
	}
	defer body.Close()

	state := domain.SeenState{}
	if err := json.NewDecoder(body).Decode(&state); err != nil {
		return nil, fmt.Errorf("s3blob: decode state %s: %w", s.key, err)
	}
	return state, nil
}

// Save overwrites the stored state.
func (s *StateStore) Save(ctx context.Context, state domain.SeenState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("s3blob: encode state: %w", err)
	}
	if err := s.writer.Put(ctx, s.key, bytes.NewReader(data), "application/json"); err != nil {
		return fmt.Errorf("s3blob: save state: %w", err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.StateStore = (*StateStore)(nil)
