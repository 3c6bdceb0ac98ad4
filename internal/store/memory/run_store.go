// Package memory provides an in-memory RunStore for development and
// tests.
package memory

import (
	"context"
	"sync"

	"github.com/bitbash-dev/tiktok-comments/internal/store"
)

// RunStore keeps run records in memory.
type RunStore struct {
	mu   sync.RWMutex
	runs []store.RunRecord
}

// New constructs a RunStore.
func New() *RunStore {
	return &RunStore{}
}

// RecordRun appends the record.
func (s *RunStore) RecordRun(_ context.Context, rec store.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, rec)
	return nil
}

// Runs returns a copy of all recorded runs.
func (s *RunStore) Runs() []store.RunRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.RunRecord, len(s.runs))
	copy(out, s.runs)
	return out
}

// Close is a no-op for the in-memory store.
func (s *RunStore) Close() {}
