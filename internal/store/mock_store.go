package store

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockRunStore is a mock implementation of the RunStore interface for
// testing.
type MockRunStore struct {
	mock.Mock
}

// RecordRun is the mock implementation of the RecordRun method.
func (m *MockRunStore) RecordRun(ctx context.Context, rec RunRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

// Close is the mock implementation of the Close method.
func (m *MockRunStore) Close() {
	m.Called()
}
