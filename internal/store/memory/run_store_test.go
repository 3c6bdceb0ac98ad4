package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitbash-dev/tiktok-comments/internal/store"
)

func TestRecordRunAppends(t *testing.T) {
	t.Parallel()
	s := New()
	require.Empty(t, s.Runs())

	require.NoError(t, s.RecordRun(context.Background(), store.RunRecord{ID: "a"}))
	require.NoError(t, s.RecordRun(context.Background(), store.RunRecord{ID: "b"}))

	runs := s.Runs()
	require.Len(t, runs, 2)
	assert.Equal(t, "a", runs[0].ID)
	assert.Equal(t, "b", runs[1].ID)
}

func TestRunsReturnsCopy(t *testing.T) {
	t.Parallel()
	s := New()
	require.NoError(t, s.RecordRun(context.Background(), store.RunRecord{ID: "a"}))

	runs := s.Runs()
	runs[0].ID = "mutated"
	assert.Equal(t, "a", s.Runs()[0].ID)
}

func TestRecordRunIsSafeForConcurrentUse(t *testing.T) {
	t.Parallel()
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.RecordRun(context.Background(), store.RunRecord{ID: "x"})
			_ = s.Runs()
		}()
	}
	wg.Wait()
	assert.Len(t, s.Runs(), 20)
}
