// Package store defines the run-history persistence interface.
package store

import (
	"context"
	"time"
)

// RunStatus represents the terminal outcome of one scrape job.
type RunStatus string

// Run status values persisted per job.
const (
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusEmpty     RunStatus = "empty"
	RunStatusFailed    RunStatus = "failed"
)

// RunRecord is persisted once per executed scrape job.
type RunRecord struct {
	ID           string
	VideoURL     string
	VideoID      string
	CommentCount int
	ExportFormat string
	Status       RunStatus
	ErrorText    string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// RunStore persists run records. Implementations must tolerate being
// called sequentially across jobs; a store failure is never fatal to
// the job that produced the record.
type RunStore interface {
	RecordRun(ctx context.Context, rec RunRecord) error
	Close()
}
