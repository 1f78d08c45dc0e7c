// Package store records batch-run history so operators can see which bank
// files were processed and how many subjects succeeded.
package store

import (
	"context"

	"github.com/sells-group/comps-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus
	Limit  int
}

// RunStats carries the final counters of a batch run.
type RunStats struct {
	Subjects  int
	Succeeded int
	Failed    int
	Empty     int
}

// Store persists batch-run history.
type Store interface {
	CreateRun(ctx context.Context, bankFile string, subjects int) (*model.BatchRun, error)
	FinishRun(ctx context.Context, runID string, status model.RunStatus, stats RunStats) error
	GetRun(ctx context.Context, runID string) (*model.BatchRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.BatchRun, error)
	Close() error
}
