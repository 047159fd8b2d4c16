// Package ports defines the interfaces between the pipeline and its
// adapters.
package ports

import (
	"context"

	"neuropipe/domain/recording"
	"neuropipe/domain/run"
)

// TableStore provides load/save access to the persisted recording table.
// Save is expected to write a backup of the previous file first; a failed
// backup must not block the save.
type TableStore interface {
	Load(ctx context.Context) (*recording.Dataset, error)
	Save(ctx context.Context, ds *recording.Dataset) error
}

// RunStore persists pipeline run summaries for later review.
type RunStore interface {
	EnsureSchema(ctx context.Context) error
	SaveSummary(ctx context.Context, s *run.Summary) error
	RecentSummaries(ctx context.Context, limit int) ([]*run.Summary, error)
}
