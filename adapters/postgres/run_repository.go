package postgres

import (
	"context"
	"fmt"

	"neuropipe/domain/run"
	"neuropipe/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// runRepository persists pipeline run summaries
type runRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a run summary repository
func NewRunRepository(db *sqlx.DB) ports.RunStore {
	return &runRepository{db: db}
}

// Connect opens a Postgres connection for the run store.
func Connect(url string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the run_summaries table when absent.
func (r *runRepository) EnsureSchema(ctx context.Context) error {
	schema := `CREATE TABLE IF NOT EXISTS run_summaries (
		id TEXT PRIMARY KEY,
		dataset_path TEXT NOT NULL,
		total_rows INTEGER NOT NULL,
		valid_arena_rows INTEGER NOT NULL,
		scored_rows INTEGER NOT NULL,
		group_count INTEGER NOT NULL,
		degenerate_groups INTEGER NOT NULL,
		global_score_mean DOUBLE PRECISION,
		global_score_std DOUBLE PRECISION,
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL
	)`

	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure run_summaries schema: %w", err)
	}
	return nil
}

// SaveSummary inserts one run summary row
func (r *runRepository) SaveSummary(ctx context.Context, s *run.Summary) error {
	query := `INSERT INTO run_summaries (
		id, dataset_path, total_rows, valid_arena_rows, scored_rows,
		group_count, degenerate_groups, global_score_mean, global_score_std,
		started_at, finished_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.DatasetPath, s.TotalRows, s.ValidArenaRows, s.ScoredRows,
		s.GroupCount, s.DegenerateGrps, s.GlobalScoreMean, s.GlobalScoreStd,
		s.StartedAt, s.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save run summary: %w", err)
	}
	return nil
}

// RecentSummaries returns the latest run summaries, newest first.
func (r *runRepository) RecentSummaries(ctx context.Context, limit int) ([]*run.Summary, error) {
	query := `SELECT id, dataset_path, total_rows, valid_arena_rows, scored_rows,
		group_count, degenerate_groups, global_score_mean, global_score_std,
		started_at, finished_at
	FROM run_summaries ORDER BY started_at DESC LIMIT $1`

	var summaries []*run.Summary
	if err := r.db.SelectContext(ctx, &summaries, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list run summaries: %w", err)
	}
	return summaries, nil
}
