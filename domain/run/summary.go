package run

import (
	"time"

	"neuropipe/domain/core"
)

// Summary is the persisted record of one pipeline run: what was processed
// and the headline numbers a later reader needs to judge the run.
type Summary struct {
	ID          core.RunID `db:"id"`
	DatasetPath string     `db:"dataset_path"`

	TotalRows      int `db:"total_rows"`
	ValidArenaRows int `db:"valid_arena_rows"`
	ScoredRows     int `db:"scored_rows"`
	GroupCount     int `db:"group_count"`
	DegenerateGrps int `db:"degenerate_groups"`

	GlobalScoreMean float64 `db:"global_score_mean"`
	GlobalScoreStd  float64 `db:"global_score_std"`

	StartedAt  time.Time `db:"started_at"`
	FinishedAt time.Time `db:"finished_at"`
}

// NewSummary creates a summary for a run starting now.
func NewSummary(datasetPath string) *Summary {
	return &Summary{
		ID:          core.RunID(core.NewID()),
		DatasetPath: datasetPath,
		StartedAt:   time.Now(),
	}
}

// Duration returns the wall-clock run time.
func (s *Summary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
