// Package store persists pipeline runs and their scored rows so that exports
// and the read-only API can serve results without re-running the pipeline.
// Two implementations are provided: SQLite for local single-user work and
// PostgreSQL for shared deployments.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/livability-cli/internal/model"
)

// ErrRunNotFound is returned when a requested run does not exist.
var ErrRunNotFound = eris.New("store: run not found")

// Store is the persistence interface for pipeline results.
type Store interface {
	// Migrate creates or updates the schema. Safe to call on every start.
	Migrate(ctx context.Context) error

	// SaveRun persists a completed run together with its scored rows.
	// When run.ID is empty a new ID is assigned in place. Saving the same
	// run ID twice replaces its rows.
	SaveRun(ctx context.Context, run *model.Run, rows []model.CompositeRow) error

	// GetRun fetches a run by ID. Returns ErrRunNotFound when absent.
	GetRun(ctx context.Context, id string) (*model.Run, error)

	// LatestRun returns the most recently started run.
	LatestRun(ctx context.Context) (*model.Run, error)

	// ListRuns returns runs ordered newest first, at most limit of them.
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)

	// GetScores returns the scored rows of a run ordered by ZIP code.
	GetScores(ctx context.Context, runID string) ([]model.CompositeRow, error)

	Close() error
}

// scoreColumns is the column order shared by both implementations for the
// area_scores table.
var scoreColumns = []string{
	"run_id",
	"zip_code",
	"area_sq_mi",
	"crime_score",
	"school_score",
	"transit_score",
	"housing_score",
	"diversity_score",
	"healthcare_score",
	"lifestyle_score",
	"composite_score",
	"tier",
}

// scoreValues flattens a composite row for insertion, matching scoreColumns.
func scoreValues(runID string, row model.CompositeRow) []any {
	return []any{
		runID,
		row.ZIP,
		row.AreaSqMi,
		row.Scores.Crime,
		row.Scores.Schools,
		row.Scores.Transit,
		row.Scores.Housing,
		row.Scores.Diversity,
		row.Scores.Healthcare,
		row.Scores.Lifestyle,
		row.Composite,
		string(row.Tier),
	}
}
