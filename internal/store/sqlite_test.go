package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/livability-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func fptr(v float64) *float64 { return &v }

func testRows() []model.CompositeRow {
	return []model.CompositeRow{
		{
			ZIP:      "02108",
			AreaSqMi: 0.25,
			Scores: model.DomainScores{
				Crime:      fptr(7.2),
				Schools:    fptr(8.5),
				Transit:    fptr(9.1),
				Housing:    fptr(3.4),
				Diversity:  fptr(6.0),
				Healthcare: fptr(8.8),
				Lifestyle:  fptr(7.5),
			},
			Composite: fptr(7.31),
			Tier:      model.TierGood,
		},
		{
			ZIP:      "02109",
			AreaSqMi: 0.31,
			Scores: model.DomainScores{
				Crime:   fptr(6.1),
				Transit: fptr(5.0),
			},
			Composite: fptr(5.66),
			Tier:      model.TierBelowAverage,
		},
		{
			ZIP:      "02110",
			AreaSqMi: 0.18,
			Tier:     model.TierNoData,
		},
	}
}

func TestSQLite_SaveRun_RoundTrip(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run := &model.Run{
		StartedAt:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		CompletedAt:   time.Date(2026, 3, 1, 12, 4, 30, 0, time.UTC),
		Areas:         3,
		PointsDropped: 12,
		OrphanRows:    1,
	}
	require.NoError(t, st.SaveRun(ctx, run, testRows()))
	require.NotEmpty(t, run.ID, "SaveRun should assign an ID")

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.True(t, got.StartedAt.Equal(run.StartedAt))
	assert.True(t, got.CompletedAt.Equal(run.CompletedAt))
	assert.Equal(t, 3, got.Areas)
	assert.Equal(t, 12, got.PointsDropped)
	assert.Equal(t, 1, got.OrphanRows)
}

func TestSQLite_GetScores_PreservesNulls(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run := &model.Run{StartedAt: time.Now().UTC(), CompletedAt: time.Now().UTC(), Areas: 3}
	require.NoError(t, st.SaveRun(ctx, run, testRows()))

	rows, err := st.GetScores(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Ordered by ZIP.
	assert.Equal(t, "02108", rows[0].ZIP)
	assert.Equal(t, "02109", rows[1].ZIP)
	assert.Equal(t, "02110", rows[2].ZIP)

	require.NotNil(t, rows[0].Composite)
	assert.InDelta(t, 7.31, *rows[0].Composite, 1e-9)
	assert.Equal(t, model.TierGood, rows[0].Tier)

	// Partial row keeps its gaps.
	assert.Nil(t, rows[1].Scores.Schools)
	require.NotNil(t, rows[1].Scores.Crime)
	assert.InDelta(t, 6.1, *rows[1].Scores.Crime, 1e-9)

	// No-data row is all nil but still present.
	assert.Nil(t, rows[2].Composite)
	assert.Nil(t, rows[2].Scores.Crime)
	assert.Equal(t, model.TierNoData, rows[2].Tier)
	assert.InDelta(t, 0.18, rows[2].AreaSqMi, 1e-9)
}

func TestSQLite_SaveRun_ReplacesRows(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run := &model.Run{StartedAt: time.Now().UTC(), CompletedAt: time.Now().UTC(), Areas: 3}
	require.NoError(t, st.SaveRun(ctx, run, testRows()))

	// Re-save the same run with a single row.
	require.NoError(t, st.SaveRun(ctx, run, testRows()[:1]))

	rows, err := st.GetScores(ctx, run.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestSQLite_GetRun_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetRun(context.Background(), "nonexistent-run")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrRunNotFound))
}

func TestSQLite_LatestRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.LatestRun(ctx)
	assert.True(t, eris.Is(err, ErrRunNotFound))

	older := &model.Run{StartedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), CompletedAt: time.Date(2026, 1, 1, 1, 0, 0, 0, time.UTC)}
	newer := &model.Run{StartedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), CompletedAt: time.Date(2026, 2, 1, 1, 0, 0, 0, time.UTC)}
	require.NoError(t, st.SaveRun(ctx, older, nil))
	require.NoError(t, st.SaveRun(ctx, newer, nil))

	got, err := st.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.ID)
}

func TestSQLite_ListRuns(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		run := &model.Run{
			StartedAt:   time.Date(2026, 1, 1+i, 0, 0, 0, 0, time.UTC),
			CompletedAt: time.Date(2026, 1, 1+i, 1, 0, 0, 0, time.UTC),
		}
		require.NoError(t, st.SaveRun(ctx, run, nil))
	}

	runs, err := st.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	// Newest first.
	assert.True(t, runs[0].StartedAt.After(runs[1].StartedAt))
}
