package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/livability-cli/internal/model"
	"github.com/sells-group/livability-cli/internal/store"
)

// stubStore is an in-memory Store for router tests.
type stubStore struct {
	runs []model.Run
	rows map[string][]model.CompositeRow
}

func (s *stubStore) Migrate(context.Context) error { return nil }
func (s *stubStore) Close() error                  { return nil }

func (s *stubStore) SaveRun(_ context.Context, run *model.Run, rows []model.CompositeRow) error {
	s.runs = append(s.runs, *run)
	if s.rows == nil {
		s.rows = make(map[string][]model.CompositeRow)
	}
	s.rows[run.ID] = rows
	return nil
}

func (s *stubStore) GetRun(_ context.Context, id string) (*model.Run, error) {
	for i := range s.runs {
		if s.runs[i].ID == id {
			return &s.runs[i], nil
		}
	}
	return nil, store.ErrRunNotFound
}

func (s *stubStore) LatestRun(context.Context) (*model.Run, error) {
	if len(s.runs) == 0 {
		return nil, store.ErrRunNotFound
	}
	return &s.runs[len(s.runs)-1], nil
}

func (s *stubStore) ListRuns(_ context.Context, limit int) ([]model.Run, error) {
	if limit > len(s.runs) {
		limit = len(s.runs)
	}
	return s.runs[:limit], nil
}

func (s *stubStore) GetScores(_ context.Context, runID string) ([]model.CompositeRow, error) {
	return s.rows[runID], nil
}

func fptr(v float64) *float64 { return &v }

func seededStore(t *testing.T) *stubStore {
	t.Helper()
	st := &stubStore{}
	run := &model.Run{
		ID:          "run-1",
		StartedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		CompletedAt: time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC),
		Areas:       2,
	}
	rows := []model.CompositeRow{
		{ZIP: "02108", AreaSqMi: 0.25, Composite: fptr(7.31), Tier: model.TierGood},
		{ZIP: "02109", AreaSqMi: 0.31, Tier: model.TierNoData},
	}
	require.NoError(t, st.SaveRun(context.Background(), run, rows))
	return st
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	rec := get(t, newRouter(&stubStore{}), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouter_Scores(t *testing.T) {
	rec := get(t, newRouter(seededStore(t)), "/api/scores")
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []model.CompositeRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "02108", rows[0].ZIP)
	require.NotNil(t, rows[0].Composite)
	assert.InDelta(t, 7.31, *rows[0].Composite, 1e-9)
	assert.Nil(t, rows[1].Composite)
}

func TestRouter_ScoreByZIP(t *testing.T) {
	router := newRouter(seededStore(t))

	// Unpadded codes normalize before lookup.
	rec := get(t, router, "/api/scores/2108")
	require.Equal(t, http.StatusOK, rec.Code)

	var row model.CompositeRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &row))
	assert.Equal(t, "02108", row.ZIP)
	assert.Equal(t, model.TierGood, row.Tier)

	rec = get(t, router, "/api/scores/99999")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_NoRuns(t *testing.T) {
	router := newRouter(&stubStore{})

	rec := get(t, router, "/api/runs/latest")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, router, "/api/scores")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Listing runs is empty, not an error.
	rec = get(t, router, "/api/runs")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestRouter_LatestRun(t *testing.T) {
	rec := get(t, newRouter(seededStore(t)), "/api/runs/latest")
	require.Equal(t, http.StatusOK, rec.Code)

	var run model.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, 2, run.Areas)
}
