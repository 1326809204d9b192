package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/livability-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id             TEXT PRIMARY KEY,
	started_at     DATETIME NOT NULL,
	completed_at   DATETIME NOT NULL,
	areas          INTEGER NOT NULL DEFAULT 0,
	points_dropped INTEGER NOT NULL DEFAULT 0,
	orphan_rows    INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS area_scores (
	run_id           TEXT NOT NULL REFERENCES runs(id),
	zip_code         TEXT NOT NULL,
	area_sq_mi       REAL NOT NULL,
	crime_score      REAL,
	school_score     REAL,
	transit_score    REAL,
	housing_score    REAL,
	diversity_score  REAL,
	healthcare_score REAL,
	lifestyle_score  REAL,
	composite_score  REAL,
	tier             TEXT NOT NULL,
	PRIMARY KEY (run_id, zip_code)
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_area_scores_zip ON area_scores(zip_code);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run *model.Run, rows []model.CompositeRow) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, completed_at, areas, points_dropped, orphan_rows)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
			started_at = excluded.started_at,
			completed_at = excluded.completed_at,
			areas = excluded.areas,
			points_dropped = excluded.points_dropped,
			orphan_rows = excluded.orphan_rows`,
		run.ID, run.StartedAt.UTC(), run.CompletedAt.UTC(), run.Areas, run.PointsDropped, run.OrphanRows,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: insert run")
	}

	// Replace, not append: re-saving a run must not leave stale rows behind.
	if _, err := tx.ExecContext(ctx, `DELETE FROM area_scores WHERE run_id = ?`, run.ID); err != nil {
		return eris.Wrap(err, "sqlite: clear scores")
	}

	insertSQL := `INSERT INTO area_scores (` + strings.Join(scoreColumns, ", ") + `)
		 VALUES (` + strings.TrimSuffix(strings.Repeat("?, ", len(scoreColumns)), ", ") + `)`
	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, scoreValues(run.ID, row)...); err != nil {
			return eris.Wrapf(err, "sqlite: insert score for %s", row.ZIP)
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "sqlite: commit tx")
	}
	return nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, completed_at, areas, points_dropped, orphan_rows FROM runs WHERE id = ?`, id)
	return scanSQLiteRun(row)
}

func (s *SQLiteStore) LatestRun(ctx context.Context) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, completed_at, areas, points_dropped, orphan_rows
		 FROM runs ORDER BY started_at DESC LIMIT 1`)
	return scanSQLiteRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, completed_at, areas, points_dropped, orphan_rows
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.CompletedAt, &r.Areas, &r.PointsDropped, &r.OrphanRows); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs")
}

func (s *SQLiteStore) GetScores(ctx context.Context, runID string) ([]model.CompositeRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT zip_code, area_sq_mi, crime_score, school_score, transit_score, housing_score,
			diversity_score, healthcare_score, lifestyle_score, composite_score, tier
		 FROM area_scores WHERE run_id = ? ORDER BY zip_code`, runID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query scores")
	}
	defer rows.Close()

	var out []model.CompositeRow
	for rows.Next() {
		var (
			r    model.CompositeRow
			vals [8]sql.NullFloat64
			tier string
		)
		err := rows.Scan(&r.ZIP, &r.AreaSqMi,
			&vals[0], &vals[1], &vals[2], &vals[3], &vals[4], &vals[5], &vals[6], &vals[7], &tier)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan score")
		}
		r.Scores.Crime = nullToPtr(vals[0])
		r.Scores.Schools = nullToPtr(vals[1])
		r.Scores.Transit = nullToPtr(vals[2])
		r.Scores.Housing = nullToPtr(vals[3])
		r.Scores.Diversity = nullToPtr(vals[4])
		r.Scores.Healthcare = nullToPtr(vals[5])
		r.Scores.Lifestyle = nullToPtr(vals[6])
		r.Composite = nullToPtr(vals[7])
		r.Tier = model.Tier(tier)
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: query scores")
}

func scanSQLiteRun(row *sql.Row) (*model.Run, error) {
	var r model.Run
	err := row.Scan(&r.ID, &r.StartedAt, &r.CompletedAt, &r.Areas, &r.PointsDropped, &r.OrphanRows)
	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}
	r.StartedAt = r.StartedAt.In(time.UTC)
	r.CompletedAt = r.CompletedAt.In(time.UTC)
	return &r, nil
}

func nullToPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
