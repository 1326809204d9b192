package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/livability-cli/internal/db"
	"github.com/sells-group/livability-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"get_run":    `SELECT id, started_at, completed_at, areas, points_dropped, orphan_rows FROM runs WHERE id = $1`,
	"latest_run": `SELECT id, started_at, completed_at, areas, points_dropped, orphan_rows FROM runs ORDER BY started_at DESC LIMIT 1`,
	"get_scores": `SELECT zip_code, area_sq_mi, crime_score, school_score, transit_score, housing_score, diversity_score, healthcare_score, lifestyle_score, composite_score, tier FROM area_scores WHERE run_id = $1 ORDER BY zip_code`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool for subsystems that need direct
// query access.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id             TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	started_at     TIMESTAMPTZ NOT NULL,
	completed_at   TIMESTAMPTZ NOT NULL,
	areas          INTEGER NOT NULL DEFAULT 0,
	points_dropped INTEGER NOT NULL DEFAULT 0,
	orphan_rows    INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS area_scores (
	run_id           TEXT NOT NULL REFERENCES runs(id),
	zip_code         TEXT NOT NULL,
	area_sq_mi       DOUBLE PRECISION NOT NULL,
	crime_score      DOUBLE PRECISION,
	school_score     DOUBLE PRECISION,
	transit_score    DOUBLE PRECISION,
	housing_score    DOUBLE PRECISION,
	diversity_score  DOUBLE PRECISION,
	healthcare_score DOUBLE PRECISION,
	lifestyle_score  DOUBLE PRECISION,
	composite_score  DOUBLE PRECISION,
	tier             TEXT NOT NULL,
	PRIMARY KEY (run_id, zip_code)
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
CREATE INDEX IF NOT EXISTS idx_area_scores_zip ON area_scores(zip_code);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveRun(ctx context.Context, run *model.Run, rows []model.CompositeRow) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, started_at, completed_at, areas, points_dropped, orphan_rows)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
			started_at = EXCLUDED.started_at,
			completed_at = EXCLUDED.completed_at,
			areas = EXCLUDED.areas,
			points_dropped = EXCLUDED.points_dropped,
			orphan_rows = EXCLUDED.orphan_rows`,
		run.ID, run.StartedAt.UTC(), run.CompletedAt.UTC(), run.Areas, run.PointsDropped, run.OrphanRows,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: insert run")
	}

	// Replace, not append: re-saving a run must not leave stale rows behind.
	if _, err := s.pool.Exec(ctx, `DELETE FROM area_scores WHERE run_id = $1`, run.ID); err != nil {
		return eris.Wrap(err, "postgres: clear scores")
	}

	values := make([][]any, 0, len(rows))
	for _, row := range rows {
		values = append(values, scoreValues(run.ID, row))
	}
	if _, err := db.CopyFrom(ctx, s.pool, "area_scores", scoreColumns, values); err != nil {
		return eris.Wrap(err, "postgres: copy scores")
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, started_at, completed_at, areas, points_dropped, orphan_rows FROM runs WHERE id = $1`, id)
	return scanPostgresRun(row)
}

func (s *PostgresStore) LatestRun(ctx context.Context) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, started_at, completed_at, areas, points_dropped, orphan_rows FROM runs ORDER BY started_at DESC LIMIT 1`)
	return scanPostgresRun(row)
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, started_at, completed_at, areas, points_dropped, orphan_rows FROM runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.CompletedAt, &r.Areas, &r.PointsDropped, &r.OrphanRows); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs")
}

func (s *PostgresStore) GetScores(ctx context.Context, runID string) ([]model.CompositeRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT zip_code, area_sq_mi, crime_score, school_score, transit_score, housing_score, diversity_score, healthcare_score, lifestyle_score, composite_score, tier FROM area_scores WHERE run_id = $1 ORDER BY zip_code`, runID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query scores")
	}
	defer rows.Close()

	var out []model.CompositeRow
	for rows.Next() {
		var (
			r    model.CompositeRow
			tier string
		)
		err := rows.Scan(&r.ZIP, &r.AreaSqMi,
			&r.Scores.Crime, &r.Scores.Schools, &r.Scores.Transit, &r.Scores.Housing,
			&r.Scores.Diversity, &r.Scores.Healthcare, &r.Scores.Lifestyle, &r.Composite, &tier)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan score")
		}
		r.Tier = model.Tier(tier)
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: query scores")
}

func scanPostgresRun(row pgx.Row) (*model.Run, error) {
	var r model.Run
	err := row.Scan(&r.ID, &r.StartedAt, &r.CompletedAt, &r.Areas, &r.PointsDropped, &r.OrphanRows)
	if err == pgx.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan run")
	}
	r.StartedAt = r.StartedAt.UTC()
	r.CompletedAt = r.CompletedAt.UTC()
	return &r, nil
}
