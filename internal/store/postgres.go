package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/meridian-analytics/siterank/internal/engine"
	"github.com/meridian-analytics/siterank/internal/model"
)

// pgxPool is the subset of pgxpool.Pool the store needs.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// PostgresStore implements Store backed by a pgx connection pool.
type PostgresStore struct {
	pool pgxPool
}

// NewPostgres connects to the given database URL.
func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, eris.New("postgres: database URL is required")
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool.
func NewPostgresFromPool(pool pgxPool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id                TEXT PRIMARY KEY,
	created_at        TIMESTAMPTZ NOT NULL,
	radius_km         DOUBLE PRECISION NOT NULL,
	need_weight       DOUBLE PRECISION NOT NULL,
	healthcare_weight DOUBLE PRECISION NOT NULL,
	research_weight   DOUBLE PRECISION NOT NULL,
	top_k             INTEGER NOT NULL,
	normalize_need    BOOLEAN NOT NULL DEFAULT FALSE,
	candidates        INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS scored_areas (
	run_id           TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	area_id          TEXT NOT NULL,
	name             TEXT NOT NULL,
	imd_decile       INTEGER NOT NULL,
	population       BIGINT NOT NULL,
	lat              DOUBLE PRECISION NOT NULL,
	lon              DOUBLE PRECISION NOT NULL,
	need_score       DOUBLE PRECISION NOT NULL,
	healthcare_km    DOUBLE PRECISION,
	research_km      DOUBLE PRECISION,
	healthcare_score DOUBLE PRECISION NOT NULL,
	research_score   DOUBLE PRECISION NOT NULL,
	total_score      DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (run_id, area_id)
);

CREATE INDEX IF NOT EXISTS idx_scored_areas_run_score
	ON scored_areas(run_id, total_score DESC, area_id ASC);
`

// Migrate creates the schema if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "postgres: migrate")
	}
	return nil
}

// SaveRun persists a completed run and its full scored set in one
// transaction.
func (s *PostgresStore) SaveRun(ctx context.Context, res *engine.Result) error {
	rec := recordFromResult(res)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin save run")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO runs (id, created_at, radius_km, need_weight, healthcare_weight,
			research_weight, top_k, normalize_need, candidates)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.ID, rec.CreatedAt, rec.RadiusKM, rec.NeedWeight, rec.HealthcareWeight,
		rec.ResearchWeight, rec.TopK, rec.NormalizeNeed, rec.Candidates,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: insert run %s", rec.ID)
	}

	for _, a := range res.All {
		_, err := tx.Exec(ctx, `
			INSERT INTO scored_areas (run_id, area_id, name, imd_decile, population,
				lat, lon, need_score, healthcare_km, research_km,
				healthcare_score, research_score, total_score)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			rec.ID, a.AreaID, a.Name, a.IMDDecile, a.Population,
			a.Location.Lat, a.Location.Lon, a.NeedScore,
			a.HealthcareKM, a.ResearchKM,
			a.HealthcareScore, a.ResearchScore, a.TotalScore,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert area %s", a.AreaID)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "postgres: commit save run")
	}
	return nil
}

// GetRun loads a stored run with its areas ordered by total score
// descending, ties by area ID.
func (s *PostgresStore) GetRun(ctx context.Context, id string) (*Run, error) {
	var run Run
	err := s.pool.QueryRow(ctx, `
		SELECT id, created_at, radius_km, need_weight, healthcare_weight,
			research_weight, top_k, normalize_need, candidates
		FROM runs WHERE id = $1`, id).Scan(
		&run.ID, &run.CreatedAt, &run.RadiusKM, &run.NeedWeight,
		&run.HealthcareWeight, &run.ResearchWeight, &run.TopK,
		&run.NormalizeNeed, &run.Candidates,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrRunNotFound, "postgres: run %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", id)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT area_id, name, imd_decile, population, lat, lon, need_score,
			healthcare_km, research_km, healthcare_score, research_score, total_score
		FROM scored_areas WHERE run_id = $1
		ORDER BY total_score DESC, area_id ASC`, id)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: query areas for run %s", id)
	}
	defer rows.Close()

	for rows.Next() {
		var a model.ScoredArea
		if err := rows.Scan(
			&a.AreaID, &a.Name, &a.IMDDecile, &a.Population,
			&a.Location.Lat, &a.Location.Lon, &a.NeedScore,
			&a.HealthcareKM, &a.ResearchKM,
			&a.HealthcareScore, &a.ResearchScore, &a.TotalScore,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan area row")
		}
		run.Areas = append(run.Areas, a)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate area rows")
	}

	return &run, nil
}

// ListRuns returns stored run metadata, newest first.
func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, created_at, radius_km, need_weight, healthcare_weight,
			research_weight, top_k, normalize_need, candidates
		FROM runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(
			&rec.ID, &rec.CreatedAt, &rec.RadiusKM, &rec.NeedWeight,
			&rec.HealthcareWeight, &rec.ResearchWeight, &rec.TopK,
			&rec.NormalizeNeed, &rec.Candidates,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run row")
		}
		out = append(out, rec)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate run rows")
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
