package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/meridian-analytics/siterank/internal/engine"
	"github.com/meridian-analytics/siterank/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id                TEXT PRIMARY KEY,
	created_at        DATETIME NOT NULL,
	radius_km         REAL NOT NULL,
	need_weight       REAL NOT NULL,
	healthcare_weight REAL NOT NULL,
	research_weight   REAL NOT NULL,
	top_k             INTEGER NOT NULL,
	normalize_need    INTEGER NOT NULL DEFAULT 0,
	candidates        INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS scored_areas (
	run_id           TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	area_id          TEXT NOT NULL,
	name             TEXT NOT NULL,
	imd_decile       INTEGER NOT NULL,
	population       INTEGER NOT NULL,
	lat              REAL NOT NULL,
	lon              REAL NOT NULL,
	need_score       REAL NOT NULL,
	healthcare_km    REAL,
	research_km      REAL,
	healthcare_score REAL NOT NULL,
	research_score   REAL NOT NULL,
	total_score      REAL NOT NULL,
	PRIMARY KEY (run_id, area_id)
);

CREATE INDEX IF NOT EXISTS idx_scored_areas_run_score
	ON scored_areas(run_id, total_score DESC, area_id ASC);
`

// Migrate creates the schema if it does not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "sqlite: migrate")
	}
	return nil
}

// SaveRun persists a completed run and its full scored set atomically.
func (s *SQLiteStore) SaveRun(ctx context.Context, res *engine.Result) error {
	rec := recordFromResult(res)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save run")
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, radius_km, need_weight, healthcare_weight,
			research_weight, top_k, normalize_need, candidates)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt, rec.RadiusKM, rec.NeedWeight, rec.HealthcareWeight,
		rec.ResearchWeight, rec.TopK, rec.NormalizeNeed, rec.Candidates,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: insert run %s", rec.ID)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO scored_areas (run_id, area_id, name, imd_decile, population,
			lat, lon, need_score, healthcare_km, research_km,
			healthcare_score, research_score, total_score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare area insert")
	}
	defer func() { _ = stmt.Close() }()

	for _, a := range res.All {
		_, err := stmt.ExecContext(ctx,
			rec.ID, a.AreaID, a.Name, a.IMDDecile, a.Population,
			a.Location.Lat, a.Location.Lon, a.NeedScore,
			nullableKM(a.HealthcareKM), nullableKM(a.ResearchKM),
			a.HealthcareScore, a.ResearchScore, a.TotalScore,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert area %s", a.AreaID)
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "sqlite: commit save run")
	}
	return nil
}

// GetRun loads a stored run with its areas ordered by total score
// descending, ties by area ID.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	var run Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, radius_km, need_weight, healthcare_weight,
			research_weight, top_k, normalize_need, candidates
		FROM runs WHERE id = ?`, id).Scan(
		&run.ID, &run.CreatedAt, &run.RadiusKM, &run.NeedWeight,
		&run.HealthcareWeight, &run.ResearchWeight, &run.TopK,
		&run.NormalizeNeed, &run.Candidates,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrRunNotFound, "sqlite: run %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", id)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT area_id, name, imd_decile, population, lat, lon, need_score,
			healthcare_km, research_km, healthcare_score, research_score, total_score
		FROM scored_areas WHERE run_id = ?
		ORDER BY total_score DESC, area_id ASC`, id)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: query areas for run %s", id)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var a model.ScoredArea
		var hcKM, resKM sql.NullFloat64
		if err := rows.Scan(
			&a.AreaID, &a.Name, &a.IMDDecile, &a.Population,
			&a.Location.Lat, &a.Location.Lon, &a.NeedScore,
			&hcKM, &resKM, &a.HealthcareScore, &a.ResearchScore, &a.TotalScore,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan area row")
		}
		a.HealthcareKM = fromNullable(hcKM)
		a.ResearchKM = fromNullable(resKM)
		run.Areas = append(run.Areas, a)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate area rows")
	}

	return &run, nil
}

// ListRuns returns stored run metadata, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, radius_km, need_weight, healthcare_weight,
			research_weight, top_k, normalize_need, candidates
		FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer func() { _ = rows.Close() }()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(
			&rec.ID, &rec.CreatedAt, &rec.RadiusKM, &rec.NeedWeight,
			&rec.HealthcareWeight, &rec.ResearchWeight, &rec.TopK,
			&rec.NormalizeNeed, &rec.Candidates,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run row")
		}
		out = append(out, rec)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate run rows")
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullableKM(km *float64) any {
	if km == nil {
		return nil
	}
	return *km
}

func fromNullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
