// Package store persists completed ranking runs so they can be listed,
// replayed, and served over HTTP without recomputation. The scoring engine
// itself stays stateless; persistence happens strictly after a run
// completes.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/meridian-analytics/siterank/internal/config"
	"github.com/meridian-analytics/siterank/internal/engine"
	"github.com/meridian-analytics/siterank/internal/model"
)

// ErrRunNotFound reports a run ID absent from the store.
var ErrRunNotFound = eris.New("store: run not found")

// RunRecord is the stored metadata of one completed run.
type RunRecord struct {
	ID               string    `json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	RadiusKM         float64   `json:"radius_km"`
	NeedWeight       float64   `json:"need_weight"`
	HealthcareWeight float64   `json:"healthcare_weight"`
	ResearchWeight   float64   `json:"research_weight"`
	TopK             int       `json:"top_k"`
	NormalizeNeed    bool      `json:"normalize_need"`
	Candidates       int       `json:"candidates"`
}

// Run is a stored run with its full scored set, ordered by total score
// descending with ties broken by area ID.
type Run struct {
	RunRecord
	Areas []model.ScoredArea `json:"areas"`
}

// Ranked returns the stored run's top-K slice under its own TopK setting.
func (r *Run) Ranked() []model.ScoredArea {
	if r.TopK > 0 && len(r.Areas) > r.TopK {
		return r.Areas[:r.TopK]
	}
	return r.Areas
}

// Store defines the persistence interface for completed runs.
type Store interface {
	SaveRun(ctx context.Context, res *engine.Result) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a Store for the configured driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLite(cfg.Path)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}

// recordFromResult flattens run parameters into a RunRecord.
func recordFromResult(res *engine.Result) RunRecord {
	return RunRecord{
		ID:               res.RunID,
		CreatedAt:        res.FinishedAt.UTC(),
		RadiusKM:         res.Params.RadiusKM,
		NeedWeight:       res.Params.Weights.Need,
		HealthcareWeight: res.Params.Weights.Healthcare,
		ResearchWeight:   res.Params.Weights.Research,
		TopK:             res.Params.TopK,
		NormalizeNeed:    res.Params.NormalizeNeed,
		Candidates:       len(res.All),
	}
}
