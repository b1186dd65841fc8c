// Package engine wires the distance engine, scorers, and ranker into a
// single batch run over one candidate set and two facility sets. A run is a
// pure, stateless transformation: identical inputs and parameters yield
// identical output ordering and scores.
package engine

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/meridian-analytics/siterank/internal/geodist"
	"github.com/meridian-analytics/siterank/internal/model"
	"github.com/meridian-analytics/siterank/internal/scorer"
)

// Inputs is one snapshot of cleaned records entering a run.
type Inputs struct {
	Candidates []model.CandidateArea
	Healthcare []model.Facility
	Research   []model.Facility
}

// Params are the run parameters. The radius is shared by both facility
// categories.
type Params struct {
	RadiusKM      float64        `json:"radius_km"`
	Weights       scorer.Weights `json:"weights"`
	TopK          int            `json:"top_k"`
	NormalizeNeed bool           `json:"normalize_need"`
}

// DefaultParams returns the standard run parameters.
func DefaultParams() Params {
	return Params{
		RadiusKM: 10.0,
		Weights:  scorer.DefaultWeights(),
		TopK:     10,
	}
}

// Validate fails fast on parameters that would make the run meaningless.
func (p Params) Validate() error {
	if p.RadiusKM <= 0 {
		return &model.ConfigurationError{Param: "radius_km", Reason: "must be > 0"}
	}
	if p.TopK < 0 {
		return &model.ConfigurationError{Param: "top_k", Reason: "must be >= 0"}
	}
	if err := p.Weights.Validate(); err != nil {
		return &model.ConfigurationError{Param: "weights", Reason: err.Error()}
	}
	return nil
}

// Result is the output of one complete run: the ranked top-K slice, the
// full scored set for collaborators that render every candidate, and the
// per-category proximity results.
type Result struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Params     Params

	Ranked    []model.ScoredArea
	All       []model.ScoredArea // input order, unranked
	Proximity []model.ProximityResult
}

// Run executes one ranking run. Any DataError or ConfigurationError aborts
// the whole batch; a partially-scored result is never produced. Empty
// facility sets are valid and score zero proximity for that category.
func Run(ctx context.Context, in Inputs, p Params) (*Result, error) {
	start := time.Now()

	if err := p.Validate(); err != nil {
		return nil, err
	}
	for _, c := range in.Candidates {
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}
	for _, f := range append(append([]model.Facility{}, in.Healthcare...), in.Research...) {
		if err := f.Validate(); err != nil {
			return nil, err
		}
	}

	log := zap.L().With(
		zap.Int("candidates", len(in.Candidates)),
		zap.Int("healthcare", len(in.Healthcare)),
		zap.Int("research", len(in.Research)),
	)

	// The two categories are independent; reduce them concurrently.
	var healthKM, researchKM []float64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		healthKM, err = geodist.MinDistances(gctx, in.Candidates, in.Healthcare)
		return err
	})
	g.Go(func() error {
		var err error
		researchKM, err = geodist.MinDistances(gctx, in.Candidates, in.Research)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "engine: distance reduction")
	}

	needScores := make([]float64, len(in.Candidates))
	for i, c := range in.Candidates {
		needScores[i] = scorer.NeedScore(c.IMDDecile, c.Population)
	}
	weightedNeed := needScores
	if p.NormalizeNeed {
		weightedNeed = scorer.NormalizeNeed(needScores)
	}

	all := make([]model.ScoredArea, len(in.Candidates))
	proximity := make([]model.ProximityResult, 0, 2*len(in.Candidates))
	for i, c := range in.Candidates {
		hcScore := scorer.ProximityScore(healthKM[i], p.RadiusKM)
		resScore := scorer.ProximityScore(researchKM[i], p.RadiusKM)

		all[i] = model.ScoredArea{
			AreaID:          c.ID,
			Name:            c.Name,
			IMDDecile:       c.IMDDecile,
			Population:      c.Population,
			Location:        c.Location,
			NeedScore:       needScores[i],
			HealthcareKM:    finiteOrNil(healthKM[i]),
			ResearchKM:      finiteOrNil(researchKM[i]),
			HealthcareScore: hcScore,
			ResearchScore:   resScore,
			TotalScore:      scorer.CompositeScore(weightedNeed[i], hcScore, resScore, p.Weights),
		}
		proximity = append(proximity,
			model.ProximityResult{AreaID: c.ID, Category: model.CategoryHealthcare, DistanceKM: healthKM[i]},
			model.ProximityResult{AreaID: c.ID, Category: model.CategoryResearch, DistanceKM: researchKM[i]},
		)
	}

	res := &Result{
		RunID:      uuid.NewString(),
		StartedAt:  start,
		FinishedAt: time.Now(),
		Params:     p,
		Ranked:     scorer.Rank(all, p.TopK),
		All:        all,
		Proximity:  proximity,
	}

	log.Info("engine: run complete",
		zap.String("run_id", res.RunID),
		zap.Int("ranked", len(res.Ranked)),
		zap.Duration("elapsed", res.FinishedAt.Sub(start)),
	)
	return res, nil
}

// finiteOrNil converts the unreachable sentinel to nil for JSON-safe
// records.
func finiteOrNil(d float64) *float64 {
	if math.IsInf(d, 1) {
		return nil
	}
	return &d
}
