package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-analytics/siterank/internal/model"
	"github.com/meridian-analytics/siterank/internal/scorer"
)

func testInputs() Inputs {
	return Inputs{
		Candidates: []model.CandidateArea{
			{
				ID: "E01", Name: "Riverside", IMDDecile: 1, Population: 10000,
				Location: model.GeoPoint{Lat: 51.5074, Lon: -0.1278},
			},
			{
				ID: "E02", Name: "Hillcrest", IMDDecile: 10, Population: 10000,
				Location: model.GeoPoint{Lat: 51.55, Lon: -0.20},
			},
			{
				ID: "E03", Name: "Marshfield", IMDDecile: 5, Population: 0,
				Location: model.GeoPoint{Lat: 51.45, Lon: -0.05},
			},
		},
		Healthcare: []model.Facility{
			{
				ID: "H1", Name: "St Mary's", Category: model.CategoryHealthcare,
				Location: model.GeoPoint{Lat: 51.5074, Lon: -0.1278}, // on E01
			},
		},
		Research: []model.Facility{
			{
				ID: "R1", Name: "Crick Institute", Category: model.CategoryResearch,
				Location: model.GeoPoint{Lat: 51.5318, Lon: -0.1286},
			},
		},
	}
}

func TestRunScoresAndRanks(t *testing.T) {
	res, err := Run(context.Background(), testInputs(), DefaultParams())
	require.NoError(t, err)

	require.Len(t, res.All, 3)
	require.Len(t, res.Ranked, 3)
	assert.NotEmpty(t, res.RunID)
	assert.Len(t, res.Proximity, 6)

	byID := map[string]model.ScoredArea{}
	for _, a := range res.All {
		byID[a.AreaID] = a
	}

	// E01 sits on a healthcare facility: proximity exactly 10.
	e01 := byID["E01"]
	assert.InDelta(t, 10, e01.HealthcareScore, 1e-9)
	require.NotNil(t, e01.HealthcareKM)
	assert.Zero(t, *e01.HealthcareKM)

	// Need anchors from the deprivation formula.
	assert.Equal(t, 100000.0, e01.NeedScore)
	assert.Equal(t, 10000.0, byID["E02"].NeedScore)

	// Need dominates under default weights: most deprived populous area first.
	assert.Equal(t, "E01", res.Ranked[0].AreaID)

	// Total of the top area: 0.5*100000 + 0.25*10 + 0.25*research.
	assert.InDelta(t, 50002.5+0.25*e01.ResearchScore, e01.TotalScore, 1e-6)
}

func TestRunEmptyResearchSet(t *testing.T) {
	in := testInputs()
	in.Research = nil

	res, err := Run(context.Background(), in, DefaultParams())
	require.NoError(t, err, "an empty facility set is a valid input, not an error")

	for _, a := range res.All {
		assert.Nil(t, a.ResearchKM)
		assert.Zero(t, a.ResearchScore)
	}
}

func TestRunIdempotent(t *testing.T) {
	in := testInputs()
	p := DefaultParams()

	first, err := Run(context.Background(), in, p)
	require.NoError(t, err)

	second, err := Run(context.Background(), in, p)
	require.NoError(t, err)

	assert.Equal(t, first.All, second.All)
	assert.Equal(t, first.Ranked, second.Ranked)
}

func TestRunRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name  string
		mut   func(*Params)
		param string
	}{
		{"zero radius", func(p *Params) { p.RadiusKM = 0 }, "radius_km"},
		{"negative radius", func(p *Params) { p.RadiusKM = -5 }, "radius_km"},
		{"negative top_k", func(p *Params) { p.TopK = -1 }, "top_k"},
		{"negative weight", func(p *Params) { p.Weights = scorer.Weights{Need: -1, Healthcare: 1, Research: 1} }, "weights"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mut(&p)

			_, err := Run(context.Background(), testInputs(), p)
			require.Error(t, err)

			var ce *model.ConfigurationError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.param, ce.Param)
		})
	}
}

func TestRunRejectsBadRecords(t *testing.T) {
	in := testInputs()
	in.Candidates[1].IMDDecile = 0

	_, err := Run(context.Background(), in, DefaultParams())
	require.Error(t, err)

	var de *model.DataError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "E02", de.RecordID)
	assert.Equal(t, "imd_decile", de.Field)
}

func TestRunTopKTruncation(t *testing.T) {
	p := DefaultParams()
	p.TopK = 2

	res, err := Run(context.Background(), testInputs(), p)
	require.NoError(t, err)
	assert.Len(t, res.Ranked, 2)
	assert.Len(t, res.All, 3, "the full scored set is always carried")
}

func TestRunNormalizeNeed(t *testing.T) {
	p := DefaultParams()
	p.NormalizeNeed = true

	res, err := Run(context.Background(), testInputs(), p)
	require.NoError(t, err)

	// With need rescaled to [0, 10], proximity sub-scores are no longer
	// inert; the raw need score is still reported unchanged.
	byID := map[string]model.ScoredArea{}
	for _, a := range res.All {
		byID[a.AreaID] = a
	}
	assert.Equal(t, 100000.0, byID["E01"].NeedScore)
	assert.LessOrEqual(t, byID["E01"].TotalScore, 10.0)
}
