package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-analytics/siterank/internal/model"
)

func km(v float64) *float64 { return &v }

func sampleAreas() []model.ScoredArea {
	return []model.ScoredArea{
		{
			AreaID: "E01", Name: "Riverside", IMDDecile: 1, Population: 10000,
			Location:  model.GeoPoint{Lat: 51.5074, Lon: -0.1278},
			NeedScore: 100000, HealthcareKM: km(0), HealthcareScore: 10,
			ResearchKM: nil, ResearchScore: 0, TotalScore: 50002.5,
		},
		{
			AreaID: "E02", Name: "Hillcrest", IMDDecile: 10, Population: 2500,
			Location:  model.GeoPoint{Lat: 53.4808, Lon: -2.2426},
			NeedScore: 2500, HealthcareKM: km(4.2), HealthcareScore: 5.8,
			ResearchKM: nil, ResearchScore: 0, TotalScore: 1251.45,
		},
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, sampleAreas()))

	out := buf.String()
	assert.Contains(t, out, "Riverside")
	assert.Contains(t, out, "none found", "nil distance renders the none-found marker")
	assert.Contains(t, out, "50002.5")

	// Rank column counts from 1.
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4) // header + separator + 2 rows
	assert.True(t, strings.HasPrefix(lines[2], "1 "))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleAreas()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3) // header + 2 rows

	assert.Equal(t, "area_id", records[0][0])
	assert.Equal(t, "E01", records[1][0])
	assert.Equal(t, "0.000", records[1][4])
	assert.Equal(t, "", records[1][5], "missing research distance is an empty cell")
}

func TestWriteGeoJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteGeoJSON(&buf, sampleAreas()))

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			ID       string `json:"id"`
			Geometry struct {
				Type        string    `json:"type"`
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fc))

	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 2, "every candidate appears in the map layer")

	f := fc.Features[0]
	assert.Equal(t, "E01", f.ID)
	assert.Equal(t, "Point", f.Geometry.Type)
	assert.InDelta(t, -0.1278, f.Geometry.Coordinates[0], 1e-9) // lon first
	assert.InDelta(t, 51.5074, f.Geometry.Coordinates[1], 1e-9)
	assert.Equal(t, 50002.5, f.Properties["total_score"])
	_, hasResearchKM := f.Properties["research_km"]
	assert.False(t, hasResearchKM, "unreachable categories omit the distance property")
}

func TestWriteGeoJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteGeoJSON(&buf, nil))

	var fc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fc))
	assert.Equal(t, "FeatureCollection", fc["type"])
}
