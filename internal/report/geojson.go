package report

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/meridian-analytics/siterank/internal/model"
)

// WriteGeoJSON renders every scored area as a point feature so a map layer
// can be color-coded by score. Features keep the order of the input slice.
func WriteGeoJSON(w io.Writer, areas []model.ScoredArea) error {
	fc := &geojson.FeatureCollection{
		Features: make([]*geojson.Feature, 0, len(areas)),
	}

	for _, a := range areas {
		props := map[string]any{
			"area_id":          a.AreaID,
			"name":             a.Name,
			"imd_decile":       a.IMDDecile,
			"population":       a.Population,
			"need_score":       a.NeedScore,
			"healthcare_score": a.HealthcareScore,
			"research_score":   a.ResearchScore,
			"total_score":      a.TotalScore,
		}
		if a.HealthcareKM != nil {
			props["healthcare_km"] = *a.HealthcareKM
		}
		if a.ResearchKM != nil {
			props["research_km"] = *a.ResearchKM
		}

		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         a.AreaID,
			Geometry:   geom.NewPointFlat(geom.XY, []float64{a.Location.Lon, a.Location.Lat}),
			Properties: props,
		})
	}

	enc := json.NewEncoder(w)
	if err := enc.Encode(fc); err != nil {
		return eris.Wrap(err, "report: encode GeoJSON")
	}
	return nil
}
