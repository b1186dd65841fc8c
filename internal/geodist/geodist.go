// Package geodist computes great-circle distances between candidate areas
// and facility sets. Distances use the haversine formula on a spherical
// Earth; the per-candidate minimum reduction is the numerical core of the
// ranking pipeline.
package geodist

import (
	"context"
	"math"
	"runtime"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/meridian-analytics/siterank/internal/model"
)

// EarthRadiusKM is the mean spherical Earth radius used by the haversine
// formula.
const EarthRadiusKM = 6371.0

// Unreachable is the sentinel distance for a candidate when the facility
// set is empty. It compares greater than every finite distance, so the
// proximity scorer maps it to zero without a special case.
func Unreachable() float64 { return math.Inf(1) }

// HaversineKM returns the great-circle distance in kilometers between two
// coordinate pairs given in decimal degrees. The asin argument is clamped
// to tolerate floating-point overshoot at identical or antipodal points;
// identical coordinates yield exactly 0.
func HaversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}

	const degToRad = math.Pi / 180

	rlat1 := lat1 * degToRad
	rlat2 := lat2 * degToRad
	dlat := (lat2 - lat1) * degToRad
	dlon := (lon2 - lon1) * degToRad

	sinLat := math.Sin(dlat / 2)
	sinLon := math.Sin(dlon / 2)
	a := sinLat*sinLat + math.Cos(rlat1)*math.Cos(rlat2)*sinLon*sinLon

	return 2 * EarthRadiusKM * math.Asin(math.Min(1, math.Sqrt(a)))
}

// MinDistances computes, for every candidate, the minimum great-circle
// distance in kilometers to any facility in the set. The result slice is
// index-aligned with candidates. An empty facility set is valid: every
// entry is the Unreachable sentinel.
//
// Rows are independent, so candidates are reduced in parallel. A candidate
// or facility with out-of-range coordinates must never reach this function;
// if one does, a DataError is returned and no partial result is produced.
func MinDistances(ctx context.Context, candidates []model.CandidateArea, facilities []model.Facility) ([]float64, error) {
	for _, c := range candidates {
		if err := c.Location.Validate(); err != nil {
			return nil, &model.DataError{RecordID: c.ID, Field: "location", Reason: err.Error()}
		}
	}
	for _, f := range facilities {
		if err := f.Location.Validate(); err != nil {
			return nil, &model.DataError{RecordID: f.ID, Field: "location", Reason: err.Error()}
		}
	}

	out := make([]float64, len(candidates))

	if len(facilities) == 0 {
		for i := range out {
			out[i] = Unreachable()
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, c := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			min := math.Inf(1)
			for _, f := range facilities {
				d := HaversineKM(c.Location.Lat, c.Location.Lon, f.Location.Lat, f.Location.Lon)
				if d < min {
					min = d
				}
			}
			out[i] = min
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "geodist: min distances")
	}
	return out, nil
}
