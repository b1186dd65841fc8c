package scorer

import "math"

// maxProximityScore is the score of a candidate sitting exactly on a
// facility.
const maxProximityScore = 10.0

// ProximityScore maps a minimum distance to a bounded [0, 10] sub-score:
// exactly 10 at distance 0, linear decay to 0 at the radius, 0 beyond.
// The unreachable sentinel (+Inf) falls out of the same max as any distance
// at or past the radius. Monotonic non-increasing in distance.
func ProximityScore(distanceKM, radiusKM float64) float64 {
	return maxProximityScore * math.Max(0, 1-distanceKM/radiusKM)
}

// NeedScore maps a deprivation decile and population to an unbounded
// non-negative need score: (11 - decile) * population. Decile 1 (most
// deprived) carries the largest per-capita multiplier. Deliberately not
// normalized to [0, 10]; see NormalizeNeed for the opt-in rescaling.
func NeedScore(imdDecile int, population int64) float64 {
	return float64(11-imdDecile) * float64(population)
}

// CompositeScore combines the three sub-scores under the given weights.
// Pure function of its inputs.
func CompositeScore(need, healthcare, research float64, w Weights) float64 {
	return w.Need*need + w.Healthcare*healthcare + w.Research*research
}

// NormalizeNeed min-max rescales raw need scores to [0, 10] across one run,
// putting need on the same scale as the proximity sub-scores. Returns a new
// slice. When every score is identical the result is all zeros.
func NormalizeNeed(scores []float64) []float64 {
	out := make([]float64, len(scores))
	if len(scores) == 0 {
		return out
	}

	lo, hi := scores[0], scores[0]
	for _, s := range scores[1:] {
		lo = math.Min(lo, s)
		hi = math.Max(hi, s)
	}
	if hi == lo {
		return out
	}

	for i, s := range scores {
		out[i] = maxProximityScore * (s - lo) / (hi - lo)
	}
	return out
}
