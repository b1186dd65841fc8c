package scorer

import (
	"sort"

	"github.com/meridian-analytics/siterank/internal/model"
)

// Rank returns a new slice ordered by total score descending, with ties
// broken by area ID ascending so the order is reproducible across runs and
// platforms. The result is truncated to topK entries; topK = 0 means no
// truncation. The input slice is not mutated.
func Rank(areas []model.ScoredArea, topK int) []model.ScoredArea {
	out := make([]model.ScoredArea, len(areas))
	copy(out, areas)

	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalScore != out[j].TotalScore {
			return out[i].TotalScore > out[j].TotalScore
		}
		return out[i].AreaID < out[j].AreaID
	})

	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	return out
}
