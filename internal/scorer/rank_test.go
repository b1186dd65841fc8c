package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-analytics/siterank/internal/model"
)

func scored(id string, total float64) model.ScoredArea {
	return model.ScoredArea{AreaID: id, TotalScore: total}
}

func TestRankOrdering(t *testing.T) {
	in := []model.ScoredArea{
		scored("C", 100),
		scored("A", 300),
		scored("B", 200),
	}

	got := Rank(in, 0)
	require.Len(t, got, 3)
	assert.Equal(t, "A", got[0].AreaID)
	assert.Equal(t, "B", got[1].AreaID)
	assert.Equal(t, "C", got[2].AreaID)
}

func TestRankTieBreakByID(t *testing.T) {
	in := []model.ScoredArea{
		scored("Z", 100),
		scored("A", 100),
		scored("M", 100),
	}

	got := Rank(in, 0)
	assert.Equal(t, []string{"A", "M", "Z"}, []string{got[0].AreaID, got[1].AreaID, got[2].AreaID})
}

func TestRankTruncation(t *testing.T) {
	in := []model.ScoredArea{
		scored("A", 4), scored("B", 3), scored("C", 2), scored("D", 1),
	}

	assert.Len(t, Rank(in, 2), 2)
	assert.Len(t, Rank(in, 10), 4, "topK beyond input length returns everything")
	assert.Len(t, Rank(in, 0), 4, "topK=0 means no truncation")
}

func TestRankDoesNotMutateInput(t *testing.T) {
	in := []model.ScoredArea{
		scored("B", 1),
		scored("A", 2),
	}

	_ = Rank(in, 1)
	assert.Equal(t, "B", in[0].AreaID)
	assert.Equal(t, "A", in[1].AreaID)
}

func TestRankDeterministic(t *testing.T) {
	in := []model.ScoredArea{
		scored("E", 50), scored("B", 75), scored("D", 50),
		scored("A", 75), scored("C", 90),
	}

	first := Rank(in, 0)
	for range 5 {
		assert.Equal(t, first, Rank(in, 0))
	}
}
