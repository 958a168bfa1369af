package ranker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fazecat/momentumwatch/Internal/types"
	"github.com/fazecat/momentumwatch/Internal/utils/config"
)

func testRanker() *Ranker {
	return New(config.Default(), zap.NewNop().Sugar())
}

func TestRankNormalize(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   []float64
	}{
		{"empty", []float64{}, []float64{}},
		{"single maps to middle", []float64{42}, []float64{0.5}},
		{"two distinct", []float64{5, 3}, []float64{1, 0}},
		{"distinct spread", []float64{10, 30, 20}, []float64{0, 1, 0.5}},
		{"all tied", []float64{7, 7, 7}, []float64{0.5, 0.5, 0.5}},
		{"partial tie", []float64{1, 2, 2, 3}, []float64{0, 0.5, 0.5, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RankNormalize(tt.values)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-9)
			}
		})
	}
}

func TestRankNormalizeDistinctCoversGrid(t *testing.T) {
	values := []float64{4, 1, 3, 5, 2}
	got := RankNormalize(values)
	// distinct values map onto {0, 0.25, 0.5, 0.75, 1}
	seen := map[float64]bool{}
	for _, v := range got {
		seen[v] = true
	}
	for _, want := range []float64{0, 0.25, 0.5, 0.75, 1} {
		assert.True(t, seen[want], "missing grid value %v", want)
	}
}

func candidate(symbol string, pct, rvol, nearHod, last, vwap float64) *types.Candidate {
	return &types.Candidate{
		Symbol:           symbol,
		PctChange:        pct,
		Rvol:             rvol,
		NearHOD:          nearHod,
		Last:             last,
		VWAP:             vwap,
		AboveVWAP:        last > vwap,
		IsGreenSinceOpen: true,
	}
}

func TestComputeScoresClamped(t *testing.T) {
	r := testRanker()
	cands := []*types.Candidate{
		candidate("AAA", 45, 8, 1.0, 110, 100),  // big gainer, every penalty and bonus in play
		candidate("BBB", 5, 1, 0.90, 95, 100),   // below vwap
		candidate("CCC", 12, 3, 0.99, 104, 100), // clean
	}
	r.ComputeScores(cands)

	for _, c := range cands {
		require.NotNil(t, c.Scores)
		assert.GreaterOrEqual(t, c.Scores.FinalScore, 0.0)
		assert.LessOrEqual(t, c.Scores.FinalScore, 1.0)
	}
}

func TestComputeScoresIdempotent(t *testing.T) {
	r := testRanker()
	cands := []*types.Candidate{
		candidate("AAA", 10, 2, 0.99, 105, 100),
		candidate("BBB", 20, 4, 0.95, 50, 51),
		candidate("CCC", 15, 3, 0.97, 75, 70),
	}

	r.ComputeScores(cands)
	first := make([]float64, len(cands))
	for i, c := range cands {
		first[i] = c.Scores.FinalScore
	}

	r.ComputeScores(cands)
	for i, c := range cands {
		assert.Equal(t, first[i], c.Scores.FinalScore)
	}
}

func TestGainerPenaltyHighestTierOnly(t *testing.T) {
	r := testRanker()
	// identical except percent change, so rank differences are fixed
	a := candidate("AAA", 45, 2, 0.5, 105, 100)
	b := candidate("BBB", 35, 2, 0.5, 105, 100)
	c := candidate("CCC", 25, 2, 0.5, 105, 100)
	r.ComputeScores([]*types.Candidate{a, b, c})

	assert.InDelta(t, -0.12+0.05, a.Scores.Adjustment, 1e-9)
	assert.InDelta(t, -0.08+0.05, b.Scores.Adjustment, 1e-9)
	assert.InDelta(t, -0.04+0.05, c.Scores.Adjustment, 1e-9)
}

func TestSelectTop(t *testing.T) {
	r := testRanker()
	cands := []*types.Candidate{
		{Symbol: "LOW", Scores: &types.ScoreBreakdown{FinalScore: 0.2}},
		{Symbol: "HI", Scores: &types.ScoreBreakdown{FinalScore: 0.9}},
		{Symbol: "MID1", Scores: &types.ScoreBreakdown{FinalScore: 0.5}},
		{Symbol: "MID2", Scores: &types.ScoreBreakdown{FinalScore: 0.5}},
	}

	top := r.SelectTop(cands, 3, 0.0)
	require.Len(t, top, 3)
	assert.Equal(t, "HI", top[0].Symbol)
	// stable sort keeps MID1 before MID2
	assert.Equal(t, "MID1", top[1].Symbol)
	assert.Equal(t, "MID2", top[2].Symbol)

	// score floor filters
	floored := r.SelectTop(cands, 3, 0.4)
	require.Len(t, floored, 3)
	for _, c := range floored {
		assert.GreaterOrEqual(t, c.FinalScore(), 0.4)
	}
}

func TestLeaderboardIndependentOfPicks(t *testing.T) {
	cands := make([]*types.Candidate, 0, 12)
	for i := 0; i < 12; i++ {
		cands = append(cands, &types.Candidate{
			Symbol: string(rune('A' + i)),
			Scores: &types.ScoreBreakdown{FinalScore: float64(i) / 12},
		})
	}

	board := Leaderboard(cands, 10)
	require.Len(t, board, 10)
	assert.Equal(t, 1, board[0].Rank)
	for i := 1; i < len(board); i++ {
		assert.GreaterOrEqual(t, board[i-1].Score, board[i].Score)
	}
}

func TestRankPipeline(t *testing.T) {
	r := testRanker()
	cands := []*types.Candidate{
		candidate("AAA", 10, 2, 0.99, 105, 100),
		candidate("BBB", 20, 4, 0.95, 50, 51),
		candidate("CCC", 15, 3, 0.97, 75, 70),
	}

	picks, board := r.Rank(cands)
	assert.NotEmpty(t, picks)
	assert.Len(t, board, 3)
	for _, c := range picks {
		assert.NotNil(t, c.Scores)
	}
}
