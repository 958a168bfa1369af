package ranker

import (
	"sort"

	"go.uber.org/zap"

	"github.com/fazecat/momentumwatch/Internal/types"
	"github.com/fazecat/momentumwatch/Internal/utils"
	"github.com/fazecat/momentumwatch/Internal/utils/config"
)

// scoring weights for the rank-normalized base score
const (
	weightPctChange = 0.40
	weightRvol      = 0.35
	weightNearHOD   = 0.25
)

// LeaderboardEntry is one row of the top-10 table shown in the email.
type LeaderboardEntry struct {
	Rank      int     `json:"rank"`
	Symbol    string  `json:"symbol"`
	Score     float64 `json:"score"`
	PctChange float64 `json:"pct_change"`
	Rvol      float64 `json:"rvol"`
	NearHOD   float64 `json:"near_hod"`
	AboveVWAP bool    `json:"above_vwap"`
}

type Ranker struct {
	cfg *config.Config
	log *zap.SugaredLogger
}

func New(cfg *config.Config, log *zap.SugaredLogger) *Ranker {
	return &Ranker{cfg: cfg, log: log}
}

// RankNormalize maps each value to its fractional rank in [0,1]: lowest
// value 0, highest 1, ties averaged over the tied group. A single value
// maps to 0.5 and empty input stays empty.
func RankNormalize(values []float64) []float64 {
	n := len(values)
	if n == 0 {
		return []float64{}
	}
	if n == 1 {
		return []float64{0.5}
	}

	indexed := make([]int, n)
	for i := range indexed {
		indexed[i] = i
	}
	sort.SliceStable(indexed, func(a, b int) bool {
		return values[indexed[a]] < values[indexed[b]]
	})

	ranks := make([]float64, n)
	i := 0
	for i < n {
		j := i
		for j < n && values[indexed[j]] == values[indexed[i]] {
			j++
		}
		avgRank := float64(i+j-1) / 2
		for k := i; k < j; k++ {
			ranks[indexed[k]] = avgRank / float64(n-1)
		}
		i = j
	}

	return ranks
}

// ComputeScores fills each candidate's ScoreBreakdown: a weighted sum of
// the three rank-normalized metrics plus additive bonuses and penalties,
// clamped to [0,1].
func (r *Ranker) ComputeScores(candidates []*types.Candidate) {
	if len(candidates) == 0 {
		return
	}
	r.log.Infof("📊 Computing scores for %d candidates", len(candidates))

	pctChanges := make([]float64, len(candidates))
	rvols := make([]float64, len(candidates))
	nearHods := make([]float64, len(candidates))
	for i, c := range candidates {
		pctChanges[i] = c.PctChange
		rvols[i] = c.Rvol
		nearHods[i] = c.NearHOD
	}

	pctRanks := RankNormalize(pctChanges)
	rvolRanks := RankNormalize(rvols)
	nearHodRanks := RankNormalize(nearHods)

	for i, c := range candidates {
		base := weightPctChange*pctRanks[i] +
			weightRvol*rvolRanks[i] +
			weightNearHOD*nearHodRanks[i]

		breakdown := &types.ScoreBreakdown{
			PctChangeRank: utils.Round(pctRanks[i], 4),
			RvolRank:      utils.Round(rvolRanks[i], 4),
			NearHodRank:   utils.Round(nearHodRanks[i], 4),
		}

		adjustment := 0.0

		// position relative to VWAP
		if c.Last > c.VWAP {
			adjustment += 0.05
		} else if c.Last < c.VWAP {
			adjustment -= 0.10
		}

		// overextension measured in ATRs above VWAP adapts the penalty
		// to each stock's volatility
		if c.VWAP > 0 && c.ATR1m > 0 {
			atrAboveVwap := (c.Last - c.VWAP) / c.ATR1m
			if atrAboveVwap > r.cfg.Ranker.MaxExtensionATR {
				adjustment -= 0.08
				breakdown.OverextendedATR = utils.Round(atrAboveVwap, 2)
			}
		}

		// diminishing upside on already-extended gainers, highest tier only
		switch {
		case c.PctChange > 40:
			adjustment -= 0.12
		case c.PctChange > 30:
			adjustment -= 0.08
		case c.PctChange > 20:
			adjustment -= 0.04
		}

		// red from the open reads as a fade
		if c.VsOpen < -2.0 {
			adjustment -= 0.10
			breakdown.FadingFromOpen = true
		} else if c.VsOpen < 0 {
			adjustment -= 0.03
		}

		// green from open and pinned to the high reads as continuation
		if c.IsGreenSinceOpen && c.NearHOD >= 0.98 {
			adjustment += 0.05
		}

		breakdown.BaseScore = utils.Round(base, 4)
		breakdown.Adjustment = utils.Round(adjustment, 4)
		breakdown.FinalScore = utils.Round(utils.Clamp(base+adjustment, 0.0, 1.0), 4)
		c.Scores = breakdown
	}
}

// SelectTop filters by minScore, sorts descending by final score with a
// stable sort (ties keep input order), and truncates to n.
func (r *Ranker) SelectTop(candidates []*types.Candidate, n int, minScore float64) []*types.Candidate {
	eligible := make([]*types.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.FinalScore() >= minScore {
			eligible = append(eligible, c)
		}
	}

	sort.SliceStable(eligible, func(a, b int) bool {
		return eligible[a].FinalScore() > eligible[b].FinalScore()
	})

	if len(eligible) > n {
		eligible = eligible[:n]
	}

	r.log.Infof("✅ Selected top %d from %d candidates (min_score=%g)",
		len(eligible), len(candidates), minScore)
	return eligible
}

// Leaderboard builds the display table. It is independent of SelectTop's
// pick count and score floor: always up to n rows.
func Leaderboard(candidates []*types.Candidate, n int) []LeaderboardEntry {
	sorted := make([]*types.Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].FinalScore() > sorted[b].FinalScore()
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}

	board := make([]LeaderboardEntry, len(sorted))
	for i, c := range sorted {
		board[i] = LeaderboardEntry{
			Rank:      i + 1,
			Symbol:    c.Symbol,
			Score:     c.FinalScore(),
			PctChange: utils.Round(c.PctChange, 2),
			Rvol:      utils.Round(c.Rvol, 2),
			NearHOD:   utils.Round(c.NearHOD, 4),
			AboveVWAP: c.AboveVWAP,
		}
	}
	return board
}

// Rank is the full ranking pipeline: score, select picks, build the
// leaderboard.
func (r *Ranker) Rank(candidates []*types.Candidate) ([]*types.Candidate, []LeaderboardEntry) {
	r.ComputeScores(candidates)
	picks := r.SelectTop(candidates, r.cfg.Scanner.Picks, r.cfg.Ranker.MinScore)
	board := Leaderboard(candidates, 10)

	r.log.Infof("✅ Ranking complete: %d picks, %d in leaderboard", len(picks), len(board))
	return picks, board
}
