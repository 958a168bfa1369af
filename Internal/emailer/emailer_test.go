package emailer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fazecat/momentumwatch/Internal/levels"
	"github.com/fazecat/momentumwatch/Internal/ranker"
	"github.com/fazecat/momentumwatch/Internal/types"
)

var meta = types.RunMeta{
	RunTsCT:  "2025-06-02 08:40:12 CT",
	Provider: "alpaca",
	DataType: "delayed",
	Version:  "1.0.0",
	Date:     "2025-06-02",
}

func samplePick() levels.Pick {
	stop := 99.95
	t1, t2, t3 := 108.13, 112.21, 114.25
	rr := 1.0
	return levels.Pick{
		Candidate: types.Candidate{
			Symbol: "BULL", Last: 105, VWAP: 100, HOD: 106,
			PctChange: 7.5, Rvol: 3.2,
		},
		Levels: &levels.TradeLevels{
			SetupType:   levels.SetupORBBreakout,
			BuyArea:     &[2]float64{104, 104.08},
			Stop:        &stop,
			Target1:     &t1,
			Target2:     &t2,
			Target3:     &t3,
			RiskReward:  &rr,
			Explanation: "ORB Breakout: Price broke above Opening Range High $104.00.",
			RiskFlags:   []string{"extreme_gainer"},
		},
		Position: &levels.PositionSize{
			Shares: 61, EntryPrice: 104.04, TotalRisk: 249.49,
			ProfitT1: 249.49, MeetsDailyGoal: true,
		},
		Score: 0.91,
	}
}

func TestFormatPickHTML(t *testing.T) {
	html := FormatPickHTML(1, samplePick())

	assert.Contains(t, html, "BULL")
	assert.Contains(t, html, "ORB Breakout")
	assert.Contains(t, html, "Buy $104.00 - $104.08")
	assert.Contains(t, html, "Stop $99.95")
	assert.Contains(t, html, "T1 $108.13")
	assert.Contains(t, html, "61 shares")
	assert.Contains(t, html, "extreme_gainer")
}

func TestFormatPickHTMLWithoutLevels(t *testing.T) {
	p := samplePick()
	p.Levels = nil
	p.Position = nil

	html := FormatPickHTML(1, p)
	assert.Contains(t, html, "BULL")
	assert.Contains(t, html, "Levels unavailable")
}

func TestFormatWatchlistHTML(t *testing.T) {
	board := []ranker.LeaderboardEntry{
		{Rank: 1, Symbol: "BULL", Score: 0.91, PctChange: 7.5, Rvol: 3.2, NearHOD: 0.99, AboveVWAP: true},
		{Rank: 2, Symbol: "GRND", Score: 0.65, PctChange: 4.1, Rvol: 1.8, NearHOD: 0.95},
	}

	html := FormatWatchlistHTML([]levels.Pick{samplePick()}, board, meta)
	assert.Contains(t, html, "Momentum Watchlist - 2025-06-02")
	assert.Contains(t, html, "alpaca")
	assert.Contains(t, html, "Leaderboard")
	assert.Contains(t, html, "GRND")
	assert.Contains(t, html, "not investment advice")
}

func TestFormatNoPicksHTML(t *testing.T) {
	rejected := []*types.Candidate{
		{Symbol: "PNNY", RejectionReason: "Price $2.70 < $5"},
		{Symbol: "THIN", RejectionReason: "Volume 120000 < 1000000"},
	}

	html := FormatNoPicksHTML(rejected, meta)
	assert.Contains(t, html, "No Picks Today")
	assert.Contains(t, html, "PNNY")
	assert.Contains(t, html, "Price $2.70")
}
