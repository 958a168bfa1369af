package levels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fazecat/momentumwatch/Internal/types"
	"github.com/fazecat/momentumwatch/Internal/utils/config"
)

func orbCandidate() *types.Candidate {
	return &types.Candidate{
		Symbol:           "ORB",
		Last:             105,
		VWAP:             100,
		HOD:              106,
		LOD:              99,
		ORH:              104,
		ORL:              102,
		NearHOD:          0.99,
		ATR1m:            0.5,
		VolumeSoFar:      2_000_000,
		IsGreenSinceOpen: true,
		AboveVWAP:        true,
	}
}

func TestClassifyPriority(t *testing.T) {
	// satisfies both ORB Breakout and VWAP Reclaim conditions: ORB wins
	c := orbCandidate()
	c.VWAPCross = true
	assert.Equal(t, SetupORBBreakout, Classify(c))
}

func TestClassifyVWAPReclaim(t *testing.T) {
	c := orbCandidate()
	c.Last = 103 // below ORH, off the highs
	c.NearHOD = 0.971
	c.VWAPCross = true
	assert.Equal(t, SetupVWAPReclaim, Classify(c))
}

func TestClassifyFirstPullback(t *testing.T) {
	pb := 103.5
	c := orbCandidate()
	c.Last = 103.8
	c.ORH = 104.5 // not an ORB
	c.NearHOD = 0.98
	c.HOD = 106
	c.PullbackLow = &pb
	setup := Classify(c)
	assert.Equal(t, SetupFirstPullback, setup)

	// a shallow dip is noise, not a pullback
	shallow := 105.5
	c.PullbackLow = &shallow
	assert.Equal(t, SetupNone, Classify(c))
}

func TestClassifyFadeBlocksORB(t *testing.T) {
	c := orbCandidate()
	c.IsGreenSinceOpen = false
	assert.NotEqual(t, SetupORBBreakout, Classify(c))
}

func TestORBLevels(t *testing.T) {
	c := orbCandidate()
	lv := Compute(c)

	require.Equal(t, SetupORBBreakout, lv.SetupType)
	require.NotNil(t, lv.BuyArea)
	assert.InDelta(t, 104.0, lv.BuyArea[0], 1e-9)
	assert.InDelta(t, 104.0+0.15*0.5, lv.BuyArea[1], 1e-9)

	// stop anchored below min(vwap, orl)
	require.NotNil(t, lv.Stop)
	assert.InDelta(t, 100-0.10*0.5, *lv.Stop, 1e-9)
}

func TestTargetOrdering(t *testing.T) {
	pb := 103.5
	cross := orbCandidate()
	cross.Last = 103
	cross.NearHOD = 0.971
	cross.VWAPCross = true

	pullback := orbCandidate()
	pullback.Last = 103.8
	pullback.ORH = 104.5
	pullback.NearHOD = 0.98
	pullback.PullbackLow = &pb

	fallback := orbCandidate()
	fallback.Last = 100.5
	fallback.ORH = 104.5
	fallback.NearHOD = 0.9

	for _, c := range []*types.Candidate{orbCandidate(), cross, pullback, fallback} {
		lv := Compute(c)
		if lv.BuyArea == nil {
			continue
		}
		require.NotNil(t, lv.Target1, "setup %s", lv.SetupType)
		require.NotNil(t, lv.Target2, "setup %s", lv.SetupType)
		assert.Less(t, *lv.Target1, *lv.Target2, "setup %s", lv.SetupType)
		if lv.Target3 != nil {
			assert.LessOrEqual(t, *lv.Target2, *lv.Target3, "setup %s", lv.SetupType)
		}
	}
}

func TestFallbackBelowVWAP(t *testing.T) {
	c := orbCandidate()
	c.Last = 99
	c.AboveVWAP = false
	c.NearHOD = 0.93

	lv := Compute(c)
	assert.Equal(t, SetupNone, lv.SetupType)
	assert.Nil(t, lv.BuyArea)
	assert.Nil(t, lv.Stop)
	assert.Nil(t, lv.Target1)
	assert.Nil(t, lv.Target2)
	assert.Nil(t, lv.Target3)
}

func TestZeroATRFallback(t *testing.T) {
	c := orbCandidate()
	c.ATR1m = 0

	lv := Compute(c)
	require.NotNil(t, lv.BuyArea)
	// zone width comes from the 0.1% price fallback, never zero
	assert.Greater(t, lv.BuyArea[1], lv.BuyArea[0])
}

func TestRiskFlags(t *testing.T) {
	lowFloat := int64(5_000_000)
	megaCap := int64(30_000_000_000)
	c := &types.Candidate{
		Last:             110,
		VWAP:             100,
		ATR1m:            1.0, // 10 ATRs above VWAP
		NearHOD:          0.9,
		VolumeSoFar:      100_000,
		IsGreenSinceOpen: false,
		PctChange:        35,
		SharesFloat:      &lowFloat,
		MarketCap:        &megaCap,
		AboveVWAP:        true,
	}

	flags := RiskFlags(c)
	for _, want := range []string{
		"overextended_atr", "not_near_hod", "low_volume",
		"fading_from_open", "extreme_gainer", "low_float", "large_cap",
	} {
		assert.Contains(t, flags, want)
	}
	assert.NotContains(t, flags, "below_vwap")
}

func TestComputePositionSize(t *testing.T) {
	cfg := config.Default()
	cfg.Risk.TradingCapital = 25_000
	cfg.Risk.MaxRiskPercent = 1.0
	cfg.Risk.DailyProfitGoal = 200

	lv := Compute(orbCandidate())
	pos := ComputePositionSize(lv, cfg)
	require.NotNil(t, pos)

	// risk cap: shares * riskPerShare never exceeds capital * pct
	assert.LessOrEqual(t, pos.TotalRisk, cfg.Risk.TradingCapital*cfg.Risk.MaxRiskPercent/100+1e-6)
	// capital cap: cost of position never exceeds capital
	assert.LessOrEqual(t, float64(pos.Shares)*pos.EntryPrice, cfg.Risk.TradingCapital)
	assert.Greater(t, pos.Shares, 0)
	assert.Equal(t, pos.MeetsDailyGoal, pos.ProfitT1 >= cfg.Risk.DailyProfitGoal)
}

func TestComputePositionSizeNoEntry(t *testing.T) {
	cfg := config.Default()

	// no buy area at all
	lv := TradeLevels{SetupType: SetupNone}
	assert.Nil(t, ComputePositionSize(lv, cfg))

	// stop above entry makes risk non-positive
	stop := 110.0
	bad := TradeLevels{
		SetupType: SetupORBBreakout,
		BuyArea:   &[2]float64{104, 104.5},
		Stop:      &stop,
	}
	assert.Nil(t, ComputePositionSize(bad, cfg))
}

func TestBuildPicks(t *testing.T) {
	cfg := config.Default()
	g := NewGenerator(cfg, zap.NewNop().Sugar())

	c := orbCandidate()
	c.Scores = &types.ScoreBreakdown{FinalScore: 0.87}

	picks := g.BuildPicks([]*types.Candidate{c})
	require.Len(t, picks, 1)
	assert.Equal(t, 0.87, picks[0].Score)
	require.NotNil(t, picks[0].Levels)
	assert.Equal(t, SetupORBBreakout, picks[0].Levels.SetupType)
	require.NotNil(t, picks[0].Position)
}
