package levels

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/fazecat/momentumwatch/Internal/types"
	"github.com/fazecat/momentumwatch/Internal/utils"
	"github.com/fazecat/momentumwatch/Internal/utils/config"
)

// SetupType classifies the price action pattern a candidate is showing.
type SetupType string

const (
	SetupORBBreakout   SetupType = "ORB Breakout"
	SetupVWAPReclaim   SetupType = "VWAP Reclaim"
	SetupFirstPullback SetupType = "First Pullback"
	SetupNone          SetupType = "No clean setup"
)

// TradeLevels is the computed entry plan for one setup. A nil BuyArea
// means no actionable entry, in which case stop and targets are nil too.
type TradeLevels struct {
	SetupType   SetupType   `json:"setup_type"`
	BuyArea     *[2]float64 `json:"buy_area"`
	Stop        *float64    `json:"stop"`
	Target1     *float64    `json:"target_1"`
	Target2     *float64    `json:"target_2"`
	Target3     *float64    `json:"target_3"`
	RiskReward  *float64    `json:"risk_reward"` // R multiple to T1
	Explanation string      `json:"explanation"`
	RiskFlags   []string    `json:"risk_flags"`
}

// PositionSize is the share count and dollar P&L derived from the levels
// and the risk config.
type PositionSize struct {
	Capital        float64  `json:"capital"`
	Shares         int      `json:"shares"`
	EntryPrice     float64  `json:"entry_price"`
	StopPrice      float64  `json:"stop_price"`
	RiskPerShare   float64  `json:"risk_per_share"`
	TotalRisk      float64  `json:"total_risk"`
	MaxRiskPercent float64  `json:"max_risk_percent"`
	ProfitT1       float64  `json:"profit_t1"`
	ProfitT2       float64  `json:"profit_t2"`
	ProfitT3       *float64 `json:"profit_t3"`
	DailyGoal      float64  `json:"daily_goal"`
	MeetsDailyGoal bool     `json:"meets_daily_goal"`
}

// Pick is one watchlist entry: the candidate with its levels, sizing and
// final score.
type Pick struct {
	types.Candidate
	Levels   *TradeLevels  `json:"levels"`
	Position *PositionSize `json:"position"`
	Score    float64       `json:"score"`
}

// ============================================================================
// CLASSIFICATION
// ============================================================================

// Classify evaluates the setup rules in priority order, first match wins.
func Classify(c *types.Candidate) SetupType {
	// A) ORB Breakout: holding above the opening range at the highs,
	// green from the open (no gap-and-fade)
	if c.Last >= c.ORH &&
		c.Last > c.VWAP &&
		c.NearHOD >= 0.98 &&
		c.ORH > 0 &&
		c.IsGreenSinceOpen {
		return SetupORBBreakout
	}

	// B) VWAP Reclaim: recently crossed from below to above
	if c.Last > c.VWAP && c.VWAPCross {
		return SetupVWAPReclaim
	}

	// C) First Pullback: consolidating near the highs with the dip held
	// above VWAP, and the pullback deep enough to be real
	if c.Last > c.VWAP &&
		c.NearHOD >= 0.97 &&
		c.PullbackLow != nil &&
		*c.PullbackLow > c.VWAP &&
		c.IsGreenSinceOpen &&
		c.HOD > 0 {
		depth := (c.HOD - *c.PullbackLow) / c.HOD
		if depth >= 0.01 {
			return SetupFirstPullback
		}
	}

	return SetupNone
}

// RiskFlags derives the independent warning tags for a candidate.
func RiskFlags(c *types.Candidate) []string {
	flags := []string{}

	if !c.AboveVWAP {
		flags = append(flags, "below_vwap")
	}
	if c.VWAP > 0 && c.ATR1m > 0 && (c.Last-c.VWAP)/c.ATR1m > 2.0 {
		flags = append(flags, "overextended_atr")
	}
	if c.NearHOD < 0.97 {
		flags = append(flags, "not_near_hod")
	}
	if c.VolumeSoFar < 500_000 {
		flags = append(flags, "low_volume")
	}
	if !c.IsGreenSinceOpen {
		flags = append(flags, "fading_from_open")
	}
	if c.PctChange > 30 {
		flags = append(flags, "extreme_gainer")
	}
	if c.SharesFloat != nil && *c.SharesFloat < 10_000_000 {
		flags = append(flags, "low_float")
	}
	if c.MarketCap != nil && *c.MarketCap > 20_000_000_000 {
		flags = append(flags, "large_cap")
	}

	return flags
}

// ============================================================================
// LEVEL ARITHMETIC
// ============================================================================

func ptr(v float64) *float64 { return &v }

// Compute classifies the candidate and derives the per-setup levels.
// A non-positive ATR is replaced with 0.1% of price so the zones never
// collapse to zero width.
func Compute(c *types.Candidate) TradeLevels {
	atr := c.ATR1m
	if atr <= 0 {
		atr = c.Last * 0.001
	}

	switch Classify(c) {
	case SetupORBBreakout:
		return orbBreakoutLevels(c, atr)
	case SetupVWAPReclaim:
		return vwapReclaimLevels(c, atr)
	case SetupFirstPullback:
		return firstPullbackLevels(c, atr)
	default:
		return fallbackLevels(c, atr)
	}
}

func orbBreakoutLevels(c *types.Candidate, atr float64) TradeLevels {
	buyLow := c.ORH
	buyHigh := c.ORH + 0.15*atr
	stop := utils.Min(c.VWAP, c.ORL) - 0.10*atr

	entry := (buyLow + buyHigh) / 2
	risk := entry - stop

	return TradeLevels{
		SetupType:  SetupORBBreakout,
		BuyArea:    &[2]float64{buyLow, buyHigh},
		Stop:       ptr(stop),
		Target1:    ptr(entry + risk),
		Target2:    ptr(entry + 2*risk),
		Target3:    ptr(utils.Max(c.HOD+0.50*atr, entry+2.5*risk)),
		RiskReward: ptr(1.0),
		Explanation: fmt.Sprintf(
			"ORB Breakout: Price broke above Opening Range High $%.2f. "+
				"Stop below VWAP/ORL at $%.2f. Targeting 1R/2R/HOD extension.",
			c.ORH, stop),
		RiskFlags: RiskFlags(c),
	}
}

func vwapReclaimLevels(c *types.Candidate, atr float64) TradeLevels {
	buyLow := c.VWAP
	buyHigh := c.VWAP + 0.20*atr
	stop := c.VWAP - 0.25*atr

	entry := (buyLow + buyHigh) / 2
	risk := entry - stop

	t3 := entry + 2.5*risk
	if c.Last < c.HOD {
		t3 = c.HOD // retest of the high first
	}

	return TradeLevels{
		SetupType:  SetupVWAPReclaim,
		BuyArea:    &[2]float64{buyLow, buyHigh},
		Stop:       ptr(stop),
		Target1:    ptr(entry + risk),
		Target2:    ptr(entry + 2*risk),
		Target3:    ptr(t3),
		RiskReward: ptr(1.0),
		Explanation: fmt.Sprintf(
			"VWAP Reclaim: Price reclaimed VWAP $%.2f from below. "+
				"Stop below VWAP at $%.2f. Targeting 1R/2R/HOD retest.",
			c.VWAP, stop),
		RiskFlags: RiskFlags(c),
	}
}

func firstPullbackLevels(c *types.Candidate, atr float64) TradeLevels {
	pb := c.LOD
	if c.PullbackLow != nil {
		pb = *c.PullbackLow
	}

	buyLow := pb + 0.10*atr
	buyHigh := pb + 0.30*atr
	stop := pb - 0.20*atr

	entry := (buyLow + buyHigh) / 2
	risk := entry - stop

	return TradeLevels{
		SetupType:  SetupFirstPullback,
		BuyArea:    &[2]float64{buyLow, buyHigh},
		Stop:       ptr(stop),
		Target1:    ptr(entry + risk),
		Target2:    ptr(entry + 2*risk),
		Target3:    ptr(c.HOD + 0.25*atr),
		RiskReward: ptr(1.0),
		Explanation: fmt.Sprintf(
			"First Pullback: Trend continuation from pullback low $%.2f. "+
				"Stop below pullback at $%.2f. Targeting 1R/2R/HOD extension.",
			pb, stop),
		RiskFlags: RiskFlags(c),
	}
}

func fallbackLevels(c *types.Candidate, atr float64) TradeLevels {
	flags := RiskFlags(c)

	if c.Last <= c.VWAP {
		return TradeLevels{
			SetupType:   SetupNone,
			Explanation: "No clean setup: Price below VWAP. Skip or wait for reclaim.",
			RiskFlags:   flags,
		}
	}

	buyLow := c.VWAP
	buyHigh := c.VWAP + 0.15*atr
	stop := c.VWAP - 0.25*atr
	entry := (buyLow + buyHigh) / 2
	risk := entry - stop

	return TradeLevels{
		SetupType:  SetupNone,
		BuyArea:    &[2]float64{buyLow, buyHigh},
		Stop:       ptr(stop),
		Target1:    ptr(entry + risk),
		Target2:    ptr(entry + 2*risk),
		RiskReward: ptr(1.0),
		Explanation: fmt.Sprintf(
			"No clean setup: Conservative VWAP-based entry. "+
				"Price $%.2f above VWAP $%.2f. Limited to 1R/2R targets.",
			c.Last, c.VWAP),
		RiskFlags: flags,
	}
}

// ============================================================================
// POSITION SIZING
// ============================================================================

// ComputePositionSize derives shares and dollar P&L from the levels and
// risk config. Returns nil when there is no actionable entry, when the
// computed risk per share is not positive, or when the share count
// rounds down to zero.
func ComputePositionSize(l TradeLevels, cfg *config.Config) *PositionSize {
	if l.BuyArea == nil || l.Stop == nil {
		return nil
	}

	capital := cfg.Risk.TradingCapital
	maxRiskPct := cfg.Risk.MaxRiskPercent
	dailyGoal := cfg.Risk.DailyProfitGoal

	entry := (l.BuyArea[0] + l.BuyArea[1]) / 2
	riskPerShare := entry - *l.Stop
	if riskPerShare <= 0 {
		return nil
	}

	maxRiskDollars := capital * maxRiskPct / 100
	shares := int(maxRiskDollars / riskPerShare)

	// never size beyond what capital can buy
	maxSharesByCapital := int(capital / entry)
	if shares > maxSharesByCapital {
		shares = maxSharesByCapital
	}
	if shares <= 0 {
		return nil
	}

	pos := &PositionSize{
		Capital:        capital,
		Shares:         shares,
		EntryPrice:     entry,
		StopPrice:      *l.Stop,
		RiskPerShare:   riskPerShare,
		TotalRisk:      float64(shares) * riskPerShare,
		MaxRiskPercent: maxRiskPct,
		DailyGoal:      dailyGoal,
	}
	if l.Target1 != nil {
		pos.ProfitT1 = float64(shares) * (*l.Target1 - entry)
	}
	if l.Target2 != nil {
		pos.ProfitT2 = float64(shares) * (*l.Target2 - entry)
	}
	if l.Target3 != nil {
		pos.ProfitT3 = ptr(float64(shares) * (*l.Target3 - entry))
	}
	pos.MeetsDailyGoal = pos.ProfitT1 >= dailyGoal

	return pos
}

// ============================================================================
// PICK ASSEMBLY
// ============================================================================

// Generator turns ranked candidates into finished picks.
type Generator struct {
	cfg *config.Config
	log *zap.SugaredLogger
}

func NewGenerator(cfg *config.Config, log *zap.SugaredLogger) *Generator {
	return &Generator{cfg: cfg, log: log}
}

// BuildPicks computes levels and sizing for every pick. A failure on one
// pick never blocks the others: the pick is included without levels.
func (g *Generator) BuildPicks(picks []*types.Candidate) []Pick {
	results := make([]Pick, 0, len(picks))

	for _, c := range picks {
		pick := Pick{
			Candidate: c.Rounded(),
			Score:     c.FinalScore(),
		}

		lv, pos, err := g.compute(c)
		if err != nil {
			g.log.Warnf("⚠️ Failed to compute levels for %s: %v", c.Symbol, err)
			results = append(results, pick)
			continue
		}
		pick.Levels = lv
		pick.Position = pos
		results = append(results, pick)

		switch {
		case lv.BuyArea != nil && pos != nil:
			g.log.Infof("%s: %s - Buy $%.2f-$%.2f | %d shares | Risk $%.2f | T1 profit $%.2f",
				c.Symbol, lv.SetupType, lv.BuyArea[0], lv.BuyArea[1],
				pos.Shares, pos.TotalRisk, pos.ProfitT1)
		case lv.BuyArea != nil:
			g.log.Infof("%s: %s - Buy $%.2f-$%.2f",
				c.Symbol, lv.SetupType, lv.BuyArea[0], lv.BuyArea[1])
		default:
			g.log.Infof("%s: %s - No entry", c.Symbol, lv.SetupType)
		}
	}

	return results
}

func (g *Generator) compute(c *types.Candidate) (lv *TradeLevels, pos *PositionSize, err error) {
	defer func() {
		if r := recover(); r != nil {
			lv, pos = nil, nil
			err = fmt.Errorf("level computation panicked: %v", r)
		}
	}()

	levels := Compute(c)
	roundLevels(&levels)

	pos = ComputePositionSize(levels, g.cfg)
	if pos != nil {
		roundPosition(pos)
	}
	return &levels, pos, nil
}

func roundLevels(l *TradeLevels) {
	if l.BuyArea != nil {
		l.BuyArea[0] = utils.Round(l.BuyArea[0], 2)
		l.BuyArea[1] = utils.Round(l.BuyArea[1], 2)
	}
	for _, p := range []*float64{l.Stop, l.Target1, l.Target2, l.Target3, l.RiskReward} {
		if p != nil {
			*p = utils.Round(*p, 2)
		}
	}
}

func roundPosition(p *PositionSize) {
	p.EntryPrice = utils.Round(p.EntryPrice, 2)
	p.StopPrice = utils.Round(p.StopPrice, 2)
	p.RiskPerShare = utils.Round(p.RiskPerShare, 2)
	p.TotalRisk = utils.Round(p.TotalRisk, 2)
	p.ProfitT1 = utils.Round(p.ProfitT1, 2)
	p.ProfitT2 = utils.Round(p.ProfitT2, 2)
	if p.ProfitT3 != nil {
		*p.ProfitT3 = utils.Round(*p.ProfitT3, 2)
	}
}
