package types

import (
	"math"
	"time"
)

// Bar is a single OHLCV bar. JSON tags match the compact wire format
// used in the daily history files.
type Bar struct {
	Timestamp time.Time `json:"t"`
	Open      float64   `json:"o"`
	High      float64   `json:"h"`
	Low       float64   `json:"l"`
	Close     float64   `json:"c"`
	Volume    int64     `json:"v"`
}

// Mover is one entry from a gainers or most-active feed.
type Mover struct {
	Symbol        string
	Price         float64
	ChangePercent float64
	Volume        int64
	Source        string // "gainers" or "most_active"
}

// ProviderInfo describes the market data source for run metadata.
type ProviderInfo struct {
	Name         string
	DataType     string // "realtime", "delayed", "unknown"
	DelayMinutes int
}

// RunMeta is the metadata block attached to every run output.
type RunMeta struct {
	RunTsCT  string `json:"run_ts_ct"`
	Provider string `json:"provider"`
	DataType string `json:"data_type"`
	Version  string `json:"version"`
	Date     string `json:"date"`
}

// ScoreBreakdown holds the scoring intermediates for one candidate so the
// final score stays explainable after the fact.
type ScoreBreakdown struct {
	BaseScore       float64 `json:"base_score"`
	Adjustment      float64 `json:"adjustment"`
	FinalScore      float64 `json:"final_score"`
	PctChangeRank   float64 `json:"pct_change_rank"`
	RvolRank        float64 `json:"rvol_rank"`
	NearHodRank     float64 `json:"near_hod_rank"`
	OverextendedATR float64 `json:"overextended_atr,omitempty"`
	FadingFromOpen  bool    `json:"fading_from_open,omitempty"`
}

// Candidate is one stock's state across a scan run. It is created at
// seeding with only the mover snapshot populated, filled in during
// enrichment, and read-only from classification onward.
type Candidate struct {
	Symbol           string   `json:"symbol"`
	Last             float64  `json:"last"`
	VWAP             float64  `json:"vwap"`
	HOD              float64  `json:"hod"`
	LOD              float64  `json:"lod"`
	NearHOD          float64  `json:"near_hod"`
	VolumeSoFar      int64    `json:"volume_so_far"`
	ATR1m            float64  `json:"atr_1m"`
	PctChange        float64  `json:"pct_change"`
	Rvol             float64  `json:"rvol"`
	ORH              float64  `json:"orh"`
	ORL              float64  `json:"orl"`
	AboveVWAP        bool     `json:"above_vwap"`
	VWAPCross        bool     `json:"vwap_cross"`
	PullbackLow      *float64 `json:"pullback_low"`
	OpenPrice        float64  `json:"open_price"`
	VsOpen           float64  `json:"vs_open"`
	IsGreenSinceOpen bool     `json:"is_green_since_open"`
	SharesFloat      *int64   `json:"shares_float"`
	MarketCap        *int64   `json:"market_cap"`
	Source           string   `json:"source"`
	TypeUnknown      bool     `json:"type_unknown"`
	IsETF            bool     `json:"is_etf"`
	IsOTC            bool     `json:"is_otc"`

	// RejectionReason is set at most once. Empty string means the
	// candidate is still live.
	RejectionReason string `json:"rejection_reason,omitempty"`

	PrevClose *float64        `json:"-"`
	Bars      []Bar           `json:"-"`
	Scores    *ScoreBreakdown `json:"-"`
}

// FinalScore returns the ranked score, or 0 if the candidate was never scored.
func (c *Candidate) FinalScore() float64 {
	if c.Scores == nil {
		return 0
	}
	return c.Scores.FinalScore
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Rounded returns a copy with price fields rounded for serialization:
// two decimals for dollar values, four for ratios.
func (c Candidate) Rounded() Candidate {
	c.Last = round(c.Last, 2)
	c.VWAP = round(c.VWAP, 2)
	c.HOD = round(c.HOD, 2)
	c.LOD = round(c.LOD, 2)
	c.NearHOD = round(c.NearHOD, 4)
	c.ATR1m = round(c.ATR1m, 4)
	c.PctChange = round(c.PctChange, 2)
	c.Rvol = round(c.Rvol, 2)
	c.ORH = round(c.ORH, 2)
	c.ORL = round(c.ORL, 2)
	c.OpenPrice = round(c.OpenPrice, 2)
	c.VsOpen = round(c.VsOpen, 2)
	if c.PullbackLow != nil {
		pb := round(*c.PullbackLow, 2)
		c.PullbackLow = &pb
	}
	return c
}
