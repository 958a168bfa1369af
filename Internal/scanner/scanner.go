package scanner

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fazecat/momentumwatch/Internal/indicators"
	"github.com/fazecat/momentumwatch/Internal/provider"
	"github.com/fazecat/momentumwatch/Internal/types"
	"github.com/fazecat/momentumwatch/Internal/utils"
	"github.com/fazecat/momentumwatch/Internal/utils/config"
)

// Scanner runs the seed, filter, enrich pipeline for one trading day.
type Scanner struct {
	cfg  *config.Config
	prov provider.DataProvider
	log  *zap.SugaredLogger
}

func New(cfg *config.Config, prov provider.DataProvider, log *zap.SugaredLogger) *Scanner {
	return &Scanner{cfg: cfg, prov: prov, log: log}
}

// ============================================================================
// STAGE 1: SEED
// ============================================================================

// Seed pulls the mover lists and converts them into bare candidates,
// deduplicated by symbol (first occurrence wins) and capped at topNSeed.
func (s *Scanner) Seed(topNSeed int) ([]*types.Candidate, error) {
	s.log.Infof("📊 Seeding candidates (top_n_seed=%d)", topNSeed)

	movers, err := s.prov.GetMovers(topNSeed)
	if err != nil {
		return nil, fmt.Errorf("seeding failed: %w", err)
	}

	seen := make(map[string]bool)
	candidates := make([]*types.Candidate, 0, topNSeed)
	for _, m := range movers {
		if seen[m.Symbol] {
			continue
		}
		seen[m.Symbol] = true

		candidates = append(candidates, &types.Candidate{
			Symbol:      m.Symbol,
			Last:        m.Price,
			PctChange:   m.ChangePercent,
			VolumeSoFar: m.Volume,
			Source:      m.Source,
			TypeUnknown: true,
		})

		if len(candidates) >= topNSeed {
			break
		}
	}

	s.log.Infof("✅ Seeded %d unique candidates", len(candidates))
	return candidates, nil
}

// ============================================================================
// STAGE 2: FILTER
// ============================================================================

// Filter splits candidates into passed and rejected. Float, market cap
// and extension checks only run with applyFloatFilters set, since that
// data arrives with enrichment.
func (s *Scanner) Filter(candidates []*types.Candidate, applyFloatFilters bool) (passed, rejected []*types.Candidate) {
	minPrice := s.cfg.Scanner.MinPrice
	minVolume := s.cfg.Scanner.MinVolume

	for _, c := range candidates {
		if c.Last < minPrice {
			s.reject(c, fmt.Sprintf("Price $%.2f < $%g", c.Last, minPrice))
			rejected = append(rejected, c)
			continue
		}

		if c.VolumeSoFar < minVolume {
			s.reject(c, fmt.Sprintf("Volume %d < %d", c.VolumeSoFar, minVolume))
			rejected = append(rejected, c)
			continue
		}

		if c.IsOTC {
			s.reject(c, "OTC stock excluded")
			rejected = append(rejected, c)
			continue
		}

		if c.IsETF {
			s.reject(c, "ETF excluded")
			rejected = append(rejected, c)
			continue
		}

		if applyFloatFilters {
			if c.SharesFloat != nil {
				if *c.SharesFloat < s.cfg.Scanner.MinFloat {
					s.reject(c, fmt.Sprintf("Float %d < %d (low float trap)", *c.SharesFloat, s.cfg.Scanner.MinFloat))
					rejected = append(rejected, c)
					continue
				}
				if *c.SharesFloat > s.cfg.Scanner.MaxFloat {
					s.reject(c, fmt.Sprintf("Float %d > %d (too heavy)", *c.SharesFloat, s.cfg.Scanner.MaxFloat))
					rejected = append(rejected, c)
					continue
				}
			}

			if c.MarketCap != nil {
				if *c.MarketCap < s.cfg.Scanner.MinMarketCap {
					s.reject(c, fmt.Sprintf("Market cap $%d < $%d", *c.MarketCap, s.cfg.Scanner.MinMarketCap))
					rejected = append(rejected, c)
					continue
				}
				if *c.MarketCap > s.cfg.Scanner.MaxMarketCap {
					s.reject(c, fmt.Sprintf("Market cap $%d > $%d (mega cap)", *c.MarketCap, s.cfg.Scanner.MaxMarketCap))
					rejected = append(rejected, c)
					continue
				}
			}

			if c.PctChange > s.cfg.Scanner.MaxPctChange {
				s.reject(c, fmt.Sprintf("%% change %.1f%% > %g%% (overextended)", c.PctChange, s.cfg.Scanner.MaxPctChange))
				rejected = append(rejected, c)
				continue
			}
		}

		passed = append(passed, c)
	}

	s.log.Infof("📊 Filtered: %d passed, %d rejected", len(passed), len(rejected))
	return passed, rejected
}

// reject records the terminal rejection reason. The first reason wins.
func (s *Scanner) reject(c *types.Candidate, reason string) {
	if c.RejectionReason == "" {
		c.RejectionReason = reason
	}
}

// ============================================================================
// STAGE 3: ENRICH
// ============================================================================

// Enrich fills the surviving candidates with full indicator data from
// session bars plus provider metadata. Candidates with no bars at all
// are rejected with a recorded reason rather than silently dropped.
func (s *Scanner) Enrich(candidates []*types.Candidate, sessionOpen, now time.Time) (enriched, noData []*types.Candidate) {
	if len(candidates) == 0 {
		return nil, nil
	}

	s.log.Infof("📊 Enriching %d candidates (session: %s - %s CT)",
		len(candidates),
		sessionOpen.In(utils.Chicago()).Format("15:04"),
		now.In(utils.Chicago()).Format("15:04"))

	symbols := make([]string, len(candidates))
	for i, c := range candidates {
		symbols[i] = c.Symbol
	}

	barsBySymbol, err := s.prov.GetBarsBatch(symbols, sessionOpen, now, "1Min")
	if err != nil {
		s.log.Warnf("⚠️ 1-min bars request failed: %v", err)
	}
	if len(barsBySymbol) == 0 {
		// thin coverage outside market hours, retry once on 5-min bars
		s.log.Infof("No 1-min bars available, trying 5-min bars")
		barsBySymbol, err = s.prov.GetBarsBatch(symbols, sessionOpen, now, "5Min")
		if err != nil {
			s.log.Warnf("⚠️ 5-min bars request failed: %v", err)
		}
	}

	prevCloses, err := s.prov.GetPreviousClosesBatch(symbols)
	if err != nil {
		s.log.Warnf("⚠️ previous closes unavailable: %v", err)
		prevCloses = map[string]float64{}
	}

	// cross-sectional median volume as the RVOL fallback reference
	var volumes []float64
	for _, c := range candidates {
		if c.VolumeSoFar > 0 {
			volumes = append(volumes, float64(c.VolumeSoFar))
		}
	}
	medianVolume := utils.Median(volumes)

	for _, c := range candidates {
		bars := barsBySymbol[c.Symbol]
		if len(bars) == 0 {
			s.log.Warnf("⚠️ No bars for %s, rejecting", c.Symbol)
			s.reject(c, "No intraday bars available")
			noData = append(noData, c)
			continue
		}

		var prevClose *float64
		if pc, ok := prevCloses[c.Symbol]; ok {
			prevClose = &pc
		}

		snap := indicators.ComputeAll(bars, sessionOpen, prevClose,
			s.cfg.Scanner.ORMinutes, s.cfg.Scanner.ATRPeriod)

		// the crude mover-feed values are provisional, replace them all
		c.Last = snap.Last
		c.VWAP = snap.VWAP
		c.HOD = snap.HOD
		c.LOD = snap.LOD
		c.NearHOD = snap.NearHOD
		c.VolumeSoFar = snap.VolumeSoFar
		c.ATR1m = snap.ATR1m
		c.PctChange = snap.PctChange
		c.ORH = snap.ORH
		c.ORL = snap.ORL
		c.AboveVWAP = snap.AboveVWAP
		c.VWAPCross = snap.VWAPCross
		c.PullbackLow = snap.PullbackLow
		c.PrevClose = prevClose
		c.OpenPrice = snap.OpenPrice
		c.VsOpen = snap.VsOpen
		c.IsGreenSinceOpen = c.OpenPrice <= 0 || c.Last > c.OpenPrice
		c.Bars = bars

		meta := s.prov.GetMetadata(c.Symbol)
		c.Rvol = indicators.Rvol(c.VolumeSoFar, meta.AvgVolume20D, medianVolume)
		c.TypeUnknown = meta.TypeUnknown
		c.IsETF = meta.IsETF
		c.IsOTC = meta.IsOTC
		c.SharesFloat = meta.SharesFloat
		c.MarketCap = meta.MarketCap

		enriched = append(enriched, c)
	}

	s.log.Infof("✅ Enriched %d candidates successfully", len(enriched))
	return enriched, noData
}

// ============================================================================
// FULL PIPELINE
// ============================================================================

// Run executes seed, pre-filter, enrich, post-filter and returns the
// survivors plus every rejected candidate with its recorded reason.
func (s *Scanner) Run(sessionOpen, now time.Time) (survivors, rejected []*types.Candidate, err error) {
	candidates, err := s.Seed(s.cfg.Scanner.TopNSeed)
	if err != nil {
		return nil, nil, err
	}

	// pre-filter before enrichment saves API calls; float and market
	// cap data is not known yet
	passed, preRejected := s.Filter(candidates, false)

	enriched, noData := s.Enrich(passed, sessionOpen, now)

	// re-filter with accurate values plus float and market cap bounds
	survivors, postRejected := s.Filter(enriched, true)

	rejected = append(rejected, preRejected...)
	rejected = append(rejected, noData...)
	rejected = append(rejected, postRejected...)

	return survivors, rejected, nil
}
