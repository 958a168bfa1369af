package provider

import (
	"math"
	"time"

	"github.com/fazecat/momentumwatch/Internal/types"
)

// FakeProvider serves deterministic synthetic data. It backs offline runs
// (provider.name: fake) and the pipeline tests.
type FakeProvider struct {
	universe []fakeSymbol
}

type fakeSymbol struct {
	symbol      string
	base        float64 // session open price
	drift       float64 // per-minute price drift
	wiggle      float64 // oscillation amplitude
	volume      int64   // per-minute bar volume
	prevClose   float64
	avgVolume   float64
	isETF       bool
	isOTC       bool
	sharesFloat int64
	marketCap   int64
	sources     []string // mover lists the symbol appears on
}

func NewFakeProvider() *FakeProvider {
	return &FakeProvider{universe: []fakeSymbol{
		// clean uptrend, shows up on both lists
		{symbol: "BULL", base: 20.00, drift: 0.04, wiggle: 0.02, volume: 80_000,
			prevClose: 19.00, avgVolume: 4_000_000, sharesFloat: 60_000_000,
			marketCap: 2_000_000_000, sources: []string{"gainers", "most_active"}},
		// grinds up with deeper oscillation, pullback material
		{symbol: "GRND", base: 12.50, drift: 0.02, wiggle: 0.06, volume: 60_000,
			prevClose: 12.00, avgVolume: 3_000_000, sharesFloat: 40_000_000,
			marketCap: 900_000_000, sources: []string{"gainers"}},
		// penny name, pre-filter price reject
		{symbol: "PNNY", base: 2.10, drift: 0.01, wiggle: 0.01, volume: 90_000,
			prevClose: 1.80, avgVolume: 8_000_000, sharesFloat: 200_000_000,
			marketCap: 300_000_000, sources: []string{"gainers"}},
		// thin volume reject
		{symbol: "THIN", base: 15.00, drift: 0.02, wiggle: 0.02, volume: 2_000,
			prevClose: 14.20, avgVolume: 500_000, sharesFloat: 30_000_000,
			marketCap: 500_000_000, sources: []string{"gainers"}},
		// ETF reject
		{symbol: "SPYX", base: 45.00, drift: 0.01, wiggle: 0.02, volume: 100_000,
			prevClose: 44.50, avgVolume: 9_000_000, isETF: true,
			sharesFloat: 300_000_000, marketCap: 10_000_000_000,
			sources: []string{"most_active"}},
		// mega cap, post-filter market cap reject
		{symbol: "MEGA", base: 180.00, drift: 0.05, wiggle: 0.05, volume: 120_000,
			prevClose: 176.00, avgVolume: 20_000_000, sharesFloat: 400_000_000,
			marketCap: 900_000_000_000, sources: []string{"most_active"}},
		// fades red from the open
		{symbol: "FADE", base: 30.00, drift: -0.03, wiggle: 0.03, volume: 70_000,
			prevClose: 27.00, avgVolume: 5_000_000, sharesFloat: 80_000_000,
			marketCap: 3_000_000_000, sources: []string{"gainers"}},
	}}
}

func (p *FakeProvider) Info() types.ProviderInfo {
	return types.ProviderInfo{Name: "fake", DataType: "synthetic"}
}

func (p *FakeProvider) GetMovers(topN int) ([]types.Mover, error) {
	var gainers, actives []types.Mover
	for _, s := range p.universe {
		last := s.lastAt(60)
		for _, src := range s.sources {
			m := types.Mover{
				Symbol:        s.symbol,
				Price:         last,
				ChangePercent: (last - s.prevClose) / s.prevClose * 100,
				Volume:        s.volume * 60,
				Source:        src,
			}
			if src == "gainers" {
				gainers = append(gainers, m)
			} else {
				actives = append(actives, m)
			}
		}
	}
	if len(gainers) > topN {
		gainers = gainers[:topN]
	}
	if len(actives) > topN {
		actives = actives[:topN]
	}
	return append(gainers, actives...), nil
}

func (p *FakeProvider) GetBarsBatch(symbols []string, start, end time.Time, timeframe string) (map[string][]types.Bar, error) {
	step := time.Minute
	if timeframe == "5Min" {
		step = 5 * time.Minute
	}

	minutes := int(end.Sub(start) / step)
	if minutes < 2 {
		minutes = 2
	}
	if minutes > 120 {
		minutes = 120
	}

	out := make(map[string][]types.Bar)
	for _, symbol := range symbols {
		s, ok := p.lookup(symbol)
		if !ok {
			continue
		}
		bars := make([]types.Bar, minutes)
		for i := 0; i < minutes; i++ {
			open := s.priceAt(i)
			close := s.priceAt(i + 1)
			hi := math.Max(open, close) + s.wiggle/2
			lo := math.Min(open, close) - s.wiggle/2
			bars[i] = types.Bar{
				Timestamp: start.Add(time.Duration(i) * step),
				Open:      open,
				High:      hi,
				Low:       lo,
				Close:     close,
				Volume:    s.volume,
			}
		}
		out[symbol] = bars
	}
	return out, nil
}

func (p *FakeProvider) GetPreviousClosesBatch(symbols []string) (map[string]float64, error) {
	closes := make(map[string]float64)
	for _, symbol := range symbols {
		if s, ok := p.lookup(symbol); ok {
			closes[symbol] = s.prevClose
		}
	}
	return closes, nil
}

func (p *FakeProvider) GetMetadata(symbol string) Metadata {
	s, ok := p.lookup(symbol)
	if !ok {
		return Metadata{TypeUnknown: true}
	}
	sf := s.sharesFloat
	mc := s.marketCap
	return Metadata{
		IsETF:        s.isETF,
		IsOTC:        s.isOTC,
		AvgVolume20D: s.avgVolume,
		SharesFloat:  &sf,
		MarketCap:    &mc,
	}
}

func (p *FakeProvider) lookup(symbol string) (fakeSymbol, bool) {
	for _, s := range p.universe {
		if s.symbol == symbol {
			return s, true
		}
	}
	return fakeSymbol{}, false
}

// priceAt is the synthetic price path: linear drift plus a slow
// deterministic oscillation.
func (s fakeSymbol) priceAt(minute int) float64 {
	return s.base + s.drift*float64(minute) + s.wiggle*math.Sin(float64(minute)/4)
}

func (s fakeSymbol) lastAt(minute int) float64 {
	return s.priceAt(minute)
}
