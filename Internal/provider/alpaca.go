package provider

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"go.uber.org/zap"

	"github.com/fazecat/momentumwatch/Internal/types"
	"github.com/fazecat/momentumwatch/Internal/utils"
)

// ============================================================================
// ALPACA PROVIDER
// ============================================================================
// Movers come from the screener endpoints, which do not carry full quote
// data: gainers lack volume and most-actives lack price and percent
// change. A snapshot batch over the combined symbol list fills the gaps.

type AlpacaProvider struct {
	trading *alpaca.Client
	md      *marketdata.Client
	feed    marketdata.Feed
	log     *zap.SugaredLogger

	metaCache map[string]Metadata
}

func NewAlpacaProvider(log *zap.SugaredLogger) (*AlpacaProvider, error) {
	apiKey := os.Getenv("APCA_API_KEY_ID")
	apiSecret := os.Getenv("APCA_API_SECRET_KEY")
	if apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("APCA_API_KEY_ID or APCA_API_SECRET_KEY not set")
	}

	baseURL := os.Getenv("APCA_API_BASE_URL")
	if baseURL == "" {
		baseURL = "https://paper-api.alpaca.markets"
	}

	feed := marketdata.IEX
	if f := os.Getenv("APCA_DATA_FEED"); f != "" {
		feed = marketdata.Feed(f)
	}

	return &AlpacaProvider{
		trading: alpaca.NewClient(alpaca.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
			BaseURL:   baseURL,
		}),
		md: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
		}),
		feed:      feed,
		log:       log,
		metaCache: make(map[string]Metadata),
	}, nil
}

func (p *AlpacaProvider) Info() types.ProviderInfo {
	dataType := "delayed"
	delay := 15
	if p.feed == marketdata.SIP {
		dataType = "realtime"
		delay = 0
	}
	return types.ProviderInfo{Name: "alpaca", DataType: dataType, DelayMinutes: delay}
}

func (p *AlpacaProvider) GetMovers(topN int) ([]types.Mover, error) {
	var movers *marketdata.Movers
	err := utils.RetryWithBackoff(func() error {
		var e error
		movers, e = p.md.GetMovers(marketdata.GetMoversRequest{Top: topN})
		return e
	}, utils.DefaultRetryConfig())
	if err != nil {
		return nil, fmt.Errorf("screener movers request failed: %w", err)
	}

	var actives *marketdata.MostActives
	err = utils.RetryWithBackoff(func() error {
		var e error
		actives, e = p.md.GetMostActives(marketdata.GetMostActivesRequest{By: "volume", Top: topN})
		return e
	}, utils.DefaultRetryConfig())
	if err != nil {
		return nil, fmt.Errorf("screener most-actives request failed: %w", err)
	}

	// Collect the combined symbol list for the snapshot fill
	symbols := make([]string, 0, len(movers.Gainers)+len(actives.MostActives))
	for _, g := range movers.Gainers {
		symbols = append(symbols, g.Symbol)
	}
	for _, a := range actives.MostActives {
		symbols = append(symbols, a.Symbol)
	}

	snaps, err := p.md.GetSnapshots(symbols, marketdata.GetSnapshotRequest{Feed: p.feed})
	if err != nil {
		p.log.Warnf("⚠️ snapshot fill failed, movers will have partial data: %v", err)
		snaps = map[string]*marketdata.Snapshot{}
	}

	result := make([]types.Mover, 0, len(symbols))
	for _, g := range movers.Gainers {
		m := types.Mover{
			Symbol:        g.Symbol,
			Price:         g.Price,
			ChangePercent: g.PercentChange,
			Source:        "gainers",
		}
		if s := snaps[g.Symbol]; s != nil && s.DailyBar != nil {
			m.Volume = int64(s.DailyBar.Volume)
		}
		result = append(result, m)
	}
	for _, a := range actives.MostActives {
		m := types.Mover{
			Symbol: a.Symbol,
			Volume: int64(a.Volume),
			Source: "most_active",
		}
		if s := snaps[a.Symbol]; s != nil {
			if s.LatestTrade != nil {
				m.Price = s.LatestTrade.Price
			}
			if s.DailyBar != nil && s.PrevDailyBar != nil && s.PrevDailyBar.Close > 0 {
				m.ChangePercent = (s.DailyBar.Close - s.PrevDailyBar.Close) / s.PrevDailyBar.Close * 100
			}
		}
		result = append(result, m)
	}

	p.log.Infof("📊 fetched %d gainers + %d most active from screener",
		len(movers.Gainers), len(actives.MostActives))
	return result, nil
}

func (p *AlpacaProvider) GetBarsBatch(symbols []string, start, end time.Time, timeframe string) (map[string][]types.Bar, error) {
	tf := marketdata.OneMin
	if timeframe == "5Min" {
		tf = marketdata.NewTimeFrame(5, marketdata.Min)
	}

	raw, err := p.md.GetMultiBars(symbols, marketdata.GetBarsRequest{
		TimeFrame: tf,
		Start:     start,
		End:       end,
		Feed:      p.feed,
	})
	if err != nil {
		return nil, fmt.Errorf("multi-bars request failed: %w", err)
	}

	out := make(map[string][]types.Bar, len(raw))
	for symbol, bars := range raw {
		converted := make([]types.Bar, len(bars))
		for i, b := range bars {
			converted[i] = types.Bar{
				Timestamp: b.Timestamp,
				Open:      b.Open,
				High:      b.High,
				Low:       b.Low,
				Close:     b.Close,
				Volume:    int64(b.Volume),
			}
		}
		out[symbol] = converted
	}
	return out, nil
}

func (p *AlpacaProvider) GetPreviousClosesBatch(symbols []string) (map[string]float64, error) {
	snaps, err := p.md.GetSnapshots(symbols, marketdata.GetSnapshotRequest{Feed: p.feed})
	if err != nil {
		return nil, fmt.Errorf("snapshots request failed: %w", err)
	}

	closes := make(map[string]float64, len(snaps))
	for symbol, s := range snaps {
		if s != nil && s.PrevDailyBar != nil && s.PrevDailyBar.Close > 0 {
			closes[symbol] = s.PrevDailyBar.Close
		}
	}
	return closes, nil
}

func (p *AlpacaProvider) GetMetadata(symbol string) Metadata {
	if meta, ok := p.metaCache[symbol]; ok {
		return meta
	}

	meta := Metadata{TypeUnknown: true}

	asset, err := p.trading.GetAsset(symbol)
	if err != nil {
		p.log.Warnf("⚠️ asset lookup failed for %s: %v", symbol, err)
		p.metaCache[symbol] = meta
		return meta
	}

	meta.TypeUnknown = false
	meta.IsOTC = asset.Exchange == "OTC"
	meta.IsETF = strings.Contains(strings.ToUpper(asset.Name), "ETF")
	meta.AvgVolume20D = p.avgVolume20d(symbol)

	// Alpaca assets carry no float or market cap; leave them unknown
	p.metaCache[symbol] = meta
	return meta
}

// avgVolume20d averages daily volume over the last 20 sessions, 0 when
// the daily bars are unavailable.
func (p *AlpacaProvider) avgVolume20d(symbol string) float64 {
	end := time.Now().AddDate(0, 0, -1)
	start := end.AddDate(0, 0, -45)

	bars, err := p.md.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     start,
		End:       end,
		Feed:      p.feed,
	})
	if err != nil || len(bars) == 0 {
		return 0
	}

	if len(bars) > 20 {
		bars = bars[len(bars)-20:]
	}
	var total float64
	for _, b := range bars {
		total += float64(b.Volume)
	}
	return total / float64(len(bars))
}
