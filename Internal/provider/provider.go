package provider

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fazecat/momentumwatch/Internal/types"
	"github.com/fazecat/momentumwatch/Internal/utils/config"
)

// Metadata is optional per-symbol reference data. Zero values mean the
// provider could not determine the field.
type Metadata struct {
	TypeUnknown  bool
	IsETF        bool
	IsOTC        bool
	AvgVolume20D float64 // 0 when unavailable
	SharesFloat  *int64
	MarketCap    *int64
}

// DataProvider is the market data capability the scanner depends on.
// Implementations must degrade gracefully: a symbol missing from a batch
// result is simply absent from the returned map, never an error.
type DataProvider interface {
	Info() types.ProviderInfo

	// GetMovers returns top gainers followed by most actives, up to
	// topN of each. Duplicate symbols may appear across the two lists.
	GetMovers(topN int) ([]types.Mover, error)

	// GetBarsBatch returns OHLCV bars per symbol for [start, end].
	// timeframe is "1Min" or "5Min".
	GetBarsBatch(symbols []string, start, end time.Time, timeframe string) (map[string][]types.Bar, error)

	// GetPreviousClosesBatch returns the prior session close per symbol.
	GetPreviousClosesBatch(symbols []string) (map[string]float64, error)

	// GetMetadata returns reference data for one symbol. Lookup
	// failures are reported as TypeUnknown, not as errors.
	GetMetadata(symbol string) Metadata
}

// New builds the provider named in the config.
func New(cfg *config.Config, log *zap.SugaredLogger) (DataProvider, error) {
	switch cfg.Provider.Name {
	case "alpaca":
		return NewAlpacaProvider(log)
	case "fake":
		return NewFakeProvider(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider.Name)
	}
}
