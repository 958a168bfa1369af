package config

import (
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Scanner struct {
		MinPrice     float64 `yaml:"min_price"`
		MinVolume    int64   `yaml:"min_volume"`
		TopNSeed     int     `yaml:"top_n_seed"`
		Picks        int     `yaml:"picks"`
		MinFloat     int64   `yaml:"min_float"`
		MaxFloat     int64   `yaml:"max_float"`
		MinMarketCap int64   `yaml:"min_market_cap"`
		MaxMarketCap int64   `yaml:"max_market_cap"`
		MaxPctChange float64 `yaml:"max_pct_change"`
		ORMinutes    int     `yaml:"or_minutes"`
		ATRPeriod    int     `yaml:"atr_period"`
	} `yaml:"scanner"`

	Ranker struct {
		MinScore        float64 `yaml:"min_score"`
		MaxExtensionATR float64 `yaml:"max_extension_atr"`
	} `yaml:"ranker"`

	Risk struct {
		TradingCapital  float64 `yaml:"trading_capital"`
		MaxRiskPercent  float64 `yaml:"max_risk_percent"`
		DailyProfitGoal float64 `yaml:"daily_profit_goal"`
	} `yaml:"risk"`

	TimeGate struct {
		TargetHour    int `yaml:"target_hour"`
		TargetMinute  int `yaml:"target_minute"`
		WindowMinutes int `yaml:"window_minutes"`
	} `yaml:"time_gate"`

	Email struct {
		From             string `yaml:"from"`
		To               string `yaml:"to"`
		SubjectPrefix    string `yaml:"subject_prefix"`
		SendMarketClosed bool   `yaml:"send_market_closed"`
	} `yaml:"email"`

	Provider struct {
		Name string `yaml:"name"` // "alpaca" or "fake"
	} `yaml:"provider"`

	History struct {
		Dir      string `yaml:"dir"`
		KeepDays int    `yaml:"keep_days"`
	} `yaml:"history"`

	Database struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"database"`
}

func LoadConfig() (*Config, error) {
	// Resolve path relative to this file first
	_, filePath, _, ok := runtime.Caller(0)
	var basePath string
	if ok {
		basePath = filepath.Dir(filePath)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	// Try multiple paths to find config.yaml
	possiblePaths := []string{}
	if basePath != "" {
		possiblePaths = append(possiblePaths, filepath.Join(basePath, "config.yaml"))
	}
	possiblePaths = append(possiblePaths,
		filepath.Join(cwd, "Internal", "utils", "config", "config.yaml"),
		"Internal/utils/config/config.yaml",
		"config.yaml",
	)

	var data []byte
	for _, path := range possiblePaths {
		data, err = os.ReadFile(path)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a config with all defaults applied and nothing loaded
// from disk. Used by tests and the fake provider path.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Scanner.MinPrice == 0 {
		c.Scanner.MinPrice = 5.0
	}
	if c.Scanner.MinVolume == 0 {
		c.Scanner.MinVolume = 1_000_000
	}
	if c.Scanner.TopNSeed == 0 {
		c.Scanner.TopNSeed = 100
	}
	if c.Scanner.Picks == 0 {
		c.Scanner.Picks = 5
	}
	if c.Scanner.MinFloat == 0 {
		c.Scanner.MinFloat = 5_000_000
	}
	if c.Scanner.MaxFloat == 0 {
		c.Scanner.MaxFloat = 500_000_000
	}
	if c.Scanner.MinMarketCap == 0 {
		c.Scanner.MinMarketCap = 100_000_000
	}
	if c.Scanner.MaxMarketCap == 0 {
		c.Scanner.MaxMarketCap = 50_000_000_000
	}
	if c.Scanner.MaxPctChange == 0 {
		c.Scanner.MaxPctChange = 50.0
	}
	if c.Scanner.ORMinutes == 0 {
		c.Scanner.ORMinutes = 5
	}
	if c.Scanner.ATRPeriod == 0 {
		c.Scanner.ATRPeriod = 14
	}
	if c.Ranker.MaxExtensionATR == 0 {
		c.Ranker.MaxExtensionATR = 2.0
	}
	if c.Risk.TradingCapital == 0 {
		c.Risk.TradingCapital = 25_000
	}
	if c.Risk.MaxRiskPercent == 0 {
		c.Risk.MaxRiskPercent = 1.0
	}
	if c.Risk.DailyProfitGoal == 0 {
		c.Risk.DailyProfitGoal = 200
	}
	if c.TimeGate.TargetHour == 0 {
		c.TimeGate.TargetHour = 8
	}
	if c.TimeGate.TargetMinute == 0 {
		c.TimeGate.TargetMinute = 40
	}
	if c.TimeGate.WindowMinutes == 0 {
		c.TimeGate.WindowMinutes = 2
	}
	if c.Email.SubjectPrefix == "" {
		c.Email.SubjectPrefix = "Momentum Watchlist (8:40 CT)"
	}
	if c.Provider.Name == "" {
		c.Provider.Name = "alpaca"
	}
	if c.History.Dir == "" {
		c.History.Dir = filepath.Join("data", "history")
	}
	if c.History.KeepDays == 0 {
		c.History.KeepDays = 90
	}
}
