package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/fazecat/momentumwatch/Internal/calendar"
	datafeed "github.com/fazecat/momentumwatch/Internal/database"
	"github.com/fazecat/momentumwatch/Internal/emailer"
	"github.com/fazecat/momentumwatch/Internal/levels"
	"github.com/fazecat/momentumwatch/Internal/persist"
	"github.com/fazecat/momentumwatch/Internal/provider"
	"github.com/fazecat/momentumwatch/Internal/ranker"
	"github.com/fazecat/momentumwatch/Internal/scanner"
	"github.com/fazecat/momentumwatch/Internal/types"
	"github.com/fazecat/momentumwatch/Internal/utils"
	"github.com/fazecat/momentumwatch/Internal/utils/config"
)

const version = "1.0.0"

// exit codes: 0 success, 1 error, 2 skipped (duplicate run or outside window)
const (
	exitOK      = 0
	exitError   = 1
	exitSkipped = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	force := flag.Bool("force", false, "ignore the time gate and overwrite today's history")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, using environment as-is")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return exitError
	}
	defer logger.Sync()
	log := logger.Sugar()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Errorf("Failed to load config: %v", err)
		return exitError
	}

	now := utils.NowChicago()
	date := utils.DateStr(now)
	store := persist.NewStore(cfg.History.Dir, log)

	log.Infof("📊 Momentum Watchlist v%s starting for %s", version, date)

	// duplicate-run guard: one email per trading day
	if store.Exists(date) && !*force {
		log.Warnf("⚠️ Already ran for %s, skipping (use --force to rerun)", date)
		return exitSkipped
	}

	if !*force && !utils.InExecutionWindow(now, cfg.TimeGate.TargetHour, cfg.TimeGate.TargetMinute, cfg.TimeGate.WindowMinutes) {
		log.Warnf("⚠️ Outside execution window (%02d:%02d ± %dm CT), skipping",
			cfg.TimeGate.TargetHour, cfg.TimeGate.TargetMinute, cfg.TimeGate.WindowMinutes)
		return exitSkipped
	}

	prov, err := provider.New(cfg, log)
	if err != nil {
		log.Errorf("Failed to create data provider: %v", err)
		return exitError
	}
	info := prov.Info()

	meta := types.RunMeta{
		RunTsCT:  utils.FormatChicagoTimestamp(now),
		Provider: info.Name,
		DataType: info.DataType,
		Version:  version,
		Date:     date,
	}

	mail := emailer.New(cfg, log)

	if !calendar.IsMarketOpen(now) {
		log.Infof("Market is closed on %s", date)
		if cfg.Email.SendMarketClosed {
			if err := mail.SendMarketClosed(meta); err != nil {
				log.Warnf("⚠️ Market-closed email failed: %v", err)
			}
		}
		if !*force {
			return exitOK
		}
		log.Warn("⚠️ Forcing scan on a closed market day")
	}

	sessionOpen := calendar.SessionOpen(now)

	survivors, rejected, err := scanner.New(cfg, prov, log).Run(sessionOpen, now)
	if err != nil {
		log.Errorf("Scan failed: %v", err)
		return exitError
	}

	picks, board := ranker.New(cfg, log).Rank(survivors)
	finalPicks := levels.NewGenerator(cfg, log).BuildPicks(picks)

	if len(finalPicks) > 0 {
		if err := mail.SendWatchlist(finalPicks, board, meta); err != nil {
			log.Errorf("Watchlist email failed: %v", err)
			return exitError
		}
	} else {
		log.Info("No picks today, sending rejection report")
		if err := mail.SendNoPicks(rejected, meta); err != nil {
			log.Errorf("No-picks email failed: %v", err)
			return exitError
		}
	}

	rec := persist.RunRecord{
		RunTsCT:     meta.RunTsCT,
		Provider:    meta.Provider,
		DataType:    meta.DataType,
		Version:     version,
		PicksCount:  len(finalPicks),
		Picks:       finalPicks,
		Leaderboard: board,
	}
	if _, err := store.SaveRun(date, rec, *force); err != nil {
		log.Errorf("Failed to save history: %v", err)
		return exitError
	}
	if deleted := store.CleanupOld(cfg.History.KeepDays); deleted > 0 {
		log.Infof("Cleaned up %d old history files", deleted)
	}

	if cfg.Database.Enabled {
		if err := datafeed.InitDatabase(); err != nil {
			log.Warnf("⚠️ Database unavailable, skipping mirror: %v", err)
		} else {
			defer datafeed.CloseDatabase()
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := datafeed.NewRunLogger(log).LogRun(ctx, date, rec); err != nil {
				log.Warnf("⚠️ Database mirror failed: %v", err)
			}
		}
	}

	log.Infof("✅ Run complete: %d picks, %d rejected", len(finalPicks), len(rejected))
	return exitOK
}
