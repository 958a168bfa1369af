package datafeed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fazecat/momentumwatch/Internal/persist"
)

// RunLogger mirrors daily run records into Postgres so history survives
// the JSON retention window. A nil receiver is a no-op, which keeps the
// database strictly optional.
type RunLogger struct {
	db  *sql.DB
	log *zap.SugaredLogger
}

func NewRunLogger(log *zap.SugaredLogger) *RunLogger {
	if DB == nil {
		return nil
	}
	return &RunLogger{db: DB, log: log}
}

// RunExists reports whether a run row already exists for date.
func (r *RunLogger) RunExists(ctx context.Context, date string) (bool, error) {
	if r == nil {
		return false, nil
	}

	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM scan_runs WHERE scan_date = $1`, date).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check run existence: %w", err)
	}
	return count > 0, nil
}

// LogRun inserts the run header and one row per pick. An existing row
// for the same date is replaced.
func (r *RunLogger) LogRun(ctx context.Context, date string, rec persist.RunRecord) error {
	if r == nil {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM scan_picks WHERE run_id IN (SELECT id FROM scan_runs WHERE scan_date = $1)`, date)
	if err != nil {
		return fmt.Errorf("failed to clear old picks: %w", err)
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM scan_runs WHERE scan_date = $1`, date)
	if err != nil {
		return fmt.Errorf("failed to clear old run: %w", err)
	}

	var runID int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO scan_runs (scan_date, run_ts_ct, provider, data_type, version, picks_count)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		date, rec.RunTsCT, rec.Provider, rec.DataType, rec.Version, rec.PicksCount).Scan(&runID)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, p := range rec.Picks {
		var setupType sql.NullString
		var entry, stop interface{}
		var shares sql.NullInt64

		if p.Levels != nil {
			setupType = sql.NullString{String: string(p.Levels.SetupType), Valid: true}
			if p.Levels.BuyArea != nil {
				mid := (p.Levels.BuyArea[0] + p.Levels.BuyArea[1]) / 2
				entry = decimal.NewFromFloat(mid).Round(2).String()
			}
			if p.Levels.Stop != nil {
				stop = decimal.NewFromFloat(*p.Levels.Stop).Round(2).String()
			}
		}
		if p.Position != nil {
			shares = sql.NullInt64{Int64: int64(p.Position.Shares), Valid: true}
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO scan_picks (run_id, symbol, setup_type, score, last_price, vwap, pct_change, rvol, entry_price, stop_price, shares)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			runID, p.Symbol, setupType,
			decimal.NewFromFloat(p.Score).Round(4).String(),
			decimal.NewFromFloat(p.Last).Round(2).String(),
			decimal.NewFromFloat(p.VWAP).Round(2).String(),
			decimal.NewFromFloat(p.PctChange).Round(2).String(),
			decimal.NewFromFloat(p.Rvol).Round(2).String(),
			entry, stop, shares)
		if err != nil {
			return fmt.Errorf("failed to insert pick %s: %w", p.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	r.log.Infof("✅ Run logged to database: %s (%d picks)", date, len(rec.Picks))
	return nil
}
