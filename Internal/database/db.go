package datafeed

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
)

var DB *sql.DB

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func InitDatabase() error {
	config := DatabaseConfig{
		Host:     getEnvOrDefault("DB_HOST", "localhost"),
		Port:     getEnvOrDefault("DB_PORT", "5432"),
		User:     getEnvOrDefault("DB_USER", "postgres"),
		Password: os.Getenv("DB_PASSWORD"), // Required - no default
		DBName:   getEnvOrDefault("DB_NAME", "momentumwatch"),
		SSLMode:  getEnvOrDefault("DB_SSLMODE", "disable"),
	}

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	var err error
	DB, err = sql.Open("postgres", connStr)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = DB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err = initializeSchema(); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	return nil
}

// initializeSchema creates scan tables if they don't exist
func initializeSchema() error {
	schemaSQL := `
	CREATE TABLE IF NOT EXISTS scan_runs (
		id SERIAL PRIMARY KEY,
		scan_date DATE NOT NULL UNIQUE,
		run_ts_ct TEXT NOT NULL,
		provider TEXT NOT NULL,
		data_type TEXT NOT NULL,
		version TEXT NOT NULL,
		picks_count INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS scan_picks (
		id SERIAL PRIMARY KEY,
		run_id INTEGER NOT NULL,
		symbol TEXT NOT NULL,
		setup_type TEXT,
		score NUMERIC(6,4) NOT NULL,
		last_price NUMERIC(12,2) NOT NULL,
		vwap NUMERIC(12,2),
		pct_change NUMERIC(8,2),
		rvol NUMERIC(8,2),
		entry_price NUMERIC(12,2),
		stop_price NUMERIC(12,2),
		shares INTEGER,
		FOREIGN KEY(run_id) REFERENCES scan_runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_scan_runs_date ON scan_runs(scan_date);
	CREATE INDEX IF NOT EXISTS idx_scan_picks_run ON scan_picks(run_id);
	CREATE INDEX IF NOT EXISTS idx_scan_picks_symbol ON scan_picks(symbol);
	`

	_, err := DB.Exec(schemaSQL)
	return err
}

func CloseDatabase() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func HealthCheck() error {
	if DB == nil {
		return fmt.Errorf("database connection is nil")
	}
	return DB.Ping()
}
