package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fazecat/momentumwatch/Internal/levels"
	"github.com/fazecat/momentumwatch/Internal/ranker"
)

// RunRecord is the JSON document written for each trading day.
type RunRecord struct {
	RunTsCT     string                    `json:"run_ts_ct"`
	Provider    string                    `json:"provider"`
	DataType    string                    `json:"data_type"`
	Version     string                    `json:"version"`
	PicksCount  int                       `json:"picks_count"`
	Picks       []levels.Pick             `json:"picks"`
	Leaderboard []ranker.LeaderboardEntry `json:"leaderboard"`
}

// Store writes one JSON document per calendar date under a history dir.
// The existence check doubles as the duplicate-run guard.
type Store struct {
	dir string
	log *zap.SugaredLogger
}

func NewStore(dir string, log *zap.SugaredLogger) *Store {
	return &Store{dir: dir, log: log}
}

func (s *Store) Path(date string) string {
	return filepath.Join(s.dir, date+".json")
}

func (s *Store) Exists(date string) bool {
	_, err := os.Stat(s.Path(date))
	return err == nil
}

// SaveRun writes the record for date. An existing file is left alone
// unless force is set.
func (s *Store) SaveRun(date string, rec RunRecord, force bool) (string, error) {
	path := s.Path(date)

	if s.Exists(date) && !force {
		s.log.Warnf("⚠️ History file exists, skipping (use force to overwrite): %s", path)
		return path, fmt.Errorf("history already exists for %s", date)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating history dir: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding run record: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing run record: %w", err)
	}

	s.log.Infof("✅ Saved run to %s", path)
	return path, nil
}

func (s *Store) LoadRun(date string) (*RunRecord, error) {
	data, err := os.ReadFile(s.Path(date))
	if err != nil {
		return nil, err
	}
	var rec RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decoding run record: %w", err)
	}
	return &rec, nil
}

// LoadRaw returns the stored document verbatim for serving over HTTP.
func (s *Store) LoadRaw(date string) (json.RawMessage, error) {
	return os.ReadFile(s.Path(date))
}

// ListDates returns available history dates, most recent first, up to
// limit.
func (s *Store) ListDates(limit int) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	var dates []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".json") {
			dates = append(dates, strings.TrimSuffix(name, ".json"))
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	if len(dates) > limit {
		dates = dates[:limit]
	}
	return dates, nil
}

// CleanupOld deletes history files older than keepDays. Returns the
// number deleted.
func (s *Store) CleanupOld(keepDays int) int {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0
	}

	cutoff := time.Now().AddDate(0, 0, -keepDays).Format("2006-01-02")
	deleted := 0
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		date := strings.TrimSuffix(name, ".json")
		if date < cutoff {
			if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
				s.log.Warnf("⚠️ Failed to delete %s: %v", name, err)
				continue
			}
			deleted++
			s.log.Infof("Deleted old history: %s", name)
		}
	}
	return deleted
}
