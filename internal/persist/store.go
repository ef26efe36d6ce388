package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/redseed-project/redseed/internal/core"
)

const snapshotPattern = "state_gen_*.json"

// Store writes generation reports to disk and restores the most recent
// one. A disabled store turns every operation into a no-op.
type Store struct {
	logger   zerolog.Logger
	dir      string
	interval int
	enabled  bool
}

// NewStore builds a store from the persistence configuration. The data
// directory is created lazily on first save.
func NewStore(logger zerolog.Logger, cfg core.PersistenceConfig) *Store {
	interval := cfg.SaveInterval
	if interval < 1 {
		interval = 1
	}
	return &Store{
		logger:   logger.With().Str("component", "persist").Logger(),
		dir:      cfg.DataDir,
		interval: interval,
		enabled:  cfg.Enabled,
	}
}

// Enabled reports whether the store writes anything at all.
func (s *Store) Enabled() bool {
	return s.enabled
}

// ShouldSave reports whether the given generation falls on a save
// boundary. Generation zero always saves so a run leaves at least one
// snapshot behind.
func (s *Store) ShouldSave(generation int) bool {
	if !s.enabled {
		return false
	}
	return generation%s.interval == 0
}

// Save writes a report to state_gen_NNNN.json in the data directory and
// returns the path written.
func (s *Store) Save(report *core.GenerationReport) (string, error) {
	if !s.enabled {
		return "", nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating data dir: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}

	path := filepath.Join(s.dir, fmt.Sprintf("state_gen_%04d.json", report.Generation))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing snapshot: %w", err)
	}

	s.logger.Info().
		Int("generation", report.Generation).
		Str("path", path).
		Msg("snapshot saved")
	return path, nil
}

// LoadLatest restores the most recently written snapshot, newest first by
// modification time. Unreadable or corrupted snapshots are logged and
// skipped; it returns nil when nothing usable exists.
func (s *Store) LoadLatest() *core.GenerationReport {
	if !s.enabled {
		return nil
	}

	paths, err := filepath.Glob(filepath.Join(s.dir, snapshotPattern))
	if err != nil || len(paths) == 0 {
		return nil
	}

	sort.Slice(paths, func(i, j int) bool {
		return modTime(paths[i]).After(modTime(paths[j]))
	})

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn().Err(err).Str("path", path).Msg("skipping unreadable snapshot")
			continue
		}
		var report core.GenerationReport
		if err := json.Unmarshal(data, &report); err != nil {
			s.logger.Warn().Err(err).Str("path", path).Msg("skipping corrupted snapshot")
			continue
		}
		s.logger.Info().
			Int("generation", report.Generation).
			Str("path", path).
			Msg("snapshot restored")
		return &report
	}
	return nil
}

func modTime(path string) (t time.Time) {
	if info, err := os.Stat(path); err == nil {
		t = info.ModTime()
	}
	return t
}
