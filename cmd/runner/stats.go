package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/lane-runner/internal/logging"
	"github.com/vovakirdan/lane-runner/internal/platform/tui"
	"github.com/vovakirdan/lane-runner/internal/storage"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show profile totals",
	Long: `Display total play time, high score, games played and the last session
of the local profile.

Examples:
  runner stats
  runner stats --data-dir ./tmp-profile`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

// openStore opens the local profile for read-only commands.
func openStore() (*storage.DataStore, error) {
	store, err := storage.Open(cfg.Storage.DataDir,
		storage.WithHistoryLimit(cfg.Storage.HistoryLimit),
		storage.WithLogger(cliLogger()),
	)
	if err != nil {
		return nil, fmt.Errorf("cannot open player data: %w", err)
	}
	return store, nil
}

// openScores opens the local score log.
func openScores() (*storage.ScoreLog, error) {
	dataDir, err := storage.ExpandHome(cfg.Storage.DataDir)
	if err != nil {
		return nil, err
	}
	path := tui.ScoresPath(cfg.Storage.ScoresDB, dataDir)
	if path == "" {
		return nil, fmt.Errorf("score log disabled (storage.scores_db is empty)")
	}
	scores, err := storage.OpenScoreLog(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open scores database: %w", err)
	}
	return scores, nil
}

func runStats(_ *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	s := store.Stats()
	fmt.Printf("Profile - %s\n", store.Dir())
	fmt.Println()
	fmt.Printf("  %-14s %s\n", "Play time", s.TotalPlayTime.Round(time.Second))
	fmt.Printf("  %-14s %d\n", "High score", s.HighScore)
	fmt.Printf("  %-14s %d\n", "Games played", s.GamesPlayed)
	last := "never"
	if !s.LastSession.IsZero() {
		last = s.LastSession.Format("2006-01-02 15:04")
	}
	fmt.Printf("  %-14s %s\n", "Last session", last)
	fmt.Printf("  %-14s %d\n", "Sessions kept", s.HistoryLen)
	return nil
}

// cliLogger reports storage warnings on stderr for one-shot commands.
func cliLogger() *log.Logger {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = log.InfoLevel
	}
	return logging.New(os.Stderr, level, "runner")
}
