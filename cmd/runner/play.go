package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/lane-runner/internal/config"
	"github.com/vovakirdan/lane-runner/internal/core"
	"github.com/vovakirdan/lane-runner/internal/logging"
	"github.com/vovakirdan/lane-runner/internal/platform/tui"
	"github.com/vovakirdan/lane-runner/internal/storage"
)

var flagDifficulty string

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play locally",
	Long: `Start a game in this terminal.

Controls:
  Left/A/H     - Move left
  Right/D/L    - Move right
  Space/Enter  - Start
  P/Esc        - Pause
  R            - Restart (after game over)
  Ctrl+S       - Save a screenshot
  Q/Ctrl+C     - Quit

Difficulty options (only used before any session is recorded):
  easy    - Assume a cautious new player
  normal  - Assume an average player
  hard    - Assume an experienced player
  (empty) - Adapt from the first second

Logs are written to <data_dir>/runner.log.

Examples:
  runner play
  runner play --difficulty easy
  runner play --seed 42 --data-dir ./tmp-profile`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Starting difficulty preset: easy, normal, hard")
}

func runPlay(_ *cobra.Command, _ []string) error {
	dataDir, err := storage.ExpandHome(cfg.Storage.DataDir)
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger, closer, err := logging.OpenFile(filepath.Join(dataDir, "runner.log"), level, "runner")
	if err != nil {
		return err
	}
	defer closer.Close()

	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	rt := core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}

	player := tui.OpenPlayer(cfg, dataDir, logger, nil)
	runErr := tui.Run(player, rt, config.ParsePreset(flagDifficulty))
	if err := player.Close(); err != nil {
		logger.Warn("cannot close player", "error", err)
	}
	if runErr != nil {
		return fmt.Errorf("game error: %w", runErr)
	}
	return nil
}
