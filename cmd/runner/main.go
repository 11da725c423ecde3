// runner is an endless three-lane runner for the terminal whose difficulty
// adapts to the player.
//
// Usage:
//
//	runner play              - Play locally
//	runner serve             - Start SSH server for remote play
//	runner stats             - Show profile totals
//	runner history           - Browse recent sessions
//	runner scores            - Show top scores
//	runner config            - Print the effective configuration
//	runner reset             - Delete the saved profile, model and scores
//
// Global flags:
//
//	--fps <rate>         - Set tick rate (default: 60)
//	--seed <value>       - Set RNG seed for reproducible gameplay
//	--config <path>      - Use a specific config file
//	--data-dir <path>    - Override storage.data_dir
//	--log-level <level>  - Override log.level
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/lane-runner/internal/config"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagConfig   string
	flagDataDir  string
	flagLogLevel string

	// cfg is loaded before any subcommand runs.
	cfg config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "runner",
	Short: "Lane Runner - an adaptive endless runner for your terminal",
	Long: `Lane Runner is a three-lane endless runner. Dodge obstacles, collect
coins, and the game tunes its speed, spawn rate and obstacle patterns to
how you play.

Available commands:
  play     - Play locally
  serve    - Start SSH server for remote play
  stats    - Show profile totals
  history  - Browse recent sessions
  scores   - Show top scores
  config   - Print the effective configuration
  reset    - Delete saved progress

Examples:
  runner play
  runner play --difficulty hard
  runner serve --ssh :2222 --metrics-addr :9090
  RUNNER_DDA__SMOOTHING=0.5 runner play`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Directory for player data (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(resetCmd)
}

// loadConfig resolves the configuration and applies flag overrides.
func loadConfig(_ *cobra.Command, _ []string) error {
	loaded, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagDataDir != "" {
		loaded.Storage.DataDir = flagDataDir
	}
	if flagLogLevel != "" {
		loaded.Log.Level = flagLogLevel
	}
	if flagFPS <= 0 {
		return fmt.Errorf("--fps must be positive, got %d", flagFPS)
	}
	cfg = loaded
	return nil
}
