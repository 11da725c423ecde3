package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/lane-runner/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration after layering the embedded defaults, the
config file and RUNNER_* environment overrides, as YAML.

Examples:
  runner config > ~/.lane-runner/config.yaml
  RUNNER_DDA__SMOOTHING=0.5 runner config`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		out, err := config.Dump(cfg)
		if err != nil {
			return fmt.Errorf("cannot encode config: %w", err)
		}
		fmt.Print(string(out))
		return nil
	},
}
