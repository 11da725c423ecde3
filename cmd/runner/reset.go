package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var flagYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete saved progress",
	Long: `Reset the local profile: the play history, the learned difficulty model
and the score log are cleared. The next game starts from the cold-start
heuristic.

Examples:
  runner reset --yes`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&flagYes, "yes", false, "Confirm the reset")
}

func runReset(_ *cobra.Command, _ []string) error {
	if !flagYes {
		return fmt.Errorf("refusing to reset without --yes")
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	if err := store.Reset(); err != nil {
		return fmt.Errorf("cannot reset profile: %w", err)
	}

	if scores, err := openScores(); err == nil {
		defer scores.Close()
		if err := scores.ClearScores(); err != nil {
			return err
		}
	}

	fmt.Printf("Profile in %s reset.\n", store.Dir())
	return nil
}
