package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var flagLimit int

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show top scores",
	Long: `Display the best scores from the local score log with the difficulty
tier each was reached at.

Examples:
  runner scores
  runner scores --limit 20`,
	Args: cobra.NoArgs,
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of scores to show")
}

func runScores(_ *cobra.Command, _ []string) error {
	scores, err := openScores()
	if err != nil {
		return err
	}
	defer scores.Close()

	entries, err := scores.TopScores(flagLimit)
	if err != nil {
		return fmt.Errorf("cannot retrieve scores: %w", err)
	}

	fmt.Println("High Scores - Lane Runner")
	fmt.Println()

	if len(entries) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Println("Play 'runner play' to set the first high score!")
		return nil
	}

	fmt.Printf("  %-4s  %-8s  %-7s  %-8s  %s\n", "Rank", "Score", "Tier", "Time", "Date")
	fmt.Printf("  %-4s  %-8s  %-7s  %-8s  %s\n", "----", "-----", "----", "----", "----")
	for i, e := range entries {
		secs := fmt.Sprintf("%.0fs", e.Duration)
		fmt.Printf("  %-4d  %-8d  %-7s  %-8s  %s\n", i+1, e.Score, e.Tier, secs, e.CreatedAt.Format("2006-01-02 15:04"))
	}

	fmt.Println()
	if stats, err := scores.Stats(); err == nil {
		fmt.Printf("Games: %d  Best: %d  Average: %.1f\n", stats.GamesCount, stats.HighScore, stats.AvgScore)
	}
	return nil
}
