package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/lane-runner/internal/platform/tui"
	"github.com/vovakirdan/lane-runner/internal/storage"
)

var flagPlain bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse recent sessions",
	Long: `Show the recorded difficulty history: when each session was played,
its score, length, difficulty tier, speed and average reaction time.
Press Tab to switch to the top scores table.

Output is printed as plain text when stdout is not a terminal or --plain
is set.

Examples:
  runner history
  runner history --plain`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().BoolVar(&flagPlain, "plain", false, "Print a plain table instead of the interactive view")
}

func runHistory(_ *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	interactive := !flagPlain && term.IsTerminal(int(os.Stdout.Fd()))
	if !interactive {
		printHistory(store.History())
		return nil
	}

	// The score log is optional in the interactive view.
	scores, err := openScores()
	if err == nil {
		defer scores.Close()
	}

	width, height := 80, 24
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width, height = w, h
	}
	return tui.RunRecords(store, scores, width, height)
}

func printHistory(history []storage.SessionRecord) {
	if len(history) == 0 {
		fmt.Println("No sessions recorded yet.")
		fmt.Println()
		fmt.Println("Play 'runner play' to record your first session!")
		return
	}

	fmt.Printf("  %-12s  %-6s  %-8s  %-7s  %-5s  %s\n", "Date", "Score", "Time", "Tier", "Speed", "React")
	fmt.Printf("  %-12s  %-6s  %-8s  %-7s  %-5s  %s\n", "----", "-----", "----", "----", "-----", "-----")
	for _, row := range tui.SessionRows(history) {
		fmt.Printf("  %-12s  %-6s  %-8s  %-7s  %-5s  %s\n", row[0], row[1], row[2], row[3], row[4], row[5])
	}
}
