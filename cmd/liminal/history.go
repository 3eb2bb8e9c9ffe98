package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/liminal/internal/platform/tui"
)

var (
	flagHistoryLevel string
	flagHistoryLimit int
	flagHistoryPlain bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View recorded runs",
	Long: `Browse completed, failed and abandoned runs. On a terminal this opens
an interactive table; otherwise (or with --plain) it prints a list.

Examples:
  liminal history
  liminal history --level first-light --plain
  liminal history --limit 5 --plain`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&flagHistoryLevel, "level", "", "Only show runs of this level")
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "Number of runs to print")
	historyCmd.Flags().BoolVar(&flagHistoryPlain, "plain", false, "Print a list instead of the interactive table")
}

func runHistory(_ *cobra.Command, _ []string) error {
	store := openStore()
	if store == nil {
		return errors.New("run database unavailable")
	}
	defer store.Close()

	fd := int(os.Stdout.Fd())
	if !flagHistoryPlain && term.IsTerminal(fd) {
		width, height, err := term.GetSize(fd)
		if err != nil {
			width, height = 80, 24
		}
		return tui.RunHistory(store, width, height)
	}

	runs, err := store.RecentRuns(flagHistoryLevel, flagHistoryLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	fmt.Printf("  %-16s  %-10s  %8s  %4s  %-10s  %s\n", "Level", "Result", "Time", "Back", "Players", "Date")
	for _, r := range runs {
		fmt.Printf("  %-16s  %-10s  %7.1fs  %4d  %-10s  %s\n",
			r.LevelID, r.EndReason, r.ElapsedTime/1000, r.Backtracks,
			strings.Join(r.Players, ","), r.CreatedAt.Format("Jan 02 15:04"))
	}

	if flagHistoryLevel != "" {
		best, err := store.BestRun(flagHistoryLevel)
		if err != nil {
			return err
		}
		if best != nil {
			fmt.Printf("\nBest: %.1fs with %d backtracks\n", best.ElapsedTime/1000, best.Backtracks)
		}
	}
	return nil
}
