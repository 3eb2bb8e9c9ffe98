package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/liminal/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available levels",
	Long:  `Shows built-in levels, procedural themes and levels found in the user level directory.`,
	RunE:  runList,
}

func runList(_ *cobra.Command, _ []string) error {
	entries := registry.List()
	user, err := levelLoader().LoadAll()
	if err != nil {
		logger.Warn("cannot read user levels", "err", err)
	}

	maxIDLen := 2 // "ID" header
	for _, e := range entries {
		maxIDLen = max(maxIDLen, len(e.ID))
	}
	for _, l := range user {
		maxIDLen = max(maxIDLen, len(l.ID()))
	}

	fmt.Println("Available levels:")
	fmt.Println()
	fmt.Printf("  %-*s  %-10s  %-7s  %s\n", maxIDLen, "ID", "Kind", "Players", "Title")
	fmt.Printf("  %-*s  %-10s  %-7s  %s\n", maxIDLen, "--", "----", "-------", "-----")

	for _, e := range entries {
		fmt.Printf("  %-*s  %-10s  %-7s  %s\n", maxIDLen, e.ID, e.Kind, playerRange(e.MinPlayers, e.MaxPlayers), e.Title)
	}
	for _, l := range user {
		if registry.Exists(l.ID()) {
			continue
		}
		def := l.Definition
		fmt.Printf("  %-*s  %-10s  %-7s  %s\n", maxIDLen, def.ID, "user", playerRange(def.MinPlayers, def.MaxPlayers), def.Name)
	}

	fmt.Println()
	fmt.Println("Run 'liminal play <id>' to play a level.")
	return nil
}

func playerRange(minPlayers, maxPlayers int) string {
	minPlayers = max(1, minPlayers)
	switch {
	case maxPlayers == 0:
		return fmt.Sprintf("%d+", minPlayers)
	case maxPlayers == minPlayers:
		return fmt.Sprintf("%d", minPlayers)
	default:
		return fmt.Sprintf("%d-%d", minPlayers, maxPlayers)
	}
}
