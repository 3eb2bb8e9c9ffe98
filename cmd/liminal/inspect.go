package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/liminal/internal/core"
	"github.com/vovakirdan/liminal/internal/engine"
	"github.com/vovakirdan/liminal/internal/level"
	"github.com/vovakirdan/liminal/internal/platform/tui"
)

var flagInspectMap bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <level>",
	Short: "Show the structure of a level",
	Long: `Print node, edge and trigger counts of a level and every problem found
by validation. Accepts the same arguments as 'liminal play'. The command
exits non-zero when the level is invalid.

Examples:
  liminal inspect the-witness
  liminal inspect ./my-level.yaml --map
  liminal inspect K7QMZA`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().BoolVar(&flagInspectMap, "map", false, "Also draw the level map")
}

func runInspect(_ *cobra.Command, args []string) error {
	store := openStore()
	if store != nil {
		defer store.Close()
	}
	lvl, err := resolveLevel(args[0], 1, store)
	if err != nil {
		return err
	}
	def := lvl.Definition

	fmt.Println(headerStyle.Render(def.Name) + "  " + labelStyle.Render(lvl.Source))
	fmt.Print(renderFields([]field{
		{"id", def.ID},
		{"dimensions", joinDimensions(def.Dimensions)},
		{"nodes", countBy(def.Nodes, func(n level.NodeDef) string { return string(n.Type) })},
		{"edges", countBy(def.Edges, func(e level.EdgeDef) string { return string(e.Type) })},
		{"triggers", countBy(def.Triggers, func(t level.TriggerDef) string { return string(t.Action) })},
		{"objectives", len(def.Objectives)},
		{"victory", fmt.Sprintf("%s %s", def.Victory.Type, strings.Join(def.Victory.Targets, ","))},
		{"players", playerRange(def.MinPlayers, def.MaxPlayers)},
	}))
	if lvl.Generated != nil {
		fmt.Print(renderFields([]field{
			{"share code", lvl.Generated.Metadata.ShareCode},
			{"rating", fmt.Sprintf("%.1f", lvl.Generated.Metadata.Rating)},
		}))
	}

	if flagInspectMap {
		width := 80
		if w, _, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width = w
		}
		rt := engine.New(level.Build(def))
		screen := core.NewScreen(width, 20)
		tui.DrawFrame(screen, rt.Frame(), 1, 0, width-2, 20, "")
		fmt.Println(tui.RenderScreen(screen))
	}

	if err := level.Validate(def); err != nil {
		fmt.Println(warnStyle.Render("problems:"))
		for _, line := range strings.Split(err.Error(), "\n") {
			fmt.Println(warnStyle.Render("  - " + line))
		}
		return errors.New("level is invalid")
	}
	fmt.Println(okStyle.Render("valid"))
	return nil
}

func joinDimensions(dims []level.Dimension) string {
	parts := make([]string, len(dims))
	for i, d := range dims {
		parts[i] = string(d)
	}
	return strings.Join(parts, ", ")
}

// countBy renders "total (kind n, ...)" for a list of definitions.
func countBy[T any](items []T, kind func(T) string) string {
	counts := make(map[string]int)
	for _, it := range items {
		counts[kind(it)]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s %d", k, counts[k])
	}
	if len(parts) == 0 {
		return "0"
	}
	return fmt.Sprintf("%d (%s)", len(items), strings.Join(parts, ", "))
}
