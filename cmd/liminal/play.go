package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/liminal/internal/config"
	"github.com/vovakirdan/liminal/internal/core"
	"github.com/vovakirdan/liminal/internal/level"
	"github.com/vovakirdan/liminal/internal/platform/tui"
)

var (
	flagPlayers    int
	flagResume     bool
	flagDifficulty string
)

var playCmd = &cobra.Command{
	Use:   "play <level>",
	Short: "Play a level",
	Long: `Start playing a level. The argument may be a level id, a level file,
a ref such as random-rift:42:2 (id:seed:players) or a share code printed
by 'liminal generate'.

Controls:
  Up/Down    - Choose a path
  Enter      - Travel along it
  W          - Witness from the current node
  Tab        - Switch player (hot-seat)
  A          - Add a player
  Ctrl+S     - Screenshot
  Esc/Q      - Leave (progress is kept for --resume)

Examples:
  liminal play first-light
  liminal play random --difficulty hard
  liminal play random-spire --seed 7 --players 2
  liminal play ./my-level.yaml
  liminal play first-light --resume`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().IntVar(&flagPlayers, "players", 1, "Number of hot-seat players")
	playCmd.Flags().BoolVar(&flagResume, "resume", false, "Resume the last unfinished session of this level")
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset for generated levels: easy, normal, hard, nightmare")
}

func runPlay(_ *cobra.Command, args []string) error {
	if flagDifficulty != "" {
		preset, err := config.ParsePreset(flagDifficulty)
		if err != nil {
			return err
		}
		config.ApplyPreset(&appConfig, preset)
	}

	store := openStore()
	if store != nil {
		defer store.Close()
	}

	lvl, err := resolveLevel(args[0], flagPlayers, store)
	if err != nil {
		return err
	}
	if err := level.Validate(lvl.Definition); err != nil {
		logger.Warn("level has problems", "level", lvl.Definition.ID, "err", err)
	}

	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	err = tui.Run(tui.Options{
		Definition: lvl.Definition,
		Store:      store,
		Config: core.RuntimeConfig{
			ScreenW:  width,
			ScreenH:  height,
			TickRate: appConfig.Runtime.TickRate,
			Seed:     int64(lvl.Definition.Seed),
		},
		ChargeDecay:    appConfig.Runtime.ChargeDecayMs,
		WitnessOpacity: appConfig.Runtime.WitnessOpacity,
		Players:        max(flagPlayers, lvl.Definition.MinPlayers),
		Resume:         flagResume,
	})
	if err != nil {
		return fmt.Errorf("running level: %w", err)
	}
	return nil
}
