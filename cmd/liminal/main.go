// liminal is a terminal game of thresholds: walk node graphs across parallel
// dimensions, witness hidden paths, and cross together over SSH.
//
// Usage:
//
//	liminal list                 - List built-in, procedural and user levels
//	liminal play <level>         - Play a level id, file, ref or share code
//	liminal generate             - Generate a level and print its share code
//	liminal inspect <level>      - Print graph stats and validation problems
//	liminal serve                - Start the SSH server for shared sessions
//	liminal history              - Browse recorded runs
//
// Global flags:
//
//	--config <path> - Config file (default search: ~/.liminal/config.yaml, ./configs/liminal.yaml)
//	--fps <rate>    - Set tick rate
//	--seed <value>  - Seed for generated levels
//	--db <path>     - Set database path (default: ~/.liminal/liminal.db)
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/liminal/internal/config"
)

var (
	// Global flags
	flagConfig string
	flagFPS    int
	flagSeed   uint32
	flagDBPath string

	appConfig config.Config
	logger    = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "liminal",
	})
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "liminal",
	Short: "Liminal - cross thresholds between dimensions in your terminal",
	Long: `Liminal is a terminal game about node graphs spread across parallel
dimensions. Some paths only appear while you witness them, some gates need
several players, and every generated level has a share code.

Available commands:
  list      - Show all available levels
  play      - Play a level
  generate  - Generate a level from a seed
  inspect   - Show the structure of a level
  serve     - Start SSH server for shared sessions
  history   - View recorded runs

Examples:
  liminal list
  liminal play first-light
  liminal play random --seed 42
  liminal generate --difficulty 7 --theme rift
  liminal play K7QMZA
  liminal serve --ssh :2222`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("fps") {
			cfg.Runtime.TickRate = flagFPS
		}
		if cmd.Flags().Changed("db") {
			cfg.Storage.DBPath = flagDBPath
		}
		appConfig = cfg
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 30, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Uint32Var(&flagSeed, "seed", 0, "Seed for generated levels (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.liminal/liminal.db", "Path to run database")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
}
