package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/liminal/internal/config"
	"github.com/vovakirdan/liminal/internal/multiplayer"
	"github.com/vovakirdan/liminal/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
	flagMaxPlayers  int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the liminal SSH server",
	Long: `Start an SSH server where players host and join shared sessions.

Each SSH connection picks a level and hosts a lobby, or joins one with the
six-character lobby code. Every member plays the same level; the match
ends for everyone when the victory condition is met or time runs out.
Runs are stored in the server's database.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise the server.host_key_path config value, then ~/.liminal/host_key

Examples:
  liminal serve                           # Listen on :23234
  liminal serve --ssh :2222               # Listen on port 2222
  liminal serve --host-key ./my_host_key  # Use specific host key
  liminal serve --max-players 2           # Two-player lobbies

Users can connect with:
  ssh localhost -p 23234`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 0, "Idle timeout in minutes before disconnecting")
	serveCmd.Flags().IntVar(&flagMaxPlayers, "max-players", 0, "Maximum players per lobby")
}

func runServe(cmd *cobra.Command, _ []string) error {
	sc := appConfig.Server
	if flagSSHAddr != "" {
		sc.Address = flagSSHAddr
	}
	if flagHostKey != "" {
		sc.HostKeyPath = flagHostKey
	}
	if cmd.Flags().Changed("idle-timeout") {
		sc.IdleTimeoutMinutes = flagIdleTimeout
	}
	if cmd.Flags().Changed("max-players") {
		sc.MaxPlayers = flagMaxPlayers
	}

	coord := multiplayer.DefaultCoordinatorConfig()
	coord.TickRate = appConfig.Runtime.TickRate
	coord.ChargeDecay = appConfig.Runtime.ChargeDecayMs
	coord.WitnessOpacity = appConfig.Runtime.WitnessOpacity
	if sc.MaxPlayers > 0 {
		coord.MaxPlayers = sc.MaxPlayers
	}

	gen := appConfig.Generator.ProcgenConfig(0)
	server, err := tui.NewSSHServer(tui.SSHServerConfig{
		Address:     sc.Address,
		HostKeyPath: config.ExpandHome(sc.HostKeyPath),
		DBPath:      appConfig.Storage.DBPath,
		IdleTimeout: time.Duration(sc.IdleTimeoutMinutes) * time.Minute,
		Difficulty:  gen.Difficulty,
		Modifiers:   gen.Modifiers,
		Coordinator: coord,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	fmt.Printf("Liminal SSH server listening on %s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")
	return server.ListenAndServe()
}
