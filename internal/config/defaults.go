package config

import (
	_ "embed"

	"github.com/vovakirdan/liminal/internal/engine"
	"github.com/vovakirdan/liminal/internal/procgen"
)

//go:embed defaults/liminal.yaml
var defaultYAML []byte

// Default returns the hardcoded default configuration.
func Default() Config {
	return Config{
		Runtime: RuntimeConfig{
			TickRate:       30,
			ChargeDecayMs:  engine.DefaultChargeDecay,
			WitnessOpacity: engine.DefaultWitnessOpacity,
		},
		Generator: GeneratorConfig{
			Difficulty:  5,
			PlayerCount: 1,
			Modifiers: procgen.Modifiers{
				ReactionTimeScale:   1.0,
				ExplorationTendency: 0.5,
				WitnessAffinity:     0.5,
			},
		},
		Levels: LevelsConfig{
			Dir: "~/.liminal/levels",
		},
		Storage: StorageConfig{
			DBPath: "~/.liminal/liminal.db",
		},
		Server: ServerConfig{
			Address:            ":23234",
			HostKeyPath:        ".ssh/liminal_ed25519",
			IdleTimeoutMinutes: 30,
			MaxPlayers:         4,
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}
