// Package config provides YAML-based configuration loading and difficulty
// presets for liminal.
package config

import (
	"github.com/vovakirdan/liminal/internal/procgen"
)

// Config contains all application configuration.
type Config struct {
	Runtime   RuntimeConfig   `yaml:"runtime"`
	Generator GeneratorConfig `yaml:"generator"`
	Levels    LevelsConfig    `yaml:"levels"`
	Storage   StorageConfig   `yaml:"storage"`
	Server    ServerConfig    `yaml:"server"`
}

// RuntimeConfig tunes the level runtime and its host loop.
type RuntimeConfig struct {
	TickRate       int     `yaml:"tick_rate"`       // host frames per second
	ChargeDecayMs  float64 `yaml:"charge_decay_ms"` // full charge drain time
	WitnessOpacity float64 `yaml:"witness_opacity"` // opacity of witnessed edges
}

// GeneratorConfig holds defaults for procedurally generated levels.
type GeneratorConfig struct {
	Difficulty  int               `yaml:"difficulty"`
	Preset      DifficultyPreset  `yaml:"preset,omitempty"` // overrides difficulty when set
	Theme       string            `yaml:"theme,omitempty"`
	PlayerCount int               `yaml:"player_count"`
	Modifiers   procgen.Modifiers `yaml:"modifiers"`
}

// LevelsConfig points at user level files.
type LevelsConfig struct {
	Dir string `yaml:"dir"`
}

// StorageConfig defines where the database lives.
type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

// ServerConfig defines the SSH server settings.
type ServerConfig struct {
	Address            string `yaml:"address"`
	HostKeyPath        string `yaml:"host_key_path"`
	IdleTimeoutMinutes int    `yaml:"idle_timeout_minutes"`
	MaxPlayers         int    `yaml:"max_players"` // per lobby
}

// ProcgenConfig returns the generator settings for a seed.
func (g GeneratorConfig) ProcgenConfig(seed uint32) procgen.Config {
	difficulty := g.Difficulty
	if g.Preset != "" {
		difficulty = DifficultyForPreset(g.Preset)
	}
	return procgen.Config{
		Seed:        seed,
		Difficulty:  difficulty,
		Theme:       g.Theme,
		PlayerCount: g.PlayerCount,
		Modifiers:   g.Modifiers,
	}
}
