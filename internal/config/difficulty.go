package config

import (
	"fmt"
	"strings"
)

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy      DifficultyPreset = "easy"
	DifficultyNormal    DifficultyPreset = "normal"
	DifficultyHard      DifficultyPreset = "hard"
	DifficultyNightmare DifficultyPreset = "nightmare"
)

// Presets lists the presets from easiest to hardest.
func Presets() []DifficultyPreset {
	return []DifficultyPreset{DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyNightmare}
}

// DifficultyForPreset returns the generator difficulty for a preset.
// Unknown presets map to normal.
func DifficultyForPreset(preset DifficultyPreset) int {
	switch preset {
	case DifficultyEasy:
		return 2
	case DifficultyHard:
		return 8
	case DifficultyNightmare:
		return 10
	default:
		return 5
	}
}

// ParsePreset parses a preset name, case-insensitively.
func ParsePreset(s string) (DifficultyPreset, error) {
	p := DifficultyPreset(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Presets() {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("config: unknown difficulty preset %q", s)
}

// ApplyPreset modifies the generator config based on a difficulty preset.
// Harder presets also shorten reaction windows.
func ApplyPreset(cfg *Config, preset DifficultyPreset) {
	cfg.Generator.Preset = preset
	cfg.Generator.Difficulty = DifficultyForPreset(preset)

	switch preset {
	case DifficultyEasy:
		cfg.Generator.Modifiers.ReactionTimeScale = 1.3
	case DifficultyHard:
		cfg.Generator.Modifiers.ReactionTimeScale = 0.85
	case DifficultyNightmare:
		cfg.Generator.Modifiers.ReactionTimeScale = 0.7
	}
}
