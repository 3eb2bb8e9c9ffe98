package procgen

import (
	"github.com/vovakirdan/liminal/internal/core"
	"github.com/vovakirdan/liminal/internal/level"
)

// Template shapes a generated level: its size, dimensions and the mix of
// special node types.
type Template struct {
	Theme      string
	MinNodes   int
	MaxNodes   int
	Dimensions []level.Dimension

	// SpecialTypes and SpecialWeights are parallel; order matters for
	// determinism.
	SpecialTypes   []level.NodeType
	SpecialWeights []float64
	SpecialRatio   float64

	HiddenChance    float64
	BranchingFactor float64
	Spread          float64 // spine step length
	MaxAngle        float64 // radians of heading change per spine step
	Bounds          core.Box

	// Selection weight is BaseWeight + DifficultySlope*difficulty.
	BaseWeight      float64
	DifficultySlope float64

	Palette string
	Intro   string
}

// selectionWeight returns the template's pick weight at a difficulty.
func (t Template) selectionWeight(difficulty int) float64 {
	w := t.BaseWeight + t.DifficultySlope*float64(difficulty)
	if w < 0 {
		return 0
	}
	return w
}

var specialTypes = []level.NodeType{
	level.NodeWitness,
	level.NodeSwitch,
	level.NodeGate,
	level.NodeMirror,
	level.NodeVoid,
}

// templates is the read-only theme table, in selection order.
var templates = []Template{
	{
		Theme:           "garden",
		MinNodes:        8,
		MaxNodes:        14,
		Dimensions:      []level.Dimension{"bloom"},
		SpecialTypes:    specialTypes,
		SpecialWeights:  []float64{3, 2, 1, 1, 0},
		SpecialRatio:    0.2,
		HiddenChance:    0.05,
		BranchingFactor: 0.15,
		Spread:          6,
		MaxAngle:        0.6,
		Bounds:          core.Box{HalfX: 30, HalfY: 10, HalfZ: 30},
		BaseWeight:      3,
		DifficultySlope: -0.25,
		Palette:         "verdant",
		Intro:           "The garden remembers every step.",
	},
	{
		Theme:           "labyrinth",
		MinNodes:        10,
		MaxNodes:        22,
		Dimensions:      []level.Dimension{"stone", "shadow"},
		SpecialTypes:    specialTypes,
		SpecialWeights:  []float64{2, 2, 3, 1, 1},
		SpecialRatio:    0.3,
		HiddenChance:    0.12,
		BranchingFactor: 0.3,
		Spread:          5,
		MaxAngle:        1.2,
		Bounds:          core.Box{HalfX: 35, HalfY: 8, HalfZ: 35},
		BaseWeight:      2,
		DifficultySlope: 0,
		Palette:         "ashen",
		Intro:           "Walls shift when no one is looking.",
	},
	{
		Theme:           "spire",
		MinNodes:        12,
		MaxNodes:        20,
		Dimensions:      []level.Dimension{"ascent", "echo"},
		SpecialTypes:    specialTypes,
		SpecialWeights:  []float64{2, 3, 2, 2, 0},
		SpecialRatio:    0.3,
		HiddenChance:    0.1,
		BranchingFactor: 0.2,
		Spread:          5,
		MaxAngle:        0.5,
		Bounds:          core.Box{HalfX: 15, HalfY: 50, HalfZ: 15},
		BaseWeight:      1,
		DifficultySlope: 0.1,
		Palette:         "glacier",
		Intro:           "Only the patient reach the top.",
	},
	{
		Theme:           "rift",
		MinNodes:        14,
		MaxNodes:        26,
		Dimensions:      []level.Dimension{"near", "far", "between"},
		SpecialTypes:    specialTypes,
		SpecialWeights:  []float64{3, 3, 2, 2, 2},
		SpecialRatio:    0.4,
		HiddenChance:    0.18,
		BranchingFactor: 0.25,
		Spread:          7,
		MaxAngle:        0.9,
		Bounds:          core.Box{HalfX: 45, HalfY: 25, HalfZ: 45},
		BaseWeight:      0.5,
		DifficultySlope: 0.2,
		Palette:         "ember",
		Intro:           "Three worlds overlap here. None of them agree.",
	},
	{
		Theme:           "nexus",
		MinNodes:        18,
		MaxNodes:        30,
		Dimensions:      []level.Dimension{"prime", "mirror", "hollow"},
		SpecialTypes:    specialTypes,
		SpecialWeights:  []float64{3, 3, 3, 3, 2},
		SpecialRatio:    0.5,
		HiddenChance:    0.22,
		BranchingFactor: 0.35,
		Spread:          6,
		MaxAngle:        1.4,
		Bounds:          core.Box{HalfX: 40, HalfY: 40, HalfZ: 40},
		BaseWeight:      0.2,
		DifficultySlope: 0.3,
		Palette:         "violet",
		Intro:           "Every path leads back to the center. Almost every.",
	},
}

// Templates returns a copy of the theme table.
func Templates() []Template {
	return append([]Template(nil), templates...)
}

// Themes returns the theme names in selection order.
func Themes() []string {
	names := make([]string, len(templates))
	for i, t := range templates {
		names[i] = t.Theme
	}
	return names
}

// LookupTemplate finds a template by theme name.
func LookupTemplate(theme string) (Template, bool) {
	for _, t := range templates {
		if t.Theme == theme {
			return t, true
		}
	}
	return Template{}, false
}
