// Package procgen synthesizes level definitions from a seed.
//
// Generation is fully deterministic: every random decision draws from a single
// Mulberry32 generator seeded from Config.Seed at the start of Generate, so an
// identical Config yields an identical definition and fingerprint.
package procgen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vovakirdan/liminal/internal/core"
	"github.com/vovakirdan/liminal/internal/level"
	"github.com/vovakirdan/liminal/internal/rng"
)

// ErrUnknownTheme is returned when Config.Theme names no template.
var ErrUnknownTheme = errors.New("procgen: unknown theme")

const (
	MinDifficulty = 1
	MaxDifficulty = 10
)

// Modifiers bias generation towards an observed player profile.
type Modifiers struct {
	// ReactionTimeScale multiplies activation times. Zero means 1.
	ReactionTimeScale float64 `yaml:"reaction_time_scale" json:"reaction_time_scale"`
	// ExplorationTendency in [0, 1]; above 0.6 some waypoints become hidden.
	ExplorationTendency float64 `yaml:"exploration_tendency" json:"exploration_tendency"`
	// WitnessAffinity in [0, 1]; above 0.6 some solid edges become witness-only.
	WitnessAffinity float64 `yaml:"witness_affinity" json:"witness_affinity"`
}

// Config selects what to generate.
type Config struct {
	Seed        uint32    `yaml:"seed" json:"seed"`
	Difficulty  int       `yaml:"difficulty" json:"difficulty"`
	Theme       string    `yaml:"theme,omitempty" json:"theme,omitempty"` // empty picks by difficulty
	PlayerCount int       `yaml:"player_count" json:"player_count"`
	Modifiers   Modifiers `yaml:"modifiers" json:"modifiers"`
}

// normalized returns a copy with out-of-range values pulled into range.
func (c Config) normalized() Config {
	c.Difficulty = core.Clamp(c.Difficulty, MinDifficulty, MaxDifficulty)
	if c.PlayerCount < 1 {
		c.PlayerCount = 1
	}
	if c.Modifiers.ReactionTimeScale <= 0 {
		c.Modifiers.ReactionTimeScale = 1
	}
	c.Modifiers.ExplorationTendency = core.ClampF(c.Modifiers.ExplorationTendency, 0, 1)
	c.Modifiers.WitnessAffinity = core.ClampF(c.Modifiers.WitnessAffinity, 0, 1)
	c.Theme = strings.ToLower(strings.TrimSpace(c.Theme))
	return c
}

// GeneratedLevel is a definition plus what the generator knows about it.
type GeneratedLevel struct {
	Definition level.Definition
	Metadata   Metadata
	Config     Config

	// SpanningTree lists the ids of the MST edges, in the order Prim added them.
	SpanningTree []string
}

// generator carries the state of one Generate call.
type generator struct {
	cfg Config
	tpl Template
	rnd *rng.Random

	nodes   []level.NodeDef
	index   map[string]int
	edges   []level.EdgeDef
	linked  map[[2]int]bool // unordered node index pairs with an edge
	parent  map[string]string
	tree    []string
	dropped int

	triggers   []level.TriggerDef
	objectives []level.Objective
}

// Generate builds a level from cfg. The only error is an unknown theme.
func Generate(cfg Config) (GeneratedLevel, error) {
	cfg = cfg.normalized()
	g := &generator{
		cfg:    cfg,
		rnd:    rng.New(cfg.Seed),
		index:  make(map[string]int),
		linked: make(map[[2]int]bool),
		parent: make(map[string]string),
	}

	tpl, err := g.pickTemplate()
	if err != nil {
		return GeneratedLevel{}, err
	}
	g.tpl = tpl

	g.placeNodes()
	g.assignNodes()
	g.spanningTree()
	g.branchEdges()
	g.generateTriggers()
	g.applyProfile()

	meta := g.metadata()
	def := g.definition(meta)

	return GeneratedLevel{
		Definition:   def,
		Metadata:     meta,
		Config:       cfg,
		SpanningTree: append([]string(nil), g.tree...),
	}, nil
}

func (g *generator) pickTemplate() (Template, error) {
	if g.cfg.Theme != "" {
		tpl, ok := LookupTemplate(g.cfg.Theme)
		if !ok {
			return Template{}, fmt.Errorf("%w: %q", ErrUnknownTheme, g.cfg.Theme)
		}
		return tpl, nil
	}

	weights := make([]float64, len(templates))
	for i, t := range templates {
		weights[i] = t.selectionWeight(g.cfg.Difficulty)
	}
	return rng.WeightedChoice(g.rnd, templates, weights), nil
}

// definition assembles the final level definition.
func (g *generator) definition(meta Metadata) level.Definition {
	victory := level.VictoryCondition{
		Type:    level.VictoryReach,
		Targets: []string{destinationID},
	}
	if g.cfg.PlayerCount > 1 {
		victory.Type = level.VictorySynchronize
	}
	if g.cfg.Difficulty >= 7 {
		victory.TimeLimit = meta.Par * 2
	}

	return level.Definition{
		ID:         "gen-" + meta.ShareCode,
		Seed:       g.cfg.Seed,
		Name:       fmt.Sprintf("%s %s", titleCase(g.tpl.Theme), meta.ShareCode),
		Dimensions: append([]level.Dimension(nil), g.tpl.Dimensions...),
		Nodes:      g.nodes,
		Edges:      g.edges,
		Triggers:   g.triggers,
		Objectives: g.objectives,
		Victory:    victory,
		MinPlayers: g.cfg.PlayerCount,
		MaxPlayers: g.cfg.PlayerCount,
		Difficulty: meta.Rating,
		Timing:     level.Timing{Par: meta.Par, Perfect: meta.Perfect},
		Ambience:   level.Ambience{Palette: g.tpl.Palette, Fog: float64(g.cfg.Difficulty) / MaxDifficulty},
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
