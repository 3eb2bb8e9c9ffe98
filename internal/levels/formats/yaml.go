// Package formats provides pluggable level file format parsers.
package formats

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/liminal/internal/core"
	"github.com/vovakirdan/liminal/internal/level"
)

// YAMLLevel represents the YAML structure for a level file.
type YAMLLevel struct {
	ID         string                 `yaml:"id"`
	Name       string                 `yaml:"name"`
	Seed       uint32                 `yaml:"seed,omitempty"`
	Difficulty float64                `yaml:"difficulty,omitempty"`
	Players    YAMLPlayers            `yaml:"players,omitempty"`
	Dimensions []level.Dimension      `yaml:"dimensions,flow"`
	Nodes      []YAMLNode             `yaml:"nodes"`
	Edges      []YAMLEdge             `yaml:"edges"`
	Triggers   []level.TriggerDef     `yaml:"triggers,omitempty"`
	Objectives []level.Objective      `yaml:"objectives,omitempty"`
	Victory    level.VictoryCondition `yaml:"victory"`
	Timing     level.Timing           `yaml:"timing,omitempty"`
	Ambience   level.Ambience         `yaml:"ambience,omitempty"`
	Metadata   map[string]string      `yaml:"metadata,omitempty"`
}

// YAMLPlayers is the supported player range.
type YAMLPlayers struct {
	Min int `yaml:"min,omitempty"`
	Max int `yaml:"max,omitempty"`
}

// YAMLNode is a node with its position written as [x, y, z].
type YAMLNode struct {
	ID         string               `yaml:"id"`
	Type       level.NodeType       `yaml:"type"`
	Dimension  level.Dimension      `yaml:"dimension"`
	At         []float64            `yaml:"at,flow"`
	HiddenIn   []level.Dimension    `yaml:"hidden_in,omitempty,flow"`
	Properties level.NodeProperties `yaml:"properties,omitempty"`
}

// YAMLEdge represents a single edge in YAML format.
type YAMLEdge struct {
	From            string          `yaml:"from"`
	To              string          `yaml:"to"`
	Type            level.EdgeType  `yaml:"type,omitempty"` // defaults to solid
	Dimension       level.Dimension `yaml:"dimension,omitempty"`
	RequiresWitness bool            `yaml:"requires_witness,omitempty"`
}

// Level represents a parsed level ready for use.
type Level struct {
	Definition level.Definition
	Metadata   map[string]string
}

// ParseYAML parses a YAML level file.
func ParseYAML(data []byte) (Level, error) {
	var yl YAMLLevel
	if err := yaml.Unmarshal(data, &yl); err != nil {
		return Level{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if yl.ID == "" {
		return Level{}, fmt.Errorf("level has no id")
	}

	def := level.Definition{
		ID:         yl.ID,
		Seed:       yl.Seed,
		Name:       yl.Name,
		Dimensions: yl.Dimensions,
		Triggers:   yl.Triggers,
		Objectives: yl.Objectives,
		Victory:    yl.Victory,
		MinPlayers: yl.Players.Min,
		MaxPlayers: yl.Players.Max,
		Difficulty: yl.Difficulty,
		Timing:     yl.Timing,
		Ambience:   yl.Ambience,
	}
	if def.Name == "" {
		def.Name = def.ID
	}
	if def.MinPlayers <= 0 {
		def.MinPlayers = 1
	}
	if def.MaxPlayers < def.MinPlayers {
		def.MaxPlayers = def.MinPlayers
	}

	for _, n := range yl.Nodes {
		pos, err := position(n.At)
		if err != nil {
			return Level{}, fmt.Errorf("node %s: %w", n.ID, err)
		}
		dim := n.Dimension
		if dim == "" && len(def.Dimensions) > 0 {
			dim = def.Dimensions[0]
		}
		def.Nodes = append(def.Nodes, level.NodeDef{
			ID:         n.ID,
			Position:   pos,
			Type:       n.Type,
			Dimension:  dim,
			HiddenIn:   n.HiddenIn,
			Properties: n.Properties,
		})
	}

	for _, e := range yl.Edges {
		typ := e.Type
		if typ == "" {
			typ = level.EdgeSolid
		}
		def.Edges = append(def.Edges, level.EdgeDef{
			From:            e.From,
			To:              e.To,
			Type:            typ,
			Dimension:       e.Dimension,
			RequiresWitness: e.RequiresWitness,
		})
	}

	return Level{Definition: def, Metadata: yl.Metadata}, nil
}

// MarshalYAML encodes a definition in the level file format.
func MarshalYAML(def level.Definition, metadata map[string]string) ([]byte, error) {
	yl := YAMLLevel{
		ID:         def.ID,
		Name:       def.Name,
		Seed:       def.Seed,
		Difficulty: def.Difficulty,
		Players:    YAMLPlayers{Min: def.MinPlayers, Max: def.MaxPlayers},
		Dimensions: def.Dimensions,
		Triggers:   def.Triggers,
		Objectives: def.Objectives,
		Victory:    def.Victory,
		Timing:     def.Timing,
		Ambience:   def.Ambience,
		Metadata:   metadata,
	}
	for _, n := range def.Nodes {
		yl.Nodes = append(yl.Nodes, YAMLNode{
			ID:         n.ID,
			Type:       n.Type,
			Dimension:  n.Dimension,
			At:         []float64{round2(n.Position.X), round2(n.Position.Y), round2(n.Position.Z)},
			HiddenIn:   n.HiddenIn,
			Properties: n.Properties,
		})
	}
	for _, e := range def.Edges {
		yl.Edges = append(yl.Edges, YAMLEdge{
			From:            e.From,
			To:              e.To,
			Type:            e.Type,
			Dimension:       e.Dimension,
			RequiresWitness: e.RequiresWitness,
		})
	}

	data, err := yaml.Marshal(&yl)
	if err != nil {
		return nil, fmt.Errorf("yaml marshal: %w", err)
	}
	return data, nil
}

// FormatExtensions returns supported file extensions.
func FormatExtensions() []string {
	return []string{".yaml", ".yml"}
}

func position(at []float64) (core.Vec3, error) {
	switch len(at) {
	case 0:
		return core.Vec3{}, nil
	case 2:
		return core.Vec3{X: at[0], Z: at[1]}, nil
	case 3:
		return core.Vec3{X: at[0], Y: at[1], Z: at[2]}, nil
	default:
		return core.Vec3{}, fmt.Errorf("position needs 2 or 3 coordinates, got %d", len(at))
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
