// Package level defines the declarative level vocabulary (nodes, edges,
// triggers, victory condition) and compiles it into a mutable PlayableLevel
// graph.
//
// Definitions come from static YAML tables or the procedural generator; both
// speak the same vocabulary.
package level

import "github.com/vovakirdan/liminal/internal/core"

// NodeType classifies a node.
type NodeType string

const (
	NodeOrigin      NodeType = "origin"
	NodeWaypoint    NodeType = "waypoint"
	NodeWitness     NodeType = "witness"
	NodeSwitch      NodeType = "switch"
	NodeGate        NodeType = "gate"
	NodeMirror      NodeType = "mirror"
	NodeVoid        NodeType = "void"
	NodeDestination NodeType = "destination"
)

// EdgeType classifies an edge. Only EdgeOneWay restricts traversal direction.
type EdgeType string

const (
	EdgeSolid       EdgeType = "solid"
	EdgeDashed      EdgeType = "dashed"
	EdgeHidden      EdgeType = "hidden"
	EdgeOneWay      EdgeType = "one-way"
	EdgeTimed       EdgeType = "timed"
	EdgeWitnessOnly EdgeType = "witness-only"
)

// StartsVisible reports whether edges of this type are visible when built.
func (t EdgeType) StartsVisible() bool {
	return t != EdgeHidden && t != EdgeWitnessOnly
}

// Dimension is one of the parallel world-layers a level declares.
type Dimension string

// TriggerType is the gameplay event a trigger listens for.
type TriggerType string

const (
	TriggerEnter    TriggerType = "enter"
	TriggerActivate TriggerType = "activate"
	TriggerWitness  TriggerType = "witness"
)

// ActionType is what a fired trigger does.
type ActionType string

const (
	ActionReveal         ActionType = "reveal"
	ActionUnlock         ActionType = "unlock"
	ActionHide           ActionType = "hide"
	ActionMessage        ActionType = "message"
	ActionDimensionShift ActionType = "dimension-shift"
	ActionSpawn          ActionType = "spawn"
)

// VictoryType selects how completion is evaluated.
type VictoryType string

const (
	VictoryReach       VictoryType = "reach"
	VictoryActivateAll VictoryType = "activate-all"
	VictorySequence    VictoryType = "sequence"
	VictoryWitness     VictoryType = "witness"
	VictorySynchronize VictoryType = "synchronize"
)

// ObjectiveKind selects how an optional objective is evaluated.
type ObjectiveKind string

const (
	ObjectiveVisit    ObjectiveKind = "visit"
	ObjectiveActivate ObjectiveKind = "activate"
	ObjectiveWitness  ObjectiveKind = "witness"
)

// NodeProperties holds optional per-node settings. Nil pointers fall back to
// builder defaults.
type NodeProperties struct {
	Locked          *bool   `yaml:"locked,omitempty"`
	RequiredPlayers *int    `yaml:"required_players,omitempty"`
	ActivationTime  float64 `yaml:"activation_time,omitempty"` // ms of occupancy to charge
	Label           string  `yaml:"label,omitempty"`
}

// NodeDef declares a node.
type NodeDef struct {
	ID         string         `yaml:"id"`
	Position   core.Vec3      `yaml:"position"`
	Type       NodeType       `yaml:"type"`
	Dimension  Dimension      `yaml:"dimension"`
	HiddenIn   []Dimension    `yaml:"hidden_in,omitempty"`
	Properties NodeProperties `yaml:"properties,omitempty"`
}

// EdgeDef declares an edge. Its runtime id is EdgeID(From, To).
type EdgeDef struct {
	From            string    `yaml:"from"`
	To              string    `yaml:"to"`
	Type            EdgeType  `yaml:"type"`
	Dimension       Dimension `yaml:"dimension,omitempty"`
	RequiresWitness bool      `yaml:"requires_witness,omitempty"`
}

// TriggerData carries action-specific parameters.
type TriggerData struct {
	PartialUnlock bool   `yaml:"partial_unlock,omitempty"`
	UnlockID      string `yaml:"unlock_id,omitempty"`
	Message       string `yaml:"message,omitempty"`
	Spawn         string `yaml:"spawn,omitempty"`
}

// TriggerDef declares a trigger scoped to one node.
type TriggerDef struct {
	Type   TriggerType `yaml:"type"`
	NodeID string      `yaml:"node"`
	Action ActionType  `yaml:"action"`
	Target string      `yaml:"target,omitempty"`
	Data   TriggerData `yaml:"data,omitempty"`
	Delay  float64     `yaml:"delay,omitempty"` // ms
}

// Objective is an optional goal tracked alongside the victory condition.
type Objective struct {
	ID          string        `yaml:"id"`
	Description string        `yaml:"description"`
	Kind        ObjectiveKind `yaml:"kind"`
	Target      string        `yaml:"target"`
}

// VictoryCondition is the tagged union deciding completion.
type VictoryCondition struct {
	Type      VictoryType `yaml:"type"`
	Targets   []string    `yaml:"targets"`
	TimeLimit float64     `yaml:"time_limit,omitempty"` // ms; 0 means none
}

// Timing holds par and perfect completion times in ms.
type Timing struct {
	Par     float64 `yaml:"par,omitempty"`
	Perfect float64 `yaml:"perfect,omitempty"`
}

// Ambience is presentation-only metadata.
type Ambience struct {
	Palette string  `yaml:"palette,omitempty"`
	Music   string  `yaml:"music,omitempty"`
	Fog     float64 `yaml:"fog,omitempty"`
}

// Definition is a complete declarative level.
type Definition struct {
	ID         string           `yaml:"id"`
	Seed       uint32           `yaml:"seed"`
	Name       string           `yaml:"name"`
	Dimensions []Dimension      `yaml:"dimensions"`
	Nodes      []NodeDef        `yaml:"nodes"`
	Edges      []EdgeDef        `yaml:"edges"`
	Triggers   []TriggerDef     `yaml:"triggers,omitempty"`
	Objectives []Objective      `yaml:"objectives,omitempty"`
	Victory    VictoryCondition `yaml:"victory"`
	MinPlayers int              `yaml:"min_players,omitempty"`
	MaxPlayers int              `yaml:"max_players,omitempty"`
	Difficulty float64          `yaml:"difficulty,omitempty"`
	Timing     Timing           `yaml:"timing,omitempty"`
	Ambience   Ambience         `yaml:"ambience,omitempty"`
}

// EdgeID returns the canonical id of an edge from one node to another.
func EdgeID(from, to string) string {
	return from + "->" + to
}

// Bool returns a pointer to b, for filling NodeProperties.
func Bool(b bool) *bool {
	return &b
}

// Int returns a pointer to n, for filling NodeProperties.
func Int(n int) *int {
	return &n
}
