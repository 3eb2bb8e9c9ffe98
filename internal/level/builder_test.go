package level

import (
	"errors"
	"testing"

	"github.com/vovakirdan/liminal/internal/core"
)

func sampleDefinition() Definition {
	return Definition{
		ID:         "sample",
		Seed:       7,
		Name:       "Sample",
		Dimensions: []Dimension{"alpha", "beta"},
		Nodes: []NodeDef{
			{ID: "start", Type: NodeOrigin, Dimension: "alpha"},
			{ID: "mid", Type: NodeSwitch, Dimension: "alpha", Position: core.Vec3{X: 4},
				Properties: NodeProperties{ActivationTime: 1000, RequiredPlayers: Int(2)}},
			{ID: "gate", Type: NodeGate, Dimension: "beta", Properties: NodeProperties{Locked: Bool(true)}},
			{ID: "dest", Type: NodeDestination, Dimension: "beta"},
		},
		Edges: []EdgeDef{
			{From: "start", To: "mid", Type: EdgeSolid},
			{From: "mid", To: "gate", Type: EdgeOneWay},
			{From: "gate", To: "dest", Type: EdgeHidden},
			{From: "mid", To: "dest", Type: EdgeWitnessOnly},
			{From: "dest", To: "nowhere", Type: EdgeSolid},
		},
		Triggers: []TriggerDef{
			{Type: TriggerEnter, NodeID: "mid", Action: ActionUnlock, Target: "gate"},
		},
		Victory: VictoryCondition{Type: VictoryReach, Targets: []string{"dest"}},
	}
}

func TestBuildNodeDefaults(t *testing.T) {
	lvl := Build(sampleDefinition())

	tests := []struct {
		id       string
		active   bool
		locked   bool
		required int
	}{
		{"start", true, false, 1},
		{"mid", false, false, 2},
		{"gate", false, true, 1},
		{"dest", false, false, 1},
	}

	for _, tc := range tests {
		n, ok := lvl.Nodes[tc.id]
		if !ok {
			t.Fatalf("node %q missing", tc.id)
		}
		if n.Active != tc.active {
			t.Errorf("%s.Active = %v, expected %v", tc.id, n.Active, tc.active)
		}
		if n.Locked != tc.locked {
			t.Errorf("%s.Locked = %v, expected %v", tc.id, n.Locked, tc.locked)
		}
		if n.RequiredPlayers != tc.required {
			t.Errorf("%s.RequiredPlayers = %d, expected %d", tc.id, n.RequiredPlayers, tc.required)
		}
		if n.ChargeProgress != 0 {
			t.Errorf("%s.ChargeProgress = %v, expected 0", tc.id, n.ChargeProgress)
		}
	}

	if lvl.ActiveDimension != "alpha" {
		t.Errorf("ActiveDimension = %q, expected alpha", lvl.ActiveDimension)
	}
	if len(lvl.Origins) != 1 || lvl.Origins[0] != "start" {
		t.Errorf("Origins = %v, expected [start]", lvl.Origins)
	}
	if got := lvl.NodesByDim["beta"]; len(got) != 2 || got[0] != "gate" || got[1] != "dest" {
		t.Errorf("NodesByDim[beta] = %v, expected [gate dest]", got)
	}
}

func TestBuildEdgeVisibility(t *testing.T) {
	lvl := Build(sampleDefinition())

	tests := []struct {
		id              string
		visible         bool
		requiresWitness bool
	}{
		{"start->mid", true, false},
		{"mid->gate", true, false},
		{"gate->dest", false, false},
		{"mid->dest", false, true},
	}

	for _, tc := range tests {
		e, ok := lvl.Edges[tc.id]
		if !ok {
			t.Fatalf("edge %q missing", tc.id)
		}
		if e.Visible != tc.visible {
			t.Errorf("%s.Visible = %v, expected %v", tc.id, e.Visible, tc.visible)
		}
		if e.RequiresWitness != tc.requiresWitness {
			t.Errorf("%s.RequiresWitness = %v, expected %v", tc.id, e.RequiresWitness, tc.requiresWitness)
		}
	}

	if e := lvl.Edges["start->mid"]; e.Dimension != "alpha" {
		t.Errorf("edge dimension = %q, expected inherited alpha", e.Dimension)
	}
}

func TestBuildRegistersEdgesOnBothEndpoints(t *testing.T) {
	lvl := Build(sampleDefinition())

	if _, ok := lvl.Nodes["gate"].Edges["mid->gate"]; !ok {
		t.Error("one-way edge not registered on its target node")
	}
	if _, ok := lvl.Nodes["mid"].Edges["mid->gate"]; !ok {
		t.Error("one-way edge not registered on its source node")
	}

	// Dangling edge is built with only the known endpoint referencing it.
	if _, ok := lvl.Edges["dest->nowhere"]; !ok {
		t.Error("dangling edge should still be built")
	}
	if _, ok := lvl.Nodes["dest"].Edges["dest->nowhere"]; !ok {
		t.Error("dangling edge not registered on known endpoint")
	}

	got := lvl.Neighbors("mid")
	expected := []string{"dest", "gate", "start"}
	if len(got) != len(expected) {
		t.Fatalf("Neighbors(mid) = %v, expected %v", got, expected)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("Neighbors(mid)[%d] = %q, expected %q", i, got[i], expected[i])
		}
	}
}

func TestBuildDuplicateEdgeLastWins(t *testing.T) {
	def := sampleDefinition()
	def.Edges = append(def.Edges, EdgeDef{From: "start", To: "mid", Type: EdgeHidden})

	lvl := Build(def)
	if e := lvl.Edges["start->mid"]; e.Type != EdgeHidden {
		t.Errorf("duplicate edge type = %q, expected %q", e.Type, EdgeHidden)
	}
}

func TestBuildIsPure(t *testing.T) {
	a := Build(sampleDefinition())
	b := Build(sampleDefinition())

	for id, n := range a.Nodes {
		if b.Nodes[id].Phase != n.Phase {
			t.Errorf("node %q phase differs between builds", id)
		}
	}
	if a.Triggers[0].ID != "enter:mid:0" {
		t.Errorf("trigger id = %q, expected enter:mid:0", a.Triggers[0].ID)
	}
}

func TestCanTravelOneWay(t *testing.T) {
	lvl := Build(sampleDefinition())

	tests := []struct {
		from, to string
		expected bool
	}{
		{"start", "mid", true},
		{"mid", "start", true},
		{"mid", "gate", true},
		{"gate", "mid", false},
		{"gate", "dest", false}, // hidden and inactive
		{"start", "dest", false},
	}

	for _, tc := range tests {
		if got := lvl.CanTravel(tc.from, tc.to); got != tc.expected {
			t.Errorf("CanTravel(%s, %s) = %v, expected %v", tc.from, tc.to, got, tc.expected)
		}
	}
}

func TestUnlockTriggerCount(t *testing.T) {
	def := sampleDefinition()
	def.Triggers = append(def.Triggers,
		TriggerDef{Type: TriggerWitness, NodeID: "dest", Action: ActionUnlock, Target: "gate"},
		TriggerDef{Type: TriggerEnter, NodeID: "dest", Action: ActionReveal, Target: "gate"},
	)

	lvl := Build(def)
	if got := lvl.UnlockTriggerCount("gate"); got != 2 {
		t.Errorf("UnlockTriggerCount(gate) = %d, expected 2", got)
	}
	if got := lvl.UnlockTriggerCount("dest"); got != 0 {
		t.Errorf("UnlockTriggerCount(dest) = %d, expected 0", got)
	}
}

func TestValidate(t *testing.T) {
	def := sampleDefinition()
	def.Edges = def.Edges[:4]
	if err := Validate(def); err != nil {
		t.Fatalf("Validate() = %v, expected nil", err)
	}

	def = sampleDefinition()
	err := Validate(def)
	if !errors.Is(err, ErrUnknownNode) {
		t.Errorf("Validate() with dangling edge = %v, expected ErrUnknownNode", err)
	}

	def.Edges = def.Edges[:4]
	def.Nodes[0].Type = NodeWaypoint
	if err := Validate(def); !errors.Is(err, ErrNoOrigin) {
		t.Errorf("Validate() without origin = %v, expected ErrNoOrigin", err)
	}

	def = sampleDefinition()
	def.Edges = def.Edges[:4]
	def.Nodes = append(def.Nodes, NodeDef{ID: "mid", Type: NodeWaypoint, Dimension: "alpha"})
	def.Victory = VictoryCondition{Type: "escape"}
	err = Validate(def)
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("Validate() = %v, expected ErrDuplicateID", err)
	}
	if !errors.Is(err, ErrBadVictory) {
		t.Errorf("Validate() = %v, expected ErrBadVictory", err)
	}

	var verr ValidationError
	if !errors.As(err, &verr) || verr.Code == "" {
		t.Errorf("Validate() error should contain a coded ValidationError")
	}
}
