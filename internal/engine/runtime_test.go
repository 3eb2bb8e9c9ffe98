package engine

import (
	"testing"

	"github.com/vovakirdan/liminal/internal/core"
	"github.com/vovakirdan/liminal/internal/level"
)

const (
	p1 core.PlayerID = "p1"
	p2 core.PlayerID = "p2"
)

// testDefinition lays out:
//
//	start -> sw -> gate -> dest
//	start => hub ~> dest
//
// where => is one-way and ~> is witness-only.
func testDefinition() level.Definition {
	return level.Definition{
		ID:         "test",
		Seed:       1,
		Dimensions: []level.Dimension{"alpha", "beta"},
		Nodes: []level.NodeDef{
			{ID: "start", Type: level.NodeOrigin, Dimension: "alpha"},
			{ID: "sw", Type: level.NodeSwitch, Dimension: "alpha",
				Properties: level.NodeProperties{ActivationTime: 1000}},
			{ID: "gate", Type: level.NodeGate, Dimension: "alpha",
				Properties: level.NodeProperties{Locked: level.Bool(true)}},
			{ID: "hub", Type: level.NodeWitness, Dimension: "beta"},
			{ID: "dest", Type: level.NodeDestination, Dimension: "beta"},
		},
		Edges: []level.EdgeDef{
			{From: "start", To: "sw", Type: level.EdgeSolid},
			{From: "sw", To: "gate", Type: level.EdgeSolid},
			{From: "gate", To: "dest", Type: level.EdgeSolid},
			{From: "start", To: "hub", Type: level.EdgeOneWay},
			{From: "hub", To: "dest", Type: level.EdgeWitnessOnly},
		},
		Victory: level.VictoryCondition{Type: level.VictoryReach, Targets: []string{"dest"}},
	}
}

func newRuntime(t *testing.T, def level.Definition) *Runtime {
	t.Helper()
	r := New(level.Build(def))
	r.Start()
	return r
}

func countEvents[T Event](events []Event) int {
	n := 0
	for _, ev := range events {
		if _, ok := ev.(T); ok {
			n++
		}
	}
	return n
}

func TestMovePlayerLegality(t *testing.T) {
	r := newRuntime(t, testDefinition())

	tests := []struct {
		name     string
		target   string
		expected bool
		at       string
	}{
		{"place anywhere unlocked", "start", true, "start"},
		{"missing node", "nowhere", false, "start"},
		{"no edge", "dest", false, "start"},
		{"one-way forward", "hub", true, "hub"},
		{"one-way backward", "start", false, "hub"},
		{"witness-only while hidden", "dest", false, "hub"},
	}

	for _, tc := range tests {
		if got := r.MovePlayer(p1, tc.target); got != tc.expected {
			t.Errorf("%s: MovePlayer(%s) = %v, expected %v", tc.name, tc.target, got, tc.expected)
		}
		if at, _ := r.Position(p1); at != tc.at {
			t.Errorf("%s: position = %q, expected %q", tc.name, at, tc.at)
		}
	}
}

func TestMovePlayerLockedTarget(t *testing.T) {
	r := newRuntime(t, testDefinition())
	r.MovePlayer(p1, "start")
	r.MovePlayer(p1, "sw")

	if r.MovePlayer(p1, "gate") {
		t.Fatal("MovePlayer onto locked gate should fail")
	}
	if r.Level().Nodes["gate"].Visited {
		t.Error("failed move must not mark the target visited")
	}

	r.UnlockNode("gate")
	if !r.MovePlayer(p1, "gate") {
		t.Error("MovePlayer onto unlocked gate should succeed")
	}
	if _, ok := r.Level().Nodes["sw"].CurrentPlayers[p1]; ok {
		t.Error("player still listed on previous node")
	}
}

func TestBacktrackCount(t *testing.T) {
	r := newRuntime(t, testDefinition())
	steps := []struct {
		target   string
		expected int
	}{
		{"start", 0},
		{"sw", 0},
		{"start", 1},
		{"sw", 2},
	}

	for _, s := range steps {
		if !r.MovePlayer(p1, s.target) {
			t.Fatalf("MovePlayer(%s) failed", s.target)
		}
		if got := r.Level().BacktrackCount; got != s.expected {
			t.Errorf("after %s BacktrackCount = %d, expected %d", s.target, got, s.expected)
		}
	}
}

func TestReachScenario(t *testing.T) {
	r := newRuntime(t, testDefinition())

	if !r.MovePlayer(p1, "dest") {
		t.Fatal("initial placement on dest failed")
	}
	if r.Level().Completed {
		t.Fatal("completion must wait for the next update")
	}
	r.Update(16)
	if !r.Level().Completed {
		t.Fatal("Completed = false, expected true after update")
	}
	if countEvents[LevelCompleteEvent](r.Drain()) != 1 {
		t.Error("expected exactly one level-complete event")
	}
}

func TestReachRequiresEveryPlayer(t *testing.T) {
	r := newRuntime(t, testDefinition())
	r.MovePlayer(p1, "dest")
	r.MovePlayer(p2, "start")
	r.Update(16)
	if r.Level().Completed {
		t.Error("reach must not complete while a player is off target")
	}
}

func TestTerminalLatch(t *testing.T) {
	r := newRuntime(t, testDefinition())
	r.MovePlayer(p1, "dest")
	r.Update(16)

	elapsed := r.Level().ElapsedTime
	r.Update(100)
	if r.Level().ElapsedTime != elapsed {
		t.Errorf("ElapsedTime advanced after completion: %v -> %v", elapsed, r.Level().ElapsedTime)
	}
	if r.MovePlayer(p2, "start") {
		t.Error("MovePlayer after completion should fail")
	}
	if r.Level().Failed {
		t.Error("Completed and Failed must be exclusive")
	}
}

func TestTimeLimitFails(t *testing.T) {
	def := testDefinition()
	def.Victory.TimeLimit = 1000
	r := newRuntime(t, def)
	r.MovePlayer(p1, "start")

	r.Update(1000)
	if r.Level().Failed {
		t.Fatal("level failed at exactly the limit")
	}
	r.MovePlayer(p1, "dest") // no edge, stays on start
	r.Update(1)
	if !r.Level().Failed {
		t.Fatal("Failed = false, expected true past the limit")
	}
	if r.Level().Completed {
		t.Error("failed level must not complete")
	}
}

func TestChargeAndDecay(t *testing.T) {
	r := newRuntime(t, testDefinition())
	r.MovePlayer(p1, "start")
	r.MovePlayer(p1, "sw")
	sw := r.Level().Nodes["sw"]

	r.Update(500)
	if sw.ChargeProgress != 0.5 {
		t.Fatalf("ChargeProgress = %v, expected 0.5", sw.ChargeProgress)
	}

	r.MovePlayer(p1, "start")
	r.Update(500)
	if sw.ChargeProgress != 0.25 {
		t.Errorf("ChargeProgress after decay = %v, expected 0.25", sw.ChargeProgress)
	}

	r.MovePlayer(p1, "sw")
	r.Update(2000)
	if sw.ChargeProgress != 1 {
		t.Errorf("ChargeProgress = %v, expected clamp to 1", sw.ChargeProgress)
	}
	if !sw.Active {
		t.Error("switch should be active after charging")
	}
	if countEvents[NodeActivateEvent](r.Drain()) != 1 {
		t.Error("expected exactly one node-activate event")
	}

	r.Update(2000)
	if countEvents[NodeActivateEvent](r.Drain()) != 0 {
		t.Error("active node must not activate again")
	}
}

func TestChargeRequiresPlayers(t *testing.T) {
	def := testDefinition()
	def.Nodes[1].Properties.RequiredPlayers = level.Int(2)
	r := newRuntime(t, def)
	r.MovePlayer(p1, "sw")

	r.Update(500)
	if got := r.Level().Nodes["sw"].ChargeProgress; got != 0 {
		t.Fatalf("ChargeProgress = %v with too few players, expected 0", got)
	}

	r.MovePlayer(p2, "sw")
	r.Update(500)
	if got := r.Level().Nodes["sw"].ChargeProgress; got != 0.5 {
		t.Errorf("ChargeProgress = %v, expected 0.5", got)
	}
}

func TestChargeBounds(t *testing.T) {
	r := newRuntime(t, testDefinition())
	sw := r.Level().Nodes["sw"]
	r.MovePlayer(p1, "start")

	dts := []float64{7, 333, 1500, 0, 90, 2500, 16, 16, 4000}
	for i, dt := range dts {
		if i%2 == 0 {
			r.MovePlayer(p1, "sw")
		} else {
			r.MovePlayer(p1, "start")
		}
		r.Update(dt)
		if sw.ChargeProgress < 0 || sw.ChargeProgress > 1 {
			t.Fatalf("step %d: ChargeProgress = %v out of [0,1]", i, sw.ChargeProgress)
		}
	}
}

func TestTriggerFiresAtMostOnce(t *testing.T) {
	def := testDefinition()
	def.Triggers = []level.TriggerDef{
		{Type: level.TriggerEnter, NodeID: "sw", Action: level.ActionMessage,
			Data: level.TriggerData{Message: "hello"}},
	}
	r := newRuntime(t, def)
	r.MovePlayer(p1, "start")

	for i := 0; i < 3; i++ {
		r.MovePlayer(p1, "sw")
		r.MovePlayer(p1, "start")
		r.Update(16)
	}
	r.CheckTriggers(level.TriggerEnter, "sw")
	r.Update(16)

	if got := countEvents[MessageEvent](r.Drain()); got != 1 {
		t.Errorf("message events = %d, expected 1", got)
	}
	if !r.Level().Triggers[0].Fired {
		t.Error("trigger should be marked fired")
	}
}

func TestTriggerDelay(t *testing.T) {
	def := testDefinition()
	def.Triggers = []level.TriggerDef{
		{Type: level.TriggerEnter, NodeID: "start", Action: level.ActionUnlock, Target: "gate", Delay: 500},
	}
	r := newRuntime(t, def)
	r.MovePlayer(p1, "start")

	if r.Pending() != 1 {
		t.Fatalf("Pending() = %d, expected 1", r.Pending())
	}
	r.Update(499)
	if !r.Level().Nodes["gate"].Locked {
		t.Fatal("gate unlocked before its delay")
	}
	r.Update(1)
	if r.Level().Nodes["gate"].Locked {
		t.Error("gate still locked after its delay")
	}
	if r.Pending() != 0 {
		t.Errorf("Pending() = %d, expected 0", r.Pending())
	}
}

func TestZeroDelayRunsOnNextUpdate(t *testing.T) {
	def := testDefinition()
	def.Triggers = []level.TriggerDef{
		{Type: level.TriggerEnter, NodeID: "start", Action: level.ActionDimensionShift, Target: "beta"},
	}
	r := newRuntime(t, def)
	r.MovePlayer(p1, "start")

	if r.Level().ActiveDimension != "alpha" {
		t.Fatal("action ran synchronously")
	}
	r.Update(0)
	if r.Level().ActiveDimension != "beta" {
		t.Errorf("ActiveDimension = %q, expected beta", r.Level().ActiveDimension)
	}
}

func TestPartialUnlock(t *testing.T) {
	def := testDefinition()
	partial := level.TriggerData{PartialUnlock: true}
	def.Triggers = []level.TriggerDef{
		{Type: level.TriggerEnter, NodeID: "sw", Action: level.ActionUnlock, Target: "gate", Data: partial},
		{Type: level.TriggerEnter, NodeID: "hub", Action: level.ActionUnlock, Target: "gate", Data: partial},
	}
	r := newRuntime(t, def)
	gate := r.Level().Nodes["gate"]

	r.MovePlayer(p1, "start")
	r.MovePlayer(p1, "sw")
	r.Update(16)
	if !gate.Locked {
		t.Fatal("gate unlocked after 1 of 2 contributions")
	}

	r.MovePlayer(p2, "start")
	r.MovePlayer(p2, "hub")
	r.Update(16)
	if gate.Locked {
		t.Error("gate still locked after 2 of 2 contributions")
	}
	if got := len(r.Level().PartialUnlocks["gate"]); got != 2 {
		t.Errorf("received unlock ids = %d, expected 2", got)
	}
}

func TestPartialUnlockRepeatedID(t *testing.T) {
	r := newRuntime(t, testDefinition())
	gate := r.Level().Nodes["gate"]

	r.PartialUnlock("gate", "a", 2)
	r.PartialUnlock("gate", "a", 2)
	if !gate.Locked {
		t.Fatal("repeated unlock id counted twice")
	}
	r.PartialUnlock("gate", "b", 2)
	if gate.Locked {
		t.Error("gate should unlock at 2 distinct ids")
	}
}

func TestWitnessRevealIsLocalHideIsGlobal(t *testing.T) {
	def := testDefinition()
	def.Nodes = append(def.Nodes, level.NodeDef{ID: "far", Type: level.NodeWaypoint, Dimension: "beta"})
	def.Edges = append(def.Edges, level.EdgeDef{From: "far", To: "dest", Type: level.EdgeWitnessOnly})
	r := newRuntime(t, def)

	r.MovePlayer(p1, "start")
	r.MovePlayer(p1, "hub")
	r.MovePlayer(p2, "far")

	revealed := r.StartWitness(p1)
	if len(revealed) != 1 || revealed[0] != "hub->dest" {
		t.Fatalf("StartWitness() = %v, expected [hub->dest]", revealed)
	}
	if e := r.Level().Edges["hub->dest"]; e.Opacity != DefaultWitnessOpacity {
		t.Errorf("witnessed opacity = %v, expected %v", e.Opacity, DefaultWitnessOpacity)
	}
	if r.Level().Edges["far->dest"].Visible {
		t.Fatal("witnessing revealed an edge from another node")
	}
	r.StartWitness(p2)

	r.StopWitness(p2)
	for _, id := range []string{"hub->dest", "far->dest"} {
		if r.Level().Edges[id].Visible {
			t.Errorf("%s still visible after StopWitness", id)
		}
	}
	if r.MovePlayer(p1, "dest") {
		t.Error("moving along a hidden witness edge should fail")
	}

	r.StartWitness(p1)
	if !r.MovePlayer(p1, "dest") {
		t.Error("moving along a witnessed edge should succeed")
	}
}

func TestRevealAndHide(t *testing.T) {
	def := testDefinition()
	def.Nodes[3].HiddenIn = []level.Dimension{"beta"}
	def.Triggers = []level.TriggerDef{
		{Type: level.TriggerEnter, NodeID: "start", Action: level.ActionReveal, Target: "hub"},
		{Type: level.TriggerEnter, NodeID: "sw", Action: level.ActionHide, Target: "dest"},
	}
	r := newRuntime(t, def)

	r.MovePlayer(p1, "start")
	r.Update(0)
	if r.Level().Nodes["hub"].HiddenInDimension("beta") {
		t.Error("revealed node still hidden")
	}

	r.MovePlayer(p1, "sw")
	r.Update(0)
	dest := r.Level().Nodes["dest"]
	if !dest.HiddenInDimension("alpha") || !dest.HiddenInDimension("beta") {
		t.Error("hidden node should be invisible in every dimension")
	}

	r.Reveal("hub->dest")
	if e := r.Level().Edges["hub->dest"]; !e.Visible || e.Opacity != 1 {
		t.Error("Reveal on an edge id should make it fully visible")
	}
}

func TestSequenceVictory(t *testing.T) {
	def := testDefinition()
	def.Victory = level.VictoryCondition{Type: level.VictorySequence, Targets: []string{"sw", "gate"}}

	r := newRuntime(t, def)
	r.ActivateNode("gate")
	r.ActivateNode("sw")
	r.Update(16)
	if r.Level().Completed {
		t.Error("sequence completed out of order")
	}

	r = newRuntime(t, def)
	r.ActivateNode("sw")
	r.ActivateNode("gate")
	r.Update(16)
	if !r.Level().Completed {
		t.Error("sequence should complete in order")
	}
}

func TestSequenceVictoryStartingAtOrigin(t *testing.T) {
	def := testDefinition()
	def.Victory = level.VictoryCondition{Type: level.VictorySequence, Targets: []string{"start", "sw"}}

	r := newRuntime(t, def)
	if got := r.Level().Nodes["start"].ActivationOrder; got != 1 {
		t.Fatalf("origin ActivationOrder = %d, expected 1", got)
	}
	r.Update(16)
	if r.Level().Completed {
		t.Fatal("sequence completed before the switch was activated")
	}
	r.ActivateNode("sw")
	r.Update(16)
	if !r.Level().Completed {
		t.Error("sequence led by the origin should complete")
	}
}

func TestSynchronizeVictory(t *testing.T) {
	def := testDefinition()
	def.Victory = level.VictoryCondition{Type: level.VictorySynchronize, Targets: []string{"sw", "hub"}}
	r := newRuntime(t, def)

	r.Update(16)
	if r.Level().Completed {
		t.Fatal("synchronize must not complete with no players")
	}

	r.MovePlayer(p1, "sw")
	r.MovePlayer(p2, "start")
	r.Update(16)
	if r.Level().Completed {
		t.Fatal("synchronize completed with a player off target")
	}

	r.MovePlayer(p2, "hub")
	r.Update(16)
	if !r.Level().Completed {
		t.Error("synchronize should complete with every player on a target")
	}
}

func TestActivateAllAndWitnessVictory(t *testing.T) {
	def := testDefinition()
	def.Victory = level.VictoryCondition{Type: level.VictoryActivateAll, Targets: []string{"sw", "start"}}
	r := newRuntime(t, def)
	r.Update(16)
	if r.Level().Completed {
		t.Fatal("activate-all completed early")
	}
	r.ActivateNode("sw")
	r.Update(16)
	if !r.Level().Completed {
		t.Error("activate-all should complete")
	}

	def.Victory = level.VictoryCondition{Type: level.VictoryWitness, Targets: []string{"sw"}}
	r = newRuntime(t, def)
	r.MovePlayer(p1, "start")
	r.MovePlayer(p1, "sw")
	r.MovePlayer(p1, "start")
	r.Update(16)
	if !r.Level().Completed {
		t.Error("witness victory should hold once the target was visited")
	}
}

func TestObjectives(t *testing.T) {
	def := testDefinition()
	def.Objectives = []level.Objective{
		{ID: "visit-sw", Kind: level.ObjectiveVisit, Target: "sw"},
		{ID: "watch-hub", Kind: level.ObjectiveWitness, Target: "hub"},
	}
	r := newRuntime(t, def)
	r.MovePlayer(p1, "start")
	r.MovePlayer(p1, "hub")
	r.StartWitness(p1)
	r.Update(16)
	r.MovePlayer(p2, "sw")
	r.Update(16)
	r.Update(16)

	got := r.Level().CompletedObjectives
	if len(got) != 2 || got[0] != "watch-hub" || got[1] != "visit-sw" {
		t.Errorf("CompletedObjectives = %v, expected [watch-hub visit-sw]", got)
	}
}

func TestCloseDropsPendingActions(t *testing.T) {
	def := testDefinition()
	def.Triggers = []level.TriggerDef{
		{Type: level.TriggerEnter, NodeID: "start", Action: level.ActionUnlock, Target: "gate", Delay: 100},
	}
	r := newRuntime(t, def)
	r.MovePlayer(p1, "start")
	r.Close()

	if r.Pending() != 0 {
		t.Errorf("Pending() = %d after Close, expected 0", r.Pending())
	}
	r.Update(1000)
	if !r.Level().Nodes["gate"].Locked {
		t.Error("scheduled action ran after Close")
	}
	if r.MovePlayer(p1, "sw") {
		t.Error("MovePlayer after Close should fail")
	}
	if !r.Closed() {
		t.Error("Closed() = false, expected true")
	}
}

func TestSubscribeOrder(t *testing.T) {
	r := New(level.Build(testDefinition()))

	var names []string
	var id SubscriptionID
	id = r.Subscribe(func(ev Event) {
		names = append(names, ev.Name())
		if _, ok := ev.(PlayerMoveEvent); ok && len(names) == 2 {
			// Re-entrant call; its events queue behind the current one.
			r.Reveal("hub")
		}
	})

	r.Start()
	r.MovePlayer(p1, "start")
	r.Unsubscribe(id)
	r.MovePlayer(p1, "sw")

	expected := []string{"level-start", "player-move", "reveal"}
	if len(names) != len(expected) {
		t.Fatalf("events = %v, expected %v", names, expected)
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("event[%d] = %q, expected %q", i, names[i], expected[i])
		}
	}
	if got := r.Drain(); len(got) != 1 {
		t.Errorf("Drain() after unsubscribe = %d events, expected 1", len(got))
	}
}

func TestLevelStartEventCarriesLevel(t *testing.T) {
	def := testDefinition()
	def.Name = "Test Chamber"
	r := New(level.Build(def))

	var got []LevelStartEvent
	r.Subscribe(func(ev Event) {
		if e, ok := ev.(LevelStartEvent); ok {
			got = append(got, e)
		}
	})
	r.Start()
	r.Start()

	if len(got) != 1 {
		t.Fatalf("level-start emitted %d times, expected 1", len(got))
	}
	if got[0].Name() != "level-start" || got[0].LevelID != "test" || got[0].LevelName != "Test Chamber" {
		t.Errorf("LevelStartEvent = %+v (%q)", got[0], got[0].Name())
	}
}

func TestJoinCyclesOrigins(t *testing.T) {
	def := testDefinition()
	def.Nodes[3].Type = level.NodeOrigin
	def.MaxPlayers = 3
	r := newRuntime(t, def)

	players := []core.PlayerID{"a", "b", "c", "d"}
	expected := []string{"start", "hub", "start", ""}
	for i, p := range players {
		ok := r.Join(p)
		at, _ := r.Position(p)
		if at != expected[i] {
			t.Errorf("Join(%s) placed at %q, expected %q", p, at, expected[i])
		}
		if ok != (expected[i] != "") {
			t.Errorf("Join(%s) = %v", p, ok)
		}
	}
	if r.Join("a") {
		t.Error("joining twice should fail")
	}
}

func TestStateRestore(t *testing.T) {
	r := newRuntime(t, testDefinition())
	r.MovePlayer(p1, "start")
	r.MovePlayer(p1, "sw")
	r.Update(250)
	snap := r.State()

	if snap.ElapsedTime != 250 || len(snap.NodesVisited) != 2 {
		t.Fatalf("State() = %+v", snap)
	}

	fresh := New(level.Build(testDefinition()))
	if !fresh.Restore(snap) {
		t.Fatal("Restore() = false, expected true")
	}
	if at, _ := fresh.Position(p1); at != "sw" {
		t.Errorf("restored position = %q, expected sw", at)
	}
	if !fresh.Level().Nodes["start"].Visited {
		t.Error("restored visited flag missing")
	}
	if fresh.Level().Nodes["sw"].Occupancy() != 1 {
		t.Error("restored occupant set missing")
	}
	if fresh.Level().Nodes["sw"].ChargeProgress != 0 {
		t.Error("charge progress is not part of the snapshot")
	}

	snap.ID = "other"
	if fresh.Restore(snap) {
		t.Error("Restore() of another level should fail")
	}
}

func TestFrameIsDetached(t *testing.T) {
	r := newRuntime(t, testDefinition())
	r.MovePlayer(p1, "start")
	r.hide("hub")

	f := r.Frame()
	if len(f.Nodes) != 5 || len(f.Edges) != 5 {
		t.Fatalf("Frame() has %d nodes and %d edges, expected 5 and 5", len(f.Nodes), len(f.Edges))
	}
	start, ok := f.Node("start")
	if !ok || len(start.Occupants) != 1 || start.Occupants[0] != p1 {
		t.Errorf("Frame().Node(start) = %+v, expected p1 on it", start)
	}
	if hub, _ := f.Node("hub"); hub.Visible {
		t.Error("hidden node should not be visible in the frame")
	}
	if _, ok := f.Node("missing"); ok {
		t.Error("Frame().Node(missing) should report false")
	}

	r.MovePlayer(p1, "sw")
	if f.Positions[p1] != "start" {
		t.Errorf("frame position changed to %q after a later move", f.Positions[p1])
	}
}
