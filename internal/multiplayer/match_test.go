package multiplayer

import (
	"testing"
	"time"

	"github.com/vovakirdan/liminal/internal/engine"
	"github.com/vovakirdan/liminal/internal/level"
)

func newTestMatch(t *testing.T, ids ...SessionID) (*Match, []*ChannelSession) {
	t.Helper()
	sessions := make([]*ChannelSession, len(ids))
	handles := make([]SessionHandle, len(ids))
	for i, id := range ids {
		sessions[i] = NewChannelSession(id, 1024)
		handles[i] = sessions[i]
	}
	rt := engine.New(level.Build(duoDefinition("duo")))
	m := NewMatch("m1", "ABCDEF", "duo", rt, handles, 30)
	m.begin()
	return m, sessions
}

func TestMatchStepAppliesCommands(t *testing.T) {
	m, s := newTestMatch(t, "alice", "bob")

	if p, ok := m.PlayerFor("bob"); !ok || p != "p2" {
		t.Errorf("PlayerFor(bob) = %q, %v, expected p2", p, ok)
	}

	frame := waitFor[FrameEvent](t, s[0])
	if frame.Frame.Positions["p1"] != "start" || frame.Frame.Positions["p2"] != "start" {
		t.Errorf("initial positions = %v, expected both on start", frame.Frame.Positions)
	}

	m.SendCommand("p1", Command{Kind: CommandMove, Target: "dest"})
	if _, done := m.step(16); done {
		t.Fatal("match ended with one player still on start")
	}

	m.SendCommand("p2", Command{Kind: CommandMove, Target: "dest"})
	result, done := m.step(16)
	if !done || result.Reason != MatchEndReasonCompleted {
		t.Fatalf("step() = %+v, %v, expected completed", result, done)
	}
	if result.Ticks != 2 || result.State.PlayerPositions["p2"] != "dest" {
		t.Errorf("result = %+v", result)
	}

	var moves int
	for len(s[1].Events()) > 0 {
		if evt, ok := (<-s[1].Events()).(RuntimeEvent); ok {
			if _, ok := evt.Event.(engine.PlayerMoveEvent); ok {
				moves++
			}
		}
	}
	// Two joins plus two moves.
	if moves != 4 {
		t.Errorf("forwarded %d player-move events, expected 4", moves)
	}
}

func TestMatchIgnoresDepartedPlayers(t *testing.T) {
	m, s := newTestMatch(t, "alice", "bob")

	if _, done := m.drop("bob"); done {
		t.Fatal("match ended while alice is still playing")
	}
	if evt := waitFor[PlayerLeftEvent](t, s[0]); evt.Player != "p2" {
		t.Errorf("PlayerLeftEvent.Player = %q, expected p2", evt.Player)
	}

	m.SendCommand("p2", Command{Kind: CommandMove, Target: "dest"})
	m.step(16)
	if _, ok := m.runtime.Position("p2"); ok {
		t.Error("departed player was moved back onto the level")
	}

	// With p2 gone, p1 alone satisfies reach.
	m.SendCommand("p1", Command{Kind: CommandMove, Target: "dest"})
	if result, done := m.step(16); !done || result.Reason != MatchEndReasonCompleted {
		t.Errorf("step() = %+v, %v, expected completed", result, done)
	}
}

func TestMatchEndsWhenEveryoneLeaves(t *testing.T) {
	m, _ := newTestMatch(t, "alice")

	result, done := m.drop("alice")
	if !done || result.Reason != MatchEndReasonDisconnect {
		t.Errorf("drop() = %+v, %v, expected disconnect", result, done)
	}
	// Dropping twice is harmless.
	if _, done := m.drop("alice"); !done {
		t.Error("second drop() should still report an empty match")
	}
}

func TestMatchRepeatedDisconnectsEndMatch(t *testing.T) {
	handles := []SessionHandle{NewChannelSession("alice", 1024), NewChannelSession("bob", 1024)}
	rt := engine.New(level.Build(duoDefinition("duo")))
	m := NewMatch("m1", "ABCDEF", "duo", rt, handles, 30)

	// More signals than the queue holds, all before the loop starts.
	for i := 0; i < 5; i++ {
		m.PlayerDisconnected("alice")
		m.PlayerDisconnected("mallory")
	}
	m.PlayerDisconnected("bob")

	results := make(chan MatchResult, 1)
	go m.Run(func(r MatchResult) { results <- r })
	defer m.Stop()

	select {
	case r := <-results:
		if r.Reason != MatchEndReasonDisconnect {
			t.Errorf("Reason = %v, expected disconnect", r.Reason)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("match kept running after every player left")
	}
}
