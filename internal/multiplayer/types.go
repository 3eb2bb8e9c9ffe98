// Package multiplayer hosts shared level sessions: a coordinator groups
// sessions into lobbies by join code, and each match runs one authoritative
// engine.Runtime on its own goroutine.
package multiplayer

import (
	"fmt"

	"github.com/vovakirdan/liminal/internal/core"
)

// PlayerID is an alias to core.PlayerID for convenience.
type PlayerID = core.PlayerID

// PlayerSlot returns the player id for the i-th member of a match (0-based).
func PlayerSlot(i int) PlayerID {
	return PlayerID(fmt.Sprintf("p%d", i+1))
}

// SessionID uniquely identifies a player's session (e.g., SSH connection).
type SessionID string

// MatchID uniquely identifies a running match.
type MatchID string

// CommandKind is the kind of player command applied between ticks.
type CommandKind int

const (
	CommandMove CommandKind = iota
	CommandWitnessStart
	CommandWitnessStop
)

// String returns a human-readable name for the command kind.
func (k CommandKind) String() string {
	switch k {
	case CommandMove:
		return "move"
	case CommandWitnessStart:
		return "witness-start"
	case CommandWitnessStop:
		return "witness-stop"
	default:
		return "unknown"
	}
}

// Command is one player intent for the match loop.
type Command struct {
	Kind   CommandKind
	Target string // node id, for CommandMove
}
