package multiplayer

import "github.com/vovakirdan/liminal/internal/engine"

// SessionEvent represents an event sent from the coordinator or a match to a session.
type SessionEvent interface {
	sessionEvent()
}

// LobbyCreatedEvent is sent when a lobby is successfully created.
type LobbyCreatedEvent struct {
	Code       string
	LevelID    string
	MaxPlayers int
}

func (LobbyCreatedEvent) sessionEvent() {}

// LobbyErrorEvent is sent when a lobby operation fails.
type LobbyErrorEvent struct {
	Message string
}

func (LobbyErrorEvent) sessionEvent() {}

// LobbyJoinedEvent is sent to every member when someone joins.
type LobbyJoinedEvent struct {
	Code    string
	Session SessionID // who joined
	Members int
}

func (LobbyJoinedEvent) sessionEvent() {}

// LobbyPlayerLeftEvent is sent when a member leaves the lobby before the match starts.
type LobbyPlayerLeftEvent struct {
	Code    string
	Session SessionID
	Members int
}

func (LobbyPlayerLeftEvent) sessionEvent() {}

// MatchStartedEvent is sent to each member when the match begins.
type MatchStartedEvent struct {
	MatchID MatchID
	Code    string
	LevelID string
	Player  PlayerID // the recipient's player id
	Players int
}

func (MatchStartedEvent) sessionEvent() {}

// FrameEvent carries a detached copy of the level state after a tick.
type FrameEvent struct {
	MatchID MatchID
	Tick    uint64
	Frame   engine.Frame
}

func (FrameEvent) sessionEvent() {}

// RuntimeEvent forwards one event emitted by the match runtime.
type RuntimeEvent struct {
	MatchID MatchID
	Event   engine.Event
}

func (RuntimeEvent) sessionEvent() {}

// PlayerLeftEvent is sent to the remaining members when a player drops out.
type PlayerLeftEvent struct {
	MatchID MatchID
	Player  PlayerID
}

func (PlayerLeftEvent) sessionEvent() {}

// MatchEndedEvent is sent when the match ends.
type MatchEndedEvent struct {
	MatchID     MatchID
	Reason      MatchEndReason
	ElapsedTime float64 // ms of level time
	Backtracks  int
}

func (MatchEndedEvent) sessionEvent() {}

// MatchEndReason describes why a match ended.
type MatchEndReason int

const (
	MatchEndReasonCompleted  MatchEndReason = iota // Victory condition met
	MatchEndReasonFailed                           // Time limit exceeded
	MatchEndReasonDisconnect                       // Every player left
	MatchEndReasonCancelled                        // Match was stopped by the host process
	MatchEndReasonHostLeft                         // Host left the lobby
)

func (r MatchEndReason) String() string {
	switch r {
	case MatchEndReasonCompleted:
		return "completed"
	case MatchEndReasonFailed:
		return "failed"
	case MatchEndReasonDisconnect:
		return "disconnect"
	case MatchEndReasonCancelled:
		return "cancelled"
	case MatchEndReasonHostLeft:
		return "host-left"
	default:
		return "unknown"
	}
}

// CoordinatorMessage represents a message from a session to the coordinator.
type CoordinatorMessage interface {
	coordinatorMessage()
}

// CreateLobbyMsg requests creation of a new lobby for a level.
type CreateLobbyMsg struct {
	SessionID SessionID
	LevelID   string
}

func (CreateLobbyMsg) coordinatorMessage() {}

// JoinLobbyMsg requests joining an existing lobby.
type JoinLobbyMsg struct {
	SessionID SessionID
	Code      string
}

func (JoinLobbyMsg) coordinatorMessage() {}

// StartMatchMsg asks the coordinator to start a lobby's match. Only the host may send it.
type StartMatchMsg struct {
	SessionID SessionID
	Code      string
}

func (StartMatchMsg) coordinatorMessage() {}

// LeaveLobbyMsg requests leaving a lobby. A leaving host closes it.
type LeaveLobbyMsg struct {
	SessionID SessionID
	Code      string
}

func (LeaveLobbyMsg) coordinatorMessage() {}

// LeaveMatchMsg requests leaving an active match.
type LeaveMatchMsg struct {
	SessionID SessionID
	MatchID   MatchID
}

func (LeaveMatchMsg) coordinatorMessage() {}

// PlayerCommandMsg sends a player command to a match.
type PlayerCommandMsg struct {
	MatchID MatchID
	Player  PlayerID
	Command Command
}

func (PlayerCommandMsg) coordinatorMessage() {}

// SessionDisconnectedMsg is sent when a session disconnects.
type SessionDisconnectedMsg struct {
	SessionID SessionID
}

func (SessionDisconnectedMsg) coordinatorMessage() {}
