package engine

import (
	"github.com/vovakirdan/liminal/internal/core"
	"github.com/vovakirdan/liminal/internal/level"
)

// Event is emitted by the runtime to the presentation layer.
type Event interface {
	// Name returns the wire name of the event, e.g. "player-move".
	Name() string
	runtimeEvent()
}

// LevelStartEvent is emitted once by Start.
type LevelStartEvent struct {
	LevelID   string
	LevelName string
}

func (LevelStartEvent) Name() string  { return "level-start" }
func (LevelStartEvent) runtimeEvent() {}

// PlayerMoveEvent is emitted after a successful move or join.
type PlayerMoveEvent struct {
	Player    core.PlayerID
	From      string // empty when the player had no position
	To        string
	Backtrack bool
}

func (PlayerMoveEvent) Name() string  { return "player-move" }
func (PlayerMoveEvent) runtimeEvent() {}

// WitnessStartEvent lists the edges revealed by a player's witnessing.
type WitnessStartEvent struct {
	Player   core.PlayerID
	Node     string
	Revealed []string
}

func (WitnessStartEvent) Name() string  { return "witness-start" }
func (WitnessStartEvent) runtimeEvent() {}

// WitnessStopEvent lists the witness-only edges hidden again.
type WitnessStopEvent struct {
	Player core.PlayerID
	Hidden []string
}

func (WitnessStopEvent) Name() string  { return "witness-stop" }
func (WitnessStopEvent) runtimeEvent() {}

type NodeActivateEvent struct {
	Node string
}

func (NodeActivateEvent) Name() string  { return "node-activate" }
func (NodeActivateEvent) runtimeEvent() {}

type NodeUnlockEvent struct {
	Node string
}

func (NodeUnlockEvent) Name() string  { return "node-unlock" }
func (NodeUnlockEvent) runtimeEvent() {}

// PartialUnlockEvent reports progress towards unlocking a gate.
type PartialUnlockEvent struct {
	Gate     string
	UnlockID string
	Received int
	Required int
}

func (PartialUnlockEvent) Name() string  { return "partial-unlock" }
func (PartialUnlockEvent) runtimeEvent() {}

type DimensionShiftEvent struct {
	From level.Dimension
	To   level.Dimension
}

func (DimensionShiftEvent) Name() string  { return "dimension-shift" }
func (DimensionShiftEvent) runtimeEvent() {}

// RevealEvent is emitted when a node or edge becomes visible.
type RevealEvent struct {
	Target string
	IsEdge bool
}

func (RevealEvent) Name() string  { return "reveal" }
func (RevealEvent) runtimeEvent() {}

type HideEvent struct {
	Node string
}

func (HideEvent) Name() string  { return "hide" }
func (HideEvent) runtimeEvent() {}

type MessageEvent struct {
	Node string
	Text string
}

func (MessageEvent) Name() string  { return "message" }
func (MessageEvent) runtimeEvent() {}

// SpawnEvent asks the presentation layer to show something at Node.
// No runtime node is created.
type SpawnEvent struct {
	Node string
	Kind string
}

func (SpawnEvent) Name() string  { return "spawn" }
func (SpawnEvent) runtimeEvent() {}

type ObjectiveCompleteEvent struct {
	Objective level.Objective
}

func (ObjectiveCompleteEvent) Name() string  { return "objective-complete" }
func (ObjectiveCompleteEvent) runtimeEvent() {}

// LevelCompleteEvent is emitted when the victory condition is met.
type LevelCompleteEvent struct {
	ElapsedTime    float64
	BacktrackCount int
	UnderPar       bool
	Perfect        bool
}

func (LevelCompleteEvent) Name() string  { return "level-complete" }
func (LevelCompleteEvent) runtimeEvent() {}

// LevelFailEvent is emitted when the time limit runs out.
type LevelFailEvent struct {
	ElapsedTime float64
	Reason      string
}

func (LevelFailEvent) Name() string  { return "level-fail" }
func (LevelFailEvent) runtimeEvent() {}

// SubscriptionID identifies a handler registered with Subscribe.
type SubscriptionID int

type subscriber struct {
	id SubscriptionID
	fn func(Event)
}

// Subscribe registers fn to receive every event, in emission order. Handlers
// run on the caller's goroutine at the end of the public call that produced
// the event. A handler may call back into the runtime; events it causes are
// delivered after the ones already queued.
func (r *Runtime) Subscribe(fn func(Event)) SubscriptionID {
	r.nextSubID++
	id := r.nextSubID
	r.subscribers = append(r.subscribers, subscriber{id: id, fn: fn})
	r.flush()
	return id
}

// Unsubscribe removes a handler. Unknown ids are ignored.
func (r *Runtime) Unsubscribe(id SubscriptionID) {
	for i, s := range r.subscribers {
		if s.id == id {
			r.subscribers = append(r.subscribers[:i:i], r.subscribers[i+1:]...)
			return
		}
	}
}

// Drain returns and clears events that no subscriber has consumed. Events are
// only held while nobody is subscribed.
func (r *Runtime) Drain() []Event {
	out := r.queue
	r.queue = nil
	return out
}

func (r *Runtime) emit(ev Event) {
	r.queue = append(r.queue, ev)
}

func (r *Runtime) flush() {
	if r.flushing {
		return
	}
	r.flushing = true
	defer func() { r.flushing = false }()

	for len(r.queue) > 0 && len(r.subscribers) > 0 {
		ev := r.queue[0]
		r.queue = r.queue[1:]
		// Handlers may unsubscribe while iterating.
		subs := append([]subscriber(nil), r.subscribers...)
		for _, s := range subs {
			s.fn(ev)
		}
	}
	if len(r.queue) == 0 {
		r.queue = nil
	}
}
