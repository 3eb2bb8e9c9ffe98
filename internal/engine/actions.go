package engine

import "github.com/vovakirdan/liminal/internal/level"

// ActivateNode marks a node active and fires its activate triggers. It is not
// guarded: calling it on an active node emits the event again, although each
// trigger still fires at most once.
func (r *Runtime) ActivateNode(id string) {
	r.activateNode(id)
	r.flush()
}

func (r *Runtime) activateNode(id string) {
	if r.halted() {
		return
	}
	n, ok := r.level.Nodes[id]
	if !ok {
		return
	}
	n.Active = true
	if n.ActivationOrder == 0 {
		r.activations++
		n.ActivationOrder = r.activations
	}
	r.emit(NodeActivateEvent{Node: id})
	r.checkTriggers(level.TriggerActivate, id)
}

// UnlockNode clears a node's locked flag.
func (r *Runtime) UnlockNode(id string) {
	r.unlockNode(id)
	r.flush()
}

func (r *Runtime) unlockNode(id string) {
	if r.halted() {
		return
	}
	n, ok := r.level.Nodes[id]
	if !ok || !n.Locked {
		return
	}
	n.Locked = false
	r.emit(NodeUnlockEvent{Node: id})
}

// Reveal makes a node visible in every dimension, or, when no node has that
// id, makes the edge with that id fully visible.
func (r *Runtime) Reveal(id string) {
	r.reveal(id)
	r.flush()
}

func (r *Runtime) reveal(id string) {
	if r.halted() {
		return
	}
	if n, ok := r.level.Nodes[id]; ok {
		n.HiddenIn = make(map[level.Dimension]struct{})
		r.emit(RevealEvent{Target: id})
		return
	}
	if e, ok := r.level.Edges[id]; ok {
		e.Visible = true
		e.Opacity = 1
		r.emit(RevealEvent{Target: id, IsEdge: true})
	}
}

// PartialUnlock records unlockID against a gate. The gate unlocks once it has
// received required distinct ids. Repeated ids are counted once.
func (r *Runtime) PartialUnlock(gateID, unlockID string, required int) {
	r.partialUnlock(gateID, unlockID, required)
	r.flush()
}

func (r *Runtime) partialUnlock(gateID, unlockID string, required int) {
	if r.halted() {
		return
	}
	if _, ok := r.level.Nodes[gateID]; !ok {
		return
	}
	received, ok := r.level.PartialUnlocks[gateID]
	if !ok {
		received = make(map[string]struct{})
		r.level.PartialUnlocks[gateID] = received
	}
	received[unlockID] = struct{}{}

	r.emit(PartialUnlockEvent{
		Gate:     gateID,
		UnlockID: unlockID,
		Received: len(received),
		Required: required,
	})
	if len(received) >= required {
		r.unlockNode(gateID)
	}
}

func (r *Runtime) hide(id string) {
	n, ok := r.level.Nodes[id]
	if !ok {
		return
	}
	n.HiddenIn = make(map[level.Dimension]struct{}, len(r.level.Dimensions))
	for _, d := range r.level.Dimensions {
		n.HiddenIn[d] = struct{}{}
	}
	r.emit(HideEvent{Node: id})
}

func (r *Runtime) shiftDimension(to level.Dimension) {
	if !r.level.HasDimension(to) {
		return
	}
	from := r.level.ActiveDimension
	r.level.ActiveDimension = to
	r.emit(DimensionShiftEvent{From: from, To: to})
}
