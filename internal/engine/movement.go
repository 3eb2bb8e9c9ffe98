package engine

import (
	"sort"

	"github.com/vovakirdan/liminal/internal/core"
	"github.com/vovakirdan/liminal/internal/level"
)

// MovePlayer moves a player onto target and reports whether it succeeded.
//
// The move fails without side effects when the target is missing or locked,
// when the level is over, or when the player already stands somewhere and no
// traversable edge leads from there to the target. A player with no position
// may be placed on any unlocked node.
func (r *Runtime) MovePlayer(player core.PlayerID, target string) bool {
	ok := r.movePlayer(player, target)
	r.flush()
	return ok
}

func (r *Runtime) movePlayer(player core.PlayerID, target string) bool {
	if r.halted() {
		return false
	}
	dest, ok := r.level.Nodes[target]
	if !ok || dest.Locked {
		return false
	}

	from, positioned := r.level.PlayerPositions[player]
	var edge *level.Edge
	if positioned {
		if !r.level.CanTravel(from, target) {
			return false
		}
		edge = r.level.EdgeBetween(from, target)
		if prev, ok := r.level.Nodes[from]; ok {
			delete(prev.CurrentPlayers, player)
		}
	}

	dest.CurrentPlayers[player] = struct{}{}
	backtrack := dest.Visited
	if backtrack {
		r.level.BacktrackCount++
	}
	dest.Visited = true
	r.level.Visited[target] = struct{}{}
	r.level.PlayerPositions[player] = target
	if edge != nil {
		edge.Progress[player] = 1
	}

	r.emit(PlayerMoveEvent{Player: player, From: from, To: target, Backtrack: backtrack})
	r.checkTriggers(level.TriggerEnter, target)
	return true
}

// Join places a new player on an origin, cycling through origins by the number
// of players already positioned. It fails when the player is already placed,
// the level has no origin, or MaxPlayers is reached.
func (r *Runtime) Join(player core.PlayerID) bool {
	if r.halted() {
		return false
	}
	if _, ok := r.level.PlayerPositions[player]; ok {
		return false
	}
	count := len(r.level.PlayerPositions)
	if len(r.level.Origins) == 0 {
		return false
	}
	if r.level.MaxPlayers > 0 && count >= r.level.MaxPlayers {
		return false
	}
	return r.MovePlayer(player, r.level.Origins[count%len(r.level.Origins)])
}

// RemovePlayer takes a player off the level. Visited state is kept.
func (r *Runtime) RemovePlayer(player core.PlayerID) {
	if r.halted() {
		return
	}
	at, ok := r.level.PlayerPositions[player]
	if !ok {
		return
	}
	if n, ok := r.level.Nodes[at]; ok {
		delete(n.CurrentPlayers, player)
	}
	delete(r.level.PlayerPositions, player)
}

// Position returns the node a player stands on.
func (r *Runtime) Position(player core.PlayerID) (string, bool) {
	id, ok := r.level.PlayerPositions[player]
	return id, ok
}

// StartWitness reveals every witness-gated edge leading out of the player's
// node and fires that node's witness triggers. It returns the revealed edge ids.
func (r *Runtime) StartWitness(player core.PlayerID) []string {
	if r.halted() {
		return nil
	}
	at, ok := r.level.PlayerPositions[player]
	if !ok {
		return nil
	}

	var revealed []string
	for _, id := range r.sortedEdgeIDs() {
		e := r.level.Edges[id]
		if !e.RequiresWitness || e.From != at {
			continue
		}
		e.Visible = true
		e.Opacity = r.witnessOpacity
		revealed = append(revealed, id)
	}
	r.witnessed[at] = struct{}{}

	r.emit(WitnessStartEvent{Player: player, Node: at, Revealed: revealed})
	r.checkTriggers(level.TriggerWitness, at)
	r.flush()
	return revealed
}

// StopWitness hides every witness-only edge in the level, whichever player
// revealed it.
func (r *Runtime) StopWitness(player core.PlayerID) {
	if r.halted() {
		return
	}
	var hidden []string
	for _, id := range r.sortedEdgeIDs() {
		e := r.level.Edges[id]
		if e.Type != level.EdgeWitnessOnly {
			continue
		}
		if e.Visible {
			hidden = append(hidden, id)
		}
		e.Visible = false
		e.Opacity = 0
	}
	r.emit(WitnessStopEvent{Player: player, Hidden: hidden})
	r.flush()
}

// Witnessed reports whether any player has witnessed from the node.
func (r *Runtime) Witnessed(id string) bool {
	_, ok := r.witnessed[id]
	return ok
}

func (r *Runtime) sortedEdgeIDs() []string {
	ids := make([]string, 0, len(r.level.Edges))
	for id := range r.level.Edges {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
