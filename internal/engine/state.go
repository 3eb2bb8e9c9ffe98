package engine

import (
	"sort"

	"github.com/vovakirdan/liminal/internal/core"
)

// State is a minimal session snapshot. It omits charge progress, edge
// visibility and trigger state, so resuming from it is approximate.
type State struct {
	ID                  string                   `json:"id"`
	ElapsedTime         float64                  `json:"elapsed_time"`
	Completed           bool                     `json:"completed"`
	Failed              bool                     `json:"failed"`
	PlayerPositions     map[core.PlayerID]string `json:"player_positions"`
	NodesVisited        []string                 `json:"nodes_visited"`
	CompletedObjectives []string                 `json:"completed_objectives"`
}

// State returns a snapshot of the session.
func (r *Runtime) State() State {
	lvl := r.level
	positions := make(map[core.PlayerID]string, len(lvl.PlayerPositions))
	for p, at := range lvl.PlayerPositions {
		positions[p] = at
	}
	visited := make([]string, 0, len(lvl.Visited))
	for id := range lvl.Visited {
		visited = append(visited, id)
	}
	sort.Strings(visited)

	return State{
		ID:                  lvl.ID,
		ElapsedTime:         lvl.ElapsedTime,
		Completed:           lvl.Completed,
		Failed:              lvl.Failed,
		PlayerPositions:     positions,
		NodesVisited:        visited,
		CompletedObjectives: append([]string(nil), lvl.CompletedObjectives...),
	}
}

// Restore applies a snapshot taken from the same level onto a freshly built
// one. Unknown nodes are skipped. It reports false when the runtime is closed
// or the snapshot belongs to another level.
func (r *Runtime) Restore(s State) bool {
	lvl := r.level
	if r.closed || s.ID != lvl.ID {
		return false
	}

	for _, n := range lvl.Nodes {
		for p := range n.CurrentPlayers {
			delete(n.CurrentPlayers, p)
		}
	}
	lvl.PlayerPositions = make(map[core.PlayerID]string, len(s.PlayerPositions))

	for _, id := range s.NodesVisited {
		if n, ok := lvl.Nodes[id]; ok {
			n.Visited = true
			lvl.Visited[id] = struct{}{}
		}
	}
	for p, at := range s.PlayerPositions {
		n, ok := lvl.Nodes[at]
		if !ok {
			continue
		}
		n.CurrentPlayers[p] = struct{}{}
		lvl.PlayerPositions[p] = at
	}

	if s.ElapsedTime > lvl.ElapsedTime {
		lvl.ElapsedTime = s.ElapsedTime
	}
	lvl.Completed = s.Completed
	lvl.Failed = s.Failed && !s.Completed
	lvl.CompletedObjectives = append([]string(nil), s.CompletedObjectives...)
	r.started = true
	return true
}
