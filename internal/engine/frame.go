package engine

import (
	"sort"

	"github.com/vovakirdan/liminal/internal/core"
	"github.com/vovakirdan/liminal/internal/level"
)

// NodeView is a copy of the drawable state of one node.
type NodeView struct {
	ID        string
	Label     string
	Position  core.Vec3
	Type      level.NodeType
	Dimension level.Dimension
	Visible   bool
	Active    bool
	Locked    bool
	Visited   bool
	Charge    float64
	Occupants []core.PlayerID
}

// EdgeView is a copy of the drawable state of one edge.
type EdgeView struct {
	ID      string
	From    string
	To      string
	Type    level.EdgeType
	Visible bool
	Opacity float64
}

// Frame is a detached copy of everything a presentation layer draws. It
// shares no memory with the runtime and may be handed to other goroutines.
type Frame struct {
	LevelID             string
	Name                string
	ActiveDimension     level.Dimension
	Nodes               []NodeView // sorted by id
	Edges               []EdgeView // sorted by id
	Positions           map[core.PlayerID]string
	ElapsedTime         float64
	TimeLimit           float64
	Completed           bool
	Failed              bool
	BacktrackCount      int
	CompletedObjectives []string
	Objectives          []level.Objective
	Pending             int
}

// Node returns the view of id.
func (f Frame) Node(id string) (NodeView, bool) {
	i := sort.Search(len(f.Nodes), func(i int) bool { return f.Nodes[i].ID >= id })
	if i < len(f.Nodes) && f.Nodes[i].ID == id {
		return f.Nodes[i], true
	}
	return NodeView{}, false
}

// Frame copies the current drawable state.
func (r *Runtime) Frame() Frame {
	lvl := r.level
	f := Frame{
		LevelID:             lvl.ID,
		Name:                lvl.Name,
		ActiveDimension:     lvl.ActiveDimension,
		Nodes:               make([]NodeView, 0, len(lvl.Nodes)),
		Edges:               make([]EdgeView, 0, len(lvl.Edges)),
		Positions:           make(map[core.PlayerID]string, len(lvl.PlayerPositions)),
		ElapsedTime:         lvl.ElapsedTime,
		TimeLimit:           lvl.Victory.TimeLimit,
		Completed:           lvl.Completed,
		Failed:              lvl.Failed,
		BacktrackCount:      lvl.BacktrackCount,
		CompletedObjectives: append([]string(nil), lvl.CompletedObjectives...),
		Objectives:          append([]level.Objective(nil), lvl.Objectives...),
		Pending:             r.Pending(),
	}

	for _, id := range r.sortedNodeIDs() {
		n := lvl.Nodes[id]
		occupants := make([]core.PlayerID, 0, len(n.CurrentPlayers))
		for p := range n.CurrentPlayers {
			occupants = append(occupants, p)
		}
		sort.Slice(occupants, func(i, j int) bool { return occupants[i] < occupants[j] })

		f.Nodes = append(f.Nodes, NodeView{
			ID:        n.ID,
			Label:     n.Label,
			Position:  n.Position,
			Type:      n.Type,
			Dimension: n.Dimension,
			Visible:   !n.HiddenInDimension(lvl.ActiveDimension),
			Active:    n.Active,
			Locked:    n.Locked,
			Visited:   n.Visited,
			Charge:    n.ChargeProgress,
			Occupants: occupants,
		})
	}

	for _, id := range r.sortedEdgeIDs() {
		e := lvl.Edges[id]
		f.Edges = append(f.Edges, EdgeView{
			ID:      e.ID,
			From:    e.From,
			To:      e.To,
			Type:    e.Type,
			Visible: e.Visible,
			Opacity: e.Opacity,
		})
	}

	for p, at := range lvl.PlayerPositions {
		f.Positions[p] = at
	}
	return f
}
