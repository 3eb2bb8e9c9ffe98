package level

import (
	"sort"

	"github.com/vovakirdan/liminal/internal/core"
)

// Node is the mutable runtime state of a node.
type Node struct {
	ID              string
	Position        core.Vec3
	Type            NodeType
	Dimension       Dimension
	HiddenIn        map[Dimension]struct{}
	Active          bool
	Locked          bool
	Visited         bool
	ChargeProgress  float64 // always within [0, 1]
	ActivationTime  float64 // ms; 0 means the node does not charge
	RequiredPlayers int
	CurrentPlayers  map[core.PlayerID]struct{}
	Edges           map[string]struct{}
	Label           string
	Phase           float64 // cosmetic pulse offset in [0, 1)

	// ActivationOrder is the 1-based order in which the node first became
	// active during play; 0 while it never has.
	ActivationOrder int
}

// Occupancy returns the number of players on the node.
func (n *Node) Occupancy() int {
	return len(n.CurrentPlayers)
}

// HiddenInDimension reports whether the node is invisible in d.
func (n *Node) HiddenInDimension(d Dimension) bool {
	_, ok := n.HiddenIn[d]
	return ok
}

// EdgeIDs returns the connected edge ids in sorted order.
func (n *Node) EdgeIDs() []string {
	ids := make([]string, 0, len(n.Edges))
	for id := range n.Edges {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Edge is the mutable runtime state of an edge.
type Edge struct {
	ID              string
	From            string
	To              string
	Type            EdgeType
	Dimension       Dimension
	Active          bool
	Visible         bool
	Opacity         float64
	Progress        map[core.PlayerID]float64
	RequiresWitness bool
}

// Traversable reports whether a player may currently travel from one endpoint
// to the other along this edge. One-way edges only permit From -> To.
func (e *Edge) Traversable(from, to string) bool {
	if !e.Active && !e.Visible {
		return false
	}
	if from == e.From && to == e.To {
		return true
	}
	if from == e.To && to == e.From {
		return e.Type != EdgeOneWay
	}
	return false
}

// Trigger is a trigger definition plus its sticky fired flag.
type Trigger struct {
	ID    string
	Def   TriggerDef
	Fired bool
}

// PlayableLevel is the aggregate root mutated by exactly one runtime.
type PlayableLevel struct {
	ID              string
	Name            string
	Seed            uint32
	Dimensions      []Dimension
	ActiveDimension Dimension
	Nodes           map[string]*Node
	Edges           map[string]*Edge
	NodesByDim      map[Dimension][]string
	Origins         []string
	PlayerPositions map[core.PlayerID]string
	Visited         map[string]struct{}
	ElapsedTime     float64 // ms
	Completed       bool
	Failed          bool
	Triggers        []*Trigger
	PartialUnlocks  map[string]map[string]struct{}
	Victory         VictoryCondition
	Objectives      []Objective
	BacktrackCount  int
	MinPlayers      int
	MaxPlayers      int
	Timing          Timing

	// CompletedObjectives lists objective ids in completion order.
	CompletedObjectives []string
}

// Terminal reports whether the level has completed or failed.
func (l *PlayableLevel) Terminal() bool {
	return l.Completed || l.Failed
}

// HasDimension reports whether d is one of the declared dimensions.
func (l *PlayableLevel) HasDimension(d Dimension) bool {
	for _, dim := range l.Dimensions {
		if dim == d {
			return true
		}
	}
	return false
}

// EdgeBetween returns an edge connecting a and b in either direction, or nil.
// When both directions exist the a->b edge is returned.
func (l *PlayableLevel) EdgeBetween(a, b string) *Edge {
	if e, ok := l.Edges[EdgeID(a, b)]; ok {
		return e
	}
	if e, ok := l.Edges[EdgeID(b, a)]; ok {
		return e
	}
	return nil
}

// CanTravel reports whether an edge permits travel from one node to another.
// Both directions are consulted, so a blocked one-way edge does not hide a
// usable reverse edge.
func (l *PlayableLevel) CanTravel(from, to string) bool {
	if e, ok := l.Edges[EdgeID(from, to)]; ok && e.Traversable(from, to) {
		return true
	}
	if e, ok := l.Edges[EdgeID(to, from)]; ok && e.Traversable(from, to) {
		return true
	}
	return false
}

// Neighbors returns ids of nodes sharing an edge with id, sorted.
func (l *PlayableLevel) Neighbors(id string) []string {
	n, ok := l.Nodes[id]
	if !ok {
		return nil
	}
	seen := make(map[string]struct{})
	for eid := range n.Edges {
		e, ok := l.Edges[eid]
		if !ok {
			continue
		}
		other := e.To
		if other == id {
			other = e.From
		}
		seen[other] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for other := range seen {
		out = append(out, other)
	}
	sort.Strings(out)
	return out
}

// PositionedPlayers returns the ids of players with a position, sorted.
func (l *PlayableLevel) PositionedPlayers() []core.PlayerID {
	ids := make([]core.PlayerID, 0, len(l.PlayerPositions))
	for id := range l.PlayerPositions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// UnlockTriggerCount returns how many authored unlock-triggers target gateID.
// This is the partial-unlock threshold; it is derived, never stored.
func (l *PlayableLevel) UnlockTriggerCount(gateID string) int {
	count := 0
	for _, t := range l.Triggers {
		if t.Def.Action == ActionUnlock && t.Def.Target == gateID {
			count++
		}
	}
	return count
}
