package level

import (
	"fmt"

	"github.com/vovakirdan/liminal/internal/core"
	"github.com/vovakirdan/liminal/internal/rng"
)

// Build compiles a definition into a fresh PlayableLevel.
//
// Build is pure in the definition. Its PRNG is seeded from def.Seed and only
// feeds cosmetic defaults (node pulse phase), never structure. Definitions are
// not validated: an edge whose endpoint is missing is still built, it just has
// no back-reference on the missing side. Edge ids are "from->to"; a duplicate
// (from, to) pair overwrites the earlier edge, so the last declaration wins.
func Build(def Definition) *PlayableLevel {
	r := rng.New(def.Seed)

	lvl := &PlayableLevel{
		ID:              def.ID,
		Name:            def.Name,
		Seed:            def.Seed,
		Dimensions:      append([]Dimension(nil), def.Dimensions...),
		Nodes:           make(map[string]*Node, len(def.Nodes)),
		Edges:           make(map[string]*Edge, len(def.Edges)),
		NodesByDim:      make(map[Dimension][]string),
		PlayerPositions: make(map[core.PlayerID]string),
		Visited:         make(map[string]struct{}),
		PartialUnlocks:  make(map[string]map[string]struct{}),
		Victory:         def.Victory,
		Objectives:      append([]Objective(nil), def.Objectives...),
		MinPlayers:      def.MinPlayers,
		MaxPlayers:      def.MaxPlayers,
		Timing:          def.Timing,
	}
	lvl.Victory.Targets = append([]string(nil), def.Victory.Targets...)
	if len(lvl.Dimensions) > 0 {
		lvl.ActiveDimension = lvl.Dimensions[0]
	}

	for _, nd := range def.Nodes {
		n := &Node{
			ID:              nd.ID,
			Position:        nd.Position,
			Type:            nd.Type,
			Dimension:       nd.Dimension,
			HiddenIn:        make(map[Dimension]struct{}, len(nd.HiddenIn)),
			Active:          nd.Type == NodeOrigin,
			Locked:          false,
			ActivationTime:  nd.Properties.ActivationTime,
			RequiredPlayers: 1,
			CurrentPlayers:  make(map[core.PlayerID]struct{}),
			Edges:           make(map[string]struct{}),
			Label:           nd.Properties.Label,
			Phase:           r.Next(),
		}
		if nd.Properties.Locked != nil {
			n.Locked = *nd.Properties.Locked
		}
		if nd.Properties.RequiredPlayers != nil {
			n.RequiredPlayers = *nd.Properties.RequiredPlayers
		}
		for _, d := range nd.HiddenIn {
			n.HiddenIn[d] = struct{}{}
		}

		if _, dup := lvl.Nodes[nd.ID]; !dup {
			lvl.NodesByDim[nd.Dimension] = append(lvl.NodesByDim[nd.Dimension], nd.ID)
			if nd.Type == NodeOrigin {
				lvl.Origins = append(lvl.Origins, nd.ID)
			}
		}
		lvl.Nodes[nd.ID] = n
	}

	for _, ed := range def.Edges {
		id := EdgeID(ed.From, ed.To)
		visible := ed.Type.StartsVisible()
		e := &Edge{
			ID:              id,
			From:            ed.From,
			To:              ed.To,
			Type:            ed.Type,
			Dimension:       ed.Dimension,
			Active:          visible,
			Visible:         visible,
			Progress:        make(map[core.PlayerID]float64),
			RequiresWitness: ed.RequiresWitness || ed.Type == EdgeWitnessOnly,
		}
		if visible {
			e.Opacity = 1
		}
		if e.Dimension == "" {
			if from, ok := lvl.Nodes[ed.From]; ok {
				e.Dimension = from.Dimension
			}
		}
		lvl.Edges[id] = e

		// Registered on both endpoints regardless of direction.
		if from, ok := lvl.Nodes[ed.From]; ok {
			from.Edges[id] = struct{}{}
		}
		if to, ok := lvl.Nodes[ed.To]; ok {
			to.Edges[id] = struct{}{}
		}
	}

	for i, td := range def.Triggers {
		lvl.Triggers = append(lvl.Triggers, &Trigger{
			ID:  fmt.Sprintf("%s:%s:%d", td.Type, td.NodeID, i),
			Def: td,
		})
	}

	return lvl
}
