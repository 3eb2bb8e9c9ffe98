package procgen

import (
	"github.com/vovakirdan/liminal/internal/level"
	"github.com/vovakirdan/liminal/internal/rng"
)

const hiddenEdgeRevealDelay = 800 // ms

// generateTriggers wires witness nodes to reveals or partial unlocks, switches
// to dimension shifts, and makes sure every gate and hidden edge can be opened.
func (g *generator) generateTriggers() {
	var hidden, gates []string
	for i, n := range g.nodes {
		if n.Type == level.NodeGate {
			gates = append(gates, n.ID)
		}
		if n.Type != level.NodeWitness && g.isHidden(i) {
			hidden = append(hidden, n.ID)
		}
	}

	if g.tpl.Intro != "" {
		g.triggers = append(g.triggers, level.TriggerDef{
			Type:   level.TriggerEnter,
			NodeID: originID,
			Action: level.ActionMessage,
			Data:   level.TriggerData{Message: g.tpl.Intro},
		})
	}

	for _, n := range g.nodes {
		switch n.Type {
		case level.NodeWitness:
			g.witnessTrigger(n, hidden, gates)
		case level.NodeSwitch:
			g.switchTrigger(n)
		}
	}

	unlocked := make(map[string]bool)
	for _, t := range g.triggers {
		if t.Action == level.ActionUnlock {
			unlocked[t.Target] = true
		}
	}
	for _, gate := range gates {
		if unlocked[gate] {
			continue
		}
		g.triggers = append(g.triggers, level.TriggerDef{
			Type:   level.TriggerEnter,
			NodeID: g.parent[gate],
			Action: level.ActionUnlock,
			Target: gate,
		})
	}

	for _, e := range g.edges {
		if e.Type != level.EdgeHidden {
			continue
		}
		g.triggers = append(g.triggers, level.TriggerDef{
			Type:   level.TriggerEnter,
			NodeID: e.From,
			Action: level.ActionReveal,
			Target: level.EdgeID(e.From, e.To),
			Delay:  hiddenEdgeRevealDelay,
		})
	}
}

func (g *generator) witnessTrigger(n level.NodeDef, hidden, gates []string) {
	switch {
	case len(hidden) > 0:
		g.triggers = append(g.triggers, level.TriggerDef{
			Type:   level.TriggerWitness,
			NodeID: n.ID,
			Action: level.ActionReveal,
			Target: rng.Choice(g.rnd, hidden),
		})
	default:
		// Only gates further down the tree: a player walking towards such a
		// gate always passes this node first.
		var below []string
		for _, gate := range gates {
			if g.descends(gate, n.ID) {
				below = append(below, gate)
			}
		}
		if len(below) == 0 {
			break
		}
		g.triggers = append(g.triggers, level.TriggerDef{
			Type:   level.TriggerWitness,
			NodeID: n.ID,
			Action: level.ActionUnlock,
			Target: rng.Choice(g.rnd, below),
			Data:   level.TriggerData{PartialUnlock: true, UnlockID: n.ID},
		})
	}

	if len(g.objectives) == 0 {
		g.objectives = append(g.objectives, level.Objective{
			ID:          "witness-" + n.ID,
			Description: "Witness what hides near " + n.ID,
			Kind:        level.ObjectiveWitness,
			Target:      n.ID,
		})
	}
}

// descends reports whether ancestor lies on the spanning-tree path from the
// origin to id.
func (g *generator) descends(id, ancestor string) bool {
	for cur, ok := g.parent[id]; ok; cur, ok = g.parent[cur] {
		if cur == ancestor {
			return true
		}
	}
	return false
}

func (g *generator) switchTrigger(n level.NodeDef) {
	var others []level.Dimension
	for _, d := range g.tpl.Dimensions {
		if d != n.Dimension {
			others = append(others, d)
		}
	}
	if len(others) == 0 {
		return
	}
	g.triggers = append(g.triggers, level.TriggerDef{
		Type:   level.TriggerActivate,
		NodeID: n.ID,
		Action: level.ActionDimensionShift,
		Target: string(rng.Choice(g.rnd, others)),
	})
}
