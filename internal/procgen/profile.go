package procgen

import (
	"math"

	"github.com/vovakirdan/liminal/internal/level"
	"github.com/vovakirdan/liminal/internal/rng"
)

// profileThreshold is where exploration and witness affinity start to bend
// the structure.
const (
	profileThreshold = 0.6
	profileMaxShare  = 0.3
)

// profileShare maps a tendency above the threshold to a share of candidates.
func profileShare(tendency float64) float64 {
	return (tendency - profileThreshold) / (1 - profileThreshold) * profileMaxShare
}

// applyProfile scales activation times, hides waypoints for explorers and
// turns solid edges witness-only for witness-heavy players.
func (g *generator) applyProfile() {
	mods := g.cfg.Modifiers

	for i := range g.nodes {
		if at := g.nodes[i].Properties.ActivationTime; at > 0 {
			g.nodes[i].Properties.ActivationTime = math.Round(at * mods.ReactionTimeScale)
		}
	}

	if mods.ExplorationTendency > profileThreshold {
		var waypoints []int
		for i, n := range g.nodes {
			if n.Type == level.NodeWaypoint && !g.isHidden(i) {
				waypoints = append(waypoints, i)
			}
		}
		rng.Shuffle(g.rnd, waypoints)
		count := int(math.Round(float64(len(waypoints)) * profileShare(mods.ExplorationTendency)))
		for _, i := range waypoints[:count] {
			g.nodes[i].HiddenIn = []level.Dimension{g.nodes[i].Dimension}
		}
	}

	if mods.WitnessAffinity > profileThreshold {
		var solid []int
		for i, e := range g.edges {
			if e.Type == level.EdgeSolid {
				solid = append(solid, i)
			}
		}
		rng.Shuffle(g.rnd, solid)
		count := int(math.Round(float64(len(solid)) * profileShare(mods.WitnessAffinity)))
		for _, i := range solid[:count] {
			g.edges[i].Type = level.EdgeWitnessOnly
			g.edges[i].RequiresWitness = true
		}
	}
}
