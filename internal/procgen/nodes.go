package procgen

import (
	"fmt"
	"math"

	"github.com/vovakirdan/liminal/internal/core"
	"github.com/vovakirdan/liminal/internal/level"
	"github.com/vovakirdan/liminal/internal/rng"
)

const (
	originID      = "origin"
	destinationID = "destination"

	spineShare      = 0.7
	branchAttempts  = 30
	destinationPush = 0.75
	dimensionJitter = 0.2
)

// targetNodeCount interpolates the template range by difficulty.
func (g *generator) targetNodeCount() int {
	t := float64(g.cfg.Difficulty-MinDifficulty) / float64(MaxDifficulty-MinDifficulty)
	return g.tpl.MinNodes + int(math.Round(float64(g.tpl.MaxNodes-g.tpl.MinNodes)*t))
}

// minBranchDistance shrinks with difficulty so harder levels pack tighter.
func (g *generator) minBranchDistance() float64 {
	return g.tpl.Spread * (0.9 - 0.04*float64(g.cfg.Difficulty))
}

func (g *generator) addNode(id string, pos core.Vec3, typ level.NodeType) {
	g.index[id] = len(g.nodes)
	g.nodes = append(g.nodes, level.NodeDef{ID: id, Position: pos, Type: typ})
}

// placeNodes lays out the origin, a random-walk spine, branch offsets and the
// destination. Branch nodes that find no free spot are dropped.
func (g *generator) placeNodes() {
	g.addNode(originID, core.Vec3{}, level.NodeOrigin)

	interior := g.targetNodeCount() - 2
	if interior < 0 {
		interior = 0
	}
	spineCount := int(math.Round(float64(interior) * spineShare))
	branchCount := interior - spineCount

	yaw := g.rnd.Range(0, 2*math.Pi)
	pitch := g.rnd.Range(-0.3, 0.3)
	prev := core.Vec3{}
	spine := []core.Vec3{prev}
	for i := 0; i < spineCount; i++ {
		yaw += g.rnd.Range(-g.tpl.MaxAngle, g.tpl.MaxAngle)
		pitch = core.ClampF(pitch+g.rnd.Range(-g.tpl.MaxAngle/2, g.tpl.MaxAngle/2), -math.Pi/3, math.Pi/3)
		step := g.tpl.Spread * g.rnd.Range(0.8, 1.2)
		dir := core.Vec3{
			X: math.Cos(pitch) * math.Cos(yaw),
			Y: math.Sin(pitch),
			Z: math.Cos(pitch) * math.Sin(yaw),
		}
		prev = g.tpl.Bounds.Clamp(prev.Add(dir.Scale(step)))
		spine = append(spine, prev)
		g.addNode(nodeID(len(g.nodes)), prev, level.NodeWaypoint)
	}

	minDist := g.minBranchDistance()
	for i := 0; i < branchCount; i++ {
		anchor := rng.Choice(g.rnd, spine)
		placed := false
		for try := 0; try < branchAttempts && !placed; try++ {
			offset := g.randomUnit().Scale(g.tpl.Spread * g.rnd.Range(0.6, 1.2))
			candidate := g.tpl.Bounds.Clamp(anchor.Add(offset))
			if g.clearOf(candidate, minDist) {
				g.addNode(nodeID(len(g.nodes)), candidate, level.NodeWaypoint)
				placed = true
			}
		}
		if !placed {
			g.dropped++
		}
	}

	far := core.Vec3{}
	for _, n := range g.nodes {
		if n.Position.Length() > far.Length() {
			far = n.Position
		}
	}
	dir := far.Normalize()
	if dir.Length() == 0 {
		dir = core.Vec3{X: 1}
	}
	dest := g.tpl.Bounds.Clamp(far.Add(dir.Scale(g.tpl.Spread * destinationPush)))
	g.addNode(destinationID, dest, level.NodeDestination)
}

func nodeID(i int) string {
	return fmt.Sprintf("node-%d", i)
}

// randomUnit returns a uniformly distributed direction.
func (g *generator) randomUnit() core.Vec3 {
	theta := g.rnd.Range(0, 2*math.Pi)
	z := g.rnd.Range(-1, 1)
	r := math.Sqrt(1 - z*z)
	return core.Vec3{X: r * math.Cos(theta), Y: z, Z: r * math.Sin(theta)}
}

func (g *generator) clearOf(p core.Vec3, minDist float64) bool {
	for _, n := range g.nodes {
		if core.Distance(n.Position, p) < minDist {
			return false
		}
	}
	return true
}

// specialRatio is the template ratio scaled up with difficulty.
func (g *generator) specialRatio() float64 {
	return core.ClampF(g.tpl.SpecialRatio*(0.5+float64(g.cfg.Difficulty)/10), 0, 0.8)
}

// assignNodes gives every node a dimension, type, activation time, hidden
// flag and player requirement.
func (g *generator) assignNodes() {
	dims := g.tpl.Dimensions
	ratio := g.specialRatio()
	hiddenChance := core.ClampF(g.tpl.HiddenChance*float64(g.cfg.Difficulty)/5, 0, 0.6)

	for i := range g.nodes {
		n := &g.nodes[i]
		if n.Type == level.NodeOrigin || n.Type == level.NodeDestination {
			n.Dimension = dims[0]
			continue
		}

		n.Dimension = dims[i%len(dims)]
		if g.rnd.Bool(dimensionJitter) {
			n.Dimension = rng.Choice(g.rnd, dims)
		}

		if g.rnd.Bool(ratio) {
			n.Type = rng.WeightedChoice(g.rnd, g.tpl.SpecialTypes, g.tpl.SpecialWeights)
		}

		switch n.Type {
		case level.NodeSwitch:
			n.Properties.ActivationTime = math.Round(g.rnd.Range(600, 1500))
		case level.NodeMirror:
			n.Properties.ActivationTime = math.Round(g.rnd.Range(400, 900))
		case level.NodeGate:
			n.Properties.Locked = level.Bool(true)
		}

		if n.Type == level.NodeWitness || g.rnd.Bool(hiddenChance) {
			n.HiddenIn = []level.Dimension{n.Dimension}
		}

		if n.Type == level.NodeSwitch && g.cfg.PlayerCount > 1 {
			n.Properties.RequiredPlayers = level.Int(g.rnd.Int(2, g.cfg.PlayerCount))
		}
	}
}

func (g *generator) isHidden(i int) bool {
	return len(g.nodes[i].HiddenIn) > 0
}
