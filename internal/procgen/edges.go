package procgen

import (
	"container/heap"
	"sort"

	"github.com/vovakirdan/liminal/internal/core"
	"github.com/vovakirdan/liminal/internal/level"
	"github.com/vovakirdan/liminal/internal/rng"
)

const (
	dashedChance      = 0.15
	branchNeighbors   = 3
	originNodeIndex   = 0
	witnessOnlyChance = 0.5
)

// candidate is a weighted edge between node indices.
type candidate struct {
	from, to int
	weight   float64
}

// candidatePQ is a min-heap by weight. Ties break on (from, to) so the tree
// never depends on heap internals.
type candidatePQ []candidate

func (pq candidatePQ) Len() int { return len(pq) }

func (pq candidatePQ) Less(i, j int) bool {
	if pq[i].weight != pq[j].weight {
		return pq[i].weight < pq[j].weight
	}
	if pq[i].from != pq[j].from {
		return pq[i].from < pq[j].from
	}
	return pq[i].to < pq[j].to
}

func (pq candidatePQ) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *candidatePQ) Push(x any) { *pq = append(*pq, x.(candidate)) }

func (pq *candidatePQ) Pop() any {
	old := *pq
	n := len(old)
	c := old[n-1]
	*pq = old[:n-1]
	return c
}

// primMST returns the tree edges of the complete Euclidean graph over points,
// rooted at root and directed away from it, in the order they were added.
func primMST(points []core.Vec3, root int) []candidate {
	n := len(points)
	if n == 0 {
		return nil
	}
	visited := make([]bool, n)
	tree := make([]candidate, 0, n-1)

	pq := &candidatePQ{}
	heap.Init(pq)
	push := func(from int) {
		for to := 0; to < n; to++ {
			if !visited[to] {
				heap.Push(pq, candidate{from: from, to: to, weight: core.Distance(points[from], points[to])})
			}
		}
	}

	visited[root] = true
	push(root)
	for pq.Len() > 0 && len(tree) < n-1 {
		c := heap.Pop(pq).(candidate)
		if visited[c.to] {
			continue
		}
		visited[c.to] = true
		tree = append(tree, c)
		push(c.to)
	}
	return tree
}

// spanningTree connects every node to the origin.
func (g *generator) spanningTree() {
	points := make([]core.Vec3, len(g.nodes))
	for i, n := range g.nodes {
		points[i] = n.Position
	}
	for _, c := range primMST(points, originNodeIndex) {
		id := g.addEdge(c.from, c.to)
		g.tree = append(g.tree, id)
		g.parent[g.nodes[c.to].ID] = g.nodes[c.from].ID
	}
}

// branchEdges adds loops: each picks a random node and links it to one of
// its nearest not-yet-linked neighbors.
func (g *generator) branchEdges() {
	count := int(float64(len(g.nodes)) * g.tpl.BranchingFactor)
	indices := make([]int, len(g.nodes))
	for i := range indices {
		indices[i] = i
	}

	for k := 0; k < count; k++ {
		a := rng.Choice(g.rnd, indices)
		near := g.nearestUnlinked(a, branchNeighbors)
		if len(near) == 0 {
			continue
		}
		g.addEdge(a, rng.Choice(g.rnd, near))
	}
}

func (g *generator) nearestUnlinked(a, limit int) []int {
	var out []int
	for b := range g.nodes {
		if b != a && !g.linked[pairKey(a, b)] {
			out = append(out, b)
		}
	}
	pos := g.nodes[a].Position
	sort.SliceStable(out, func(i, j int) bool {
		return core.Distance(pos, g.nodes[out[i]].Position) < core.Distance(pos, g.nodes[out[j]].Position)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func pairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// addEdge appends an edge from node a to node b using the edge type rule and
// returns its id.
func (g *generator) addEdge(a, b int) string {
	from, to := g.nodes[a], g.nodes[b]
	typ := g.edgeType(a, b)
	g.edges = append(g.edges, level.EdgeDef{
		From:      from.ID,
		To:        to.ID,
		Type:      typ,
		Dimension: from.Dimension,
	})
	g.linked[pairKey(a, b)] = true
	return level.EdgeID(from.ID, to.ID)
}

// edgeType: crossing dimensions is one-way; entering a witness or hidden node
// is witness-only or hidden; otherwise occasionally dashed, else solid.
func (g *generator) edgeType(a, b int) level.EdgeType {
	from, to := g.nodes[a], g.nodes[b]
	switch {
	case from.Dimension != to.Dimension:
		return level.EdgeOneWay
	case to.Type == level.NodeWitness || g.isHidden(b):
		if g.rnd.Bool(witnessOnlyChance) {
			return level.EdgeWitnessOnly
		}
		return level.EdgeHidden
	case g.rnd.Bool(dashedChance):
		return level.EdgeDashed
	default:
		return level.EdgeSolid
	}
}
