package tui

import (
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/liminal/internal/core"
	"github.com/vovakirdan/liminal/internal/engine"
	"github.com/vovakirdan/liminal/internal/level"
)

// colorStyles maps core.Color palette slots to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault:     lipgloss.NewStyle(),
	core.ColorOrigin:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	core.ColorDestination: lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
	core.ColorWitness:     lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	core.ColorSwitch:      lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	core.ColorGate:        lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	core.ColorMirror:      lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	core.ColorVoid:        lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	core.ColorEdge:        lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	core.ColorHidden:      lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	core.ColorPlayer:      lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true),
	core.ColorActive:      lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := 0; y < s.Height(); y++ {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			cell := s.GetCell(x, y)
			startColor := cell.Color

			var run strings.Builder
			for x < s.Width() {
				cell = s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// edgeRunes is the line glyph per edge type.
var edgeRunes = map[level.EdgeType]rune{
	level.EdgeSolid:       '.',
	level.EdgeDashed:      ':',
	level.EdgeWitnessOnly: '~',
	level.EdgeHidden:      '?',
	level.EdgeOneWay:      '>',
	level.EdgeTimed:       '-',
}

// nodeGlyph returns the glyph and palette slot of a node.
func nodeGlyph(n engine.NodeView) (rune, core.Color) {
	switch n.Type {
	case level.NodeOrigin:
		return 'O', core.ColorOrigin
	case level.NodeDestination:
		return 'D', core.ColorDestination
	case level.NodeWitness:
		return 'w', core.ColorWitness
	case level.NodeSwitch:
		if n.Active {
			return 'S', core.ColorActive
		}
		return 's', core.ColorSwitch
	case level.NodeGate:
		if n.Locked {
			return '#', core.ColorGate
		}
		return '+', core.ColorGate
	case level.NodeMirror:
		return 'm', core.ColorMirror
	case level.NodeVoid:
		return 'x', core.ColorVoid
	}
	if n.Active {
		return 'o', core.ColorActive
	}
	return 'o', core.ColorDefault
}

// projection maps the X/Z plane of a level onto screen cells.
type projection struct {
	minX, minZ     float64
	scaleX, scaleZ float64
	offX, offY     int
}

func newProjection(nodes []engine.NodeView, x, y, w, h int) projection {
	p := projection{offX: x, offY: y}
	if len(nodes) == 0 || w < 2 || h < 2 {
		return p
	}
	minX, maxX := math.Inf(1), math.Inf(-1)
	minZ, maxZ := math.Inf(1), math.Inf(-1)
	for _, n := range nodes {
		minX = math.Min(minX, n.Position.X)
		maxX = math.Max(maxX, n.Position.X)
		minZ = math.Min(minZ, n.Position.Z)
		maxZ = math.Max(maxZ, n.Position.Z)
	}
	p.minX, p.minZ = minX, minZ
	if maxX > minX {
		p.scaleX = float64(w-1) / (maxX - minX)
	}
	if maxZ > minZ {
		p.scaleZ = float64(h-1) / (maxZ - minZ)
	}
	return p
}

func (p projection) point(v core.Vec3) (int, int) {
	x := p.offX + int(math.Round((v.X-p.minX)*p.scaleX))
	y := p.offY + int(math.Round((v.Z-p.minZ)*p.scaleZ))
	return x, y
}

// DrawFrame renders the map of a frame into the given screen rectangle.
// Edges are drawn first so node glyphs stay on top; player slots are drawn
// last as their digit. selected, when not empty, is highlighted.
func DrawFrame(s *core.Screen, f engine.Frame, x, y, w, h int, selected string) {
	proj := newProjection(f.Nodes, x, y, w, h)
	sensed := sensedNodes(f)

	for _, e := range f.Edges {
		if !e.Visible {
			continue
		}
		from, okFrom := f.Node(e.From)
		to, okTo := f.Node(e.To)
		if !okFrom || !okTo || !sensed[from.ID] || !sensed[to.ID] {
			continue
		}
		x0, y0 := proj.point(from.Position)
		x1, y1 := proj.point(to.Position)
		r, ok := edgeRunes[e.Type]
		if !ok {
			r = '.'
		}
		color := core.ColorEdge
		if e.Opacity > 0 && e.Opacity < 1 {
			color = core.ColorHidden
		}
		s.DrawLine(x0, y0, x1, y1, r, color)
	}

	for _, n := range f.Nodes {
		if !sensed[n.ID] {
			continue
		}
		nx, ny := proj.point(n.Position)
		r, color := nodeGlyph(n)
		if !n.Visible {
			r, color = '?', core.ColorHidden
		}
		if n.ID == selected {
			color = core.ColorPlayer
		}
		if len(n.Occupants) > 0 {
			r = playerRune(n.Occupants[0])
			color = core.ColorPlayer
		}
		s.Set(nx, ny, r, color)
	}
}

// playerRune returns the digit of a "p<n>" player slot, or '@'.
func playerRune(p core.PlayerID) rune {
	id := string(p)
	if len(id) == 2 && id[0] == 'p' && id[1] >= '1' && id[1] <= '9' {
		return rune(id[1])
	}
	return '@'
}

// sensedNodes returns the nodes worth drawing: those visible in the active
// dimension, those a player stands on, and those one visible edge away from a
// player.
func sensedNodes(f engine.Frame) map[string]bool {
	sensed := make(map[string]bool, len(f.Nodes))
	for _, n := range f.Nodes {
		if n.Visible || len(n.Occupants) > 0 {
			sensed[n.ID] = true
		}
	}
	for _, at := range f.Positions {
		for _, id := range neighborChoices(f, at) {
			sensed[id] = true
		}
	}
	return sensed
}

// neighborChoices returns the nodes a player at node at could try to reach
// over a visible edge, sorted by id. A node hidden in the active dimension is
// still offered once an edge into it shows.
func neighborChoices(f engine.Frame, at string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, e := range f.Edges {
		if !e.Visible {
			continue
		}
		var other string
		switch at {
		case e.From:
			other = e.To
		case e.To:
			if e.Type == level.EdgeOneWay {
				continue
			}
			other = e.From
		default:
			continue
		}
		if _, ok := f.Node(other); !ok {
			continue
		}
		if _, dup := seen[other]; dup {
			continue
		}
		seen[other] = struct{}{}
		out = append(out, other)
	}
	sort.Strings(out)
	return out
}
