package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/liminal/internal/core"
	"github.com/vovakirdan/liminal/internal/engine"
)

// Rows reserved around the map for the header and footer.
const (
	headerRows = 2
	footerRows = 10
	minMapRows = 5
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	hudStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	logStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	doneStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	failStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

// board is the play view shared by local and SSH sessions: the latest frame,
// the controlled player, the path cursor and the message log.
type board struct {
	frame  engine.Frame
	player core.PlayerID
	cursor int
	log    []string
}

func (b board) position() (string, bool) {
	at, ok := b.frame.Positions[b.player]
	return at, ok
}

// choices returns the nodes the controlled player may try to travel to.
func (b board) choices() []string {
	at, ok := b.position()
	if !ok {
		return nil
	}
	return neighborChoices(b.frame, at)
}

// selected returns the node under the cursor, or "".
func (b board) selected() string {
	c := b.choices()
	if len(c) == 0 {
		return ""
	}
	return c[core.Clamp(b.cursor, 0, len(c)-1)]
}

func (b *board) moveCursor(delta int) {
	c := b.choices()
	if len(c) == 0 {
		b.cursor = 0
		return
	}
	b.cursor = ((b.cursor+delta)%len(c) + len(c)) % len(c)
}

// setFrame replaces the frame, keeping the cursor on the same target when it
// is still reachable.
func (b *board) setFrame(f engine.Frame) {
	prev := b.selected()
	b.frame = f
	for i, id := range b.choices() {
		if id == prev {
			b.cursor = i
			return
		}
	}
	b.cursor = 0
}

func (b *board) logEvent(ev engine.Event) {
	b.log = appendLog(b.log, describe(ev))
}

// render draws the header, map, status lines and help into a string.
func (b board) render(screen *core.Screen, witnessing bool, helpView string) string {
	f := b.frame
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(f.Name))
	hud := fmt.Sprintf("  [%s]  %s", f.ActiveDimension, formatElapsed(f.ElapsedTime))
	if f.TimeLimit > 0 {
		hud += " / " + formatElapsed(f.TimeLimit)
	}
	hud += fmt.Sprintf("  backtracks %d", f.BacktrackCount)
	sb.WriteString(hudStyle.Render(hud))
	sb.WriteString("\n\n")

	screen.Clear()
	DrawFrame(screen, f, 1, 0, screen.Width()-2, screen.Height(), b.selected())
	sb.WriteString(RenderScreen(screen))
	sb.WriteString("\n")

	switch {
	case f.Completed:
		sb.WriteString(doneStyle.Render("The threshold gives way. Level complete."))
	case f.Failed:
		sb.WriteString(failStyle.Render("The passage closes. Level failed."))
	default:
		sb.WriteString(b.status(witnessing))
	}
	sb.WriteString("\n")

	done := make(map[string]bool, len(f.CompletedObjectives))
	for _, id := range f.CompletedObjectives {
		done[id] = true
	}
	for _, o := range f.Objectives {
		mark := "[ ]"
		if done[o.ID] {
			mark = "[x]"
		}
		sb.WriteString(hudStyle.Render(mark+" "+o.Description) + "\n")
	}

	for _, line := range b.log {
		sb.WriteString(logStyle.Render(line) + "\n")
	}
	sb.WriteString(helpView)
	return sb.String()
}

func (b board) status(witnessing bool) string {
	at, ok := b.position()
	if !ok {
		return fmt.Sprintf("%s is not in the level", b.player)
	}
	line := fmt.Sprintf("%s at %s", b.player, nodeLabel(b.frame, at))
	if witnessing {
		line += " (witnessing)"
	}
	choices := b.choices()
	if len(choices) == 0 {
		return line + "  no visible paths"
	}
	target := b.selected()
	return line + fmt.Sprintf("  -> %s (%d/%d)", nodeLabel(b.frame, target), core.Clamp(b.cursor, 0, len(choices)-1)+1, len(choices))
}

func nodeLabel(f engine.Frame, id string) string {
	n, ok := f.Node(id)
	if !ok || n.Label == "" || n.Label == id {
		return id
	}
	return n.Label + " (" + id + ")"
}

// mapRows returns the map height for a terminal of the given height.
func mapRows(height int) int {
	return core.Max(minMapRows, height-headerRows-footerRows)
}
