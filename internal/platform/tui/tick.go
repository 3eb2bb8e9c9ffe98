// Package tui provides the Bubble Tea host for liminal: the local play loop,
// the map renderer, run history and the SSH server for shared sessions.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// maxFrameDelta caps the time fed to the runtime after a stall, in ms.
const maxFrameDelta = 250.0

// TickMsg is sent to trigger a runtime update.
type TickMsg time.Time

// tickCmd returns a Bubble Tea command that sends tick messages at the specified rate.
func tickCmd(tickRate int) tea.Cmd {
	if tickRate <= 0 {
		tickRate = 30
	}
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// frameDelta returns the milliseconds between two ticks, clamped to
// [0, maxFrameDelta]. A zero previous time yields 0.
func frameDelta(prev, now time.Time) float64 {
	if prev.IsZero() {
		return 0
	}
	dt := float64(now.Sub(prev)) / float64(time.Millisecond)
	switch {
	case dt < 0:
		return 0
	case dt > maxFrameDelta:
		return maxFrameDelta
	}
	return dt
}
