package tui

import (
	"fmt"
	"time"

	"github.com/vovakirdan/liminal/internal/engine"
)

// maxLogLines bounds the message log shown under the map.
const maxLogLines = 5

// describe turns a runtime event into a log line. Events not worth showing
// return "".
func describe(ev engine.Event) string {
	switch e := ev.(type) {
	case engine.LevelStartEvent:
		return "Entered " + e.LevelName
	case engine.PlayerMoveEvent:
		if e.From == "" {
			return fmt.Sprintf("%s appears at %s", e.Player, e.To)
		}
		if e.Backtrack {
			return fmt.Sprintf("%s returns to %s", e.Player, e.To)
		}
		return ""
	case engine.WitnessStartEvent:
		if len(e.Revealed) == 0 {
			return fmt.Sprintf("%s watches %s. Nothing answers.", e.Player, e.Node)
		}
		return fmt.Sprintf("%s watches %s: %d paths surface", e.Player, e.Node, len(e.Revealed))
	case engine.WitnessStopEvent:
		if len(e.Hidden) > 0 {
			return "The witnessed paths fade"
		}
	case engine.NodeActivateEvent:
		return e.Node + " hums awake"
	case engine.NodeUnlockEvent:
		return e.Node + " opens"
	case engine.PartialUnlockEvent:
		return fmt.Sprintf("%s loosens (%d/%d)", e.Gate, e.Received, e.Required)
	case engine.DimensionShiftEvent:
		return fmt.Sprintf("The world slides from %s to %s", e.From, e.To)
	case engine.RevealEvent:
		return e.Target + " reveals itself"
	case engine.HideEvent:
		return e.Node + " slips out of sight"
	case engine.MessageEvent:
		return e.Text
	case engine.SpawnEvent:
		return fmt.Sprintf("Something (%s) stirs at %s", e.Kind, e.Node)
	case engine.ObjectiveCompleteEvent:
		return "Objective complete: " + e.Objective.Description
	case engine.LevelCompleteEvent:
		msg := "Level complete in " + formatElapsed(e.ElapsedTime)
		switch {
		case e.Perfect:
			msg += " (perfect)"
		case e.UnderPar:
			msg += " (under par)"
		}
		return msg
	case engine.LevelFailEvent:
		return "Level failed: " + e.Reason
	}
	return ""
}

// formatElapsed renders milliseconds as m:ss.t.
func formatElapsed(ms float64) string {
	d := time.Duration(ms * float64(time.Millisecond))
	m := int(d / time.Minute)
	s := (d % time.Minute).Seconds()
	return fmt.Sprintf("%d:%04.1f", m, s)
}

// appendLog appends a line, keeping the last maxLogLines.
func appendLog(lines []string, line string) []string {
	if line == "" {
		return lines
	}
	lines = append(lines, line)
	if len(lines) > maxLogLines {
		lines = lines[len(lines)-maxLogLines:]
	}
	return lines
}
