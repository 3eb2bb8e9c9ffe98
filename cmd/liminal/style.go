package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Bold(true)
	codeStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1).
			Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("13"))
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
)

// field is one label/value row of a CLI report.
type field struct {
	label string
	value any
}

// renderFields renders aligned label/value rows.
func renderFields(fields []field) string {
	var b strings.Builder
	for _, f := range fields {
		b.WriteString(labelStyle.Render(f.label))
		b.WriteString(valueStyle.Render(fmt.Sprint(f.value)))
		b.WriteString("\n")
	}
	return b.String()
}
