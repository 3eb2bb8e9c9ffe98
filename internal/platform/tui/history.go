package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/liminal/internal/storage"
)

// History layout constants
const (
	minWidthForSidebar = 90  // Minimum width to show the level sidebar
	sidebarWidth       = 26  // Width of the level sidebar
	maxRuns            = 100 // Max runs to load
	allLevels          = ""  // sidebar entry showing every level
)

// HistoryKeyMap defines the key bindings for the run history.
type HistoryKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	NextLevel key.Binding
	PrevLevel key.Binding
	Quit      key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k HistoryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextLevel, k.PrevLevel, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k HistoryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.NextLevel, k.PrevLevel, k.Quit},
	}
}

// DefaultHistoryKeyMap returns default key bindings.
func DefaultHistoryKeyMap() HistoryKeyMap {
	return HistoryKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextLevel: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next level"),
		),
		PrevLevel: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev level"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// HistoryModel is the Bubble Tea model for browsing recorded runs.
type HistoryModel struct {
	stats       []storage.LevelStats
	cursor      int // 0 is every level, i>0 is stats[i-1]
	store       *storage.Store
	runs        []storage.Run
	loadErr     error
	table       table.Model
	help        help.Model
	keys        HistoryKeyMap
	width       int
	height      int
	quitting    bool
	showSidebar bool
}

// NewHistoryModel creates a new history model.
func NewHistoryModel(store *storage.Store, width, height int) HistoryModel {
	m := HistoryModel{
		store:       store,
		keys:        DefaultHistoryKeyMap(),
		help:        help.New(),
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}
	if store != nil {
		m.stats, m.loadErr = store.Stats()
	}
	m.table = m.createTable()
	m.loadRuns()
	return m
}

func (m HistoryModel) levelID() string {
	if m.cursor == 0 || m.cursor > len(m.stats) {
		return allLevels
	}
	return m.stats[m.cursor-1].LevelID
}

// createTable creates a new table with appropriate columns.
func (m *HistoryModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Level", Width: 16},
		{Title: "Result", Width: 11},
		{Title: "Time", Width: 8},
		{Title: "Back", Width: 5},
		{Title: "Players", Width: 10},
		{Title: "Date", Width: 13},
	}

	tableWidth := m.width - 4
	if m.showSidebar {
		tableWidth -= sidebarWidth + 3
	}
	if tableWidth < 70 {
		columns[0].Width = 12
		columns[4].Width = 6
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(3, m.height-8)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// loadRuns loads the runs of the selected level.
func (m *HistoryModel) loadRuns() {
	m.runs = nil
	if m.store != nil {
		runs, err := m.store.RecentRuns(m.levelID(), maxRuns)
		if err != nil {
			m.loadErr = err
		} else {
			m.runs = runs
		}
	}
	m.table.SetRows(runRows(m.runs))
	m.table.GotoTop()
}

// runRows formats runs for the table.
func runRows(runs []storage.Run) []table.Row {
	rows := make([]table.Row, len(runs))
	for i, r := range runs {
		rows[i] = table.Row{
			r.LevelID,
			r.EndReason,
			formatElapsed(r.ElapsedTime),
			fmt.Sprintf("%d", r.Backtracks),
			strings.Join(r.Players, ","),
			r.CreatedAt.Format("Jan 02 15:04"),
		}
	}
	return rows
}

// Init initializes the history model.
func (m HistoryModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the history view.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextLevel):
			m.cursor = (m.cursor + 1) % (len(m.stats) + 1)
			m.loadRuns()
			return m, nil

		case key.Matches(msg, m.keys.PrevLevel):
			m.cursor--
			if m.cursor < 0 {
				m.cursor = len(m.stats)
			}
			m.loadRuns()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.table.SetRows(runRows(m.runs))
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the history.
func (m HistoryModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	title := "RUN HISTORY"
	if id := m.levelID(); id != allLevels {
		title += " - " + id
	}
	b.WriteString(headingStyle.Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	if m.showSidebar {
		b.WriteString(m.renderWideLayout())
	} else {
		b.WriteString(m.renderNarrowLayout())
	}

	if m.loadErr != nil {
		b.WriteString("\n" + errorStyle.Render(m.loadErr.Error()))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m HistoryModel) sidebarLines() []string {
	lines := []string{"All levels"}
	for _, s := range m.stats {
		line := fmt.Sprintf("%s %d/%d", s.LevelID, s.Completions, s.Runs)
		if s.Completions > 0 {
			line += " " + formatElapsed(s.BestTime)
		}
		lines = append(lines, line)
	}
	return lines
}

// renderWideLayout renders the history with a sidebar for level selection.
func (m HistoryModel) renderWideLayout() string {
	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(sidebarWidth).
		Padding(0, 1)

	var sidebar strings.Builder
	sidebar.WriteString("Levels\n")
	sidebar.WriteString(strings.Repeat("-", sidebarWidth-4))
	sidebar.WriteString("\n")
	for i, line := range m.sidebarLines() {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.cursor {
			cursor = "> "
			style = style.Bold(true).Foreground(lipgloss.Color("229"))
		}
		if maxLen := sidebarWidth - 6; len(line) > maxLen {
			line = line[:maxLen-1] + "."
		}
		sidebar.WriteString(style.Render(cursor + line))
		sidebar.WriteString("\n")
	}

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	return lipgloss.JoinHorizontal(lipgloss.Top,
		sidebarStyle.Render(sidebar.String()), "  ", tableStyle.Render(m.renderTableContent()))
}

// renderNarrowLayout renders the current level name above the table.
func (m HistoryModel) renderNarrowLayout() string {
	var b strings.Builder
	lines := m.sidebarLines()
	b.WriteString(centerText(fmt.Sprintf("< %s >", lines[m.cursor]), m.width))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.WriteString(tableStyle.Render(m.renderTableContent()))
	return b.String()
}

// renderTableContent renders the table or an empty message.
func (m HistoryModel) renderTableContent() string {
	if len(m.runs) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		return emptyStyle.Render("No runs recorded yet.\nCross a threshold first.")
	}
	return m.table.View()
}

// RunHistory runs the history screen.
func RunHistory(store *storage.Store, width, height int) error {
	p := tea.NewProgram(NewHistoryModel(store, width, height), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
