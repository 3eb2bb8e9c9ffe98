package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/liminal/internal/core"
	"github.com/vovakirdan/liminal/internal/multiplayer"
	"github.com/vovakirdan/liminal/internal/registry"
)

// joinCodeLength matches the coordinator's lobby codes.
const joinCodeLength = 6

// OnlineState represents the current state of a shared session.
type OnlineState int

const (
	OnlineStateChooseLevel OnlineState = iota // Pick a level to host, or join by code
	OnlineStateLobby                          // In a lobby, waiting for members
	OnlineStateEnterCode                      // Typing a join code
	OnlineStateJoining                        // Join sent, waiting for the coordinator
	OnlineStateInMatch                        // Playing
	OnlineStateMatchEnded                     // Showing the result
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	cursorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	codeStyle    = lipgloss.NewStyle().Bold(true).Padding(0, 2).
			Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("13"))
)

// OnlineModel drives one SSH session: choosing a level, the lobby, the
// match and its result. Level state arrives as frames from the coordinator.
type OnlineModel struct {
	state       OnlineState
	width       int
	height      int
	keys        LobbyKeyMap
	playKeys    KeyMap
	help        help.Model
	username    string
	sessionID   multiplayer.SessionID
	coordinator *multiplayer.Coordinator
	events      <-chan multiplayer.SessionEvent

	entries []registry.Entry
	cursor  int
	players int // requested player count for procedural levels

	lobbyCode  string
	lobbyLevel string
	members    int
	maxPlayers int
	host       bool
	codeInput  string
	lastError  string

	matchID    multiplayer.MatchID
	screen     *core.Screen
	board      board
	witnessing bool
	result     multiplayer.MatchEndedEvent

	quitting bool
}

// NewOnlineModel creates the model for one SSH session.
func NewOnlineModel(
	username string,
	sessionID multiplayer.SessionID,
	coordinator *multiplayer.Coordinator,
	events <-chan multiplayer.SessionEvent,
	width, height int,
) OnlineModel {
	if width <= 0 || height <= 0 {
		cfg := core.DefaultConfig()
		width, height = cfg.ScreenW, cfg.ScreenH
	}
	h := help.New()
	h.Width = width
	return OnlineModel{
		state:       OnlineStateChooseLevel,
		width:       width,
		height:      height,
		keys:        DefaultLobbyKeyMap(),
		playKeys:    DefaultKeyMap(),
		help:        h,
		username:    username,
		sessionID:   sessionID,
		coordinator: coordinator,
		events:      events,
		entries:     registry.List(),
		players:     1,
		screen:      core.NewScreen(width, mapRows(height)),
	}
}

// Init starts listening for coordinator events.
func (m OnlineModel) Init() tea.Cmd {
	return m.waitForEvent()
}

// waitForEvent returns a command that waits for coordinator events.
func (m OnlineModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		if m.events == nil {
			return nil
		}
		evt, ok := <-m.events
		if !ok {
			return nil
		}
		return evt
	}
}

// Update handles messages.
func (m OnlineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.screen.Resize(msg.Width, mapRows(msg.Height))
		return m, nil
	case multiplayer.SessionEvent:
		m.handleEvent(msg)
		return m, m.waitForEvent()
	}
	return m, nil
}

func (m *OnlineModel) handleEvent(evt multiplayer.SessionEvent) {
	switch e := evt.(type) {
	case multiplayer.LobbyCreatedEvent:
		m.state = OnlineStateLobby
		m.host = true
		m.lobbyCode = e.Code
		m.lobbyLevel = e.LevelID
		m.members = 1
		m.maxPlayers = e.MaxPlayers
		m.lastError = ""
	case multiplayer.LobbyJoinedEvent:
		if e.Session == m.sessionID {
			m.state = OnlineStateLobby
			m.lobbyCode = e.Code
			m.lastError = ""
		}
		m.members = e.Members
	case multiplayer.LobbyPlayerLeftEvent:
		m.members = e.Members
	case multiplayer.LobbyErrorEvent:
		m.lastError = e.Message
		if m.state == OnlineStateJoining {
			m.state = OnlineStateEnterCode
		}
	case multiplayer.MatchStartedEvent:
		m.state = OnlineStateInMatch
		m.matchID = e.MatchID
		m.lobbyLevel = e.LevelID
		m.board = board{player: e.Player}
		m.witnessing = false
		m.lastError = ""
	case multiplayer.FrameEvent:
		if e.MatchID == m.matchID {
			m.board.setFrame(e.Frame)
		}
	case multiplayer.RuntimeEvent:
		if e.MatchID == m.matchID {
			m.board.logEvent(e.Event)
		}
	case multiplayer.PlayerLeftEvent:
		if e.MatchID == m.matchID {
			m.board.log = appendLog(m.board.log, string(e.Player)+" has left")
		}
	case multiplayer.MatchEndedEvent:
		if e.Reason == multiplayer.MatchEndReasonHostLeft {
			m.resetLobby()
			m.lastError = "The host closed the lobby"
			return
		}
		if e.MatchID == m.matchID {
			m.state = OnlineStateMatchEnded
			m.result = e
		}
	}
}

func (m *OnlineModel) resetLobby() {
	m.state = OnlineStateChooseLevel
	m.lobbyCode = ""
	m.members = 0
	m.host = false
}

func (m OnlineModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.leave()
		m.quitting = true
		return m, tea.Quit
	}

	switch m.state {
	case OnlineStateChooseLevel:
		return m.handleChooseKey(msg)
	case OnlineStateLobby:
		return m.handleLobbyKey(msg)
	case OnlineStateEnterCode:
		return m.handleCodeKey(msg)
	case OnlineStateJoining:
		if key.Matches(msg, m.keys.Back) {
			m.state = OnlineStateEnterCode
		}
	case OnlineStateInMatch:
		return m.handleMatchKey(msg)
	case OnlineStateMatchEnded:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		m.matchID = ""
		m.resetLobby()
	}
	return m, nil
}

func (m OnlineModel) handleChooseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Fewer):
		if m.players > 1 {
			m.players--
		}
	case key.Matches(msg, m.keys.More):
		m.players++
	case key.Matches(msg, m.keys.Code):
		m.state = OnlineStateEnterCode
		m.codeInput = ""
		m.lastError = ""
	case key.Matches(msg, m.keys.Host):
		if len(m.entries) == 0 {
			return m, nil
		}
		m.coordinator.Send(multiplayer.CreateLobbyMsg{
			SessionID: m.sessionID,
			LevelID:   m.selectedRef().String(),
		})
	}
	return m, nil
}

// selectedRef returns the ref for the entry under the cursor. Procedural
// levels get a fresh seed and the chosen player count.
func (m OnlineModel) selectedRef() registry.Ref {
	e := m.entries[core.Clamp(m.cursor, 0, len(m.entries)-1)]
	if e.Kind != registry.KindProcedural {
		return registry.Ref{ID: e.ID}
	}
	seed := uint32(time.Now().UnixNano())
	if seed == 0 {
		seed = 1
	}
	return registry.Ref{ID: e.ID, Seed: seed, Players: m.players}
}

func (m OnlineModel) handleLobbyKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.leave()
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.leave()
		m.resetLobby()
	case key.Matches(msg, m.keys.Start):
		if m.host {
			m.coordinator.Send(multiplayer.StartMatchMsg{SessionID: m.sessionID, Code: m.lobbyCode})
		}
	}
	return m, nil
}

func (m OnlineModel) handleCodeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = OnlineStateChooseLevel
		return m, nil
	case "enter":
		if len(m.codeInput) == joinCodeLength {
			m.state = OnlineStateJoining
			m.lastError = ""
			m.coordinator.Send(multiplayer.JoinLobbyMsg{SessionID: m.sessionID, Code: m.codeInput})
		}
		return m, nil
	case "backspace":
		if m.codeInput != "" {
			m.codeInput = m.codeInput[:len(m.codeInput)-1]
		}
		return m, nil
	}

	k := msg.String()
	if len(k) == 1 && len(m.codeInput) < joinCodeLength {
		c := strings.ToUpper(k)
		if (c[0] >= 'A' && c[0] <= 'Z') || (c[0] >= '2' && c[0] <= '7') {
			m.codeInput += c
		}
	}
	return m, nil
}

func (m OnlineModel) handleMatchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.playKeys.Action(msg) {
	case core.ActionQuit:
		m.leave()
		m.quitting = true
		return m, tea.Quit
	case core.ActionBack:
		m.leave()
		m.matchID = ""
		m.resetLobby()
	case core.ActionUp:
		m.board.moveCursor(-1)
	case core.ActionDown:
		m.board.moveCursor(1)
	case core.ActionMove:
		if target := m.board.selected(); target != "" {
			m.command(multiplayer.Command{Kind: multiplayer.CommandMove, Target: target})
			if m.witnessing {
				m.command(multiplayer.Command{Kind: multiplayer.CommandWitnessStop})
				m.witnessing = false
			}
		}
	case core.ActionWitness:
		kind := multiplayer.CommandWitnessStart
		if m.witnessing {
			kind = multiplayer.CommandWitnessStop
		}
		m.command(multiplayer.Command{Kind: kind})
		m.witnessing = !m.witnessing
	}
	return m, nil
}

func (m OnlineModel) command(cmd multiplayer.Command) {
	m.coordinator.Send(multiplayer.PlayerCommandMsg{
		MatchID: m.matchID,
		Player:  m.board.player,
		Command: cmd,
	})
}

// leave tells the coordinator this session is leaving its lobby or match.
func (m OnlineModel) leave() {
	switch m.state {
	case OnlineStateLobby:
		m.coordinator.Send(multiplayer.LeaveLobbyMsg{SessionID: m.sessionID, Code: m.lobbyCode})
	case OnlineStateInMatch:
		m.coordinator.Send(multiplayer.LeaveMatchMsg{SessionID: m.sessionID, MatchID: m.matchID})
	}
}

// View renders the current state.
func (m OnlineModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.state {
	case OnlineStateInMatch:
		return m.board.render(m.screen, m.witnessing, m.help.View(m.playKeys))
	case OnlineStateMatchEnded:
		return m.viewResult()
	}

	var b strings.Builder
	switch m.state {
	case OnlineStateChooseLevel:
		b.WriteString(m.viewChooseLevel())
	case OnlineStateLobby:
		b.WriteString(m.viewLobby())
	case OnlineStateEnterCode, OnlineStateJoining:
		b.WriteString(m.viewEnterCode())
	}
	if m.lastError != "" {
		b.WriteString("\n" + centerText(errorStyle.Render(m.lastError), m.width) + "\n")
	}
	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

func (m OnlineModel) viewChooseLevel() string {
	var b strings.Builder
	b.WriteString("\n" + centerText(headingStyle.Render("LIMINAL"), m.width) + "\n")
	b.WriteString(centerText(dimStyle.Render("welcome, "+m.username), m.width) + "\n\n")

	for i, e := range m.entries {
		line := fmt.Sprintf("%-18s %s", e.ID, e.Title)
		if e.Kind == registry.KindProcedural {
			line += dimStyle.Render(fmt.Sprintf("  (%d players)", m.players))
		}
		if i == m.cursor {
			line = cursorStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(centerText(line, m.width) + "\n")
	}

	if len(m.entries) > 0 {
		if desc := m.entries[m.cursor].Description; desc != "" {
			b.WriteString("\n" + centerText(dimStyle.Render(desc), m.width) + "\n")
		}
	}
	return b.String()
}

func (m OnlineModel) viewLobby() string {
	var b strings.Builder
	b.WriteString("\n" + centerText(headingStyle.Render("LOBBY"), m.width) + "\n\n")
	b.WriteString(centerText("Share this code:", m.width) + "\n")
	b.WriteString(centerText(codeStyle.Render(m.lobbyCode), m.width) + "\n\n")
	if m.lobbyLevel != "" {
		b.WriteString(centerText("Level: "+m.lobbyLevel, m.width) + "\n")
	}
	b.WriteString(centerText(fmt.Sprintf("Players: %d/%d", m.members, m.maxPlayers), m.width) + "\n\n")
	if m.host {
		b.WriteString(centerText(dimStyle.Render("Press s to start when everyone is here"), m.width) + "\n")
	} else {
		b.WriteString(centerText(dimStyle.Render("Waiting for the host to start..."), m.width) + "\n")
	}
	return b.String()
}

func (m OnlineModel) viewEnterCode() string {
	var b strings.Builder
	b.WriteString("\n" + centerText(headingStyle.Render("JOIN"), m.width) + "\n\n")
	b.WriteString(centerText("Enter the lobby code:", m.width) + "\n\n")

	code := m.codeInput
	if len(code) < joinCodeLength {
		code += "_" + strings.Repeat(" ", joinCodeLength-len(code)-1)
	}
	b.WriteString(centerText(fmt.Sprintf("[ %s ]", code), m.width) + "\n")
	if m.state == OnlineStateJoining {
		b.WriteString("\n" + centerText(dimStyle.Render("Connecting..."), m.width) + "\n")
	}
	return b.String()
}

func (m OnlineModel) viewResult() string {
	var b strings.Builder
	b.WriteString("\n" + centerText(headingStyle.Render("MATCH OVER"), m.width) + "\n\n")

	var outcome string
	switch m.result.Reason {
	case multiplayer.MatchEndReasonCompleted:
		outcome = doneStyle.Render("You crossed the threshold together")
	case multiplayer.MatchEndReasonFailed:
		outcome = failStyle.Render("Time ran out")
	default:
		outcome = dimStyle.Render("Match ended: " + m.result.Reason.String())
	}
	b.WriteString(centerText(outcome, m.width) + "\n\n")
	b.WriteString(centerText(fmt.Sprintf("Time %s  Backtracks %d",
		formatElapsed(m.result.ElapsedTime), m.result.Backtracks), m.width) + "\n\n")
	b.WriteString(centerText(dimStyle.Render("Any key: back to levels  |  q: quit"), m.width))
	return b.String()
}

// State returns the current online state.
func (m OnlineModel) State() OnlineState {
	return m.state
}

// centerText centers text horizontally within the given width.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	return strings.Repeat(" ", (width-w)/2) + text
}
