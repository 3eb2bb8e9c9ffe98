package tui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/liminal/internal/core"
	"github.com/vovakirdan/liminal/internal/engine"
	"github.com/vovakirdan/liminal/internal/level"
	"github.com/vovakirdan/liminal/internal/multiplayer"
	"github.com/vovakirdan/liminal/internal/storage"
)

// Options configures a local play session.
type Options struct {
	Definition     level.Definition
	Store          *storage.Store // may be nil
	Config         core.RuntimeConfig
	ChargeDecay    float64
	WitnessOpacity float64
	Players        int  // hot-seat players placed at start
	Resume         bool // restore the last snapshot of this level
	Logger         *log.Logger
}

// Model is the Bubble Tea model for playing a level locally.
type Model struct {
	opts       Options
	runtime    *engine.Runtime
	screen     *core.Screen
	board      board
	keys       KeyMap
	help       help.Model
	players    []core.PlayerID
	witnessing map[core.PlayerID]bool
	lastTick   time.Time
	saved      bool
	quitting   bool
}

// snapshotKey is the storage session id for local play of a level.
func snapshotKey(levelID string) string {
	return "local:" + levelID
}

// NewModel builds the level, starts it and places the players.
func NewModel(opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Config.ScreenW == 0 || opts.Config.ScreenH == 0 {
		cfg := core.DefaultConfig()
		cfg.TickRate = opts.Config.TickRate
		opts.Config = cfg
	}

	runtimeOpts := []engine.Option{
		engine.WithLogger(opts.Logger),
		engine.WithChargeDecay(opts.ChargeDecay),
	}
	if opts.WitnessOpacity > 0 {
		runtimeOpts = append(runtimeOpts, engine.WithWitnessOpacity(opts.WitnessOpacity))
	}
	rt := engine.New(level.Build(opts.Definition), runtimeOpts...)
	rt.Start()

	m := Model{
		opts:       opts,
		runtime:    rt,
		screen:     core.NewScreen(opts.Config.ScreenW, mapRows(opts.Config.ScreenH)),
		keys:       DefaultKeyMap(),
		help:       help.New(),
		witnessing: make(map[core.PlayerID]bool),
	}

	if !m.resume() {
		for i := 0; i < core.Max(1, opts.Players); i++ {
			m.join()
		}
	}
	if len(m.players) > 0 {
		m.board.player = m.players[0]
	}
	m.refresh()
	return m
}

// resume restores the stored snapshot when asked to.
func (m *Model) resume() bool {
	if !m.opts.Resume || m.opts.Store == nil {
		return false
	}
	state, err := m.opts.Store.LoadSnapshot(snapshotKey(m.opts.Definition.ID))
	if err != nil {
		if !errors.Is(err, storage.ErrSnapshotNotFound) {
			m.opts.Logger.Warn("cannot load snapshot", "level", m.opts.Definition.ID, "err", err)
		}
		return false
	}
	if !m.runtime.Restore(state) {
		return false
	}
	for p := range state.PlayerPositions {
		m.players = append(m.players, p)
	}
	sort.Slice(m.players, func(i, j int) bool { return m.players[i] < m.players[j] })
	m.board.log = appendLog(m.board.log, "Resumed at "+formatElapsed(state.ElapsedTime))
	return len(m.players) > 0
}

func (m *Model) join() {
	id := multiplayer.PlayerSlot(len(m.players))
	if m.runtime.Join(id) {
		m.players = append(m.players, id)
	}
}

// refresh moves queued runtime events into the log and takes a new frame.
func (m *Model) refresh() {
	for _, ev := range m.runtime.Drain() {
		m.board.logEvent(ev)
	}
	m.board.setFrame(m.runtime.Frame())
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.opts.Config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.opts.Config.ScreenW = msg.Width
		m.opts.Config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, mapRows(msg.Height))
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		return m.handleTick(time.Time(msg))
	}
	return m, nil
}

func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	m.runtime.Update(frameDelta(m.lastTick, now))
	m.lastTick = now
	m.refresh()

	if m.board.frame.Completed || m.board.frame.Failed {
		m.finish()
		return m, nil
	}
	return m, tickCmd(m.opts.Config.TickRate)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Screenshot) {
		m.saveScreenshot()
		return m, nil
	}

	switch m.keys.Action(msg) {
	case core.ActionQuit, core.ActionBack:
		m.leave()
		m.quitting = true
		return m, tea.Quit
	case core.ActionUp:
		m.board.moveCursor(-1)
	case core.ActionDown:
		m.board.moveCursor(1)
	case core.ActionMove:
		m.move()
	case core.ActionWitness:
		m.toggleWitness()
	case core.ActionNextPlayer:
		m.nextPlayer()
	case core.ActionJoin:
		m.join()
	}
	m.refresh()
	return m, nil
}

func (m *Model) move() {
	target := m.board.selected()
	if target == "" {
		return
	}
	player := m.board.player
	if !m.runtime.MovePlayer(player, target) {
		m.board.log = appendLog(m.board.log, "The way to "+target+" does not open")
		return
	}
	// Witness-only edges stay open until the crossing is made.
	if m.witnessing[player] {
		m.runtime.StopWitness(player)
		m.witnessing[player] = false
	}
}

func (m *Model) toggleWitness() {
	player := m.board.player
	if m.witnessing[player] {
		m.runtime.StopWitness(player)
		m.witnessing[player] = false
		return
	}
	m.runtime.StartWitness(player)
	m.witnessing[player] = true
}

func (m *Model) nextPlayer() {
	if len(m.players) < 2 {
		return
	}
	for i, p := range m.players {
		if p == m.board.player {
			m.board.player = m.players[(i+1)%len(m.players)]
			m.board.cursor = 0
			return
		}
	}
}

func (m *Model) playerNames() []string {
	names := make([]string, len(m.players))
	for i, p := range m.players {
		names[i] = string(p)
	}
	return names
}

// finish records a completed or failed run once.
func (m *Model) finish() {
	if m.saved {
		return
	}
	m.saved = true
	if m.opts.Store == nil {
		return
	}
	f := m.board.frame
	reason := multiplayer.MatchEndReasonCompleted.String()
	if f.Failed {
		reason = multiplayer.MatchEndReasonFailed.String()
	}
	if _, err := m.opts.Store.SaveRun(storage.Run{
		LevelID:     f.LevelID,
		Players:     m.playerNames(),
		Completed:   f.Completed,
		Failed:      f.Failed,
		ElapsedTime: f.ElapsedTime,
		Backtracks:  f.BacktrackCount,
		EndReason:   reason,
	}); err != nil {
		m.opts.Logger.Error("cannot save run", "level", f.LevelID, "err", err)
	}
	if err := m.opts.Store.DeleteSnapshots(snapshotKey(f.LevelID)); err != nil {
		m.opts.Logger.Warn("cannot delete snapshots", "level", f.LevelID, "err", err)
	}
}

// leave snapshots an unfinished level and records the run as quit.
func (m *Model) leave() {
	defer m.runtime.Close()
	if m.saved || m.opts.Store == nil {
		return
	}
	m.saved = true
	f := m.board.frame
	if err := m.opts.Store.SaveSnapshot(snapshotKey(f.LevelID), m.runtime.State()); err != nil {
		m.opts.Logger.Error("cannot save snapshot", "level", f.LevelID, "err", err)
	}
	if _, err := m.opts.Store.SaveRun(storage.Run{
		LevelID:     f.LevelID,
		Players:     m.playerNames(),
		ElapsedTime: f.ElapsedTime,
		Backtracks:  f.BacktrackCount,
		EndReason:   "quit",
	}); err != nil {
		m.opts.Logger.Error("cannot save run", "level", f.LevelID, "err", err)
	}
}

// saveScreenshot writes the current map to a file.
func (m *Model) saveScreenshot() {
	m.screen.Clear()
	DrawFrame(m.screen, m.board.frame, 1, 0, m.screen.Width()-2, m.screen.Height(), m.board.selected())

	dir := filepath.Join(os.Getenv("HOME"), ".liminal", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.board.frame.LevelID, timestamp))
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.board.log = appendLog(m.board.log, "Screenshot failed: "+err.Error())
		return
	}
	m.board.log = appendLog(m.board.log, "Screenshot saved to "+path)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.board.render(m.screen, m.witnessing[m.board.player], m.help.View(m.keys))
}

// Run starts the Bubble Tea program for a local session.
func Run(opts Options) error {
	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
