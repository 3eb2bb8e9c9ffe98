package multiplayer

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/liminal/internal/engine"
)

// MatchResult contains the outcome of a finished match.
type MatchResult struct {
	MatchID     MatchID
	Reason      MatchEndReason
	ElapsedTime float64
	Backtracks  int
	Ticks       uint64
	State       engine.State
}

type member struct {
	session SessionHandle
	player  PlayerID
	left    bool
}

type playerCommand struct {
	player  PlayerID
	command Command
}

// Match is one running level session shared by several players. The match
// goroutine is the only caller into its runtime; commands arrive over a
// channel and are applied before the next tick.
type Match struct {
	id      MatchID
	code    string
	levelID string
	runtime *engine.Runtime
	members []*member
	logger  *log.Logger

	commands   chan playerCommand
	disconnect chan SessionID

	signalMu sync.Mutex
	signalled map[SessionID]bool

	tick     uint64
	tickRate int
	done     chan struct{}
	doneOnce sync.Once
}

// NewMatch creates a match around a runtime. Sessions are assigned player
// ids p1..pN in the order given.
func NewMatch(id MatchID, code, levelID string, runtime *engine.Runtime, sessions []SessionHandle, tickRate int) *Match {
	if tickRate <= 0 {
		tickRate = 30
	}
	m := &Match{
		id:         id,
		code:       code,
		levelID:    levelID,
		runtime:    runtime,
		logger:     log.New(io.Discard),
		commands:   make(chan playerCommand, 64),
		disconnect: make(chan SessionID, len(sessions)+1),
		signalled:  make(map[SessionID]bool),
		tickRate:   tickRate,
		done:       make(chan struct{}),
	}
	for i, s := range sessions {
		m.members = append(m.members, &member{session: s, player: PlayerSlot(i)})
	}
	return m
}

// SetLogger replaces the match logger.
func (m *Match) SetLogger(l *log.Logger) {
	if l != nil {
		m.logger = l
	}
}

// ID returns the match identifier.
func (m *Match) ID() MatchID {
	return m.id
}

// Code returns the join code used to create this match.
func (m *Match) Code() string {
	return m.code
}

// LevelID returns the id of the level being played.
func (m *Match) LevelID() string {
	return m.levelID
}

// Sessions returns the session ids in player order.
func (m *Match) Sessions() []SessionID {
	ids := make([]SessionID, len(m.members))
	for i, mem := range m.members {
		ids[i] = mem.session.ID()
	}
	return ids
}

// PlayerFor returns the player id assigned to a session.
func (m *Match) PlayerFor(id SessionID) (PlayerID, bool) {
	for _, mem := range m.members {
		if mem.session.ID() == id {
			return mem.player, true
		}
	}
	return "", false
}

// SendCommand queues a player command. Non-blocking; a full queue drops it.
func (m *Match) SendCommand(player PlayerID, cmd Command) {
	select {
	case m.commands <- playerCommand{player: player, command: cmd}:
	default:
	}
}

// PlayerDisconnected signals that a session has left the match. Each member
// session is queued at most once, so the buffer never fills and no departure
// is lost. Unknown sessions are ignored.
func (m *Match) PlayerDisconnected(sessionID SessionID) {
	if _, ok := m.PlayerFor(sessionID); !ok {
		return
	}
	m.signalMu.Lock()
	defer m.signalMu.Unlock()
	if m.signalled[sessionID] {
		return
	}
	m.signalled[sessionID] = true
	m.disconnect <- sessionID
}

// Run starts the authoritative match loop and blocks until the match ends.
// onComplete is called once with the result unless the match was stopped.
func (m *Match) Run(onComplete func(MatchResult)) {
	defer m.Stop()

	m.begin()
	defer m.runtime.Close()

	tickDuration := time.Second / time.Duration(m.tickRate)
	ticker := time.NewTicker(tickDuration)
	defer ticker.Stop()

	go m.monitorSessions()

	for {
		select {
		case <-ticker.C:
			if result, done := m.step(float64(tickDuration) / float64(time.Millisecond)); done {
				if onComplete != nil {
					onComplete(result)
				}
				return
			}

		case sessionID := <-m.disconnect:
			if result, done := m.drop(sessionID); done {
				if onComplete != nil {
					onComplete(result)
				}
				return
			}

		case <-m.done:
			return
		}
	}
}

// begin forwards runtime events to every member and places the players.
func (m *Match) begin() {
	m.runtime.Subscribe(func(ev engine.Event) {
		m.broadcast(RuntimeEvent{MatchID: m.id, Event: ev})
	})
	m.runtime.Start()
	for _, mem := range m.members {
		if !m.runtime.Join(mem.player) {
			m.logger.Warn("player could not join", "match", m.id, "player", mem.player)
		}
	}
	m.broadcast(FrameEvent{MatchID: m.id, Tick: 0, Frame: m.runtime.Frame()})
}

// step applies queued commands, advances the runtime by dt ms and
// broadcasts the new frame.
func (m *Match) step(dt float64) (MatchResult, bool) {
	m.drainCommands()

	m.runtime.Update(dt)
	m.tick++
	m.broadcast(FrameEvent{MatchID: m.id, Tick: m.tick, Frame: m.runtime.Frame()})

	lvl := m.runtime.Level()
	switch {
	case lvl.Completed:
		return m.result(MatchEndReasonCompleted), true
	case lvl.Failed:
		return m.result(MatchEndReasonFailed), true
	}
	return MatchResult{}, false
}

func (m *Match) drainCommands() {
	for {
		select {
		case pc := <-m.commands:
			m.apply(pc)
		default:
			return
		}
	}
}

func (m *Match) apply(pc playerCommand) {
	if !m.active(pc.player) {
		return
	}
	switch pc.command.Kind {
	case CommandMove:
		if !m.runtime.MovePlayer(pc.player, pc.command.Target) {
			m.logger.Debug("move rejected", "match", m.id, "player", pc.player, "target", pc.command.Target)
		}
	case CommandWitnessStart:
		m.runtime.StartWitness(pc.player)
	case CommandWitnessStop:
		m.runtime.StopWitness(pc.player)
	}
}

func (m *Match) active(player PlayerID) bool {
	for _, mem := range m.members {
		if mem.player == player {
			return !mem.left
		}
	}
	return false
}

// drop removes a departed player. The match ends once nobody is left.
func (m *Match) drop(sessionID SessionID) (MatchResult, bool) {
	remaining := 0
	for _, mem := range m.members {
		if mem.session.ID() == sessionID && !mem.left {
			mem.left = true
			m.runtime.RemovePlayer(mem.player)
			m.logger.Info("player left", "match", m.id, "player", mem.player)
			m.broadcast(PlayerLeftEvent{MatchID: m.id, Player: mem.player})
		}
		if !mem.left {
			remaining++
		}
	}
	if remaining == 0 {
		return m.result(MatchEndReasonDisconnect), true
	}
	return MatchResult{}, false
}

func (m *Match) result(reason MatchEndReason) MatchResult {
	lvl := m.runtime.Level()
	return MatchResult{
		MatchID:     m.id,
		Reason:      reason,
		ElapsedTime: lvl.ElapsedTime,
		Backtracks:  lvl.BacktrackCount,
		Ticks:       m.tick,
		State:       m.runtime.State(),
	}
}

func (m *Match) broadcast(evt SessionEvent) {
	for _, mem := range m.members {
		if !mem.left {
			mem.session.Send(evt)
		}
	}
}

func (m *Match) monitorSessions() {
	var wg sync.WaitGroup
	for _, mem := range m.members {
		wg.Add(1)
		go func(s SessionHandle) {
			defer wg.Done()
			select {
			case <-s.Done():
				m.PlayerDisconnected(s.ID())
			case <-m.done:
			}
		}(mem.session)
	}
	wg.Wait()
}

// Stop ends the match loop without reporting a result. Safe to call multiple times.
func (m *Match) Stop() {
	m.doneOnce.Do(func() {
		close(m.done)
	})
}
