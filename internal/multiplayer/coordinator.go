package multiplayer

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/liminal/internal/engine"
	"github.com/vovakirdan/liminal/internal/level"
)

// Lobby represents a waiting room for a match.
type Lobby struct {
	Code       string
	LevelID    string
	Host       SessionHandle
	Members    []SessionHandle // host first
	MaxPlayers int
	CreatedAt  time.Time
}

func (l *Lobby) indexOf(id SessionID) int {
	for i, s := range l.Members {
		if s.ID() == id {
			return i
		}
	}
	return -1
}

func (l *Lobby) broadcast(evt SessionEvent) {
	for _, s := range l.Members {
		s.Send(evt)
	}
}

// CoordinatorConfig holds configuration for the coordinator.
type CoordinatorConfig struct {
	LobbyTimeout   time.Duration // How long before a lobby nobody joined expires
	TickRate       int           // Match tick rate (Hz)
	CleanupPeriod  time.Duration // How often to clean up expired lobbies
	MaxPlayers     int           // Lobby capacity unless the level allows fewer
	ChargeDecay    float64       // ms, passed to every match runtime
	WitnessOpacity float64
}

// DefaultCoordinatorConfig returns sensible defaults.
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		LobbyTimeout:   2 * time.Minute,
		TickRate:       30,
		CleanupPeriod:  30 * time.Second,
		MaxPlayers:     4,
		ChargeDecay:    engine.DefaultChargeDecay,
		WitnessOpacity: engine.DefaultWitnessOpacity,
	}
}

// LevelFactory builds a fresh playable level for a lobby's level id.
type LevelFactory func(levelID string) (*level.PlayableLevel, error)

// MatchResultSaver is an interface for saving match results.
// This allows the coordinator to save results without depending on the storage package.
type MatchResultSaver interface {
	SaveMatchResult(result MatchResultData) error
}

// MatchResultData contains match result data for persistence.
type MatchResultData struct {
	MatchID     string
	LevelID     string
	Players     []string // session ids in player order
	Completed   bool
	Failed      bool
	ElapsedTime float64
	Backtracks  int
	EndReason   string
}

// Coordinator manages lobbies and active matches.
type Coordinator struct {
	config      CoordinatorConfig
	levels      LevelFactory
	sessions    *SessionRegistry
	resultSaver MatchResultSaver // Optional, can be nil
	logger      *log.Logger

	mu      sync.RWMutex
	lobbies map[string]*Lobby  // code -> lobby
	matches map[MatchID]*Match // matchID -> match

	sessionLobby map[SessionID]string  // sessionID -> lobby code
	sessionMatch map[SessionID]MatchID // sessionID -> matchID

	msgChan  chan CoordinatorMessage
	done     chan struct{}
	stopOnce sync.Once
}

// NewCoordinator creates a new coordinator.
func NewCoordinator(cfg CoordinatorConfig, levels LevelFactory, sessions *SessionRegistry) *Coordinator {
	if cfg.MaxPlayers < 1 {
		cfg.MaxPlayers = 1
	}
	return &Coordinator{
		config:       cfg,
		levels:       levels,
		sessions:     sessions,
		logger:       log.New(io.Discard),
		lobbies:      make(map[string]*Lobby),
		matches:      make(map[MatchID]*Match),
		sessionLobby: make(map[SessionID]string),
		sessionMatch: make(map[SessionID]MatchID),
		msgChan:      make(chan CoordinatorMessage, 256),
		done:         make(chan struct{}),
	}
}

// SetResultSaver sets the optional match result saver.
func (c *Coordinator) SetResultSaver(saver MatchResultSaver) {
	c.resultSaver = saver
}

// SetLogger sets the logger used for lobby and match lifecycle messages.
func (c *Coordinator) SetLogger(l *log.Logger) {
	if l != nil {
		c.logger = l
	}
}

// Start begins the coordinator's background processing.
func (c *Coordinator) Start() {
	go c.processMessages()
	go c.cleanupLoop()
}

// Stop shuts down the coordinator and every running match.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		defer c.mu.Unlock()
		for _, m := range c.matches {
			m.Stop()
		}
	})
}

// Send sends a message to the coordinator for async processing.
func (c *Coordinator) Send(msg CoordinatorMessage) {
	select {
	case c.msgChan <- msg:
	case <-c.done:
	}
}

func (c *Coordinator) processMessages() {
	for {
		select {
		case msg := <-c.msgChan:
			c.handleMessage(msg)
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) handleMessage(msg CoordinatorMessage) {
	switch m := msg.(type) {
	case CreateLobbyMsg:
		c.handleCreateLobby(m)
	case JoinLobbyMsg:
		c.handleJoinLobby(m)
	case StartMatchMsg:
		c.handleStartMatch(m)
	case LeaveLobbyMsg:
		c.handleLeaveLobby(m)
	case LeaveMatchMsg:
		c.handleLeaveMatch(m)
	case PlayerCommandMsg:
		c.handlePlayerCommand(m)
	case SessionDisconnectedMsg:
		c.handleSessionDisconnected(m)
	}
}

func (c *Coordinator) handleCreateLobby(msg CreateLobbyMsg) {
	session, ok := c.sessions.Get(msg.SessionID)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy(msg.SessionID) {
		session.Send(LobbyErrorEvent{Message: "Already in a lobby or match"})
		return
	}

	// Build once up front so an unknown level fails here, not at start.
	lvl, err := c.levels(msg.LevelID)
	if err != nil {
		session.Send(LobbyErrorEvent{Message: fmt.Sprintf("Unknown level %q", msg.LevelID)})
		return
	}

	capacity := c.config.MaxPlayers
	if lvl.MaxPlayers > 0 && lvl.MaxPlayers < capacity {
		capacity = lvl.MaxPlayers
	}

	code := c.generateUniqueCode()
	c.lobbies[code] = &Lobby{
		Code:       code,
		LevelID:    msg.LevelID,
		Host:       session,
		Members:    []SessionHandle{session},
		MaxPlayers: capacity,
		CreatedAt:  time.Now(),
	}
	c.sessionLobby[msg.SessionID] = code
	c.logger.Info("lobby created", "code", code, "level", msg.LevelID, "host", msg.SessionID)

	session.Send(LobbyCreatedEvent{Code: code, LevelID: msg.LevelID, MaxPlayers: capacity})
}

func (c *Coordinator) handleJoinLobby(msg JoinLobbyMsg) {
	session, ok := c.sessions.Get(msg.SessionID)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy(msg.SessionID) {
		session.Send(LobbyErrorEvent{Message: "Already in a lobby or match"})
		return
	}

	code := strings.ToUpper(strings.TrimSpace(msg.Code))
	lobby, exists := c.lobbies[code]
	if !exists {
		session.Send(LobbyErrorEvent{Message: "Lobby not found"})
		return
	}
	if len(lobby.Members) >= lobby.MaxPlayers {
		session.Send(LobbyErrorEvent{Message: "Lobby is full"})
		return
	}

	lobby.Members = append(lobby.Members, session)
	c.sessionLobby[msg.SessionID] = code
	lobby.broadcast(LobbyJoinedEvent{Code: code, Session: msg.SessionID, Members: len(lobby.Members)})

	if len(lobby.Members) == lobby.MaxPlayers {
		c.startMatch(lobby)
	}
}

func (c *Coordinator) handleStartMatch(msg StartMatchMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lobby, exists := c.lobbies[strings.ToUpper(msg.Code)]
	if !exists || lobby.Host.ID() != msg.SessionID {
		return
	}
	c.startMatch(lobby)
}

// startMatch builds the level and launches the match loop.
// Must be called with lock held.
func (c *Coordinator) startMatch(lobby *Lobby) {
	lvl, err := c.levels(lobby.LevelID)
	if err != nil {
		lobby.broadcast(LobbyErrorEvent{Message: "Failed to build level"})
		return
	}
	if len(lobby.Members) < lvl.MinPlayers {
		lobby.Host.Send(LobbyErrorEvent{
			Message: fmt.Sprintf("Level needs %d players, lobby has %d", lvl.MinPlayers, len(lobby.Members)),
		})
		return
	}

	matchID := MatchID(fmt.Sprintf("match-%s-%d", lobby.Code, time.Now().UnixNano()))
	runtime := engine.New(lvl,
		engine.WithLogger(c.logger.With("match", matchID)),
		engine.WithChargeDecay(c.config.ChargeDecay),
		engine.WithWitnessOpacity(c.config.WitnessOpacity),
	)
	match := NewMatch(matchID, lobby.Code, lobby.LevelID, runtime, lobby.Members, c.config.TickRate)
	match.SetLogger(c.logger)

	c.matches[matchID] = match
	for i, s := range lobby.Members {
		delete(c.sessionLobby, s.ID())
		c.sessionMatch[s.ID()] = matchID
		s.Send(MatchStartedEvent{
			MatchID: matchID,
			Code:    lobby.Code,
			LevelID: lobby.LevelID,
			Player:  PlayerSlot(i),
			Players: len(lobby.Members),
		})
	}
	delete(c.lobbies, lobby.Code)
	c.logger.Info("match started", "match", matchID, "level", lobby.LevelID, "players", len(lobby.Members))

	go match.Run(func(result MatchResult) {
		c.handleMatchEnded(matchID, result)
	})
}

func (c *Coordinator) handleMatchEnded(matchID MatchID, result MatchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	match, exists := c.matches[matchID]
	if !exists {
		return
	}

	sessions := match.Sessions()
	if c.resultSaver != nil {
		players := make([]string, len(sessions))
		for i, id := range sessions {
			players[i] = string(id)
		}
		data := MatchResultData{
			MatchID:     string(matchID),
			LevelID:     match.LevelID(),
			Players:     players,
			Completed:   result.Reason == MatchEndReasonCompleted,
			Failed:      result.Reason == MatchEndReasonFailed,
			ElapsedTime: result.ElapsedTime,
			Backtracks:  result.Backtracks,
			EndReason:   result.Reason.String(),
		}
		saver, logger := c.resultSaver, c.logger
		go func() {
			if err := saver.SaveMatchResult(data); err != nil {
				logger.Error("cannot save match result", "match", matchID, "err", err)
			}
		}()
	}

	for _, id := range sessions {
		delete(c.sessionMatch, id)
	}
	delete(c.matches, matchID)
	c.logger.Info("match ended", "match", matchID, "reason", result.Reason, "elapsed", result.ElapsedTime)

	endEvent := MatchEndedEvent{
		MatchID:     matchID,
		Reason:      result.Reason,
		ElapsedTime: result.ElapsedTime,
		Backtracks:  result.Backtracks,
	}
	for _, m := range match.members {
		m.session.Send(endEvent)
	}
}

func (c *Coordinator) handleLeaveLobby(msg LeaveLobbyMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.leaveLobby(msg.SessionID, strings.ToUpper(msg.Code))
}

// leaveLobby removes a member; a leaving host closes the lobby.
// Must be called with lock held.
func (c *Coordinator) leaveLobby(id SessionID, code string) {
	lobby, exists := c.lobbies[code]
	if !exists {
		return
	}

	if lobby.Host.ID() == id {
		for _, s := range lobby.Members[1:] {
			s.Send(MatchEndedEvent{Reason: MatchEndReasonHostLeft})
			delete(c.sessionLobby, s.ID())
		}
		delete(c.lobbies, code)
		delete(c.sessionLobby, id)
		c.logger.Info("lobby closed", "code", code)
		return
	}

	i := lobby.indexOf(id)
	if i < 0 {
		return
	}
	lobby.Members = append(lobby.Members[:i], lobby.Members[i+1:]...)
	delete(c.sessionLobby, id)
	lobby.broadcast(LobbyPlayerLeftEvent{Code: code, Session: id, Members: len(lobby.Members)})
}

func (c *Coordinator) handleLeaveMatch(msg LeaveMatchMsg) {
	c.mu.RLock()
	match, exists := c.matches[msg.MatchID]
	c.mu.RUnlock()

	if !exists {
		return
	}
	match.PlayerDisconnected(msg.SessionID)
}

func (c *Coordinator) handlePlayerCommand(msg PlayerCommandMsg) {
	c.mu.RLock()
	match, exists := c.matches[msg.MatchID]
	c.mu.RUnlock()

	if !exists {
		return
	}
	match.SendCommand(msg.Player, msg.Command)
}

func (c *Coordinator) handleSessionDisconnected(msg SessionDisconnectedMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if code, inLobby := c.sessionLobby[msg.SessionID]; inLobby {
		c.leaveLobby(msg.SessionID, code)
	}

	if matchID, inMatch := c.sessionMatch[msg.SessionID]; inMatch {
		if match, exists := c.matches[matchID]; exists {
			match.PlayerDisconnected(msg.SessionID)
		}
	}
}

// busy reports whether a session is already in a lobby or match.
// Must be called with lock held.
func (c *Coordinator) busy(id SessionID) bool {
	_, inLobby := c.sessionLobby[id]
	_, inMatch := c.sessionMatch[id]
	return inLobby || inMatch
}

func (c *Coordinator) cleanupLoop() {
	ticker := time.NewTicker(c.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanupExpiredLobbies(time.Now())
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) cleanupExpiredLobbies(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for code, lobby := range c.lobbies {
		// Only expire lobbies nobody joined
		if len(lobby.Members) == 1 && now.Sub(lobby.CreatedAt) > c.config.LobbyTimeout {
			lobby.Host.Send(LobbyErrorEvent{Message: "Lobby expired"})
			delete(c.sessionLobby, lobby.Host.ID())
			delete(c.lobbies, code)
		}
	}
}

func (c *Coordinator) generateUniqueCode() string {
	for {
		code := generateJoinCode()
		if _, exists := c.lobbies[code]; !exists {
			return code
		}
	}
}

// generateJoinCode creates a 6-character uppercase alphanumeric code.
func generateJoinCode() string {
	b := make([]byte, 4) // 4 bytes base32-encode to 7 chars, we take 6
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%06X", time.Now().UnixNano()&0xFFFFFF)
	}
	return base32.StdEncoding.EncodeToString(b)[:6]
}

// GetLobby returns a lobby by code (for testing/debug).
func (c *Coordinator) GetLobby(code string) (*Lobby, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.lobbies[strings.ToUpper(code)]
	return l, ok
}

// GetMatch returns a match by ID (for testing/debug).
func (c *Coordinator) GetMatch(id MatchID) (*Match, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.matches[id]
	return m, ok
}

// LobbyCount returns the number of active lobbies.
func (c *Coordinator) LobbyCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.lobbies)
}

// MatchCount returns the number of active matches.
func (c *Coordinator) MatchCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.matches)
}
