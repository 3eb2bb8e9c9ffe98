// Package engine runs a PlayableLevel: per-tick node charging, player
// movement, witnessing, the trigger engine with its scheduled task queue,
// objectives and the victory condition.
//
// A Runtime is single-threaded. Exactly one goroutine may call into it; the
// multiplayer host funnels every player command through its match loop for
// that reason.
package engine

import (
	"io"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/liminal/internal/core"
	"github.com/vovakirdan/liminal/internal/level"
)

const (
	// DefaultChargeDecay is the time in ms for a full charge to drain once
	// occupancy falls below the requirement.
	DefaultChargeDecay = 2000.0
	// DefaultWitnessOpacity is the opacity of edges revealed by witnessing.
	DefaultWitnessOpacity = 0.7
)

// Runtime owns a PlayableLevel for the duration of a session.
type Runtime struct {
	level  *level.PlayableLevel
	logger *log.Logger

	chargeDecay    float64
	witnessOpacity float64

	started bool
	closed  bool

	tasks   taskQueue
	taskSeq uint64

	activations int
	witnessed   map[string]struct{}

	queue       []Event
	subscribers []subscriber
	nextSubID   SubscriptionID
	flushing    bool
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *log.Logger) Option {
	return func(r *Runtime) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithChargeDecay sets the full-decay time in ms. Non-positive values are ignored.
func WithChargeDecay(ms float64) Option {
	return func(r *Runtime) {
		if ms > 0 {
			r.chargeDecay = ms
		}
	}
}

// WithWitnessOpacity sets the opacity of witnessed edges, clamped to [0, 1].
func WithWitnessOpacity(o float64) Option {
	return func(r *Runtime) {
		r.witnessOpacity = core.ClampF(o, 0, 1)
	}
}

// New creates a runtime that takes ownership of lvl.
func New(lvl *level.PlayableLevel, opts ...Option) *Runtime {
	r := &Runtime{
		level:          lvl,
		logger:         log.New(io.Discard),
		chargeDecay:    DefaultChargeDecay,
		witnessOpacity: DefaultWitnessOpacity,
		witnessed:      make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	for _, n := range lvl.Nodes {
		if n.ActivationOrder > r.activations {
			r.activations = n.ActivationOrder
		}
	}
	// Nodes that start active (origins) count as activated first.
	for _, id := range r.sortedNodeIDs() {
		if n := lvl.Nodes[id]; n.Active && n.ActivationOrder == 0 {
			r.activations++
			n.ActivationOrder = r.activations
		}
	}
	return r
}

// Level returns the level being played. Callers must treat it as read-only.
func (r *Runtime) Level() *level.PlayableLevel {
	return r.level
}

// Closed reports whether Close has been called.
func (r *Runtime) Closed() bool {
	return r.closed
}

// Pending returns the number of scheduled trigger actions not yet run.
func (r *Runtime) Pending() int {
	return r.tasks.Len()
}

// halted reports whether gameplay state is frozen.
func (r *Runtime) halted() bool {
	return r.closed || r.level.Terminal()
}

// Start emits the level-start event. Only the first call has an effect.
func (r *Runtime) Start() {
	if r.closed || r.started {
		return
	}
	r.started = true
	r.emit(LevelStartEvent{LevelID: r.level.ID, LevelName: r.level.Name})
	r.logger.Info("level started", "level", r.level.ID)
	r.flush()
}

// Update advances the level by dt milliseconds.
//
// Order within one call: elapsed time advances, due trigger actions run, nodes
// charge or decay, then the time limit and finally objectives and the victory
// condition are evaluated. A completed or failed level is latched and further
// calls do nothing.
func (r *Runtime) Update(dt float64) {
	if r.halted() {
		return
	}
	if dt < 0 {
		dt = 0
	}

	r.level.ElapsedTime += dt
	r.runDueTasks()
	r.updateCharge(dt)

	if !r.checkTimeLimit() {
		r.checkObjectives()
		r.checkVictory()
	}
	r.flush()
}

func (r *Runtime) updateCharge(dt float64) {
	for _, id := range r.sortedNodeIDs() {
		n := r.level.Nodes[id]
		if n.ActivationTime <= 0 || n.Active {
			continue
		}

		if n.Occupancy() >= n.RequiredPlayers {
			n.ChargeProgress = core.ClampF(n.ChargeProgress+dt/n.ActivationTime, 0, 1)
			if n.ChargeProgress >= 1 {
				r.activateNode(id)
			}
		} else if n.ChargeProgress > 0 {
			n.ChargeProgress = core.ClampF(n.ChargeProgress-dt/r.chargeDecay, 0, 1)
		}
	}
}

func (r *Runtime) checkTimeLimit() bool {
	limit := r.level.Victory.TimeLimit
	if limit <= 0 || r.level.ElapsedTime <= limit {
		return false
	}
	r.level.Failed = true
	r.emit(LevelFailEvent{ElapsedTime: r.level.ElapsedTime, Reason: "time limit exceeded"})
	r.logger.Info("level failed", "level", r.level.ID, "elapsed", r.level.ElapsedTime)
	return true
}

// Close tears the runtime down: pending trigger actions are dropped and every
// later call is a no-op. Queued events stay available through Drain.
func (r *Runtime) Close() {
	if r.closed {
		return
	}
	if n := r.tasks.Len(); n > 0 {
		r.logger.Debug("dropping scheduled actions", "count", n)
	}
	r.tasks = nil
	r.closed = true
}

func (r *Runtime) sortedNodeIDs() []string {
	ids := make([]string, 0, len(r.level.Nodes))
	for id := range r.level.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
