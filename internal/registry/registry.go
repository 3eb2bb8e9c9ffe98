// Package registry provides a global catalog of playable levels.
// Built-in levels and procedural themes register themselves in init(),
// allowing the platform to list and instantiate levels by id without
// hardcoded dependencies.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/liminal/internal/level"
	"github.com/vovakirdan/liminal/internal/procgen"
)

// ErrUnknownLevel is returned when no level is registered under an id.
var ErrUnknownLevel = errors.New("registry: unknown level")

// Kind tells where a catalog entry's definitions come from.
type Kind int

const (
	KindBuiltin    Kind = iota // hand-authored, embedded in the binary
	KindProcedural             // generated from a seed
)

// String returns a short label for the kind.
func (k Kind) String() string {
	switch k {
	case KindBuiltin:
		return "built-in"
	case KindProcedural:
		return "procedural"
	default:
		return "unknown"
	}
}

// Entry contains metadata about a registered level.
type Entry struct {
	ID          string
	Title       string
	Description string
	Kind        Kind
	MinPlayers  int
	MaxPlayers  int // 0 means unbounded
}

// Params are the inputs a factory may use. Built-in levels ignore them.
type Params struct {
	Seed       uint32
	Difficulty int
	Players    int
	Modifiers  procgen.Modifiers
}

// Factory creates a fresh level definition.
type Factory func(p Params) (level.Definition, error)

var (
	factories = make(map[string]Factory)
	entries   = make(map[string]Entry)
	mu        sync.RWMutex
)

// Register adds a level factory to the registry.
// Panics if a level with the same ID is already registered.
func Register(e Entry, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[e.ID]; exists {
		panic(fmt.Sprintf("registry: level %q already registered", e.ID))
	}

	factories[e.ID] = f
	entries[e.ID] = e
}

// List returns all registered entries, built-in levels first, each group
// sorted by ID.
func List() []Entry {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]Entry, 0, len(entries))
	for _, e := range entries {
		result = append(result, e)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Kind != result[j].Kind {
			return result[i].Kind < result[j].Kind
		}
		return result[i].ID < result[j].ID
	})

	return result
}

// Lookup returns the entry registered under id.
func Lookup(id string) (Entry, bool) {
	mu.RLock()
	defer mu.RUnlock()

	e, ok := entries[id]
	return e, ok
}

// Create builds a new definition for the level registered under id.
func Create(id string, p Params) (level.Definition, error) {
	mu.RLock()
	f, ok := factories[id]
	mu.RUnlock()

	if !ok {
		return level.Definition{}, fmt.Errorf("%w %q", ErrUnknownLevel, id)
	}
	return f(p)
}

// Exists checks if a level with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
