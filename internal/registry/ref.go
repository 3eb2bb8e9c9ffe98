package registry

import (
	"fmt"
	"strconv"
	"strings"
)

// Ref names a concrete level: a registry id plus the seed and player count a
// procedural factory needs. Its string form is "id", "id:seed" or
// "id:seed:players", so every member of a lobby builds the same level.
type Ref struct {
	ID      string
	Seed    uint32
	Players int
}

// String returns the compact form of the ref.
func (r Ref) String() string {
	switch {
	case r.Players > 0:
		return fmt.Sprintf("%s:%d:%d", r.ID, r.Seed, r.Players)
	case r.Seed != 0:
		return fmt.Sprintf("%s:%d", r.ID, r.Seed)
	default:
		return r.ID
	}
}

// ParseRef parses the string form of a ref.
func ParseRef(s string) (Ref, error) {
	parts := strings.Split(s, ":")
	if len(parts) > 3 || parts[0] == "" {
		return Ref{}, fmt.Errorf("registry: malformed level ref %q", s)
	}
	ref := Ref{ID: parts[0]}
	if len(parts) > 1 {
		seed, err := strconv.ParseUint(parts[1], 10, 32)
		if err != nil {
			return Ref{}, fmt.Errorf("registry: bad seed in %q: %w", s, err)
		}
		ref.Seed = uint32(seed)
	}
	if len(parts) > 2 {
		players, err := strconv.Atoi(parts[2])
		if err != nil || players < 1 {
			return Ref{}, fmt.Errorf("registry: bad player count in %q", s)
		}
		ref.Players = players
	}
	return ref, nil
}

// Params returns the factory inputs for the ref. difficulty applies to
// procedural entries only.
func (r Ref) Params(difficulty int) Params {
	return Params{Seed: r.Seed, Difficulty: difficulty, Players: r.Players}
}
