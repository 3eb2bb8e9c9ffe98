package level

import (
	"errors"
	"fmt"
)

// Sentinel errors wrapped by ValidationError.
var (
	ErrDuplicateID  = errors.New("duplicate id")
	ErrUnknownNode  = errors.New("unknown node")
	ErrNoOrigin     = errors.New("no origin node")
	ErrBadDimension = errors.New("undeclared dimension")
	ErrBadVictory   = errors.New("invalid victory condition")
)

// ValidationError contains details about one validation failure.
type ValidationError struct {
	Code    string
	Message string
	Err     error
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e ValidationError) Unwrap() error {
	return e.Err
}

// Validate reports every structural problem in a definition as one joined
// error, or nil. Build does not require a definition to pass.
// Checks:
//   - Node and edge ids are unique
//   - Edges, triggers, objectives and victory targets reference known nodes
//   - Node dimensions are declared
//   - At least one origin exists
//   - The victory condition has a known type and targets
func Validate(def Definition) error {
	var errs []error
	add := func(code string, sentinel error, format string, args ...any) {
		errs = append(errs, ValidationError{
			Code:    code,
			Message: fmt.Sprintf(format, args...),
			Err:     sentinel,
		})
	}

	dims := make(map[Dimension]bool, len(def.Dimensions))
	for _, d := range def.Dimensions {
		dims[d] = true
	}
	if len(dims) == 0 {
		add("NO_DIMENSIONS", ErrBadDimension, "level declares no dimensions")
	}

	nodes := make(map[string]bool, len(def.Nodes))
	origins := 0
	for _, n := range def.Nodes {
		if nodes[n.ID] {
			add("DUPLICATE_NODE", ErrDuplicateID, "node %q declared more than once", n.ID)
		}
		nodes[n.ID] = true
		if n.Type == NodeOrigin {
			origins++
		}
		if len(dims) > 0 && !dims[n.Dimension] {
			add("BAD_DIMENSION", ErrBadDimension, "node %q uses undeclared dimension %q", n.ID, n.Dimension)
		}
	}
	if origins == 0 {
		add("NO_ORIGIN", ErrNoOrigin, "level has no origin node")
	}

	edges := make(map[string]bool, len(def.Edges))
	for _, e := range def.Edges {
		id := EdgeID(e.From, e.To)
		if edges[id] {
			add("DUPLICATE_EDGE", ErrDuplicateID, "edge %q declared more than once", id)
		}
		edges[id] = true
		if !nodes[e.From] {
			add("DANGLING_EDGE", ErrUnknownNode, "edge %q starts at unknown node %q", id, e.From)
		}
		if !nodes[e.To] {
			add("DANGLING_EDGE", ErrUnknownNode, "edge %q ends at unknown node %q", id, e.To)
		}
	}

	for i, t := range def.Triggers {
		if !nodes[t.NodeID] {
			add("UNKNOWN_TRIGGER_NODE", ErrUnknownNode, "trigger %d listens on unknown node %q", i, t.NodeID)
		}
		switch t.Action {
		case ActionReveal:
			if !nodes[t.Target] && !edges[t.Target] {
				add("UNKNOWN_TARGET", ErrUnknownNode, "trigger %d reveals unknown target %q", i, t.Target)
			}
		case ActionUnlock, ActionHide:
			if !nodes[t.Target] {
				add("UNKNOWN_TARGET", ErrUnknownNode, "trigger %d targets unknown node %q", i, t.Target)
			}
		case ActionDimensionShift:
			if !dims[Dimension(t.Target)] {
				add("BAD_DIMENSION", ErrBadDimension, "trigger %d shifts to undeclared dimension %q", i, t.Target)
			}
		}
	}

	for _, o := range def.Objectives {
		if !nodes[o.Target] {
			add("UNKNOWN_OBJECTIVE_TARGET", ErrUnknownNode, "objective %q targets unknown node %q", o.ID, o.Target)
		}
	}

	switch def.Victory.Type {
	case VictoryReach, VictoryActivateAll, VictorySequence, VictoryWitness, VictorySynchronize:
	default:
		add("BAD_VICTORY", ErrBadVictory, "unknown victory type %q", def.Victory.Type)
	}
	if len(def.Victory.Targets) == 0 {
		add("BAD_VICTORY", ErrBadVictory, "victory condition has no targets")
	}
	for _, target := range def.Victory.Targets {
		if !nodes[target] {
			add("UNKNOWN_VICTORY_TARGET", ErrUnknownNode, "victory target %q is not a node", target)
		}
	}

	return errors.Join(errs...)
}
