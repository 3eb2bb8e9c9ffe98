package engine

import "github.com/vovakirdan/liminal/internal/level"

// checkVictory evaluates the victory condition and latches completion.
func (r *Runtime) checkVictory() {
	if r.halted() || !r.victoryMet() {
		return
	}

	lvl := r.level
	lvl.Completed = true
	par, perfect := lvl.Timing.Par, lvl.Timing.Perfect
	r.emit(LevelCompleteEvent{
		ElapsedTime:    lvl.ElapsedTime,
		BacktrackCount: lvl.BacktrackCount,
		UnderPar:       par > 0 && lvl.ElapsedTime <= par,
		Perfect:        perfect > 0 && lvl.ElapsedTime <= perfect,
	})
	r.logger.Info("level completed", "level", lvl.ID, "elapsed", lvl.ElapsedTime, "backtracks", lvl.BacktrackCount)
}

// VictoryMet reports whether the victory condition currently holds, without
// latching anything. A condition without targets never holds.
func (r *Runtime) VictoryMet() bool {
	return r.victoryMet()
}

func (r *Runtime) victoryMet() bool {
	lvl := r.level
	targets := lvl.Victory.Targets
	if len(targets) == 0 {
		return false
	}

	switch lvl.Victory.Type {
	case level.VictoryReach:
		if len(lvl.PlayerPositions) == 0 {
			return false
		}
		want := make(map[string]struct{}, len(targets))
		for _, t := range targets {
			want[t] = struct{}{}
		}
		for _, at := range lvl.PlayerPositions {
			if _, ok := want[at]; !ok {
				return false
			}
		}
		return true

	case level.VictoryActivateAll:
		return r.allTargets(func(n *level.Node) bool { return n.Active })

	case level.VictoryWitness:
		return r.allTargets(func(n *level.Node) bool { return n.Visited })

	case level.VictorySynchronize:
		positioned := len(lvl.PlayerPositions)
		if positioned == 0 {
			return false
		}
		occupants := 0
		for _, t := range uniqueTargets(targets) {
			if n, ok := lvl.Nodes[t]; ok {
				occupants += n.Occupancy()
			}
		}
		return occupants >= positioned

	case level.VictorySequence:
		// Every target active, first activated in the listed order.
		last := 0
		for _, t := range targets {
			n, ok := lvl.Nodes[t]
			if !ok || !n.Active || n.ActivationOrder <= last {
				return false
			}
			last = n.ActivationOrder
		}
		return true
	}
	return false
}

func (r *Runtime) allTargets(pred func(*level.Node) bool) bool {
	for _, t := range r.level.Victory.Targets {
		n, ok := r.level.Nodes[t]
		if !ok || !pred(n) {
			return false
		}
	}
	return true
}

func uniqueTargets(targets []string) []string {
	seen := make(map[string]struct{}, len(targets))
	out := make([]string, 0, len(targets))
	for _, t := range targets {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// checkObjectives records objectives satisfied for the first time.
func (r *Runtime) checkObjectives() {
	lvl := r.level
	if len(lvl.Objectives) == 0 {
		return
	}
	done := make(map[string]struct{}, len(lvl.CompletedObjectives))
	for _, id := range lvl.CompletedObjectives {
		done[id] = struct{}{}
	}

	for _, o := range lvl.Objectives {
		if _, ok := done[o.ID]; ok {
			continue
		}
		if !r.objectiveMet(o) {
			continue
		}
		lvl.CompletedObjectives = append(lvl.CompletedObjectives, o.ID)
		done[o.ID] = struct{}{}
		r.emit(ObjectiveCompleteEvent{Objective: o})
	}
}

func (r *Runtime) objectiveMet(o level.Objective) bool {
	n, ok := r.level.Nodes[o.Target]
	if !ok {
		return false
	}
	switch o.Kind {
	case level.ObjectiveVisit:
		return n.Visited
	case level.ObjectiveActivate:
		return n.Active
	case level.ObjectiveWitness:
		return r.Witnessed(o.Target)
	}
	return false
}
