package engine

import (
	"container/heap"

	"github.com/vovakirdan/liminal/internal/level"
)

// scheduledTask is a fired trigger whose action waits for its due time.
type scheduledTask struct {
	due     float64 // elapsed ms
	seq     uint64
	trigger *level.Trigger
}

// taskQueue is a min-heap ordered by (due, seq).
type taskQueue []scheduledTask

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].due != q[j].due {
		return q[i].due < q[j].due
	}
	return q[i].seq < q[j].seq
}

func (q taskQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *taskQueue) Push(x any) { *q = append(*q, x.(scheduledTask)) }

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	*q = old[:n-1]
	return t
}

// CheckTriggers fires every not-yet-fired trigger matching (typ, nodeID). Each
// fired trigger is marked immediately and its action is scheduled delay ms
// later; a zero delay runs on the next Update.
func (r *Runtime) CheckTriggers(typ level.TriggerType, nodeID string) {
	r.checkTriggers(typ, nodeID)
	r.flush()
}

func (r *Runtime) checkTriggers(typ level.TriggerType, nodeID string) {
	if r.halted() {
		return
	}
	for _, t := range r.level.Triggers {
		if t.Fired || t.Def.Type != typ || t.Def.NodeID != nodeID {
			continue
		}
		t.Fired = true
		r.taskSeq++
		delay := t.Def.Delay
		if delay < 0 {
			delay = 0
		}
		heap.Push(&r.tasks, scheduledTask{
			due:     r.level.ElapsedTime + delay,
			seq:     r.taskSeq,
			trigger: t,
		})
		r.logger.Debug("trigger fired", "trigger", t.ID, "action", t.Def.Action, "delay", delay)
	}
}

// runDueTasks executes every scheduled action whose due time has passed.
// Actions scheduled while draining run in the same pass once due.
func (r *Runtime) runDueTasks() {
	for r.tasks.Len() > 0 && !r.halted() {
		if r.tasks[0].due > r.level.ElapsedTime {
			return
		}
		task := heap.Pop(&r.tasks).(scheduledTask)
		r.execute(task.trigger)
	}
}

func (r *Runtime) execute(t *level.Trigger) {
	def := t.Def
	switch def.Action {
	case level.ActionReveal:
		r.reveal(def.Target)

	case level.ActionUnlock:
		if def.Data.PartialUnlock {
			unlockID := def.Data.UnlockID
			if unlockID == "" {
				unlockID = t.ID
			}
			r.partialUnlock(def.Target, unlockID, r.level.UnlockTriggerCount(def.Target))
		} else {
			r.unlockNode(def.Target)
		}

	case level.ActionHide:
		r.hide(def.Target)

	case level.ActionMessage:
		r.emit(MessageEvent{Node: def.NodeID, Text: def.Data.Message})

	case level.ActionDimensionShift:
		r.shiftDimension(level.Dimension(def.Target))

	case level.ActionSpawn:
		r.emit(SpawnEvent{Node: def.Target, Kind: def.Data.Spawn})

	default:
		r.logger.Debug("unknown trigger action", "trigger", t.ID, "action", def.Action)
	}
}
