package core

// Action represents a semantic player intent, abstracted from key presses.
type Action int

const (
	ActionNone       Action = iota
	ActionUp                // move the neighbor cursor up
	ActionDown              // move the neighbor cursor down
	ActionMove              // travel to the selected neighbor
	ActionWitness           // toggle witnessing at the current node
	ActionNextPlayer        // cycle the controlled player (hot-seat)
	ActionJoin              // add another local player at an origin
	ActionBack              // leave the level
	ActionQuit              // exit the program
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionUp:
		return "Up"
	case ActionDown:
		return "Down"
	case ActionMove:
		return "Move"
	case ActionWitness:
		return "Witness"
	case ActionNextPlayer:
		return "NextPlayer"
	case ActionJoin:
		return "Join"
	case ActionBack:
		return "Back"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}
