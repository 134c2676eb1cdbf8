// Package swipe resolves inbox row swipe gestures into actions. The state
// machine is pure: drag deltas go in, transitions come out, so thin clients
// can let the server decide what a finished gesture means.
package swipe

// State is the gesture state of a single inbox row.
type State int

const (
	Idle State = iota
	Dragging
	RevealUnread
	RevealDelete
	CommittedDelete
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case RevealUnread:
		return "reveal_unread"
	case RevealDelete:
		return "reveal_delete"
	case CommittedDelete:
		return "committed_delete"
	}
	return "unknown"
}

// Action is what the application should do once a gesture ends.
type Action int

const (
	ActionNone Action = iota
	ActionMarkUnread
	ActionRevealDelete
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionMarkUnread:
		return "mark_unread"
	case ActionRevealDelete:
		return "reveal_delete"
	case ActionDelete:
		return "delete"
	}
	return "unknown"
}

// Thresholds in pixels. A rightward drag past unreadThreshold marks the
// thread unread; a leftward drag past commitThreshold deletes immediately;
// between revealThreshold and commitThreshold the delete button is revealed
// and a second explicit tap is required.
const (
	unreadThreshold = 60
	revealThreshold = -60
	commitThreshold = -100
)

// Drag reports the in-flight state for a drag delta.
func Drag(delta float64) State {
	if delta == 0 {
		return Idle
	}
	return Dragging
}

// Release resolves a finished drag into a terminal state.
func Release(delta float64) State {
	switch {
	case delta > unreadThreshold:
		return RevealUnread
	case delta < commitThreshold:
		return CommittedDelete
	case delta < revealThreshold:
		return RevealDelete
	default:
		return Idle
	}
}

// Resolve maps a finished drag straight to the action the caller should take.
func Resolve(delta float64) Action {
	switch Release(delta) {
	case RevealUnread:
		return ActionMarkUnread
	case CommittedDelete:
		return ActionDelete
	case RevealDelete:
		return ActionRevealDelete
	default:
		return ActionNone
	}
}
