package domain

// State is the lifecycle position of a practice session timer.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StatePaused  State = "paused"
)

// Snapshot is a point-in-time view of a timer.
type Snapshot struct {
	Elapsed    int   `json:"elapsed"`
	State      State `json:"state"`
	InProgress bool  `json:"inProgress"`
}

// DeriveState maps the two pieces of timer state onto a State.
// A timer with an active tick handle is running even at zero elapsed seconds.
func DeriveState(ticking bool, elapsed int) State {
	switch {
	case ticking:
		return StateRunning
	case elapsed > 0:
		return StatePaused
	default:
		return StateIdle
	}
}

// NewSnapshot builds a Snapshot for the given timer state.
func NewSnapshot(ticking bool, elapsed int) Snapshot {
	return Snapshot{
		Elapsed:    elapsed,
		State:      DeriveState(ticking, elapsed),
		InProgress: elapsed > 0,
	}
}

// History is the chronological list of completed session durations, in seconds.
type History []int

// Append returns a new history with d added at the end. The receiver is not modified.
func (h History) Append(d int) History {
	out := make(History, 0, len(h)+1)
	out = append(out, h...)
	return append(out, d)
}

// Last returns the most recently completed duration.
func (h History) Last() (int, bool) {
	if len(h) == 0 {
		return 0, false
	}
	return h[len(h)-1], true
}

// Max returns the longest completed duration.
func (h History) Max() (int, bool) {
	if len(h) == 0 {
		return 0, false
	}
	longest := h[0]
	for _, d := range h[1:] {
		if d > longest {
			longest = d
		}
	}
	return longest, true
}

// Total returns the sum of all completed durations.
func (h History) Total() int {
	total := 0
	for _, d := range h {
		total += d
	}
	return total
}
