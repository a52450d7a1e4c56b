package runtime

// State is the scheduler state of a session.
type State int

const (
	StateLoading State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}
