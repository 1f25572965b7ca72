package supervisor

// State represents the lifecycle state of the supervised backend
type State int

const (
	// StateNotStarted - no backend has been launched yet
	StateNotStarted State = iota
	// StateRunning - a backend process is stored in the cell
	StateRunning
	// StateStopped - the backend was terminated; terminal
	StateStopped
)

// String returns the string representation of a State
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "NotStarted"
	case StateRunning:
		return "Running"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// SupervisedProcess describes the running backend
type SupervisedProcess struct {
	// PID is the OS process ID, useful for diagnostics
	PID int

	handle Process
}
