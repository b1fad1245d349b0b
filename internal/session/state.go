package session

import "fmt"

// State is the wizard's position in its one-way lifecycle.
type State int

const (
	// StateIdle is the empty starting state.
	StateIdle State = iota
	// StateLoading covers ingest: intake validation, normalization, and
	// thumbnail generation.
	StateLoading
	// StateAwaitingMetadata waits for naming metadata assignment.
	StateAwaitingMetadata
	// StateAwaitingConfirmation waits for the user to confirm processing.
	StateAwaitingConfirmation
	// StateProcessing covers the resize/encode/archive batch run.
	StateProcessing
	// StateComplete holds the finished archive until download or reset.
	StateComplete
)

// String returns the state name used in API responses and logs.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateAwaitingMetadata:
		return "awaiting-metadata"
	case StateAwaitingConfirmation:
		return "awaiting-confirmation"
	case StateProcessing:
		return "processing"
	case StateComplete:
		return "complete"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// TransitionError reports a state change the wizard does not allow.
type TransitionError struct {
	From State
	To   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s", e.From, e.To)
}

// allowedTransitions encodes the one-way wizard flow. loading -> idle and
// processing -> awaiting-confirmation are the recovery edges for batch-level
// failures; complete -> idle is the full reset.
var allowedTransitions = map[State][]State{
	StateIdle:                 {StateLoading},
	StateLoading:              {StateAwaitingMetadata, StateIdle},
	StateAwaitingMetadata:     {StateAwaitingConfirmation},
	StateAwaitingConfirmation: {StateProcessing},
	StateProcessing:           {StateComplete, StateAwaitingConfirmation},
	StateComplete:             {StateIdle},
}

func transitionAllowed(from, to State) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
