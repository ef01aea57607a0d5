package core

// PlaybackState represents the state of the playback engine.
type PlaybackState int

const (
	StateIdle      PlaybackState = iota // No playback started
	StatePlaying                        // Steps executing
	StatePaused                         // Suspended between steps
	StateCompleted                      // All steps finished
	StateAborted                        // Stopped by the caller
	StateFailed                         // Terminated by a fatal step or precondition failure
)

// String returns the string representation of PlaybackState.
func (s PlaybackState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal returns true if the state is a final state.
func (s PlaybackState) IsTerminal() bool {
	switch s {
	case StateCompleted, StateAborted, StateFailed:
		return true
	default:
		return false
	}
}

// Active returns true while a playback is in flight.
func (s PlaybackState) Active() bool {
	return s == StatePlaying || s == StatePaused
}

// ErrorCategory classifies the type of error for reporting and policy.
type ErrorCategory int

const (
	ErrCategoryNone         ErrorCategory = iota // No error
	ErrCategoryPrecondition                      // Starting context not satisfied
	ErrCategoryLocator                           // Element not found or not visible
	ErrCategoryTimeout                           // Action or wait timed out
	ErrCategoryAssertion                         // Assertion expectation not met
	ErrCategoryControl                           // Invalid state-machine transition
	ErrCategoryPersistence                       // Statistics save failed
)

// String returns the string representation of ErrorCategory.
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryNone:
		return "none"
	case ErrCategoryPrecondition:
		return "precondition"
	case ErrCategoryLocator:
		return "locator"
	case ErrCategoryTimeout:
		return "timeout"
	case ErrCategoryAssertion:
		return "assertion"
	case ErrCategoryControl:
		return "control"
	case ErrCategoryPersistence:
		return "persistence"
	default:
		return "unknown"
	}
}
