package core

import (
	"fmt"
)

// ExecutionError represents a structured error with category and details
type ExecutionError struct {
	Category ErrorCategory
	Code     string         // Machine-readable code: element_not_found, already_playing, etc.
	Message  string         // Human-readable message
	Details  map[string]any // Additional context
	Cause    error          // Underlying error
}

// Error implements the error interface
func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Is matches by code so predefined errors work with errors.Is after
// WithCause/WithDetails copies.
func (e *ExecutionError) Is(target error) bool {
	t, ok := target.(*ExecutionError)
	return ok && t.Code == e.Code
}

// WithCause returns a copy of the error with the given cause
func (e *ExecutionError) WithCause(cause error) *ExecutionError {
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  e.Details,
		Cause:    cause,
	}
}

// WithMessage returns a copy of the error with a custom message
func (e *ExecutionError) WithMessage(msg string) *ExecutionError {
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  msg,
		Details:  e.Details,
		Cause:    e.Cause,
	}
}

// WithDetails returns a copy of the error with additional details
func (e *ExecutionError) WithDetails(details map[string]any) *ExecutionError {
	merged := make(map[string]any)
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  merged,
		Cause:    e.Cause,
	}
}

// Predefined errors
var (
	// Control errors: the only category that propagates synchronously.
	ErrAlreadyPlaying = &ExecutionError{
		Category: ErrCategoryControl,
		Code:     "already_playing",
		Message:  "a playback is already active on this engine",
	}
	ErrNoActivePlayback = &ExecutionError{
		Category: ErrCategoryControl,
		Code:     "no_active_playback",
		Message:  "no playback is active",
	}
	ErrNotPaused = &ExecutionError{
		Category: ErrCategoryControl,
		Code:     "not_paused",
		Message:  "playback is not paused",
	}

	// Locator errors
	ErrElementNotFound = &ExecutionError{
		Category: ErrCategoryLocator,
		Code:     "element_not_found",
		Message:  "element not found",
	}
	ErrElementNotVisible = &ExecutionError{
		Category: ErrCategoryLocator,
		Code:     "element_not_visible",
		Message:  "element not visible",
	}

	// Timeout errors
	ErrTimeout = &ExecutionError{
		Category: ErrCategoryTimeout,
		Code:     "timeout",
		Message:  "operation timed out",
	}

	// Assertion errors
	ErrAssertionFailed = &ExecutionError{
		Category: ErrCategoryAssertion,
		Code:     "assertion_failed",
		Message:  "assertion was not satisfied",
	}

	// Precondition errors
	ErrContextInvalid = &ExecutionError{
		Category: ErrCategoryPrecondition,
		Code:     "context_invalid",
		Message:  "starting context validation failed",
	}

	// Control signal recorded when a playback is stopped mid-journey.
	ErrPlaybackStopped = &ExecutionError{
		Category: ErrCategoryControl,
		Code:     "playback_stopped",
		Message:  "playback stopped by caller",
	}

	// Persistence errors
	ErrSaveFailed = &ExecutionError{
		Category: ErrCategoryPersistence,
		Code:     "save_failed",
		Message:  "failed to persist journey statistics",
	}
)

// NewExecutionError creates a new ExecutionError with the given parameters
func NewExecutionError(category ErrorCategory, code, message string) *ExecutionError {
	return &ExecutionError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}
