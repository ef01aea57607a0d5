package core

import (
	"errors"
	"strings"
	"testing"
)

func TestExecutionError_Error(t *testing.T) {
	err := &ExecutionError{
		Category: ErrCategoryAssertion,
		Code:     "test_error",
		Message:  "test message",
	}

	if got := err.Error(); got != "test message" {
		t.Errorf("Error() = %q, want %q", got, "test message")
	}
}

func TestExecutionError_ErrorWithCause(t *testing.T) {
	cause := errors.New("underlying error")
	err := &ExecutionError{
		Category: ErrCategoryAssertion,
		Code:     "test_error",
		Message:  "test message",
		Cause:    cause,
	}

	got := err.Error()
	if !strings.Contains(got, "test message") || !strings.Contains(got, "underlying error") {
		t.Errorf("Error() = %q, want both message and cause", got)
	}
}

func TestExecutionError_ErrorsIs(t *testing.T) {
	cause := errors.New("root cause")
	err := ErrTimeout.WithCause(cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is() should find the cause")
	}
	if !errors.Is(err, ErrTimeout) {
		t.Error("errors.Is() should match the predefined error through a WithCause copy")
	}
	if errors.Is(err, ErrElementNotFound) {
		t.Error("errors.Is() matched an unrelated predefined error")
	}
}

func TestExecutionError_WithMessage(t *testing.T) {
	err := ErrContextInvalid.WithMessage("journey is not replayable")

	if err.Message != "journey is not replayable" {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Code != ErrContextInvalid.Code || err.Category != ErrContextInvalid.Category {
		t.Error("WithMessage changed the code or category")
	}
	if ErrContextInvalid.Message == "journey is not replayable" {
		t.Error("WithMessage mutated the predefined error")
	}
}

func TestExecutionError_WithDetails(t *testing.T) {
	base := &ExecutionError{
		Code:    "detailed",
		Message: "msg",
		Details: map[string]any{"a": 1, "b": 2},
	}
	err := base.WithDetails(map[string]any{"b": 3, "c": 4})

	if err.Details["a"] != 1 || err.Details["b"] != 3 || err.Details["c"] != 4 {
		t.Errorf("Details = %v", err.Details)
	}
	if base.Details["b"] != 2 {
		t.Error("WithDetails mutated the original error")
	}
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		err      *ExecutionError
		category ErrorCategory
		code     string
	}{
		{ErrAlreadyPlaying, ErrCategoryControl, "already_playing"},
		{ErrNoActivePlayback, ErrCategoryControl, "no_active_playback"},
		{ErrNotPaused, ErrCategoryControl, "not_paused"},
		{ErrPlaybackStopped, ErrCategoryControl, "playback_stopped"},
		{ErrElementNotFound, ErrCategoryLocator, "element_not_found"},
		{ErrElementNotVisible, ErrCategoryLocator, "element_not_visible"},
		{ErrTimeout, ErrCategoryTimeout, "timeout"},
		{ErrAssertionFailed, ErrCategoryAssertion, "assertion_failed"},
		{ErrContextInvalid, ErrCategoryPrecondition, "context_invalid"},
		{ErrSaveFailed, ErrCategoryPersistence, "save_failed"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if tt.err.Category != tt.category {
				t.Errorf("Category = %s, want %s", tt.err.Category, tt.category)
			}
			if tt.err.Code != tt.code {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.code)
			}
			if tt.err.Message == "" {
				t.Error("Message should not be empty")
			}
		})
	}
}

func TestNewExecutionError(t *testing.T) {
	err := NewExecutionError(ErrCategoryLocator, "custom_error", "custom message")

	if err.Category != ErrCategoryLocator {
		t.Errorf("Category = %s, want %s", err.Category, ErrCategoryLocator)
	}
	if err.Code != "custom_error" {
		t.Errorf("Code = %s, want 'custom_error'", err.Code)
	}
	if err.Message != "custom message" {
		t.Errorf("Message = %s, want 'custom message'", err.Message)
	}
}
