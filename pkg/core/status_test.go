package core

import "testing"

func TestPlaybackState_String(t *testing.T) {
	tests := []struct {
		state    PlaybackState
		expected string
	}{
		{StateIdle, "idle"},
		{StatePlaying, "playing"},
		{StatePaused, "paused"},
		{StateCompleted, "completed"},
		{StateAborted, "aborted"},
		{StateFailed, "failed"},
		{PlaybackState(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("PlaybackState(%d).String() = %q, want %q", tt.state, got, tt.expected)
		}
	}
}

func TestPlaybackState_IsTerminal(t *testing.T) {
	terminal := []PlaybackState{StateCompleted, StateAborted, StateFailed}
	nonTerminal := []PlaybackState{StateIdle, StatePlaying, StatePaused}

	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%s.IsTerminal() = false, want true", s)
		}
	}
	for _, s := range nonTerminal {
		if s.IsTerminal() {
			t.Errorf("%s.IsTerminal() = true, want false", s)
		}
	}
}

func TestPlaybackState_Active(t *testing.T) {
	active := []PlaybackState{StatePlaying, StatePaused}
	inactive := []PlaybackState{StateIdle, StateCompleted, StateAborted, StateFailed}

	for _, s := range active {
		if !s.Active() {
			t.Errorf("%s.Active() = false, want true", s)
		}
	}
	for _, s := range inactive {
		if s.Active() {
			t.Errorf("%s.Active() = true, want false", s)
		}
	}
}

func TestErrorCategory_String(t *testing.T) {
	tests := []struct {
		category ErrorCategory
		expected string
	}{
		{ErrCategoryNone, "none"},
		{ErrCategoryPrecondition, "precondition"},
		{ErrCategoryLocator, "locator"},
		{ErrCategoryTimeout, "timeout"},
		{ErrCategoryAssertion, "assertion"},
		{ErrCategoryControl, "control"},
		{ErrCategoryPersistence, "persistence"},
		{ErrorCategory(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.category.String(); got != tt.expected {
			t.Errorf("ErrorCategory(%d).String() = %q, want %q", tt.category, got, tt.expected)
		}
	}
}
