package core

import (
	"fmt"
	"time"
)

// StepError captures one step failure inside an execution result.
type StepError struct {
	StepID  string `json:"stepId"`
	Error   string `json:"error"`
	Context string `json:"context,omitempty"` // What the engine was doing: retry count, healed selector, etc.
}

// ExecutionResult captures the complete outcome of one journey playback.
// Play never throws for step-level failures; this structure communicates
// the outcome instead.
type ExecutionResult struct {
	JourneyID   string `json:"journeyId"`
	ExecutionID string `json:"executionId"` // Fresh per run

	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	DurationMs int64     `json:"durationMs"`

	Success        bool `json:"success"`
	CompletedSteps int  `json:"completedSteps"`
	TotalSteps     int  `json:"totalSteps"`

	Errors      []StepError `json:"errors,omitempty"`
	Warnings    []string    `json:"warnings,omitempty"`
	Screenshots []string    `json:"screenshots,omitempty"` // Artifact paths
	FinalURL    string      `json:"finalUrl,omitempty"`
}

// AddError appends a step error.
func (r *ExecutionResult) AddError(stepID string, err error, context string) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	r.Errors = append(r.Errors, StepError{StepID: stepID, Error: msg, Context: context})
}

// AddWarning appends a warning string.
func (r *ExecutionResult) AddWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Finish stamps the end time and duration.
func (r *ExecutionResult) Finish(at time.Time) {
	r.EndTime = at
	r.DurationMs = at.Sub(r.StartTime).Milliseconds()
}
