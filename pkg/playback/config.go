// Package playback executes a journey's steps against a live page with
// retries, selector self-healing, and pause/resume/stop control.
package playback

import "time"

// Config controls playback behavior.
type Config struct {
	// Speed is a playback speed multiplier (>1 = faster). Applied to step
	// waits, never to retry backoff.
	Speed float64 `yaml:"speed" json:"speed"`

	// PauseOnError aborts the journey on the first unrecoverable step
	// failure without executing remaining steps.
	PauseOnError bool `yaml:"pauseOnError" json:"pauseOnError"`

	// MaxRetries is the number of retries per step (total attempts =
	// MaxRetries + 1).
	MaxRetries int `yaml:"maxRetries" json:"maxRetries"`

	// ScreenshotOnFailure captures a screenshot artifact on fatal step
	// failure.
	ScreenshotOnFailure bool `yaml:"screenshotOnFailure" json:"screenshotOnFailure"`

	// ContinueOnNonCriticalErrors records step failures as warnings and
	// proceeds instead of failing the journey.
	ContinueOnNonCriticalErrors bool `yaml:"continueOnNonCriticalErrors" json:"continueOnNonCriticalErrors"`

	// ValidateContext gates execution on starting-context validation.
	ValidateContext bool `yaml:"validateContext" json:"validateContext"`

	// TimeoutMs is the per-action timeout in milliseconds.
	TimeoutMs int `yaml:"timeoutMs" json:"timeoutMs"`

	// StepDelayMs is the default pause between steps; a step's waitAfter
	// takes precedence when larger.
	StepDelayMs int `yaml:"stepDelayMs" json:"stepDelayMs"`

	// ArtifactDir receives screenshot artifacts. Empty disables saving.
	ArtifactDir string `yaml:"artifactDir" json:"artifactDir"`

	// Vars are substituted into ${...} expressions in step values.
	Vars map[string]string `yaml:"vars" json:"vars,omitempty"`
}

// DefaultConfig returns the default playback configuration.
func DefaultConfig() Config {
	return Config{
		Speed:               1.0,
		MaxRetries:          2,
		ScreenshotOnFailure: true,
		ValidateContext:     true,
		TimeoutMs:           10000,
		StepDelayMs:         500,
	}
}

// normalized fills in zero values that would otherwise break arithmetic.
func (c Config) normalized() Config {
	if c.Speed <= 0 {
		c.Speed = 1.0
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.TimeoutMs <= 0 {
		c.TimeoutMs = 10000
	}
	return c
}

// actionTimeout returns the per-action timeout as a duration.
func (c Config) actionTimeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}
