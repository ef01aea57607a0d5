// Package journey defines the journey data model and YAML journey file parsing.
package journey

import (
	"fmt"
	"strings"
)

// Action identifies the kind of browser interaction a step performs.
type Action string

// Action constants.
const (
	ActionNavigate Action = "navigate"
	ActionClick    Action = "click"
	ActionFill     Action = "fill"
	ActionSelect   Action = "select"
	ActionWait     Action = "wait"
	ActionAssert   Action = "assert"
	ActionUpload   Action = "upload"
	ActionDragDrop Action = "drag_drop"
)

// Step is the interface for all journey steps.
type Step interface {
	Action() Action
	ID() string
	WaitAfter() int
	Describe() string
	Validate() error
}

// Targeted is implemented by steps that address a page element by selector.
// Retarget swaps the selector in place; the playback engine uses it to try
// healed selectors and always restores the original afterward.
type Targeted interface {
	Step
	TargetSelector() string
	Retarget(selector string)
}

// BaseStep contains common fields for all steps.
type BaseStep struct {
	StepID      string `yaml:"id" json:"id"`
	WaitAfterMs int    `yaml:"waitAfter" json:"waitAfter,omitempty"`
}

// ID returns the step identifier.
func (b *BaseStep) ID() string { return b.StepID }

// WaitAfter returns the milliseconds to pause after the step.
func (b *BaseStep) WaitAfter() int { return b.WaitAfterMs }

// ElementTarget holds the selector for element-addressed steps.
type ElementTarget struct {
	Selector string `yaml:"selector" json:"selector"`
}

// TargetSelector returns the element selector.
func (t *ElementTarget) TargetSelector() string { return t.Selector }

// Retarget replaces the selector in place.
func (t *ElementTarget) Retarget(selector string) { t.Selector = selector }

// NavigateStep loads a URL.
type NavigateStep struct {
	BaseStep `yaml:",inline"`
	URL      string `yaml:"url" json:"url"`
}

// Action returns ActionNavigate.
func (s *NavigateStep) Action() Action { return ActionNavigate }

// Describe returns a human-readable description.
func (s *NavigateStep) Describe() string { return "navigate: " + s.URL }

// Validate checks required fields.
func (s *NavigateStep) Validate() error {
	if s.URL == "" {
		return fmt.Errorf("navigate step %q: url is required", s.StepID)
	}
	return nil
}

// ClickStep clicks an element.
type ClickStep struct {
	BaseStep      `yaml:",inline"`
	ElementTarget `yaml:",inline"`
}

// Action returns ActionClick.
func (s *ClickStep) Action() Action { return ActionClick }

// Describe returns a human-readable description.
func (s *ClickStep) Describe() string { return "click: " + s.Selector }

// Validate checks required fields.
func (s *ClickStep) Validate() error {
	if s.Selector == "" {
		return fmt.Errorf("click step %q: selector is required", s.StepID)
	}
	return nil
}

// FillStep types a value into an input element.
type FillStep struct {
	BaseStep      `yaml:",inline"`
	ElementTarget `yaml:",inline"`
	Value         string `yaml:"value" json:"value"`
}

// Action returns ActionFill.
func (s *FillStep) Action() Action { return ActionFill }

// Describe returns a human-readable description.
func (s *FillStep) Describe() string {
	return "fill: " + s.Selector + " = \"" + s.Value + "\""
}

// Validate checks required fields.
func (s *FillStep) Validate() error {
	if s.Selector == "" {
		return fmt.Errorf("fill step %q: selector is required", s.StepID)
	}
	return nil
}

// SelectStep chooses an option from a select element.
type SelectStep struct {
	BaseStep      `yaml:",inline"`
	ElementTarget `yaml:",inline"`
	Value         string `yaml:"value" json:"value"`
}

// Action returns ActionSelect.
func (s *SelectStep) Action() Action { return ActionSelect }

// Describe returns a human-readable description.
func (s *SelectStep) Describe() string {
	return "select: " + s.Selector + " = \"" + s.Value + "\""
}

// Validate checks required fields.
func (s *SelectStep) Validate() error {
	if s.Selector == "" {
		return fmt.Errorf("select step %q: selector is required", s.StepID)
	}
	return nil
}

// WaitStep pauses for a duration or until an element becomes visible.
type WaitStep struct {
	BaseStep      `yaml:",inline"`
	ElementTarget `yaml:",inline"`
	DurationMs    int `yaml:"duration" json:"duration,omitempty"`
}

// Action returns ActionWait.
func (s *WaitStep) Action() Action { return ActionWait }

// Describe returns a human-readable description.
func (s *WaitStep) Describe() string {
	if s.Selector != "" {
		return "wait: " + s.Selector
	}
	return fmt.Sprintf("wait: %dms", s.DurationMs)
}

// Validate checks required fields.
func (s *WaitStep) Validate() error {
	if s.DurationMs <= 0 && s.Selector == "" {
		return fmt.Errorf("wait step %q: duration or selector is required", s.StepID)
	}
	return nil
}

// Assert modes.
const (
	AssertVisible = "visible" // element exists and is visible (default)
	AssertText    = "text"    // element text equals expected
	AssertValue   = "value"   // input value equals expected
	AssertScript  = "script"  // scripted condition evaluates truthy
)

// AssertStep verifies a condition on the page.
type AssertStep struct {
	BaseStep      `yaml:",inline"`
	ElementTarget `yaml:",inline"`
	Mode          string `yaml:"mode" json:"mode,omitempty"`
	Expected      string `yaml:"expected" json:"expected,omitempty"`
	Script        string `yaml:"script" json:"script,omitempty"`
}

// AssertMode returns the mode, defaulting to visible.
func (s *AssertStep) AssertMode() string {
	if s.Mode == "" {
		if s.Script != "" {
			return AssertScript
		}
		return AssertVisible
	}
	return s.Mode
}

// Action returns ActionAssert.
func (s *AssertStep) Action() Action { return ActionAssert }

// Describe returns a human-readable description.
func (s *AssertStep) Describe() string {
	switch s.AssertMode() {
	case AssertScript:
		return "assert: script"
	case AssertText, AssertValue:
		return "assert: " + s.Selector + " " + s.AssertMode() + "=\"" + s.Expected + "\""
	default:
		return "assert: " + s.Selector + " visible"
	}
}

// Validate checks required fields.
func (s *AssertStep) Validate() error {
	if s.AssertMode() == AssertScript {
		if s.Script == "" {
			return fmt.Errorf("assert step %q: script is required", s.StepID)
		}
		return nil
	}
	if s.Selector == "" {
		return fmt.Errorf("assert step %q: selector is required", s.StepID)
	}
	return nil
}

// UploadStep attaches files to a file input.
type UploadStep struct {
	BaseStep      `yaml:",inline"`
	ElementTarget `yaml:",inline"`
	Files         []string `yaml:"files" json:"files"`
}

// Action returns ActionUpload.
func (s *UploadStep) Action() Action { return ActionUpload }

// Describe returns a human-readable description.
func (s *UploadStep) Describe() string {
	return "upload: " + s.Selector + " <- " + strings.Join(s.Files, ", ")
}

// Validate checks required fields.
func (s *UploadStep) Validate() error {
	if s.Selector == "" {
		return fmt.Errorf("upload step %q: selector is required", s.StepID)
	}
	if len(s.Files) == 0 {
		return fmt.Errorf("upload step %q: files is required", s.StepID)
	}
	return nil
}

// DragDropStep drags an element onto a target element.
type DragDropStep struct {
	BaseStep      `yaml:",inline"`
	ElementTarget `yaml:",inline"`
	Target        string `yaml:"target" json:"target"`
}

// Action returns ActionDragDrop.
func (s *DragDropStep) Action() Action { return ActionDragDrop }

// Describe returns a human-readable description.
func (s *DragDropStep) Describe() string {
	return "drag_drop: " + s.Selector + " -> " + s.Target
}

// Validate checks required fields.
func (s *DragDropStep) Validate() error {
	if s.Selector == "" {
		return fmt.Errorf("drag_drop step %q: selector is required", s.StepID)
	}
	if s.Target == "" {
		return fmt.Errorf("drag_drop step %q: target is required", s.StepID)
	}
	return nil
}
