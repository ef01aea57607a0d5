package playback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/replaykit/journey-runner/pkg/core"
	"github.com/replaykit/journey-runner/pkg/events"
	"github.com/replaykit/journey-runner/pkg/healing"
	"github.com/replaykit/journey-runner/pkg/journey"
	"github.com/replaykit/journey-runner/pkg/logger"
	"github.com/replaykit/journey-runner/pkg/storage"
	"github.com/replaykit/journey-runner/pkg/validator"
)

// retryBackoff is the base delay between step attempts; attempt k waits
// k * retryBackoff before retrying.
const retryBackoff = 1000 * time.Millisecond

// healProbeTimeout bounds the visibility check on each healing candidate.
const healProbeTimeout = 1500 * time.Millisecond

// Engine replays journeys. One playback may be active per engine instance;
// Play while active is a contract violation.
type Engine struct {
	config    Config
	store     storage.Store // Optional
	validator *validator.Validator
	sink      events.Sink

	mu      sync.Mutex
	state   core.PlaybackState
	stopped bool
	// notify is closed and replaced on every state transition so waiters
	// wake without polling.
	notify chan struct{}
}

// New creates a playback engine. store and sink may be nil.
func New(store storage.Store, sink events.Sink, cfg Config) *Engine {
	if sink == nil {
		sink = events.Discard
	}
	return &Engine{
		config:    cfg.normalized(),
		store:     store,
		validator: validator.New(store),
		sink:      sink,
		state:     core.StateIdle,
		notify:    make(chan struct{}),
	}
}

// State returns the current playback state.
func (e *Engine) State() core.PlaybackState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Pause suspends playback at the next step boundary. Valid only while
// playing.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != core.StatePlaying {
		return core.ErrNoActivePlayback
	}
	e.transition(core.StatePaused)
	return nil
}

// Resume continues a paused playback. Valid only while paused.
func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != core.StatePaused {
		return core.ErrNotPaused
	}
	e.transition(core.StatePlaying)
	return nil
}

// Stop signals cancellation. The step loop observes the signal at the next
// step boundary; an in-flight browser action is not forcibly killed.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.Active() {
		return core.ErrNoActivePlayback
	}
	e.stopped = true
	e.transition(e.state) // wake waiters without changing state
	return nil
}

// transition must be called with mu held.
func (e *Engine) transition(next core.PlaybackState) {
	e.state = next
	close(e.notify)
	e.notify = make(chan struct{})
}

// Play executes the journey's steps in order and blocks until a terminal
// state. Step-level failures never propagate as errors; they are reported
// in the result. The only synchronous errors are contract violations
// (already playing, journey not replayable).
func (e *Engine) Play(ctx context.Context, j *journey.Journey, page core.Page, overrides *Config) (*core.ExecutionResult, error) {
	cfg := e.config
	if overrides != nil {
		cfg = overrides.normalized()
	}

	if err := j.Replayable(); err != nil {
		return nil, core.ErrContextInvalid.WithMessage("journey is not replayable").WithCause(err)
	}

	e.mu.Lock()
	if e.state.Active() {
		e.mu.Unlock()
		return nil, core.ErrAlreadyPlaying
	}
	e.stopped = false
	e.transition(core.StatePlaying)
	e.mu.Unlock()

	result := &core.ExecutionResult{
		JourneyID:   j.ID,
		ExecutionID: uuid.NewString(),
		StartTime:   time.Now(),
		TotalSteps:  len(j.Steps),
	}

	e.emit(events.PlaybackStarted, result, "", map[string]any{"totalSteps": result.TotalSteps})

	script := NewScriptEngine(cfg.Vars)
	run := &run{engine: e, cfg: cfg, journey: j, page: page, script: script, result: result}

	finalState := run.execute(ctx)

	// Statistics update: always performed once the step loop has resolved,
	// skipped only when validation rejected the journey before any step ran.
	if run.stepsAttempted > 0 {
		e.recordStats(j, result)
	}

	result.Finish(time.Now())
	result.FinalURL = page.URL()

	e.mu.Lock()
	e.transition(finalState)
	e.mu.Unlock()

	kind := events.PlaybackCompleted
	if finalState == core.StateAborted {
		kind = events.PlaybackStopped
	}
	e.emit(kind, result, "", map[string]any{
		"success":        result.Success,
		"completedSteps": result.CompletedSteps,
	})

	return result, nil
}

// recordStats folds the outcome into the journey metadata and persists it.
// A save failure is logged, never escalated past the playback result.
func (e *Engine) recordStats(j *journey.Journey, result *core.ExecutionResult) {
	durationMs := time.Since(result.StartTime).Milliseconds()
	j.Metadata = j.Metadata.RecordRun(result.Success, durationMs, time.Now())

	if e.store == nil {
		return
	}
	if err := e.store.SaveJourney(j); err != nil {
		logger.Error("persist journey %s stats: %v", j.ID, err)
		result.AddWarning("statistics were not persisted: %v", err)
	}
}

func (e *Engine) emit(kind events.Kind, result *core.ExecutionResult, stepID string, data map[string]any) {
	e.sink.Publish(events.Event{
		Kind:        kind,
		JourneyID:   result.JourneyID,
		ExecutionID: result.ExecutionID,
		StepID:      stepID,
		Data:        data,
		Timestamp:   time.Now(),
	})
}

// run carries the per-playback state through the step loop.
type run struct {
	engine         *Engine
	cfg            Config
	journey        *journey.Journey
	page           core.Page
	script         *ScriptEngine
	result         *core.ExecutionResult
	stepsAttempted int
	// healed carries healed-selector details from heal to the step loop's
	// single StepCompleted emission. Reset before every step.
	healed map[string]any
}

// execute gates on context validation, then drives the step loop. Returns
// the terminal playback state.
func (r *run) execute(ctx context.Context) core.PlaybackState {
	if r.cfg.ValidateContext {
		if ok := r.gate(ctx); !ok {
			r.result.Success = false
			return core.StateFailed
		}
	}

	for _, step := range r.journey.Steps {
		// Stop pending: abort before touching the step.
		if r.engine.stopRequested() {
			return r.abort(step)
		}
		// Block while paused; a stop or cancellation during the pause
		// aborts.
		if err := r.waitWhilePaused(ctx); err != nil {
			return r.abort(step)
		}

		r.stepsAttempted++
		r.engine.emit(events.StepStarted, r.result, step.ID(), map[string]any{"action": string(step.Action())})

		r.healed = nil
		err := r.runStepWithRetry(ctx, step)
		if errors.Is(err, core.ErrPlaybackStopped) {
			return r.abort(step)
		}
		if err == nil {
			r.result.CompletedSteps++
			r.engine.emit(events.StepCompleted, r.result, step.ID(), r.healed)
			r.sleepAfter(ctx, step)
			continue
		}

		r.engine.emit(events.StepFailed, r.result, step.ID(), map[string]any{"error": err.Error()})

		if r.cfg.ContinueOnNonCriticalErrors && !r.cfg.PauseOnError {
			r.result.AddError(step.ID(), err, "continued past non-critical failure")
			r.result.AddWarning("step %s failed and was skipped: %v", step.ID(), err)
			continue
		}

		// Fatal failure.
		r.result.AddError(step.ID(), err, fmt.Sprintf("failed after %d attempt(s)", r.cfg.MaxRetries+1))
		if r.cfg.ScreenshotOnFailure {
			r.captureScreenshot(ctx, step.ID())
		}
		r.result.Success = false
		return core.StateFailed
	}

	r.result.Success = true
	return core.StateCompleted
}

// gate runs context validation, attempting one corrective navigation on a
// URL mismatch when an exact URL is known. Returns false when the journey
// must not run.
func (r *run) gate(ctx context.Context) bool {
	sc := r.journey.StartingContext
	vres := r.engine.validator.Validate(ctx, sc, r.page)

	if !vres.IsValid && vres.URLMismatch && sc.ExactURL != "" {
		logger.Info("context invalid for %s, attempting corrective navigation to %s", r.journey.ID, sc.ExactURL)
		if err := r.page.Navigate(ctx, sc.ExactURL); err == nil {
			vres = r.engine.validator.Validate(ctx, sc, r.page)
		}
	}

	if vres.IsValid {
		return true
	}

	issues := append([]string{}, vres.StateIssues...)
	if vres.URLMismatch {
		issues = append(issues, "URL does not match the journey's starting context")
	}
	if len(vres.MissingElements) > 0 {
		issues = append(issues, fmt.Sprintf("missing elements: %s", strings.Join(vres.MissingElements, ", ")))
	}
	r.result.AddError("", core.ErrContextInvalid, strings.Join(issues, "; "))
	for _, s := range vres.Suggestions {
		r.result.AddWarning("suggestion: %s", s)
	}
	for _, id := range vres.AlternativeJourneys {
		r.result.AddWarning("alternative journey: %s", id)
	}
	return false
}

func (r *run) abort(step journey.Step) core.PlaybackState {
	r.result.AddError(step.ID(), core.ErrPlaybackStopped, "stop requested")
	r.result.Success = false
	return core.StateAborted
}

// runStepWithRetry attempts the step with linear backoff, falling back to
// selector self-healing on the final attempt.
func (r *run) runStepWithRetry(ctx context.Context, step journey.Step) error {
	maxAttempts := r.cfg.MaxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = r.executeAction(ctx, step)
		if lastErr == nil {
			return nil
		}

		if attempt == maxAttempts {
			if target, ok := step.(journey.Targeted); ok && target.TargetSelector() != "" {
				if healErr := r.heal(ctx, target); healErr == nil {
					return nil
				}
			}
			break
		}

		// Linear backoff: attempt k waits k seconds.
		logger.Debug("step %s attempt %d/%d failed, retrying: %v", step.ID(), attempt, maxAttempts, lastErr)
		if err := r.sleep(ctx, time.Duration(attempt)*retryBackoff); err != nil {
			return err
		}
		if r.engine.stopRequested() {
			return core.ErrPlaybackStopped
		}
	}

	return lastErr
}

// heal tries ranked alternative selectors, probing each for existence and
// visibility before acting on it. Each candidate is substituted temporarily;
// the original selector is always restored on the step object.
func (r *run) heal(ctx context.Context, target journey.Targeted) error {
	original := target.TargetSelector()
	defer target.Retarget(original)

	candidates := healing.Candidates(original)
	for len(candidates) > 0 {
		match, err := healing.Probe(ctx, r.page, candidates, healProbeTimeout)
		if err != nil {
			break
		}

		target.Retarget(match.Selector)
		if err := r.executeAction(ctx, target); err != nil {
			target.Retarget(original)
			// The match and everything ranked above it are spent; keep
			// trying the lower-ranked candidates.
			for i := range candidates {
				if candidates[i].Selector == match.Selector {
					candidates = candidates[i+1:]
					break
				}
			}
			continue
		}

		logger.Info("selector healed for step %s: %q -> %q (%s)",
			target.ID(), original, match.Selector, match.Strategy)
		r.result.AddWarning("step %s used healed selector %q (strategy %s) instead of %q",
			target.ID(), match.Selector, match.Strategy, original)
		r.healed = map[string]any{
			"healedSelector": match.Selector,
			"strategy":       match.Strategy,
		}
		return nil
	}

	return core.ErrElementNotFound.WithMessage(
		fmt.Sprintf("no healing candidate worked for %q", original))
}

// executeAction dispatches one step to the page. The action timeout bounds
// each page call.
func (r *run) executeAction(ctx context.Context, step journey.Step) error {
	// A plain duration wait is bounded by its own duration, not the action
	// timeout.
	if w, ok := step.(*journey.WaitStep); ok && w.Selector == "" {
		return r.sleep(ctx, time.Duration(float64(w.DurationMs)/r.cfg.Speed)*time.Millisecond)
	}

	actx, cancel := context.WithTimeout(ctx, r.cfg.actionTimeout())
	defer cancel()

	switch s := step.(type) {
	case *journey.NavigateStep:
		url, err := r.script.Expand(s.URL)
		if err != nil {
			return err
		}
		return r.page.Navigate(actx, url)

	case *journey.ClickStep:
		return r.page.Click(actx, s.Selector)

	case *journey.FillStep:
		value, err := r.script.Expand(s.Value)
		if err != nil {
			return err
		}
		return r.page.Fill(actx, s.Selector, value)

	case *journey.SelectStep:
		value, err := r.script.Expand(s.Value)
		if err != nil {
			return err
		}
		return r.page.SelectOption(actx, s.Selector, value)

	case *journey.WaitStep:
		return r.executeWait(actx, s)

	case *journey.AssertStep:
		return r.executeAssert(actx, s)

	case *journey.UploadStep:
		return r.page.SetFiles(actx, s.Selector, s.Files)

	case *journey.DragDropStep:
		return r.page.DragAndDrop(actx, s.Selector, s.Target)
	}

	return fmt.Errorf("unknown step action %q", step.Action())
}

// executeWait handles the selector form; pure duration waits short-circuit
// in executeAction.
func (r *run) executeWait(ctx context.Context, s *journey.WaitStep) error {
	timeout := r.cfg.actionTimeout()
	if s.DurationMs > 0 {
		timeout = time.Duration(s.DurationMs) * time.Millisecond
	}
	visible, err := r.page.IsVisible(ctx, s.Selector, timeout)
	if err != nil {
		return err
	}
	if !visible {
		return core.ErrTimeout.WithMessage(fmt.Sprintf("element %q did not become visible", s.Selector))
	}
	return nil
}

func (r *run) executeAssert(ctx context.Context, s *journey.AssertStep) error {
	switch s.AssertMode() {
	case journey.AssertVisible:
		visible, err := r.page.IsVisible(ctx, s.Selector, r.cfg.actionTimeout())
		if err != nil {
			return err
		}
		if !visible {
			return core.ErrElementNotVisible.WithDetails(map[string]any{"selector": s.Selector})
		}
		return nil

	case journey.AssertText:
		expected, err := r.script.Expand(s.Expected)
		if err != nil {
			return err
		}
		actual, err := r.page.Text(ctx, s.Selector)
		if err != nil {
			return err
		}
		if strings.TrimSpace(actual) != expected {
			return core.ErrAssertionFailed.WithMessage(
				fmt.Sprintf("text of %q is %q, expected %q", s.Selector, strings.TrimSpace(actual), expected))
		}
		return nil

	case journey.AssertValue:
		expected, err := r.script.Expand(s.Expected)
		if err != nil {
			return err
		}
		actual, err := r.page.InputValue(ctx, s.Selector)
		if err != nil {
			return err
		}
		if actual != expected {
			return core.ErrAssertionFailed.WithMessage(
				fmt.Sprintf("value of %q is %q, expected %q", s.Selector, actual, expected))
		}
		return nil

	case journey.AssertScript:
		val, err := r.page.Evaluate(ctx, s.Script)
		if err != nil {
			return err
		}
		if !truthy(val) {
			return core.ErrAssertionFailed.WithMessage(
				fmt.Sprintf("script condition evaluated to %v", val))
		}
		return nil
	}

	return fmt.Errorf("unknown assert mode %q", s.Mode)
}

// sleepAfter pauses between steps, honoring the speed multiplier.
func (r *run) sleepAfter(ctx context.Context, step journey.Step) {
	waitMs := step.WaitAfter()
	if r.cfg.StepDelayMs > waitMs {
		waitMs = r.cfg.StepDelayMs
	}
	if waitMs <= 0 {
		return
	}
	_ = r.sleep(ctx, time.Duration(float64(waitMs)/r.cfg.Speed)*time.Millisecond)
}

// sleep waits for d, waking early on stop or context cancellation.
func (r *run) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	for {
		r.engine.mu.Lock()
		stopped := r.engine.stopped
		notify := r.engine.notify
		r.engine.mu.Unlock()
		if stopped {
			return core.ErrPlaybackStopped
		}

		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-notify:
			// State changed; re-check stop.
		}
	}
}

// waitWhilePaused blocks while the engine is paused, waking on state
// transitions rather than a busy poll.
func (r *run) waitWhilePaused(ctx context.Context) error {
	paused := false
	for {
		r.engine.mu.Lock()
		state := r.engine.state
		stopped := r.engine.stopped
		notify := r.engine.notify
		r.engine.mu.Unlock()

		if stopped {
			return core.ErrPlaybackStopped
		}
		if state != core.StatePaused {
			if paused {
				r.engine.emit(events.PlaybackResumed, r.result, "", nil)
			}
			return nil
		}
		if !paused {
			paused = true
			r.engine.emit(events.PlaybackPaused, r.result, "", nil)
		}

		select {
		case <-notify:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (e *Engine) stopRequested() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stopped
}

// captureScreenshot saves a failure screenshot, best-effort. A screenshot
// failure never masks the original step error.
func (r *run) captureScreenshot(ctx context.Context, stepID string) {
	if r.cfg.ArtifactDir == "" {
		return
	}
	data, err := r.page.Screenshot(ctx)
	if err != nil || len(data) == 0 {
		logger.Warn("screenshot capture failed for step %s: %v", stepID, err)
		return
	}

	artifact := core.NewScreenshotArtifact(r.result.ExecutionID, stepID, data)
	path, err := artifact.Write(r.cfg.ArtifactDir)
	if err != nil {
		logger.Warn("save screenshot for step %s: %v", stepID, err)
		return
	}
	r.result.Screenshots = append(r.result.Screenshots, path)
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != "" && t != "false"
	case float64:
		return t != 0
	case int:
		return t != 0
	default:
		return true
	}
}
