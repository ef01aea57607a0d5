// Package mock provides an in-memory page for testing without a real browser.
package mock

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Element describes one simulated element on the mock page.
type Element struct {
	Visible bool
	Text    string
	Value   string
	Count   int // instances matching the selector; 0 means absent
}

// ActionRecord is one page call captured by the mock.
type ActionRecord struct {
	Op       string
	Selector string
	Value    string
}

// Page is a scriptable in-memory core.Page. Configure the element map and
// per-selector failures, then inspect Actions after the run.
type Page struct {
	mu sync.Mutex

	// Configuration
	CurrentURL string
	Body       string
	Elements   map[string]Element
	// FailOn makes every action against the selector return the error.
	FailOn map[string]error
	// FailFirstN makes the first N actions against the selector fail
	// before succeeding; exercises the retry path.
	FailFirstN map[string]int
	// StepDelay adds artificial latency per action.
	StepDelay time.Duration
	// ScreenshotData is returned by Screenshot; nil means capture fails.
	ScreenshotData []byte
	// EvalResults maps a script to its result.
	EvalResults map[string]any

	attempts map[string]int
	actions  []ActionRecord
}

// New creates a mock page with no elements.
func New() *Page {
	return &Page{
		Elements:    map[string]Element{},
		FailOn:      map[string]error{},
		FailFirstN:  map[string]int{},
		EvalResults: map[string]any{},
		attempts:    map[string]int{},
	}
}

// AddElement registers a visible element with one match.
func (p *Page) AddElement(selector string, el Element) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if el.Count == 0 {
		el.Count = 1
	}
	p.Elements[selector] = el
}

// Actions returns every recorded page call in order.
func (p *Page) Actions() []ActionRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ActionRecord, len(p.actions))
	copy(out, p.actions)
	return out
}

func (p *Page) record(op, selector, value string) {
	p.actions = append(p.actions, ActionRecord{Op: op, Selector: selector, Value: value})
}

// touch records the call and applies failure configuration. Must be called
// with mu held.
func (p *Page) touch(op, selector, value string) error {
	p.record(op, selector, value)

	if p.StepDelay > 0 {
		time.Sleep(p.StepDelay)
	}
	if n, ok := p.FailFirstN[selector]; ok && p.attempts[selector] < n {
		p.attempts[selector]++
		return fmt.Errorf("mock transient failure on %q (attempt %d)", selector, p.attempts[selector])
	}
	if err, ok := p.FailOn[selector]; ok {
		return err
	}
	return nil
}

func (p *Page) element(selector string) (Element, bool) {
	el, ok := p.Elements[selector]
	if !ok {
		return Element{}, false
	}
	return el, true
}

// requireElement fails when the selector matches nothing.
func (p *Page) requireElement(op, selector string) (Element, error) {
	el, ok := p.element(selector)
	if !ok || el.Count == 0 {
		return Element{}, fmt.Errorf("mock: no element matches %q", selector)
	}
	return el, nil
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.touch("navigate", "", url); err != nil {
		return err
	}
	p.CurrentURL = url
	return nil
}

func (p *Page) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.CurrentURL
}

func (p *Page) Count(ctx context.Context, selector string) (int, error) {
	// Real drivers fail reads once the context is done.
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("count", selector, "")
	el, ok := p.element(selector)
	if !ok {
		return 0, nil
	}
	return el.Count, nil
}

func (p *Page) IsVisible(ctx context.Context, selector string, timeout time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("isVisible", selector, "")
	el, ok := p.element(selector)
	if !ok || el.Count == 0 {
		return false, nil
	}
	return el.Visible, nil
}

func (p *Page) Click(ctx context.Context, selector string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.touch("click", selector, ""); err != nil {
		return err
	}
	_, err := p.requireElement("click", selector)
	return err
}

func (p *Page) Fill(ctx context.Context, selector, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.touch("fill", selector, value); err != nil {
		return err
	}
	el, err := p.requireElement("fill", selector)
	if err != nil {
		return err
	}
	el.Value = value
	p.Elements[selector] = el
	return nil
}

func (p *Page) SelectOption(ctx context.Context, selector, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.touch("select", selector, value); err != nil {
		return err
	}
	el, err := p.requireElement("select", selector)
	if err != nil {
		return err
	}
	el.Value = value
	p.Elements[selector] = el
	return nil
}

func (p *Page) Check(ctx context.Context, selector string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.touch("check", selector, ""); err != nil {
		return err
	}
	_, err := p.requireElement("check", selector)
	return err
}

func (p *Page) SetFiles(ctx context.Context, selector string, files []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.touch("setFiles", selector, strings.Join(files, ",")); err != nil {
		return err
	}
	_, err := p.requireElement("setFiles", selector)
	return err
}

func (p *Page) Press(ctx context.Context, selector, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.touch("press", selector, key); err != nil {
		return err
	}
	_, err := p.requireElement("press", selector)
	return err
}

func (p *Page) DragAndDrop(ctx context.Context, source, target string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.touch("dragAndDrop", source, target); err != nil {
		return err
	}
	if _, err := p.requireElement("dragAndDrop", source); err != nil {
		return err
	}
	_, err := p.requireElement("dragAndDrop", target)
	return err
}

func (p *Page) Text(ctx context.Context, selector string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("text", selector, "")
	el, err := p.requireElement("text", selector)
	if err != nil {
		return "", err
	}
	return el.Text, nil
}

func (p *Page) InputValue(ctx context.Context, selector string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("inputValue", selector, "")
	el, err := p.requireElement("inputValue", selector)
	if err != nil {
		return "", err
	}
	return el.Value, nil
}

func (p *Page) BodyText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Body, nil
}

func (p *Page) Evaluate(ctx context.Context, script string) (any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("evaluate", "", script)
	if v, ok := p.EvalResults[script]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("mock: no result configured for script %q", script)
}

func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("screenshot", "", "")
	if p.ScreenshotData == nil {
		return nil, fmt.Errorf("mock: screenshots not configured")
	}
	return p.ScreenshotData, nil
}
