// Package core provides the execution model types for journey-runner.
package core

import (
	"context"
	"time"
)

// Page defines the interface for driving a single browser page.
// Implementations: Playwright, mock.
// The playback engine handles journey logic; Page just executes primitives.
// Every operation may fail with a not-found or timeout error, which callers
// treat uniformly as a step failure.
type Page interface {
	// Navigate loads the given URL.
	Navigate(ctx context.Context, url string) error

	// URL returns the current page URL.
	URL() string

	// Count returns the number of elements matching the selector.
	Count(ctx context.Context, selector string) (int, error)

	// IsVisible reports whether a matching element is visible, waiting up
	// to timeout for one to appear.
	IsVisible(ctx context.Context, selector string, timeout time.Duration) (bool, error)

	// Click clicks the first element matching the selector.
	Click(ctx context.Context, selector string) error

	// Fill types the value into the element matching the selector.
	Fill(ctx context.Context, selector, value string) error

	// SelectOption chooses an option value in a select element.
	SelectOption(ctx context.Context, selector, value string) error

	// Check ticks a checkbox or radio element.
	Check(ctx context.Context, selector string) error

	// SetFiles attaches files to a file input.
	SetFiles(ctx context.Context, selector string, files []string) error

	// Press sends a key press to the element matching the selector.
	Press(ctx context.Context, selector, key string) error

	// DragAndDrop drags the source element onto the target element.
	DragAndDrop(ctx context.Context, source, target string) error

	// Text returns the text content of the first matching element.
	Text(ctx context.Context, selector string) (string, error)

	// InputValue returns the current value of an input element.
	InputValue(ctx context.Context, selector string) (string, error)

	// BodyText returns the visible body text of the page.
	BodyText(ctx context.Context) (string, error)

	// Evaluate runs a JavaScript expression in the page and returns the
	// result. Escape hatch for page-state probes.
	Evaluate(ctx context.Context, script string) (any, error)

	// Screenshot captures the current viewport as PNG.
	Screenshot(ctx context.Context) ([]byte, error)
}
