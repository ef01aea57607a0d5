// Package playwright backs core.Page with a real Chromium browser via
// playwright-go.
package playwright

import (
	"context"
	"fmt"
	"time"

	pw "github.com/playwright-community/playwright-go"

	"github.com/replaykit/journey-runner/pkg/core"
)

// Options configures the browser launch.
type Options struct {
	Headless bool
	// ViewportWidth/ViewportHeight default to 1920x1080.
	ViewportWidth  int
	ViewportHeight int
	// DefaultTimeoutMs bounds page calls whose context carries no deadline.
	DefaultTimeoutMs int
}

// Driver owns the playwright runtime and one browser instance. Pages are
// created per playback and must be closed by the caller.
type Driver struct {
	runtime *pw.Playwright
	browser pw.Browser
	opts    Options
}

// Launch starts playwright and a Chromium browser.
func Launch(opts Options) (*Driver, error) {
	if opts.ViewportWidth == 0 {
		opts.ViewportWidth = 1920
	}
	if opts.ViewportHeight == 0 {
		opts.ViewportHeight = 1080
	}
	if opts.DefaultTimeoutMs == 0 {
		opts.DefaultTimeoutMs = 10000
	}

	runtime, err := pw.Run()
	if err != nil {
		return nil, fmt.Errorf("starting playwright: %w", err)
	}

	browser, err := runtime.Chromium.Launch(pw.BrowserTypeLaunchOptions{
		Headless: pw.Bool(opts.Headless),
	})
	if err != nil {
		runtime.Stop()
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	return &Driver{runtime: runtime, browser: browser, opts: opts}, nil
}

// NewPage opens a fresh browser context and page.
func (d *Driver) NewPage() (*Page, error) {
	bctx, err := d.browser.NewContext(pw.BrowserNewContextOptions{
		Viewport: &pw.Size{
			Width:  d.opts.ViewportWidth,
			Height: d.opts.ViewportHeight,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating browser context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		return nil, fmt.Errorf("creating page: %w", err)
	}

	return &Page{bctx: bctx, page: page, defaultTimeout: time.Duration(d.opts.DefaultTimeoutMs) * time.Millisecond}, nil
}

// Close shuts down the browser and the playwright runtime.
func (d *Driver) Close() error {
	if err := d.browser.Close(); err != nil {
		d.runtime.Stop()
		return err
	}
	return d.runtime.Stop()
}

// Page adapts one playwright page to core.Page. Playwright's API takes
// millisecond timeouts instead of contexts, so each call converts the
// context deadline.
type Page struct {
	bctx           pw.BrowserContext
	page           pw.Page
	defaultTimeout time.Duration
}

var _ core.Page = (*Page)(nil)

// Close releases the page and its browser context.
func (p *Page) Close() error {
	return p.bctx.Close()
}

// timeoutMs converts the context deadline to a playwright timeout.
func (p *Page) timeoutMs(ctx context.Context) float64 {
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 {
			return float64(remaining.Milliseconds())
		}
		return 1
	}
	return float64(p.defaultTimeout.Milliseconds())
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	_, err := p.page.Goto(url, pw.PageGotoOptions{
		WaitUntil: pw.WaitUntilStateLoad,
		Timeout:   pw.Float(p.timeoutMs(ctx)),
	})
	if err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

func (p *Page) URL() string {
	return p.page.URL()
}

func (p *Page) Count(ctx context.Context, selector string) (int, error) {
	return p.page.Locator(selector).Count()
}

func (p *Page) IsVisible(ctx context.Context, selector string, timeout time.Duration) (bool, error) {
	locator := p.page.Locator(selector).First()
	err := locator.WaitFor(pw.LocatorWaitForOptions{
		State:   pw.WaitForSelectorStateVisible,
		Timeout: pw.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		// Not-visible is an answer, not a failure.
		return false, nil
	}
	return true, nil
}

func (p *Page) Click(ctx context.Context, selector string) error {
	return p.page.Locator(selector).First().Click(pw.LocatorClickOptions{
		Timeout: pw.Float(p.timeoutMs(ctx)),
	})
}

func (p *Page) Fill(ctx context.Context, selector, value string) error {
	return p.page.Locator(selector).First().Fill(value, pw.LocatorFillOptions{
		Timeout: pw.Float(p.timeoutMs(ctx)),
	})
}

func (p *Page) SelectOption(ctx context.Context, selector, value string) error {
	_, err := p.page.Locator(selector).First().SelectOption(pw.SelectOptionValues{
		ValuesOrLabels: &[]string{value},
	}, pw.LocatorSelectOptionOptions{
		Timeout: pw.Float(p.timeoutMs(ctx)),
	})
	return err
}

func (p *Page) Check(ctx context.Context, selector string) error {
	return p.page.Locator(selector).First().Check(pw.LocatorCheckOptions{
		Timeout: pw.Float(p.timeoutMs(ctx)),
	})
}

func (p *Page) SetFiles(ctx context.Context, selector string, files []string) error {
	return p.page.Locator(selector).First().SetInputFiles(files, pw.LocatorSetInputFilesOptions{
		Timeout: pw.Float(p.timeoutMs(ctx)),
	})
}

func (p *Page) Press(ctx context.Context, selector, key string) error {
	return p.page.Locator(selector).First().Press(key, pw.LocatorPressOptions{
		Timeout: pw.Float(p.timeoutMs(ctx)),
	})
}

func (p *Page) DragAndDrop(ctx context.Context, source, target string) error {
	return p.page.DragAndDrop(source, target, pw.PageDragAndDropOptions{
		Timeout: pw.Float(p.timeoutMs(ctx)),
	})
}

func (p *Page) Text(ctx context.Context, selector string) (string, error) {
	return p.page.Locator(selector).First().TextContent(pw.LocatorTextContentOptions{
		Timeout: pw.Float(p.timeoutMs(ctx)),
	})
}

func (p *Page) InputValue(ctx context.Context, selector string) (string, error) {
	return p.page.Locator(selector).First().InputValue(pw.LocatorInputValueOptions{
		Timeout: pw.Float(p.timeoutMs(ctx)),
	})
}

func (p *Page) BodyText(ctx context.Context) (string, error) {
	return p.page.Locator("body").InnerText(pw.LocatorInnerTextOptions{
		Timeout: pw.Float(p.timeoutMs(ctx)),
	})
}

func (p *Page) Evaluate(ctx context.Context, script string) (any, error) {
	return p.page.Evaluate(script)
}

func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	return p.page.Screenshot(pw.PageScreenshotOptions{
		FullPage: pw.Bool(true),
		Type:     pw.ScreenshotTypePng,
	})
}
