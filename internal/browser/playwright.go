package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

// LaunchOptions configures the Chromium instance started by Launch
type LaunchOptions struct {
	Headless       bool
	Channel        string
	SlowMo         time.Duration
	ViewportWidth  int
	ViewportHeight int
	// Install downloads the driver and browser before starting.
	Install bool
}

// PlaywrightSession is a Session backed by a Playwright Chromium page
type PlaywrightSession struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
	log     logrus.FieldLogger
	closed  bool
}

// Launch starts Playwright, launches Chromium and opens a blank page
func Launch(ctx context.Context, opts LaunchOptions, log logrus.FieldLogger) (*PlaywrightSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if opts.Install {
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			return nil, fmt.Errorf("failed to install playwright: %w", err)
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	}
	if opts.Channel != "" {
		launchOpts.Channel = playwright.String(opts.Channel)
	}
	if opts.SlowMo > 0 {
		launchOpts.SlowMo = playwright.Float(float64(opts.SlowMo.Milliseconds()))
	}

	b, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch chromium: %w", err)
	}

	pageOpts := playwright.BrowserNewPageOptions{}
	if opts.ViewportWidth > 0 && opts.ViewportHeight > 0 {
		pageOpts.Viewport = &playwright.Size{Width: opts.ViewportWidth, Height: opts.ViewportHeight}
	}
	page, err := b.NewPage(pageOpts)
	if err != nil {
		b.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	log.WithFields(logrus.Fields{
		"headless": opts.Headless,
		"channel":  opts.Channel,
	}).Info("Browser started")

	return &PlaywrightSession{pw: pw, browser: b, page: page, log: log}, nil
}

// Navigate loads url in the page
func (s *PlaywrightSession) Navigate(ctx context.Context, url string) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if _, err := s.page.Goto(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, classify(err))
	}
	return nil
}

// Find resolves sel against the current document
func (s *PlaywrightSession) Find(ctx context.Context, sel Selector) (Element, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	h, err := s.page.QuerySelector(sel.playwright())
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", sel, classify(err))
	}
	if h == nil {
		return nil, notFound(sel)
	}
	return &playwrightElement{handle: h, sel: sel}, nil
}

// CurrentURL returns the page location
func (s *PlaywrightSession) CurrentURL(ctx context.Context) (string, error) {
	if err := s.check(ctx); err != nil {
		return "", err
	}
	return s.page.URL(), nil
}

// Close shuts the page, the browser and the Playwright driver down
func (s *PlaywrightSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	if err := s.page.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close page: %w", err))
	}
	if err := s.browser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
	}
	if err := s.pw.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
	}
	s.log.Info("Browser stopped")
	return errors.Join(errs...)
}

func (s *PlaywrightSession) check(ctx context.Context) error {
	if s.closed {
		return ErrSessionClosed
	}
	return ctx.Err()
}

type playwrightElement struct {
	handle playwright.ElementHandle
	sel    Selector
}

func (e *playwrightElement) Selector() Selector { return e.sel }

func (e *playwrightElement) Click(ctx context.Context) error {
	return e.do(ctx, "click", func() error { return e.handle.Click() })
}

func (e *playwrightElement) DoubleClick(ctx context.Context) error {
	return e.do(ctx, "double-click", func() error {
		if err := e.handle.Hover(); err != nil {
			return err
		}
		return e.handle.Dblclick()
	})
}

func (e *playwrightElement) Clear(ctx context.Context) error {
	return e.do(ctx, "clear", func() error { return e.handle.Fill("") })
}

func (e *playwrightElement) Type(ctx context.Context, text string) error {
	return e.do(ctx, "type into", func() error { return e.handle.Type(text) })
}

func (e *playwrightElement) Select(ctx context.Context) error {
	return e.do(ctx, "select", func() error {
		_, err := e.handle.Evaluate(selectOptionScript)
		return err
	})
}

func (e *playwrightElement) Evaluate(ctx context.Context, script string) (any, error) {
	var result any
	err := e.do(ctx, "evaluate script on", func() error {
		var err error
		result, err = e.handle.Evaluate(script)
		return err
	})
	return result, err
}

func (e *playwrightElement) IsVisible(ctx context.Context) (bool, error) {
	var visible bool
	err := e.do(ctx, "check visibility of", func() error {
		// options have no box of their own, so they take their select's visibility
		v, err := e.handle.Evaluate(visibilityScript)
		if err != nil {
			return err
		}
		visible, _ = v.(bool)
		return nil
	})
	return visible, err
}

const visibilityScript = `el => {
	const target = el.tagName === 'OPTION' ? (el.closest('select') || el) : el;
	const style = getComputedStyle(target);
	if (style.visibility !== 'visible') return false;
	const rect = target.getBoundingClientRect();
	return rect.width > 0 && rect.height > 0;
}`

func (e *playwrightElement) IsEnabled(ctx context.Context) (bool, error) {
	var enabled bool
	err := e.do(ctx, "check state of", func() error {
		var err error
		enabled, err = e.handle.IsEnabled()
		return err
	})
	return enabled, err
}

func (e *playwrightElement) do(ctx context.Context, action string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fn(); err != nil {
		return fmt.Errorf("failed to %s %s: %w", action, e.sel, classify(err))
	}
	return nil
}

// classify maps Playwright failures onto the package's sentinel errors
func classify(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case errors.Is(err, playwright.ErrTargetClosed),
		strings.Contains(msg, "has been closed"):
		return fmt.Errorf("%w: %v", ErrSessionClosed, err)
	case strings.Contains(msg, "not attached to the DOM"),
		strings.Contains(msg, "Execution context was destroyed"),
		strings.Contains(msg, "disposed"):
		return fmt.Errorf("%w: %v", ErrStaleElement, err)
	case strings.Contains(msg, "not visible"),
		strings.Contains(msg, "not enabled"),
		strings.Contains(msg, "outside of the viewport"):
		return fmt.Errorf("%w: %v", ErrNotInteractable, err)
	default:
		return err
	}
}
