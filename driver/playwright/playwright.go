// Package pwdriver implements driver.Driver with playwright-go.
//
// Playwright actions auto-wait on their own; the adapter bounds them with a
// short action timeout so the wait package stays the only place that decides
// how long to wait for a state.
package pwdriver

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"github.com/padaiyal/harmony-e2e/driver"
	"github.com/padaiyal/harmony-e2e/locator"
)

const (
	FIREFOX = "firefox"
	CHROME  = "chrome"

	// DefaultActionTimeout bounds a single Playwright action.
	DefaultActionTimeout = 2 * time.Second
)

type Options struct {
	Browser       string
	Headless      bool
	ActionTimeout time.Duration
	Logger        *zap.Logger
}

type Driver struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
	action  float64
	log     *zap.Logger
}

var _ driver.Driver = (*Driver)(nil)

func Start(opts Options) (*Driver, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.ActionTimeout <= 0 {
		opts.ActionTimeout = DefaultActionTimeout
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}
	var bt playwright.BrowserType
	switch opts.Browser {
	case CHROME:
		bt = pw.Chromium
	case FIREFOX:
		bt = pw.Firefox
	default:
		_ = pw.Stop()
		return nil, fmt.Errorf("unsupported browser: %s", opts.Browser)
	}
	browser, err := bt.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("could not launch %s: %w", opts.Browser, err)
	}
	page, err := browser.NewPage(playwright.BrowserNewPageOptions{
		Viewport: &playwright.Size{Width: 1280, Height: 720},
	})
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("could not create page: %w", err)
	}
	log.Info("browser session started", zap.String("browser", opts.Browser), zap.String("backend", "playwright"))
	return &Driver{
		pw:      pw,
		browser: browser,
		page:    page,
		action:  float64(opts.ActionTimeout.Milliseconds()),
		log:     log,
	}, nil
}

// Page exposes the underlying page.
func (d *Driver) Page() playwright.Page { return d.page }

func selector(loc locator.Locator) string {
	if loc.Strategy() == locator.ByPath {
		return "xpath=" + loc.Expression()
	}
	return "css=" + loc.Expression()
}

func (d *Driver) Navigate(url string) error {
	_, err := d.page.Goto(url)
	return classify(err)
}

func (d *Driver) CurrentURL() (string, error) {
	return d.page.URL(), nil
}

func (d *Driver) Find(loc locator.Locator) (driver.Element, error) {
	h, err := d.page.QuerySelector(selector(loc))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", loc, classify(err))
	}
	if h == nil {
		return nil, fmt.Errorf("%s: %w", loc, driver.ErrNoSuchElement)
	}
	return &element{h: h, action: d.action}, nil
}

func (d *Driver) FindAll(loc locator.Locator) ([]driver.Element, error) {
	hs, err := d.page.QuerySelectorAll(selector(loc))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", loc, classify(err))
	}
	out := make([]driver.Element, 0, len(hs))
	for _, h := range hs {
		out = append(out, &element{h: h, action: d.action})
	}
	return out, nil
}

// scriptShim runs a WebDriver-style function body with `arguments` bound.
const scriptShim = "(args) => (function() {\n%s\n}).apply(null, args)"

func (d *Driver) ExecuteScript(script string, args ...any) (any, error) {
	raw := make([]interface{}, len(args))
	for i, a := range args {
		if el, ok := a.(*element); ok {
			raw[i] = el.h
			continue
		}
		raw[i] = a
	}
	res, err := d.page.Evaluate(fmt.Sprintf(scriptShim, script), raw)
	return res, classify(err)
}

func (d *Driver) PressKey(key driver.Key) error {
	return classify(d.page.Keyboard().Press(string(key)))
}

// SetImplicitWait maps onto the page default timeout. Zero keeps
// Playwright's default, since zero there disables the timeout.
func (d *Driver) SetImplicitWait(timeout time.Duration) error {
	if timeout > 0 {
		d.page.SetDefaultTimeout(float64(timeout.Milliseconds()))
	}
	return nil
}

func (d *Driver) Quit() error {
	var errs []error
	if err := d.browser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing browser: %w", err))
	}
	if err := d.pw.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stopping playwright: %w", err))
	}
	return errors.Join(errs...)
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not attached to the DOM"),
		strings.Contains(msg, "Element is detached"):
		return fmt.Errorf("%w: %w", driver.ErrStaleElement, err)
	case strings.Contains(msg, "not visible"),
		strings.Contains(msg, "not enabled"),
		strings.Contains(msg, "intercepts pointer events"):
		return fmt.Errorf("%w: %w", driver.ErrNotInteractable, err)
	default:
		return err
	}
}

// classifyAction is classify for element actions, where running out of the
// action timeout means the element never became actionable.
func classifyAction(err error) error {
	err = classify(err)
	if errors.Is(err, playwright.ErrTimeout) &&
		!errors.Is(err, driver.ErrStaleElement) &&
		!errors.Is(err, driver.ErrNotInteractable) {
		return fmt.Errorf("%w: %w", driver.ErrNotInteractable, err)
	}
	return err
}

type element struct {
	h      playwright.ElementHandle
	action float64
}

func (e *element) Click() error {
	return classifyAction(e.h.Click(playwright.ElementHandleClickOptions{Timeout: playwright.Float(e.action)}))
}

func (e *element) SendKeys(text string) error {
	return classifyAction(e.h.Type(text, playwright.ElementHandleTypeOptions{Timeout: playwright.Float(e.action)}))
}

func (e *element) Clear() error {
	return classifyAction(e.h.Fill("", playwright.ElementHandleFillOptions{Timeout: playwright.Float(e.action)}))
}

func (e *element) Text() (string, error) {
	s, err := e.h.InnerText()
	return s, classify(err)
}

// Attribute reads the live value property for "value", like WebDriver does.
func (e *element) Attribute(name string) (string, error) {
	if name == "value" {
		s, err := e.h.InputValue()
		return s, classify(err)
	}
	s, err := e.h.GetAttribute(name)
	return s, classify(err)
}

func (e *element) IsDisplayed() (bool, error) {
	ok, err := e.h.IsVisible()
	return ok, classify(err)
}

func (e *element) IsEnabled() (bool, error) {
	ok, err := e.h.IsEnabled()
	return ok, classify(err)
}
