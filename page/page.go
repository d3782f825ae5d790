// Package page models the application's screens.
//
// Every page embeds Base, which owns the URL, the element that marks the page
// as loaded and the table mapping each validated input to the node that shows
// its error. Pages hold locators only; elements are resolved again for every
// operation because the application re-renders freely.
package page

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/padaiyal/harmony-e2e/driver"
	"github.com/padaiyal/harmony-e2e/element"
	"github.com/padaiyal/harmony-e2e/locator"
	"github.com/padaiyal/harmony-e2e/report"
	"github.com/padaiyal/harmony-e2e/session"
	"github.com/padaiyal/harmony-e2e/wait"
)

// DefaultErrorWindow is how long HasFieldError waits for a message to show.
const DefaultErrorWindow = 2 * time.Second

// ErrUnmappedField is returned when an input has no entry in the page's
// error table.
var ErrUnmappedField = errors.New("field has no error locator")

type Base struct {
	s           *session.Session
	name        string
	url         string
	ready       locator.Locator
	errors      map[locator.Locator]locator.Locator
	timeout     time.Duration
	errorWindow time.Duration
	log         *zap.Logger
}

type Option func(*Base)

// WithTimeout overrides the session's wait budget for this page.
func WithTimeout(d time.Duration) Option {
	return func(b *Base) { b.timeout = d }
}

// WithErrorWindow sets how long presence checks for field errors wait.
func WithErrorWindow(d time.Duration) Option {
	return func(b *Base) { b.errorWindow = d }
}

func newBase(s *session.Session, name, url string, ready locator.Locator, errs map[locator.Locator]locator.Locator, opts []Option) *Base {
	b := &Base{
		s:           s,
		name:        name,
		url:         url,
		ready:       ready,
		errors:      errs,
		timeout:     s.Timeout(),
		errorWindow: DefaultErrorWindow,
		log:         s.Logger().Named("page").With(zap.String("page", name)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Base) Session() *session.Session { return b.s }

func (b *Base) URL() string { return b.url }

func (b *Base) Timeout() time.Duration { return b.timeout }

// Open loads the page and waits for its defining element.
func (b *Base) Open() error {
	if err := b.s.Navigate(b.url); err != nil {
		return err
	}
	if _, err := b.s.FindVisible(b.ready, b.timeout); err != nil {
		return fmt.Errorf("opening %s page: %w", b.name, err)
	}
	return nil
}

// Ready waits for the defining element without navigating, for pages reached
// through the UI.
func (b *Base) Ready() error {
	if _, err := b.s.FindVisible(b.ready, b.timeout); err != nil {
		return fmt.Errorf("waiting for %s page: %w", b.name, err)
	}
	return nil
}

// Click waits for loc to be clickable and clicks it. A node re-rendered
// between the wait and the click is resolved once more.
func (b *Base) Click(loc locator.Locator) error {
	h, err := b.s.FindClickable(loc, b.timeout)
	if err != nil {
		return err
	}
	err = h.Click()
	if errors.Is(err, driver.ErrStaleElement) {
		b.log.Debug("clicking re-rendered node", zap.Stringer("locator", loc))
		if h, err = b.s.FindClickable(loc, b.timeout); err != nil {
			return err
		}
		err = h.Click()
	}
	return err
}

// Fill replaces the content of the input at loc. An empty text clears it.
func (b *Base) Fill(loc locator.Locator, text string) error {
	h, err := b.s.FindVisible(loc, b.timeout)
	if err != nil {
		return err
	}
	return h.Type(text)
}

// Text waits for loc to be visible and returns its text.
func (b *Base) Text(loc locator.Locator) (string, error) {
	h, err := b.s.FindVisible(loc, b.timeout)
	if err != nil {
		return "", err
	}
	return h.Text()
}

// WaitText waits until loc shows exactly want.
func (b *Base) WaitText(loc locator.Locator, want string) error {
	var last string
	err := b.s.Waiter().Until(fmt.Sprintf("text of %s == %q", loc, want), b.timeout, func() (bool, error) {
		el, err := b.s.Driver().Find(loc)
		if err != nil {
			return false, err
		}
		last, err = el.Text()
		return last == want, err
	})
	if err != nil && last != "" {
		b.log.Info("text mismatch", zap.Stringer("locator", loc), zap.String("diff", report.TextDiff(want, last)))
	}
	return err
}

// Enabled waits for loc to exist and reports whether it is enabled.
func (b *Base) Enabled(loc locator.Locator) (bool, error) {
	h, err := b.s.Find(loc, b.timeout)
	if err != nil {
		return false, err
	}
	return h.IsEnabled()
}

// Visible reports whether loc matches a displayed node right now.
func (b *Base) Visible(loc locator.Locator) (bool, error) {
	hs, err := b.s.FindAll(loc)
	if err != nil || len(hs) == 0 {
		return false, err
	}
	return hs[0].IsDisplayed()
}

// Exists reports whether loc matches anything right now.
func (b *Base) Exists(loc locator.Locator) (bool, error) {
	n, err := b.s.Count(loc)
	return n > 0, err
}

// WaitURL waits until the browser is at url.
func (b *Base) WaitURL(url string) error {
	_, err := b.s.Waiter().URLEquals(url, b.timeout)
	return err
}

// WaitURLMatching waits until the URL matches re and returns it.
func (b *Base) WaitURLMatching(re *regexp.Regexp) (string, error) {
	return b.s.Waiter().URLMatches(re, b.timeout)
}

func (b *Base) errorFor(input locator.Locator) (locator.Locator, error) {
	loc, ok := b.errors[input]
	if !ok {
		return locator.Locator{}, fmt.Errorf("%s page: %s: %w", b.name, input, ErrUnmappedField)
	}
	return loc, nil
}

// HasFieldError reports whether the error for input shows up within the
// error window. Not showing up is a false, not an error.
func (b *Base) HasFieldError(input locator.Locator) (bool, error) {
	errLoc, err := b.errorFor(input)
	if err != nil {
		return false, err
	}
	_, err = b.s.Waiter().Visible(errLoc, b.errorWindow)
	if errors.Is(err, wait.ErrTimeout) {
		return false, nil
	}
	return err == nil, err
}

// FieldError waits for the error of input and returns its text.
func (b *Base) FieldError(input locator.Locator) (string, error) {
	errLoc, err := b.errorFor(input)
	if err != nil {
		return "", err
	}
	return b.Text(errLoc)
}

// VerifyBlurValidation moves focus off input and checks its error.
//
// With a message, it waits for the error to be shown and compares its text
// exactly. With an empty message, it waits one settle delay and then
// requires that no error node exists at all, hidden or not.
func (b *Base) VerifyBlurValidation(input locator.Locator, expected string) (bool, error) {
	errLoc, err := b.errorFor(input)
	if err != nil {
		return false, err
	}
	h, err := b.s.FindVisible(input, b.timeout)
	if err != nil {
		return false, err
	}
	if err := h.LoseFocus(); err != nil {
		return false, err
	}

	fields := []zap.Field{zap.Stringer("input", input), zap.Stringer("error", errLoc)}
	if expected == "" {
		b.s.Settle()
		n, err := b.s.Count(errLoc)
		if err != nil {
			return false, err
		}
		if n > 0 {
			b.log.Info("unexpected field error", append(fields, zap.Int("count", n))...)
		}
		return n == 0, nil
	}

	eh, err := b.s.FindVisible(errLoc, b.timeout)
	if err != nil {
		return false, err
	}
	got, err := eh.Text()
	if err != nil {
		return false, err
	}
	if got != expected {
		b.log.Info("field error mismatch", append(fields, zap.String("diff", report.TextDiff(expected, got)))...)
		return false, nil
	}
	return true, nil
}

// texts reads the trimmed text of each handle.
func texts(hs []*element.Handle) ([]string, error) {
	out := make([]string, 0, len(hs))
	for _, h := range hs {
		t, err := h.Text()
		if err != nil {
			return nil, err
		}
		out = append(out, strings.TrimSpace(t))
	}
	return out, nil
}

// xpathLiteral quotes s for use inside an XPath expression.
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	for i, p := range parts {
		parts[i] = "'" + p + "'"
	}
	return "concat(" + strings.Join(parts, `, "'", `) + ")"
}
