// Package wait polls the live document until a condition holds or a deadline
// passes. Every poll issues fresh driver queries; nothing resolved in one poll
// is reused by the next.
package wait

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/padaiyal/harmony-e2e/driver"
	"github.com/padaiyal/harmony-e2e/locator"
)

const (
	DefaultTimeout  = 10 * time.Second
	DefaultInterval = 100 * time.Millisecond
)

// ErrTimeout matches every *TimeoutError.
var ErrTimeout = errors.New("timeout exceeded")

// TimeoutError names the condition that never held and the last transient
// failure seen while polling, if any.
type TimeoutError struct {
	Condition string
	Timeout   time.Duration
	Polls     int
	Cause     error
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("timed out after %s waiting for %s (%d polls)", e.Timeout, e.Condition, e.Polls)
	if e.Cause != nil {
		msg += ": last error: " + e.Cause.Error()
	}
	return msg
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

func (e *TimeoutError) Unwrap() error { return e.Cause }

// Waiter binds the poll loop to one driver.
type Waiter struct {
	drv      driver.Driver
	interval time.Duration
	timeout  time.Duration
	log      *zap.Logger
}

type Option func(*Waiter)

func WithInterval(d time.Duration) Option {
	return func(w *Waiter) {
		if d > 0 {
			w.interval = d
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(w *Waiter) {
		if d > 0 {
			w.timeout = d
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(w *Waiter) {
		if log != nil {
			w.log = log
		}
	}
}

func New(drv driver.Driver, opts ...Option) *Waiter {
	w := &Waiter{
		drv:      drv,
		interval: DefaultInterval,
		timeout:  DefaultTimeout,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Waiter) Interval() time.Duration { return w.interval }

// Timeout is the budget used when a wait is given a zero timeout.
func (w *Waiter) Timeout() time.Duration { return w.timeout }

func (w *Waiter) Driver() driver.Driver { return w.drv }

// For polls cond until it reports done. Transient driver errors (missing or
// stale nodes) keep the loop going; any other error ends it. The budget never
// drops below one interval, and the last sleep is cut to the deadline.
func For[T any](w *Waiter, name string, timeout time.Duration, cond func() (T, bool, error)) (T, error) {
	if timeout <= 0 {
		timeout = w.timeout
	}
	if timeout < w.interval {
		timeout = w.interval
	}
	start := time.Now()
	deadline := start.Add(timeout)

	var (
		zero    T
		lastErr error
		polls   int
	)
	for {
		polls++
		v, done, err := cond()
		switch {
		case err != nil && !driver.Transient(err):
			return zero, fmt.Errorf("waiting for %s: %w", name, err)
		case err != nil:
			lastErr = err
		case done:
			return v, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			terr := &TimeoutError{Condition: name, Timeout: timeout, Polls: polls, Cause: lastErr}
			w.log.Debug("wait timed out",
				zap.String("condition", name),
				zap.Duration("timeout", timeout),
				zap.Duration("elapsed", time.Since(start)),
				zap.Int("polls", polls),
				zap.NamedError("last_error", lastErr))
			return zero, terr
		}
		time.Sleep(min(w.interval, remaining))
	}
}

// Until waits for a custom predicate.
func (w *Waiter) Until(name string, timeout time.Duration, pred func() (bool, error)) error {
	_, err := For(w, name, timeout, func() (struct{}, bool, error) {
		ok, err := pred()
		return struct{}{}, ok, err
	})
	return err
}

// Present waits until loc matches at least one node.
func (w *Waiter) Present(loc locator.Locator, timeout time.Duration) (driver.Element, error) {
	return For(w, "presence of "+loc.String(), timeout, func() (driver.Element, bool, error) {
		el, err := w.drv.Find(loc)
		if err != nil {
			return nil, false, err
		}
		return el, true, nil
	})
}

// Visible waits until the first node matching loc is displayed. It does not
// wait for presence first; a missing node simply keeps the loop polling.
func (w *Waiter) Visible(loc locator.Locator, timeout time.Duration) (driver.Element, error) {
	return For(w, "visibility of "+loc.String(), timeout, func() (driver.Element, bool, error) {
		el, err := w.drv.Find(loc)
		if err != nil {
			return nil, false, err
		}
		shown, err := el.IsDisplayed()
		return el, shown, err
	})
}

// Enabled waits until the first node matching loc is enabled.
func (w *Waiter) Enabled(loc locator.Locator, timeout time.Duration) (driver.Element, error) {
	return For(w, "enablement of "+loc.String(), timeout, func() (driver.Element, bool, error) {
		el, err := w.drv.Find(loc)
		if err != nil {
			return nil, false, err
		}
		on, err := el.IsEnabled()
		return el, on, err
	})
}

// Clickable waits for presence, then visibility, then enablement. Each stage
// gets its own timeout so the error names the state that never arrived.
func (w *Waiter) Clickable(loc locator.Locator, timeout time.Duration) (driver.Element, error) {
	if _, err := w.Present(loc, timeout); err != nil {
		return nil, err
	}
	if _, err := w.Visible(loc, timeout); err != nil {
		return nil, err
	}
	return w.Enabled(loc, timeout)
}

// Absent waits until loc matches nothing.
func (w *Waiter) Absent(loc locator.Locator, timeout time.Duration) error {
	return w.Until("absence of "+loc.String(), timeout, func() (bool, error) {
		n, err := w.Count(loc)
		return n == 0, err
	})
}

// Count returns how many nodes match loc right now. It never waits.
func (w *Waiter) Count(loc locator.Locator) (int, error) {
	els, err := w.drv.FindAll(loc)
	if errors.Is(err, driver.ErrNoSuchElement) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return len(els), nil
}

// URLEquals waits until the current URL is exactly want.
func (w *Waiter) URLEquals(want string, timeout time.Duration) (string, error) {
	return w.url(fmt.Sprintf("url == %q", want), timeout, func(u string) bool { return u == want })
}

// URLMatches waits until the current URL matches re.
func (w *Waiter) URLMatches(re *regexp.Regexp, timeout time.Duration) (string, error) {
	return w.url(fmt.Sprintf("url =~ %s", re), timeout, re.MatchString)
}

// URLChanges waits until the current URL differs from from.
func (w *Waiter) URLChanges(from string, timeout time.Duration) (string, error) {
	return w.url(fmt.Sprintf("url != %q", from), timeout, func(u string) bool { return u != from })
}

func (w *Waiter) url(name string, timeout time.Duration, ok func(string) bool) (string, error) {
	return For(w, name, timeout, func() (string, bool, error) {
		u, err := w.drv.CurrentURL()
		if err != nil {
			return "", false, err
		}
		return u, ok(u), nil
	})
}
