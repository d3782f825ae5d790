// Package session owns one browser connection for the lifetime of a suite.
//
// A Session is created in suite setup, handed to every page object built for
// that suite and quit exactly once in teardown. Sessions are never shared
// between parallel workers.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/padaiyal/harmony-e2e/driver"
	"github.com/padaiyal/harmony-e2e/element"
	"github.com/padaiyal/harmony-e2e/locator"
	"github.com/padaiyal/harmony-e2e/wait"
)

// DefaultSettle is the pause used where the page gives no signal to wait on,
// such as a CSS transition finishing.
const DefaultSettle = 300 * time.Millisecond

// ErrClosed is returned by every browser operation after Quit.
var ErrClosed = errors.New("session closed")

type Options struct {
	// Implicit is passed to the transport's implicit wait.
	Implicit time.Duration
	// Timeout is the default budget for explicit waits.
	Timeout time.Duration
	Poll    time.Duration
	Settle  time.Duration
	Logger  *zap.Logger
}

type Session struct {
	drv    driver.Driver
	waiter *wait.Waiter
	log    *zap.Logger
	settle time.Duration

	mu       sync.Mutex
	quitOnce sync.Once
	closed   bool
}

// New configures drv and wraps it. drv is quit if configuration fails.
func New(drv driver.Driver, opts Options) (*Session, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Settle <= 0 {
		opts.Settle = DefaultSettle
	}
	if err := drv.SetImplicitWait(opts.Implicit); err != nil {
		if qerr := drv.Quit(); qerr != nil {
			log.Warn("quitting browser after failed setup", zap.Error(qerr))
		}
		return nil, fmt.Errorf("setting implicit wait to %s: %w", opts.Implicit, err)
	}
	return &Session{
		drv: drv,
		waiter: wait.New(drv,
			wait.WithTimeout(opts.Timeout),
			wait.WithInterval(opts.Poll),
			wait.WithLogger(log.Named("wait"))),
		log:    log,
		settle: opts.Settle,
	}, nil
}

func (s *Session) Driver() driver.Driver { return s.drv }

func (s *Session) Waiter() *wait.Waiter { return s.waiter }

func (s *Session) Logger() *zap.Logger { return s.log }

// Timeout is the default wait budget.
func (s *Session) Timeout() time.Duration { return s.waiter.Timeout() }

func (s *Session) Navigate(url string) error {
	if s.Closed() {
		return ErrClosed
	}
	s.log.Debug("navigate", zap.String("url", url))
	if err := s.drv.Navigate(url); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

func (s *Session) CurrentURL() (string, error) {
	if s.Closed() {
		return "", ErrClosed
	}
	u, err := s.drv.CurrentURL()
	if err != nil {
		return "", fmt.Errorf("reading current url: %w", err)
	}
	return u, nil
}

// ExecuteScript runs script with arguments exposed as `arguments`. Handles
// are passed to the transport as their underlying elements.
func (s *Session) ExecuteScript(script string, args ...any) (any, error) {
	if s.Closed() {
		return nil, ErrClosed
	}
	raw := make([]any, len(args))
	for i, a := range args {
		if h, ok := a.(*element.Handle); ok {
			raw[i] = h.Raw()
			continue
		}
		raw[i] = a
	}
	return s.drv.ExecuteScript(script, raw...)
}

// PressKey sends key to whatever holds focus.
func (s *Session) PressKey(key driver.Key) error {
	if s.Closed() {
		return ErrClosed
	}
	if err := s.drv.PressKey(key); err != nil {
		return fmt.Errorf("pressing %s: %w", key, err)
	}
	return nil
}

// Settle sleeps for the configured settle delay.
func (s *Session) Settle() { s.SettleFor(s.settle) }

func (s *Session) SettleFor(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

func (s *Session) SettleDelay() time.Duration { return s.settle }

// Find waits for loc to be present.
func (s *Session) Find(loc locator.Locator, timeout time.Duration) (*element.Handle, error) {
	if s.Closed() {
		return nil, ErrClosed
	}
	return s.handle(loc)(s.waiter.Present(loc, timeout))
}

// FindVisible waits for loc to be displayed.
func (s *Session) FindVisible(loc locator.Locator, timeout time.Duration) (*element.Handle, error) {
	if s.Closed() {
		return nil, ErrClosed
	}
	return s.handle(loc)(s.waiter.Visible(loc, timeout))
}

// FindClickable waits for loc to be present, displayed and enabled.
func (s *Session) FindClickable(loc locator.Locator, timeout time.Duration) (*element.Handle, error) {
	if s.Closed() {
		return nil, ErrClosed
	}
	return s.handle(loc)(s.waiter.Clickable(loc, timeout))
}

// FindAll returns handles for every current match without waiting.
func (s *Session) FindAll(loc locator.Locator) ([]*element.Handle, error) {
	if s.Closed() {
		return nil, ErrClosed
	}
	els, err := s.drv.FindAll(loc)
	if err != nil && !errors.Is(err, driver.ErrNoSuchElement) {
		return nil, fmt.Errorf("finding %s: %w", loc, err)
	}
	out := make([]*element.Handle, 0, len(els))
	for _, el := range els {
		out = append(out, element.New(s.drv, loc, el))
	}
	return out, nil
}

// Count returns how many nodes match loc right now.
func (s *Session) Count(loc locator.Locator) (int, error) {
	if s.Closed() {
		return 0, ErrClosed
	}
	return s.waiter.Count(loc)
}

func (s *Session) handle(loc locator.Locator) func(driver.Element, error) (*element.Handle, error) {
	return func(el driver.Element, err error) (*element.Handle, error) {
		if err != nil {
			return nil, err
		}
		return element.New(s.drv, loc, el), nil
	}
}

// Quit ends the browser session. Only the first call reaches the driver;
// later calls do nothing and return nil.
func (s *Session) Quit() error {
	var err error
	s.quitOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		if err = s.drv.Quit(); err != nil {
			s.log.Warn("quitting browser session", zap.Error(err))
			err = fmt.Errorf("quitting browser session: %w", err)
			return
		}
		s.log.Debug("browser session closed")
	})
	return err
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
