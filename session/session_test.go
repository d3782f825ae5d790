package session

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/padaiyal/harmony-e2e/config"
	"github.com/padaiyal/harmony-e2e/driver"
	"github.com/padaiyal/harmony-e2e/driver/drivertest"
	"github.com/padaiyal/harmony-e2e/locator"
	"github.com/padaiyal/harmony-e2e/wait"
)

func newSession(t *testing.T) (*Session, *drivertest.Driver) {
	t.Helper()
	drv := drivertest.New()
	s, err := New(drv, Options{
		Implicit: 2 * time.Second,
		Timeout:  200 * time.Millisecond,
		Poll:     10 * time.Millisecond,
		Settle:   time.Millisecond,
		Logger:   zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Quit() })
	return s, drv
}

func TestNewConfiguresImplicitWait(t *testing.T) {
	s, drv := newSession(t)
	assert.Equal(t, 2*time.Second, drv.ImplicitWait())
	assert.Equal(t, 200*time.Millisecond, s.Timeout())
	assert.Equal(t, 10*time.Millisecond, s.Waiter().Interval())
}

func TestNewDefaultsSettle(t *testing.T) {
	s, err := New(drivertest.New(), Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultSettle, s.SettleDelay())
	assert.Equal(t, wait.DefaultTimeout, s.Timeout())
}

func TestQuitTwiceIsNoop(t *testing.T) {
	s, drv := newSession(t)
	require.NoError(t, s.Quit())
	require.NoError(t, s.Quit())
	assert.Equal(t, 1, drv.Quits())
	assert.True(t, s.Closed())
}

func TestQuitErrorReportedOnce(t *testing.T) {
	s, drv := newSession(t)
	drv.QuitErr = errors.New("browser crashed")
	require.ErrorContains(t, s.Quit(), "browser crashed")
	assert.NoError(t, s.Quit(), "second quit is a no-op")
	assert.Equal(t, 1, drv.Quits())
}

func TestOperationsAfterQuit(t *testing.T) {
	s, drv := newSession(t)
	title := locator.CSS("h1")
	el := &drivertest.Element{Name: "title", Content: "Welcome"}
	drv.Mount(title, el)
	h, err := s.Find(title, 0)
	require.NoError(t, err)
	finds := drv.Finds()

	require.NoError(t, s.Quit())
	assert.ErrorIs(t, s.Navigate("http://app/login"), ErrClosed)
	assert.ErrorIs(t, s.PressKey(driver.Tab), ErrClosed)
	_, err = s.CurrentURL()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.ExecuteScript(driver.ActiveElementScript, h)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.Find(title, 0)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.FindVisible(title, 0)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.FindClickable(title, 0)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.FindAll(title)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.Count(title)
	assert.ErrorIs(t, err, ErrClosed)

	assert.Empty(t, drv.Navigations())
	assert.Empty(t, drv.Keys())
	assert.Equal(t, finds, drv.Finds(), "no lookup reaches the driver after quit")
}

func TestNewQuitsDriverWhenSetupFails(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	drv := drivertest.New()
	drv.ImplicitErr = errors.New("no session")
	drv.QuitErr = errors.New("browser already gone")

	_, err := New(drv, Options{Logger: zap.New(core)})
	require.ErrorContains(t, err, "setting implicit wait")
	assert.Equal(t, 1, drv.Quits())
	entries := logs.FilterMessage("quitting browser after failed setup").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "browser already gone", entries[0].ContextMap()["error"])
}

func TestNavigateAndFind(t *testing.T) {
	s, drv := newSession(t)
	title := locator.CSS("h1.title")
	drv.Route("http://app/", func(d *drivertest.Driver) {
		d.Mount(title, &drivertest.Element{Name: "title", Content: "Welcome"})
	})
	require.NoError(t, s.Navigate("http://app/"))

	u, err := s.CurrentURL()
	require.NoError(t, err)
	assert.Equal(t, "http://app/", u)

	h, err := s.FindVisible(title, 0)
	require.NoError(t, err)
	text, err := h.Text()
	require.NoError(t, err)
	assert.Equal(t, "Welcome", text)

	_, err = s.FindClickable(locator.CSS("button.missing"), 30*time.Millisecond)
	assert.ErrorIs(t, err, wait.ErrTimeout)
}

func TestFindAllAndCount(t *testing.T) {
	s, drv := newSession(t)
	rows := locator.CSS("table#groups tbody tr")
	hs, err := s.FindAll(rows)
	require.NoError(t, err)
	assert.Empty(t, hs)

	drv.Mount(rows, &drivertest.Element{Content: "Youth"}, &drivertest.Element{Content: "Choir"})
	hs, err = s.FindAll(rows)
	require.NoError(t, err)
	require.Len(t, hs, 2)
	assert.Equal(t, rows, hs[1].Locator())

	n, err := s.Count(rows)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestExecuteScriptUnwrapsHandles(t *testing.T) {
	s, drv := newSession(t)
	loc := locator.ID("username")
	el := &drivertest.Element{Name: "username"}
	drv.Mount(loc, el)
	drv.Focus(el)

	h, err := s.Find(loc, 0)
	require.NoError(t, err)
	res, err := s.ExecuteScript(driver.ActiveElementScript, h)
	require.NoError(t, err)
	assert.Equal(t, true, res)
}

func TestPressKey(t *testing.T) {
	s, drv := newSession(t)
	require.NoError(t, s.PressKey(driver.Tab))
	require.NoError(t, s.PressKey(driver.Enter))
	assert.Equal(t, []driver.Key{driver.Tab, driver.Enter}, drv.Keys())
}

func TestOptionsFrom(t *testing.T) {
	cfg := &config.Config{Timeouts: config.Timeouts{
		Implicit: time.Second,
		Wait:     5 * time.Second,
		Poll:     50 * time.Millisecond,
		Settle:   200 * time.Millisecond,
	}}
	opts := OptionsFrom(cfg, nil)
	assert.Equal(t, time.Second, opts.Implicit)
	assert.Equal(t, 5*time.Second, opts.Timeout)
	assert.Equal(t, 50*time.Millisecond, opts.Poll)
	assert.Equal(t, 200*time.Millisecond, opts.Settle)
}

func TestLaunchRejectsUnknownBackend(t *testing.T) {
	_, err := Launch(&config.Config{Backend: "carrier-pigeon"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported backend")
}
