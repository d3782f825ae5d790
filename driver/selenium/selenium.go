// Package seleniumdriver implements driver.Driver over the W3C WebDriver
// protocol with github.com/tebeka/selenium.
package seleniumdriver

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"github.com/tebeka/selenium/firefox"
	"go.uber.org/zap"

	"github.com/padaiyal/harmony-e2e/driver"
	"github.com/padaiyal/harmony-e2e/locator"
)

const FIREFOX string = "firefox"
const CHROME string = "chrome"

type Options struct {
	Browser string
	// DriverPath is the chromedriver/geckodriver binary. Ignored when
	// RemoteURL is set.
	DriverPath string
	// Port is where the local driver service listens. Zero picks a free
	// port, so parallel sessions never share a service.
	Port          int
	RemoteURL     string
	BrowserBinary string
	Headless      bool
	Logger        *zap.Logger
}

type Driver struct {
	wd      selenium.WebDriver
	service *selenium.Service
	addr    string
	log     *zap.Logger
}

var _ driver.Driver = (*Driver)(nil)

// Start launches a local driver service (unless RemoteURL is set) and opens a
// browser session against it.
func Start(opts Options) (*Driver, error) {
	var service *selenium.Service
	var err error

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	caps := selenium.Capabilities{"browserName": opts.Browser}
	args := []string{}
	if opts.Headless {
		args = append(args, "--headless")
	}
	local := opts.RemoteURL == ""
	port := opts.Port
	if local && port == 0 {
		if port, err = freePort(); err != nil {
			return nil, fmt.Errorf("picking a port for the %s driver service: %w", opts.Browser, err)
		}
	}

	urlPrefix := opts.RemoteURL
	switch opts.Browser {
	case FIREFOX:
		if local {
			service, err = selenium.NewGeckoDriverService(opts.DriverPath, port)
			urlPrefix = fmt.Sprintf("http://localhost:%d", port)
		}
		caps.AddFirefox(firefox.Capabilities{Binary: opts.BrowserBinary, Args: args})
	case CHROME:
		if local {
			// chromedriver is started with --url-base=wd/hub
			service, err = selenium.NewChromeDriverService(opts.DriverPath, port)
			urlPrefix = fmt.Sprintf("http://localhost:%d/wd/hub", port)
		}
		args = append(args, "--no-sandbox")
		caps.AddChrome(chrome.Capabilities{Path: opts.BrowserBinary, Args: args})
	default:
		return nil, fmt.Errorf("unsupported driver type: %s", opts.Browser)
	}
	if err != nil {
		return nil, fmt.Errorf("starting %s driver service %s: %w", opts.Browser, opts.DriverPath, err)
	}
	wd, err := selenium.NewRemote(caps, urlPrefix)
	if err != nil {
		stopService(service, log)
		return nil, fmt.Errorf("opening %s session at %s: %w", opts.Browser, urlPrefix, err)
	}

	// maximize the current window to avoid responsive rendering
	if err := wd.MaximizeWindow(""); err != nil {
		log.Warn("could not maximize window", zap.Error(err))
	}
	log.Info("browser session started", zap.String("browser", opts.Browser), zap.String("url", urlPrefix))
	return &Driver{wd: wd, service: service, addr: urlPrefix, log: log}, nil
}

// freePort asks the kernel for an unused local port.
func freePort() (int, error) {
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// Wrap adapts an existing WebDriver. Quit will not stop any service.
func Wrap(wd selenium.WebDriver, log *zap.Logger) *Driver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Driver{wd: wd, log: log}
}

// WebDriver exposes the underlying session for calls the capability does not
// cover, such as window handles.
func (d *Driver) WebDriver() selenium.WebDriver { return d.wd }

func by(loc locator.Locator) (string, string) {
	if loc.Strategy() == locator.ByPath {
		return selenium.ByXPATH, loc.Expression()
	}
	return selenium.ByCSSSelector, loc.Expression()
}

func (d *Driver) Navigate(url string) error {
	return classify(d.wd.Get(url))
}

func (d *Driver) CurrentURL() (string, error) {
	u, err := d.wd.CurrentURL()
	return u, classify(err)
}

func (d *Driver) Find(loc locator.Locator) (driver.Element, error) {
	we, err := d.wd.FindElement(by(loc))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", loc, classify(err))
	}
	return &element{we: we}, nil
}

func (d *Driver) FindAll(loc locator.Locator) ([]driver.Element, error) {
	wes, err := d.wd.FindElements(by(loc))
	if err != nil {
		err = classify(err)
		if errors.Is(err, driver.ErrNoSuchElement) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", loc, err)
	}
	out := make([]driver.Element, 0, len(wes))
	for _, we := range wes {
		out = append(out, &element{we: we})
	}
	return out, nil
}

func (d *Driver) ExecuteScript(script string, args ...any) (any, error) {
	raw := make([]interface{}, len(args))
	for i, a := range args {
		if el, ok := a.(*element); ok {
			raw[i] = el.we
			continue
		}
		raw[i] = a
	}
	res, err := d.wd.ExecuteScript(script, raw)
	return res, classify(err)
}

func (d *Driver) PressKey(key driver.Key) error {
	active, err := d.wd.ActiveElement()
	if err != nil {
		return fmt.Errorf("finding active element: %w", classify(err))
	}
	return classify(active.SendKeys(keyCode(key)))
}

func keyCode(key driver.Key) string {
	switch key {
	case driver.Tab:
		return selenium.TabKey
	case driver.Enter:
		return selenium.EnterKey
	case driver.Escape:
		return selenium.EscapeKey
	default:
		return string(key)
	}
}

func (d *Driver) SetImplicitWait(timeout time.Duration) error {
	return classify(d.wd.SetImplicitWaitTimeout(timeout))
}

// Quit tolerates a session that is already gone and always stops the
// service.
func (d *Driver) Quit() error {
	err := d.wd.Quit()
	if err != nil && strings.Contains(err.Error(), "invalid session id") {
		d.log.Warn("session already closed", zap.Error(err))
		err = nil
	}
	stopService(d.service, d.log)
	return err
}

func stopService(service *selenium.Service, log *zap.Logger) {
	if service == nil {
		return
	}
	if err := service.Stop(); err != nil {
		log.Warn("error stopping service", zap.Error(err))
	}
}

// classify maps WebDriver error codes onto the driver sentinels.
func classify(err error) error {
	if err == nil {
		return nil
	}
	code := err.Error()
	var se *selenium.Error
	if errors.As(err, &se) {
		code = se.Err
	}
	switch {
	case strings.Contains(code, "no such element"):
		return fmt.Errorf("%w: %w", driver.ErrNoSuchElement, err)
	case strings.Contains(code, "stale element reference"):
		return fmt.Errorf("%w: %w", driver.ErrStaleElement, err)
	case strings.Contains(code, "element not interactable"),
		strings.Contains(code, "element click intercepted"),
		strings.Contains(code, "invalid element state"):
		return fmt.Errorf("%w: %w", driver.ErrNotInteractable, err)
	default:
		return err
	}
}

type element struct {
	we selenium.WebElement
}

func (e *element) Click() error { return classify(e.we.Click()) }

func (e *element) SendKeys(text string) error { return classify(e.we.SendKeys(text)) }

func (e *element) Clear() error { return classify(e.we.Clear()) }

func (e *element) Text() (string, error) {
	s, err := e.we.Text()
	return s, classify(err)
}

// Attribute returns "" for attributes the node does not carry.
func (e *element) Attribute(name string) (string, error) {
	s, err := e.we.GetAttribute(name)
	// selenium reports a missing attribute as an error
	if err != nil && strings.Contains(err.Error(), "nil return value") {
		return "", nil
	}
	return s, classify(err)
}

func (e *element) IsDisplayed() (bool, error) {
	ok, err := e.we.IsDisplayed()
	return ok, classify(err)
}

func (e *element) IsEnabled() (bool, error) {
	ok, err := e.we.IsEnabled()
	return ok, classify(err)
}
