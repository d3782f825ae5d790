package session

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/padaiyal/harmony-e2e/config"
	"github.com/padaiyal/harmony-e2e/driver"
	pwdriver "github.com/padaiyal/harmony-e2e/driver/playwright"
	seleniumdriver "github.com/padaiyal/harmony-e2e/driver/selenium"
)

// Launch starts a browser for cfg and wraps it in a Session. The caller owns
// the session and must Quit it.
func Launch(cfg *config.Config, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("browser", cfg.Browser), zap.String("backend", cfg.Backend))

	var drv driver.Driver
	switch cfg.Backend {
	case config.BackendSelenium:
		path := ""
		if cfg.Selenium.RemoteURL == "" {
			var err error
			if path, err = cfg.DriverPath(); err != nil {
				return nil, err
			}
		}
		d, err := seleniumdriver.Start(seleniumdriver.Options{
			Browser:       cfg.Browser,
			DriverPath:    path,
			Port:          cfg.Selenium.Port,
			RemoteURL:     cfg.Selenium.RemoteURL,
			BrowserBinary: cfg.Selenium.BrowserBinary,
			Headless:      cfg.Headless,
			Logger:        log.Named("selenium"),
		})
		if err != nil {
			return nil, err
		}
		drv = d
	case config.BackendPlaywright:
		d, err := pwdriver.Start(pwdriver.Options{
			Browser:  cfg.Browser,
			Headless: cfg.Headless,
			Logger:   log.Named("playwright"),
		})
		if err != nil {
			return nil, err
		}
		drv = d
	default:
		return nil, fmt.Errorf("unsupported backend: %s", cfg.Backend)
	}
	return New(drv, OptionsFrom(cfg, log))
}

// OptionsFrom maps the timeout section of cfg onto session options.
func OptionsFrom(cfg *config.Config, log *zap.Logger) Options {
	return Options{
		Implicit: cfg.Timeouts.Implicit,
		Timeout:  cfg.Timeouts.Wait,
		Poll:     cfg.Timeouts.Poll,
		Settle:   cfg.Timeouts.Settle,
		Logger:   log,
	}
}
