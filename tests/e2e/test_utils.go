// Package e2e runs the page objects against a live Harmony Church Suite
// deployment in real browsers. The suites only run when HARMONY_E2E=1.
package e2e

import (
	"errors"
	"log"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/padaiyal/harmony-e2e/config"
	"github.com/padaiyal/harmony-e2e/fixtures"
	"github.com/padaiyal/harmony-e2e/logging"
	"github.com/padaiyal/harmony-e2e/session"
)

const (
	FIREFOX = config.FIREFOX
	CHROME  = config.CHROME
)

// EnableEnv must be "1" for any browser to be launched.
const EnableEnv = "HARMONY_E2E"

var (
	Enabled  bool
	Config   *config.Config
	Fixtures *fixtures.Set
	Logger   *zap.Logger
)

// SetUp loads configuration and fixtures once for the whole package.
func SetUp() {
	Enabled = os.Getenv(EnableEnv) == "1"
	if !Enabled {
		log.Printf("%s is not 1, browser suites will be skipped", EnableEnv)
		return
	}

	var err error
	Config, err = config.Load("")
	if err != nil {
		log.Fatalf("Error loading config: %s", err)
	}
	// Binaries live at the repository root, two levels up from here.
	if os.Getenv(config.EnvPrefix+"_SELENIUM_DRIVER_DIR") == "" {
		Config.Selenium.DriverDir, err = filepath.Abs("../../depot/webdriver")
		if err != nil {
			log.Fatalf("Error getting absolute path of depot/webdriver: %s", err)
		}
	}
	Fixtures, err = fixtures.Load(Config.Fixtures)
	if err != nil {
		log.Fatalf("Error loading fixtures: %s", err)
	}
	Logger, err = logging.New(Config.Log.Level, Config.Log.Development)
	if err != nil {
		log.Fatalf("Error building logger: %s", err)
	}
	log.Printf("Running against %s with the %s backend", Config.URLs.Base, Config.Backend)
}

func TearDown() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}

// LaunchSession starts a browser of the given kind with the package
// configuration. The caller must Quit the session.
func LaunchSession(browser string) (*session.Session, error) {
	if Config == nil {
		return nil, errors.New("e2e configuration not loaded")
	}
	cfg := *Config
	if cfg.Browser != browser {
		// A configured binary belongs to the configured browser only.
		cfg.Browser = browser
		switch browser {
		case CHROME:
			cfg.Selenium.BrowserBinary = os.Getenv("CHROME_BROWSER_PATH")
		case FIREFOX:
			cfg.Selenium.BrowserBinary = os.Getenv("FIREFOX_BROWSER_PATH")
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return session.Launch(&cfg, Logger.With(zap.String("suite", browser)))
}
