// Package config resolves the run configuration from defaults, an optional
// YAML file and HARMONY_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	CHROME  = "chrome"
	FIREFOX = "firefox"

	BackendSelenium   = "selenium"
	BackendPlaywright = "playwright"

	EnvPrefix = "HARMONY"
)

type Config struct {
	Browser  string   `mapstructure:"browser" yaml:"browser"`
	Backend  string   `mapstructure:"backend" yaml:"backend"`
	Headless bool     `mapstructure:"headless" yaml:"headless"`
	Selenium Selenium `mapstructure:"selenium" yaml:"selenium"`
	Timeouts Timeouts `mapstructure:"timeouts" yaml:"timeouts"`
	URLs     URLs     `mapstructure:"urls" yaml:"urls"`
	Fixtures string   `mapstructure:"fixtures" yaml:"fixtures"`
	Log      Log      `mapstructure:"log" yaml:"log"`
}

type Selenium struct {
	DriverPath    string `mapstructure:"driver_path" yaml:"driver_path"`
	DriverDir     string `mapstructure:"driver_dir" yaml:"driver_dir"`
	Port          int    `mapstructure:"port" yaml:"port"`
	RemoteURL     string `mapstructure:"remote_url" yaml:"remote_url"`
	BrowserBinary string `mapstructure:"browser_binary" yaml:"browser_binary"`
}

type Timeouts struct {
	// Implicit is handed to the transport. Keep it at zero unless the
	// application needs it: a non-zero value delays every absence check.
	Implicit  time.Duration `mapstructure:"implicit" yaml:"implicit"`
	Wait      time.Duration `mapstructure:"wait" yaml:"wait"`
	Poll      time.Duration `mapstructure:"poll" yaml:"poll"`
	Settle    time.Duration `mapstructure:"settle" yaml:"settle"`
	KeySettle time.Duration `mapstructure:"key_settle" yaml:"key_settle"`
}

type URLs struct {
	Base       string `mapstructure:"base" yaml:"base"`
	Landing    string `mapstructure:"landing" yaml:"landing"`
	Login      string `mapstructure:"login" yaml:"login"`
	NewAccount string `mapstructure:"new_account" yaml:"new_account"`
	Profile    string `mapstructure:"profile" yaml:"profile"`
	Groups     string `mapstructure:"groups" yaml:"groups"`
}

type Log struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Development bool   `mapstructure:"development" yaml:"development"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("browser", CHROME)
	v.SetDefault("backend", BackendSelenium)
	v.SetDefault("headless", true)
	v.SetDefault("selenium.driver_path", "")
	v.SetDefault("selenium.driver_dir", "depot/webdriver")
	// 0 lets every local session start its own driver service on a free port.
	v.SetDefault("selenium.port", 0)
	v.SetDefault("selenium.remote_url", "")
	v.SetDefault("selenium.browser_binary", "")
	v.SetDefault("timeouts.implicit", "0s")
	v.SetDefault("timeouts.wait", "10s")
	v.SetDefault("timeouts.poll", "100ms")
	v.SetDefault("timeouts.settle", "300ms")
	v.SetDefault("timeouts.key_settle", "100ms")
	v.SetDefault("urls.base", "http://localhost:4200")
	for _, k := range []string{"landing", "login", "new_account", "profile", "groups"} {
		v.SetDefault("urls."+k, "")
	}
	v.SetDefault("fixtures", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// New returns a viper instance with defaults and environment binding. An
// empty path skips the file; HARMONY_CONFIG names one when path is empty.
func New(path string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}
	return v, nil
}

// Load resolves and validates the configuration.
func Load(path string) (*Config, error) {
	v, err := New(path)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

func FromViper(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	c.fill()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) fill() {
	c.Browser = strings.ToLower(c.Browser)
	c.Backend = strings.ToLower(c.Backend)
	base := strings.TrimRight(c.URLs.Base, "/")
	c.URLs.Base = base
	def := func(dst *string, path string) {
		if *dst == "" {
			*dst = base + path
		}
	}
	def(&c.URLs.Landing, "/")
	def(&c.URLs.Login, "/login")
	def(&c.URLs.NewAccount, "/new-account")
	def(&c.URLs.Profile, "/profile")
	def(&c.URLs.Groups, "/groups")

	if c.Selenium.BrowserBinary == "" {
		switch c.Browser {
		case CHROME:
			c.Selenium.BrowserBinary = os.Getenv("CHROME_BROWSER_PATH")
		case FIREFOX:
			c.Selenium.BrowserBinary = os.Getenv("FIREFOX_BROWSER_PATH")
		}
	}
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Browser {
	case CHROME, FIREFOX:
	default:
		errs = append(errs, fmt.Errorf("unsupported browser: %q", c.Browser))
	}
	switch c.Backend {
	case BackendSelenium, BackendPlaywright:
	default:
		errs = append(errs, fmt.Errorf("unsupported backend: %q", c.Backend))
	}
	if c.URLs.Base == "" {
		errs = append(errs, errors.New("urls.base is required"))
	}
	t := c.Timeouts
	if t.Poll <= 0 {
		errs = append(errs, errors.New("timeouts.poll must be positive"))
	}
	if t.Wait < t.Poll {
		errs = append(errs, fmt.Errorf("timeouts.wait (%s) is shorter than timeouts.poll (%s)", t.Wait, t.Poll))
	}
	if t.Implicit < 0 || t.Settle < 0 || t.KeySettle < 0 {
		errs = append(errs, errors.New("timeouts must not be negative"))
	}
	return errors.Join(errs...)
}

// DriverPath returns the webdriver binary for the configured browser. When
// selenium.driver_path is unset it falls back to
// <selenium.driver_dir>/<driver>_<os>_<version>, with the version taken from
// CHROME_DRIVER_VERSION or GECKO_DRIVER_VERSION.
func (c *Config) DriverPath() (string, error) {
	if c.Selenium.DriverPath != "" {
		return c.Selenium.DriverPath, nil
	}
	dir := c.Selenium.DriverDir
	if dir == "" {
		dir = "depot/webdriver"
	}
	path, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("error getting absolute path of %s: %w", dir, err)
	}
	switch c.Browser {
	case FIREFOX:
		return filepath.Join(path, fmt.Sprintf("geckodriver_%s_%s", runtime.GOOS, os.Getenv("GECKO_DRIVER_VERSION"))), nil
	case CHROME:
		return filepath.Join(path, fmt.Sprintf("chromedriver_%s_%s", runtime.GOOS, os.Getenv("CHROME_DRIVER_VERSION"))), nil
	default:
		return "", fmt.Errorf("unsupported driver type: %s", c.Browser)
	}
}
