// Package fixtures holds the literal test data the suites assert against:
// credentials, expected messages, redirect paths and sample records.
package fixtures

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

type Credential struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type Credentials struct {
	Valid   Credential `yaml:"valid"`
	Invalid Credential `yaml:"invalid"`
}

type Group struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Account is everything the new-account form asks for.
type Account struct {
	FirstName string
	LastName  string
	Email     string
	Username  string
	Password  string
}

type Set struct {
	Credentials Credentials                  `yaml:"credentials"`
	Messages    map[string]map[string]string `yaml:"messages"`
	Redirects   map[string]string            `yaml:"redirects"`
	Group       Group                        `yaml:"group"`

	doc any
}

// Default returns the fixtures compiled into the binary.
func Default() (*Set, error) {
	return Parse(defaultFixtures)
}

// Load reads a fixture file. An empty path means the compiled-in defaults.
func Load(path string) (*Set, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixtures %s: %w", path, err)
	}
	set, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing fixtures %s: %w", path, err)
	}
	return set, nil
}

func Parse(data []byte) (*Set, error) {
	set := &Set{}
	if err := yaml.Unmarshal(data, set); err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &set.doc); err != nil {
		return nil, err
	}
	return set, nil
}

// Message returns the expected text for key on page, failing on unknown keys
// so a typo in a test never turns into an empty-string assertion.
func (s *Set) Message(page, key string) (string, error) {
	msg, ok := s.Messages[page][key]
	if !ok {
		return "", fmt.Errorf("no %s message %q in fixtures", page, key)
	}
	return msg, nil
}

// RedirectURL joins the named redirect path onto base.
func (s *Set) RedirectURL(base, name string) (string, error) {
	path, ok := s.Redirects[name]
	if !ok {
		return "", fmt.Errorf("no redirect %q in fixtures", name)
	}
	return strings.TrimRight(base, "/") + path, nil
}

// Lookup evaluates a JSONPath expression such as
// "$.credentials.valid.username" against the raw fixture document.
func (s *Set) Lookup(path string) (any, error) {
	v, err := jsonpath.Get(path, s.doc)
	if err != nil {
		return nil, fmt.Errorf("looking up %s: %w", path, err)
	}
	return v, nil
}

// LookupString is Lookup for scalar string values.
func (s *Set) LookupString(path string) (string, error) {
	v, err := s.Lookup(path)
	if err != nil {
		return "", err
	}
	str, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s is %T, not a string", path, v)
	}
	return str, nil
}

// UniqueAccount returns an account nobody has registered yet.
func UniqueAccount() Account {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return Account{
		FirstName: "Test",
		LastName:  "User " + id[:4],
		Email:     "e2e+" + id + "@harmony.test",
		Username:  "e2e_" + id,
		Password:  ".Harmony" + id[:6] + ".",
	}
}
