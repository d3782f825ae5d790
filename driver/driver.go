// Package driver defines the browser-automation capability the rest of the
// module is written against. Transports live in the selenium and playwright
// subpackages; drivertest provides an in-memory implementation for tests.
package driver

import (
	"errors"
	"time"

	"github.com/padaiyal/harmony-e2e/locator"
)

var (
	// ErrNoSuchElement is returned when a locator matches nothing.
	ErrNoSuchElement = errors.New("no such element")
	// ErrStaleElement is returned when a handle no longer points at a live node.
	ErrStaleElement = errors.New("stale element reference")
	// ErrNotInteractable is returned when an action needs a visible, enabled element.
	ErrNotInteractable = errors.New("element not interactable")
)

// Key is a non-printable key understood by every transport.
type Key string

const (
	Tab    Key = "Tab"
	Enter  Key = "Enter"
	Escape Key = "Escape"
)

// ActiveElementScript reports whether arguments[0] holds keyboard focus.
const ActiveElementScript = "return arguments[0] === document.activeElement;"

// Element is a resolved reference to one node. It goes stale when the page
// re-renders the node; callers re-resolve through the Locator.
type Element interface {
	Click() error
	SendKeys(text string) error
	Clear() error
	Text() (string, error)
	Attribute(name string) (string, error)
	IsDisplayed() (bool, error)
	IsEnabled() (bool, error)
}

// Driver is one live browser connection. Calls are issued one at a time.
type Driver interface {
	Navigate(url string) error
	CurrentURL() (string, error)
	// Find returns ErrNoSuchElement when nothing matches.
	Find(loc locator.Locator) (Element, error)
	// FindAll returns an empty slice, not an error, when nothing matches.
	FindAll(loc locator.Locator) ([]Element, error)
	// ExecuteScript runs a function body; arguments are exposed as `arguments`.
	ExecuteScript(script string, args ...any) (any, error)
	// PressKey dispatches key to the focused element.
	PressKey(key Key) error
	SetImplicitWait(d time.Duration) error
	Quit() error
}

// Transient reports whether err may clear up on a later poll.
func Transient(err error) bool {
	return errors.Is(err, ErrNoSuchElement) || errors.Is(err, ErrStaleElement)
}
