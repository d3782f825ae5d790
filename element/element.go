// Package element wraps a resolved driver.Element with the locator that
// produced it.
package element

import (
	"errors"
	"fmt"

	"github.com/padaiyal/harmony-e2e/driver"
	"github.com/padaiyal/harmony-e2e/locator"
)

// Handle is valid only until the page re-renders the node. On
// driver.ErrStaleElement call Refresh rather than retrying the handle.
type Handle struct {
	el  driver.Element
	loc locator.Locator
	drv driver.Driver
}

func New(drv driver.Driver, loc locator.Locator, el driver.Element) *Handle {
	return &Handle{el: el, loc: loc, drv: drv}
}

func (h *Handle) Locator() locator.Locator { return h.loc }

// Raw returns the transport element, e.g. to pass it as a script argument.
func (h *Handle) Raw() driver.Element { return h.el }

// Refresh resolves the locator again and returns a new handle.
func (h *Handle) Refresh() (*Handle, error) {
	el, err := h.drv.Find(h.loc)
	if err != nil {
		return nil, fmt.Errorf("re-resolving %s: %w", h.loc, err)
	}
	return New(h.drv, h.loc, el), nil
}

// Click re-checks visibility and enablement right before dispatching, since
// both can change between resolution and action.
func (h *Handle) Click() error {
	shown, err := h.el.IsDisplayed()
	if err != nil {
		return h.wrap("click", err)
	}
	enabled, err := h.el.IsEnabled()
	if err != nil {
		return h.wrap("click", err)
	}
	if !shown || !enabled {
		return fmt.Errorf("click %s (displayed=%t enabled=%t): %w", h.loc, shown, enabled, driver.ErrNotInteractable)
	}
	return h.wrap("click", h.el.Click())
}

// Type clears the field and then sends text. An empty text leaves the field
// empty.
func (h *Handle) Type(text string) error {
	if err := h.el.Clear(); err != nil {
		return h.wrap("clear", err)
	}
	if text == "" {
		return nil
	}
	return h.wrap("type into", h.el.SendKeys(text))
}

func (h *Handle) Clear() error {
	return h.wrap("clear", h.el.Clear())
}

// Press sends key to the page; focus decides which element receives it.
func (h *Handle) Press(key driver.Key) error {
	return h.wrap("press "+string(key)+" on", h.drv.PressKey(key))
}

// LoseFocus clicks the element and tabs away to fire blur handlers.
func (h *Handle) LoseFocus() error {
	if err := h.Click(); err != nil {
		return err
	}
	return h.Press(driver.Tab)
}

func (h *Handle) Text() (string, error) {
	s, err := h.el.Text()
	return s, h.wrap("read text of", err)
}

func (h *Handle) Attribute(name string) (string, error) {
	s, err := h.el.Attribute(name)
	return s, h.wrap("read "+name+" of", err)
}

// Value is the current value of an input.
func (h *Handle) Value() (string, error) {
	return h.Attribute("value")
}

func (h *Handle) IsEnabled() (bool, error) {
	ok, err := h.el.IsEnabled()
	return ok, h.wrap("read enabled state of", err)
}

func (h *Handle) IsDisplayed() (bool, error) {
	ok, err := h.el.IsDisplayed()
	return ok, h.wrap("read displayed state of", err)
}

// IsFocused reports whether the element is the document's active element.
func (h *Handle) IsFocused() (bool, error) {
	res, err := h.drv.ExecuteScript(driver.ActiveElementScript, h.el)
	if err != nil {
		return false, h.wrap("check focus of", err)
	}
	focused, ok := res.(bool)
	if !ok {
		return false, fmt.Errorf("check focus of %s: script returned %T", h.loc, res)
	}
	return focused, nil
}

func (h *Handle) wrap(action string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, driver.ErrStaleElement) {
		return fmt.Errorf("%s %s: node was re-rendered: %w", action, h.loc, err)
	}
	return fmt.Errorf("%s %s: %w", action, h.loc, err)
}
