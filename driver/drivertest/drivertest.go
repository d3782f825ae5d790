// Package drivertest provides an in-memory driver.Driver for unit tests.
//
// The fake keeps a map from locator to mounted elements, a URL, a tab cycle
// and a log of every key press. Pages are scripted with Route, which rebuilds
// the document on each navigation the way a real load would.
package drivertest

import (
	"fmt"
	"sync"
	"time"

	"github.com/padaiyal/harmony-e2e/driver"
	"github.com/padaiyal/harmony-e2e/locator"
)

// Element is a fake DOM node. Zero value is visible and enabled.
type Element struct {
	Name     string
	Content  string
	Value    string
	Attrs    map[string]string
	Hidden   bool
	Disabled bool
	Detached bool
	// OnClick runs after a successful click, outside the driver lock.
	OnClick func()
	// OnChange runs after SendKeys or Clear changed Value.
	OnChange func()
	// OnBlur runs when focus moves from this element to another.
	OnBlur func()

	clicks int
	d      *Driver
}

type Driver struct {
	mu          sync.Mutex
	url         string
	dom         map[locator.Locator][]*Element
	routes      map[string]func(d *Driver)
	scripts     map[string]func(args []any) (any, error)
	tabCycle    []*Element
	active      *Element
	keys        []driver.Key
	navigations []string
	implicit    time.Duration
	finds       int
	quits       int

	// QuitErr is returned from every Quit call.
	QuitErr error
	// ImplicitErr is returned from SetImplicitWait.
	ImplicitErr error
}

var _ driver.Driver = (*Driver)(nil)

func New() *Driver {
	return &Driver{
		dom:     map[locator.Locator][]*Element{},
		routes:  map[string]func(d *Driver){},
		scripts: map[string]func(args []any) (any, error){},
	}
}

// Route registers the document built when url is navigated to.
func (d *Driver) Route(url string, build func(d *Driver)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.routes[url] = build
}

// Mount appends elements under loc.
func (d *Driver) Mount(loc locator.Locator, els ...*Element) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, el := range els {
		el.d = d
		el.Detached = false
	}
	d.dom[loc] = append(d.dom[loc], els...)
}

// Unmount removes every element under loc and marks them stale.
func (d *Driver) Unmount(loc locator.Locator) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.unmountLocked(loc)
}

func (d *Driver) unmountLocked(loc locator.Locator) {
	for _, el := range d.dom[loc] {
		el.Detached = true
		if d.active == el {
			d.active = nil
		}
	}
	delete(d.dom, loc)
}

// Replace re-renders loc: old nodes go stale, new nodes take their place.
func (d *Driver) Replace(loc locator.Locator, els ...*Element) {
	d.Unmount(loc)
	d.Mount(loc, els...)
}

// SetURL changes the current URL without rebuilding the document, like a
// client-side route change.
func (d *Driver) SetURL(url string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.url = url
}

// SetTabCycle sets the order in which Tab moves focus.
func (d *Driver) SetTabCycle(els ...*Element) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tabCycle = els
}

func (d *Driver) Focus(el *Element) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.active = el
}

func (d *Driver) Active() *Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// HandleScript installs fn as the result of ExecuteScript(script, ...).
func (d *Driver) HandleScript(script string, fn func(args []any) (any, error)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scripts[script] = fn
}

// Do runs fn under the driver lock. Use it to mutate elements from timers.
func (d *Driver) Do(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn()
}

// After runs fn under the driver lock once delay has passed.
func (d *Driver) After(delay time.Duration, fn func()) *time.Timer {
	return time.AfterFunc(delay, func() { d.Do(fn) })
}

func (d *Driver) Keys() []driver.Key {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]driver.Key(nil), d.keys...)
}

// KeyCount returns how many times key was pressed.
func (d *Driver) KeyCount(key driver.Key) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, k := range d.keys {
		if k == key {
			n++
		}
	}
	return n
}

func (d *Driver) Navigations() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.navigations...)
}

// Finds returns how many Find and FindAll calls reached the driver.
func (d *Driver) Finds() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.finds
}

func (d *Driver) Quits() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.quits
}

func (d *Driver) ImplicitWait() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.implicit
}

func (d *Driver) Navigate(url string) error {
	d.mu.Lock()
	d.navigations = append(d.navigations, url)
	d.url = url
	for loc := range d.dom {
		d.unmountLocked(loc)
	}
	d.active = nil
	d.tabCycle = nil
	build := d.routes[url]
	d.mu.Unlock()

	if build != nil {
		build(d)
	}
	return nil
}

func (d *Driver) CurrentURL() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.url, nil
}

func (d *Driver) Find(loc locator.Locator) (driver.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.finds++
	els := d.dom[loc]
	if len(els) == 0 {
		return nil, fmt.Errorf("%s: %w", loc, driver.ErrNoSuchElement)
	}
	return els[0], nil
}

func (d *Driver) FindAll(loc locator.Locator) ([]driver.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.finds++
	out := make([]driver.Element, 0, len(d.dom[loc]))
	for _, el := range d.dom[loc] {
		out = append(out, el)
	}
	return out, nil
}

func (d *Driver) ExecuteScript(script string, args ...any) (any, error) {
	d.mu.Lock()
	if script == driver.ActiveElementScript {
		defer d.mu.Unlock()
		if len(args) != 1 {
			return nil, fmt.Errorf("active element script wants 1 argument, got %d", len(args))
		}
		el, ok := args[0].(*Element)
		if !ok {
			return nil, fmt.Errorf("active element script got %T", args[0])
		}
		if el.Detached {
			return nil, driver.ErrStaleElement
		}
		return el == d.active, nil
	}
	fn, ok := d.scripts[script]
	d.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unsupported script %q", script)
	}
	return fn(args)
}

func (d *Driver) PressKey(key driver.Key) error {
	d.mu.Lock()
	d.keys = append(d.keys, key)
	if key != driver.Tab {
		d.mu.Unlock()
		return nil
	}
	next := -1
	for i, el := range d.tabCycle {
		if el == d.active {
			next = (i + 1) % len(d.tabCycle)
			break
		}
	}
	var to *Element
	switch {
	case next >= 0:
		to = d.tabCycle[next]
	case len(d.tabCycle) > 0:
		to = d.tabCycle[0]
	}
	blur := d.moveFocusLocked(to)
	d.mu.Unlock()

	if blur != nil {
		blur()
	}
	return nil
}

// moveFocusLocked sets the active element and returns the blur hook of the
// element losing focus, if any.
func (d *Driver) moveFocusLocked(to *Element) func() {
	from := d.active
	d.active = to
	if from == nil || from == to {
		return nil
	}
	return from.OnBlur
}

func (d *Driver) SetImplicitWait(timeout time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ImplicitErr != nil {
		return d.ImplicitErr
	}
	d.implicit = timeout
	return nil
}

func (d *Driver) Quit() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.quits++
	return d.QuitErr
}

func (e *Element) lock() func() {
	if e.d == nil {
		return func() {}
	}
	e.d.mu.Lock()
	return e.d.mu.Unlock
}

func (e *Element) staleErr() error {
	return fmt.Errorf("%s: %w", e.Name, driver.ErrStaleElement)
}

// Clicks returns how many clicks reached the element.
func (e *Element) Clicks() int {
	defer e.lock()()
	return e.clicks
}

func (e *Element) Click() error {
	unlock := e.lock()
	if e.Detached {
		unlock()
		return e.staleErr()
	}
	if e.Hidden || e.Disabled {
		unlock()
		return fmt.Errorf("%s: %w", e.Name, driver.ErrNotInteractable)
	}
	e.clicks++
	var blur func()
	if e.d != nil {
		blur = e.d.moveFocusLocked(e)
	}
	onClick := e.OnClick
	unlock()

	if blur != nil {
		blur()
	}
	if onClick != nil {
		onClick()
	}
	return nil
}

func (e *Element) SendKeys(text string) error {
	unlock := e.lock()
	if e.Detached {
		unlock()
		return e.staleErr()
	}
	if e.Hidden || e.Disabled {
		unlock()
		return fmt.Errorf("%s: %w", e.Name, driver.ErrNotInteractable)
	}
	e.Value += text
	onChange := e.OnChange
	unlock()

	if onChange != nil {
		onChange()
	}
	return nil
}

func (e *Element) Clear() error {
	unlock := e.lock()
	if e.Detached {
		unlock()
		return e.staleErr()
	}
	e.Value = ""
	onChange := e.OnChange
	unlock()

	if onChange != nil {
		onChange()
	}
	return nil
}

func (e *Element) Text() (string, error) {
	defer e.lock()()
	if e.Detached {
		return "", e.staleErr()
	}
	if e.Hidden {
		return "", nil
	}
	return e.Content, nil
}

func (e *Element) Attribute(name string) (string, error) {
	defer e.lock()()
	if e.Detached {
		return "", e.staleErr()
	}
	if name == "value" {
		return e.Value, nil
	}
	return e.Attrs[name], nil
}

func (e *Element) IsDisplayed() (bool, error) {
	defer e.lock()()
	if e.Detached {
		return false, e.staleErr()
	}
	return !e.Hidden, nil
}

func (e *Element) IsEnabled() (bool, error) {
	defer e.lock()()
	if e.Detached {
		return false, e.staleErr()
	}
	return !e.Disabled, nil
}
