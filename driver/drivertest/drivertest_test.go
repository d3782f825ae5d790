package drivertest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padaiyal/harmony-e2e/driver"
	"github.com/padaiyal/harmony-e2e/locator"
)

func TestTabCycleAndBlur(t *testing.T) {
	d := New()
	var blurred []string
	a := &Element{Name: "a"}
	b := &Element{Name: "b"}
	a.OnBlur = func() { blurred = append(blurred, "a") }
	b.OnBlur = func() { blurred = append(blurred, "b") }
	d.Mount(locator.ID("a"), a)
	d.Mount(locator.ID("b"), b)
	d.SetTabCycle(a, b)

	require.NoError(t, d.PressKey(driver.Tab))
	assert.Same(t, a, d.Active())
	require.NoError(t, d.PressKey(driver.Tab))
	assert.Same(t, b, d.Active())
	require.NoError(t, d.PressKey(driver.Tab))
	assert.Same(t, a, d.Active(), "focus wraps around")
	require.NoError(t, a.Click())
	assert.Equal(t, []string{"a", "b"}, blurred, "clicking the focused element does not blur it")

	require.NoError(t, d.PressKey(driver.Enter))
	assert.Equal(t, 3, d.KeyCount(driver.Tab))
	assert.Equal(t, 1, d.KeyCount(driver.Enter))
}

func TestChangeHook(t *testing.T) {
	d := New()
	changes := 0
	in := &Element{Name: "in", OnChange: func() { changes++ }}
	d.Mount(locator.ID("in"), in)

	require.NoError(t, in.SendKeys("abc"))
	require.NoError(t, in.Clear())
	assert.Equal(t, 2, changes)
	v, err := in.Attribute("value")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestNavigateRebuildsDocument(t *testing.T) {
	d := New()
	title := locator.CSS("h1")
	old := &Element{Name: "old"}
	d.Mount(title, old)
	d.Route("http://app/", func(d *Driver) {
		d.Mount(title, &Element{Name: "new", Content: "Home"})
	})

	require.NoError(t, d.Navigate("http://app/"))
	assert.ErrorIs(t, old.Click(), driver.ErrStaleElement)

	el, err := d.Find(title)
	require.NoError(t, err)
	text, err := el.Text()
	require.NoError(t, err)
	assert.Equal(t, "Home", text)

	_, err = d.Find(locator.CSS("h2"))
	assert.ErrorIs(t, err, driver.ErrNoSuchElement)
}

func TestInteractability(t *testing.T) {
	d := New()
	hidden := &Element{Name: "hidden", Hidden: true, Content: "secret"}
	disabled := &Element{Name: "disabled", Disabled: true}
	d.Mount(locator.ID("hidden"), hidden)
	d.Mount(locator.ID("disabled"), disabled)

	assert.ErrorIs(t, hidden.Click(), driver.ErrNotInteractable)
	assert.ErrorIs(t, disabled.SendKeys("x"), driver.ErrNotInteractable)
	text, err := hidden.Text()
	require.NoError(t, err)
	assert.Empty(t, text)
}
