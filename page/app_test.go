package page

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/padaiyal/harmony-e2e/config"
	"github.com/padaiyal/harmony-e2e/driver/drivertest"
	"github.com/padaiyal/harmony-e2e/fixtures"
	"github.com/padaiyal/harmony-e2e/locator"
	"github.com/padaiyal/harmony-e2e/session"
)

const base = "http://harmony.test"

var urls = config.URLs{
	Base:       base,
	Landing:    base + "/",
	Login:      base + "/login",
	NewAccount: base + "/new-account",
	Profile:    base + "/profile",
	Groups:     base + "/groups",
}

// render delays client-side updates so that callers have to wait for them.
const render = 15 * time.Millisecond

func newSession(t *testing.T) (*session.Session, *drivertest.Driver) {
	t.Helper()
	drv := drivertest.New()
	s, err := session.New(drv, session.Options{
		Timeout: 500 * time.Millisecond,
		Poll:    5 * time.Millisecond,
		Settle:  20 * time.Millisecond,
		Logger:  zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Quit() })
	return s, drv
}

func loadFixtures(t *testing.T) *fixtures.Set {
	t.Helper()
	set, err := fixtures.Default()
	require.NoError(t, err)
	return set
}

func later(fn func()) { time.AfterFunc(render, fn) }

// value reads an input under the driver lock.
func value(d *drivertest.Driver, el *drivertest.Element) string {
	var v string
	d.Do(func() { v = el.Value })
	return v
}

// fieldError shows msg under an input, or removes the error when msg is empty.
func fieldError(d *drivertest.Driver, loc locator.Locator, msg string) {
	if msg == "" {
		d.Unmount(loc)
		return
	}
	d.Replace(loc, &drivertest.Element{Name: "error", Content: msg})
}

// harmony scripts the application's routes onto d.
func harmony(t *testing.T, d *drivertest.Driver) {
	t.Helper()
	set := loadFixtures(t)
	d.Route(urls.Landing, landingRoute)
	d.Route(urls.Login, loginRoute(set))
	d.Route(urls.NewAccount, newAccountRoute(set))
	d.Route(base+"/dashboard", dashboardRoute)
	d.Route(urls.Groups, groupsRoute(set))
}

func landingRoute(d *drivertest.Driver) {
	sel := LandingSelectors
	d.Mount(sel.Brand, &drivertest.Element{Name: "brand", Content: "Harmony"})
	d.Mount(sel.Title, &drivertest.Element{Name: "title", Content: "Welcome to Harmony Church Suite"})
	d.Mount(sel.Login, &drivertest.Element{Name: "login link", OnClick: func() { _ = d.Navigate(urls.Login) }})
	d.Mount(sel.NewAccount, &drivertest.Element{Name: "new account link", OnClick: func() { _ = d.Navigate(urls.NewAccount) }})
}

func loginRoute(set *fixtures.Set) func(d *drivertest.Driver) {
	return func(d *drivertest.Driver) {
		sel := LoginSelectors
		user := &drivertest.Element{Name: "username"}
		pass := &drivertest.Element{Name: "password"}
		submit := &drivertest.Element{Name: "submit", Disabled: true}
		forgot := &drivertest.Element{Name: "forgot", Content: "Forgot Password"}

		validate := func() {
			d.Do(func() { submit.Disabled = user.Value == "" || pass.Value == "" })
		}
		user.OnChange, pass.OnChange = validate, validate
		user.OnBlur = func() {
			msg := ""
			if value(d, user) == "" {
				msg = set.Messages["login"]["username_required"]
			}
			fieldError(d, sel.UsernameError, msg)
		}

		submit.OnClick = func() {
			got := fixtures.Credential{Username: value(d, user), Password: value(d, pass)}
			if got == set.Credentials.Valid {
				later(func() { _ = d.Navigate(base + "/dashboard") })
				return
			}
			later(func() {
				d.Mount(sel.Modal, &drivertest.Element{Name: "modal"})
				d.Mount(sel.ModalText, &drivertest.Element{Name: "modal text", Content: set.Messages["login"]["invalid_credentials"]})
				d.Mount(sel.ModalClose, &drivertest.Element{Name: "close", OnClick: func() {
					later(func() {
						d.Unmount(sel.Modal)
						d.Unmount(sel.ModalText)
						d.Unmount(sel.ModalClose)
					})
				}})
			})
		}
		forgot.OnClick = func() {
			later(func() { d.SetURL(base + set.Redirects["recover_password"]) })
		}

		d.Mount(sel.Username, user)
		d.Mount(sel.Password, pass)
		d.Mount(sel.Submit, submit)
		d.Mount(sel.Forgot, forgot)
		d.SetTabCycle(user, pass, forgot, submit)
	}
}

func dashboardRoute(d *drivertest.Driver) {
	sel := ProfileSelectors
	d.Mount(LoginSelectors.DashboardTitle, &drivertest.Element{Name: "dashboard", Content: "Dashboard"})
	d.Mount(sel.DisplayName, &drivertest.Element{Name: "display name", Content: "  Javier  "})

	link := func(name, url string, then func()) *drivertest.Element {
		return &drivertest.Element{Name: name, OnClick: func() {
			d.Unmount(sel.Menu)
			later(func() {
				d.SetURL(url)
				if then != nil {
					then()
				}
			})
		}}
	}
	d.Mount(sel.MenuToggle, &drivertest.Element{Name: "menu toggle", OnClick: func() {
		later(func() {
			d.Mount(sel.Menu, &drivertest.Element{Name: "menu"})
			d.Replace(sel.ProfileLink, link("profile", urls.Profile, func() {
				d.Mount(sel.Heading, &drivertest.Element{Name: "heading", Content: "My profile"})
			}))
			d.Replace(sel.ChangePassword, link("change password", base+"/change-password", nil))
			d.Replace(sel.LogOut, link("log out", urls.Login, nil))
		})
	}})
}

func newAccountRoute(set *fixtures.Set) func(d *drivertest.Driver) {
	return func(d *drivertest.Driver) {
		sel := NewAccountSelectors
		msgs := set.Messages["new_account"]
		inputs := map[Field]*drivertest.Element{}
		var cycle []*drivertest.Element
		for _, f := range Fields {
			el := &drivertest.Element{Name: string(f)}
			inputs[f] = el
			cycle = append(cycle, el)
		}
		for _, f := range Fields {
			el := inputs[f]
			el.OnBlur = func() {
				v := value(d, el)
				msg := ""
				switch {
				case v == "" && f == ConfirmPassword:
					msg = msgs["password_required"]
				case v == "":
					msg = msgs[string(f)+"_required"]
				case f == Email && !strings.Contains(v, "@"):
					msg = msgs["email_invalid"]
				case f == ConfirmPassword && v != value(d, inputs[Password]):
					msg = msgs["password_mismatch"]
				}
				fieldError(d, sel.Errors[f], msg)
			}
			d.Mount(sel.Inputs[f], el)
		}
		submit := &drivertest.Element{Name: "submit"}
		submit.OnClick = func() {
			later(func() {
				d.Mount(sel.Success, &drivertest.Element{Name: "success", Content: msgs["created"]})
			})
		}
		d.Mount(sel.Submit, submit)
		d.SetTabCycle(append(cycle, submit)...)
	}
}

func groupsRoute(set *fixtures.Set) func(d *drivertest.Driver) {
	return func(d *drivertest.Driver) {
		sel := GroupsSelectors
		msgs := set.Messages["groups"]
		var names []string

		renderRows := func() {
			cells := make([]*drivertest.Element, 0, len(names))
			for _, n := range names {
				cells = append(cells, &drivertest.Element{Name: "cell", Content: n})
			}
			d.Replace(sel.Names, cells...)
		}
		toast := func(msg string) {
			d.Replace(sel.Toast, &drivertest.Element{Name: "toast", Content: msg})
		}

		addRow := func(name string) {
			names = append(names, name)
			d.Mount(GroupRow(name), &drivertest.Element{Name: "row " + name})
			d.Mount(groupDelete(name), &drivertest.Element{Name: "delete " + name, OnClick: func() {
				d.Mount(sel.ConfirmDelete, &drivertest.Element{Name: "confirm", OnClick: func() {
					d.Unmount(sel.ConfirmDelete)
					later(func() {
						d.Unmount(GroupRow(name))
						d.Unmount(groupDelete(name))
						for i, n := range names {
							if n == name {
								names = append(names[:i], names[i+1:]...)
								break
							}
						}
						renderRows()
						toast(msgs["deleted"])
					})
				}})
			}})
			renderRows()
		}

		d.Mount(sel.Table, &drivertest.Element{Name: "groups table"})
		d.Mount(sel.Search, &drivertest.Element{Name: "search"})
		d.Mount(sel.New, &drivertest.Element{Name: "new group", OnClick: func() {
			name := &drivertest.Element{Name: "group name"}
			desc := &drivertest.Element{Name: "group description"}
			name.OnBlur = func() {
				msg := ""
				if value(d, name) == "" {
					msg = msgs["name_required"]
				}
				fieldError(d, sel.NameError, msg)
			}
			d.Mount(sel.Form, &drivertest.Element{Name: "form"})
			d.Mount(sel.Name, name)
			d.Mount(sel.Description, desc)
			d.Mount(sel.Save, &drivertest.Element{Name: "save", OnClick: func() {
				n := value(d, name)
				later(func() {
					d.Unmount(sel.Form)
					d.Unmount(sel.Name)
					d.Unmount(sel.Description)
					d.Unmount(sel.Save)
					addRow(n)
					toast(msgs["created"])
				})
			}})
			d.SetTabCycle(name, desc)
		}})
		addRow("Choir")
	}
}
