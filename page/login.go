package page

import (
	"fmt"

	"github.com/padaiyal/harmony-e2e/config"
	"github.com/padaiyal/harmony-e2e/fixtures"
	"github.com/padaiyal/harmony-e2e/focus"
	"github.com/padaiyal/harmony-e2e/locator"
	"github.com/padaiyal/harmony-e2e/session"
)

// LoginSelectors locate the controls of the login form.
var LoginSelectors = struct {
	Username, Password, Submit, Forgot locator.Locator
	UsernameError, PasswordError       locator.Locator
	Modal, ModalText, ModalClose       locator.Locator
	DashboardTitle                     locator.Locator
}{
	Username:       locator.ID("username"),
	Password:       locator.ID("password"),
	Submit:         locator.CSS("form#login button[type='submit']"),
	Forgot:         locator.Path("//a[normalize-space()='Forgot Password']"),
	UsernameError:  locator.CSS("#username + .invalid-feedback"),
	PasswordError:  locator.CSS("#password + .invalid-feedback"),
	Modal:          locator.CSS(".modal.show"),
	ModalText:      locator.CSS(".modal.show .modal-body"),
	ModalClose:     locator.CSS(".modal.show .modal-footer button"),
	DashboardTitle: locator.CSS("app-dashboard h1"),
}

type Login struct {
	*Base
	urls config.URLs
}

func NewLogin(s *session.Session, urls config.URLs, opts ...Option) *Login {
	sel := LoginSelectors
	return &Login{
		Base: newBase(s, "login", urls.Login, sel.Username, map[locator.Locator]locator.Locator{
			sel.Username: sel.UsernameError,
			sel.Password: sel.PasswordError,
		}, opts),
		urls: urls,
	}
}

func (p *Login) EnterUsername(username string) error {
	return p.Fill(LoginSelectors.Username, username)
}

func (p *Login) EnterPassword(password string) error {
	return p.Fill(LoginSelectors.Password, password)
}

func (p *Login) Submit() error {
	return p.Click(LoginSelectors.Submit)
}

// LogIn fills both fields and submits.
func (p *Login) LogIn(c fixtures.Credential) error {
	if err := p.EnterUsername(c.Username); err != nil {
		return err
	}
	if err := p.EnterPassword(c.Password); err != nil {
		return err
	}
	return p.Submit()
}

func (p *Login) SubmitEnabled() (bool, error) {
	return p.Enabled(LoginSelectors.Submit)
}

// ModalText waits for the alert modal shown after a failed login.
func (p *Login) ModalText() (string, error) {
	return p.Text(LoginSelectors.ModalText)
}

// DismissModal closes the alert modal and waits for it to go away.
func (p *Login) DismissModal() error {
	if err := p.Click(LoginSelectors.ModalClose); err != nil {
		return err
	}
	return p.s.Waiter().Until("dismissal of login modal", p.timeout, func() (bool, error) {
		shown, err := p.Visible(LoginSelectors.Modal)
		return !shown, err
	})
}

func (p *Login) DashboardTitle() (string, error) {
	return p.Text(LoginSelectors.DashboardTitle)
}

// ForgotPassword follows the recovery link and returns the URL it lands on.
func (p *Login) ForgotPassword() (string, error) {
	from, err := p.s.CurrentURL()
	if err != nil {
		return "", err
	}
	if err := p.Click(LoginSelectors.Forgot); err != nil {
		return "", err
	}
	to, err := p.s.Waiter().URLChanges(from, p.timeout)
	if err != nil {
		return "", fmt.Errorf("following forgot password link: %w", err)
	}
	return to, nil
}

// TabOrder is the expected focus sequence from a freshly loaded page.
func (p *Login) TabOrder() []focus.Entry {
	sel := LoginSelectors
	return []focus.Entry{
		{Locator: sel.Username, Label: "username", TabCount: 1},
		{Locator: sel.Password, Label: "password", TabCount: 2},
		{Locator: sel.Forgot, Label: "forgot password", TabCount: 3},
	}
}
