package page

import (
	"github.com/padaiyal/harmony-e2e/config"
	"github.com/padaiyal/harmony-e2e/locator"
	"github.com/padaiyal/harmony-e2e/session"
)

// LandingSelectors locate the header links and headline.
var LandingSelectors = struct {
	Brand, Title, Login, NewAccount locator.Locator
}{
	Brand:      locator.CSS("header .brand"),
	Title:      locator.CSS("main h1"),
	Login:      locator.Path("//header//a[normalize-space()='Log in']"),
	NewAccount: locator.Path("//header//a[normalize-space()='Create account']"),
}

// Landing is the public front page.
type Landing struct {
	*Base
	urls config.URLs
}

func NewLanding(s *session.Session, urls config.URLs, opts ...Option) *Landing {
	return &Landing{
		Base: newBase(s, "landing", urls.Landing, LandingSelectors.Brand, nil, opts),
		urls: urls,
	}
}

func (p *Landing) Title() (string, error) {
	return p.Text(LandingSelectors.Title)
}

// GoToLogin follows the header link and returns the login page once loaded.
func (p *Landing) GoToLogin() (*Login, error) {
	if err := p.Click(LandingSelectors.Login); err != nil {
		return nil, err
	}
	if err := p.WaitURL(p.urls.Login); err != nil {
		return nil, err
	}
	login := NewLogin(p.s, p.urls, WithTimeout(p.timeout), WithErrorWindow(p.errorWindow))
	if err := login.Ready(); err != nil {
		return nil, err
	}
	return login, nil
}

func (p *Landing) GoToNewAccount() (*NewAccount, error) {
	if err := p.Click(LandingSelectors.NewAccount); err != nil {
		return nil, err
	}
	if err := p.WaitURL(p.urls.NewAccount); err != nil {
		return nil, err
	}
	na := NewNewAccount(p.s, p.urls, WithTimeout(p.timeout), WithErrorWindow(p.errorWindow))
	if err := na.Ready(); err != nil {
		return nil, err
	}
	return na, nil
}
