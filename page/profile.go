package page

import (
	"strings"

	"github.com/padaiyal/harmony-e2e/config"
	"github.com/padaiyal/harmony-e2e/locator"
	"github.com/padaiyal/harmony-e2e/session"
)

// ProfileSelectors locate the user menu in the top bar and the profile view.
var ProfileSelectors = struct {
	MenuToggle, Menu, DisplayName       locator.Locator
	ProfileLink, ChangePassword, LogOut locator.Locator
	Heading                             locator.Locator
}{
	MenuToggle:     locator.CSS("#user-menu-toggle"),
	Menu:           locator.CSS("#user-menu"),
	DisplayName:    locator.CSS("#user-menu-toggle .display-name"),
	ProfileLink:    locator.Path("//*[@id='user-menu']//a[normalize-space()='My profile']"),
	ChangePassword: locator.Path("//*[@id='user-menu']//a[normalize-space()='Change password']"),
	LogOut:         locator.Path("//*[@id='user-menu']//a[normalize-space()='Log out']"),
	Heading:        locator.CSS("app-profile h1"),
}

// Profile covers the signed-in user's menu and profile screen. The menu is
// present on every signed-in page, so most operations work without Open.
type Profile struct {
	*Base
	urls           config.URLs
	changePassword string
}

func NewProfile(s *session.Session, urls config.URLs, opts ...Option) *Profile {
	return &Profile{
		Base:           newBase(s, "profile", urls.Profile, ProfileSelectors.Heading, nil, opts),
		urls:           urls,
		changePassword: strings.TrimRight(urls.Base, "/") + "/change-password",
	}
}

// OpenMenu expands the user menu unless it is already shown.
func (p *Profile) OpenMenu() error {
	shown, err := p.Visible(ProfileSelectors.Menu)
	if err != nil || shown {
		return err
	}
	if err := p.Click(ProfileSelectors.MenuToggle); err != nil {
		return err
	}
	_, err = p.s.FindVisible(ProfileSelectors.Menu, p.timeout)
	return err
}

func (p *Profile) GoToProfile() error {
	return p.followMenu(ProfileSelectors.ProfileLink, p.urls.Profile)
}

func (p *Profile) GoToChangePassword() error {
	return p.followMenu(ProfileSelectors.ChangePassword, p.changePassword)
}

// LogOut signs out and waits for the login page.
func (p *Profile) LogOut() error {
	return p.followMenu(ProfileSelectors.LogOut, p.urls.Login)
}

func (p *Profile) followMenu(link locator.Locator, url string) error {
	if err := p.OpenMenu(); err != nil {
		return err
	}
	if err := p.Click(link); err != nil {
		return err
	}
	return p.WaitURL(url)
}

func (p *Profile) Heading() (string, error) {
	return p.Text(ProfileSelectors.Heading)
}

// DisplayName is the user name shown on the menu toggle.
func (p *Profile) DisplayName() (string, error) {
	name, err := p.Text(ProfileSelectors.DisplayName)
	return strings.TrimSpace(name), err
}
