package e2e

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/padaiyal/harmony-e2e/fixtures"
	"github.com/padaiyal/harmony-e2e/focus"
	"github.com/padaiyal/harmony-e2e/page"
	"github.com/padaiyal/harmony-e2e/session"
)

type BrowserTestsSuite struct {
	suite.Suite
	Browser string
	session *session.Session
	t       *testing.T
}

func (suite *BrowserTestsSuite) SetupSuite() {
	suite.t = suite.T()
	if !Enabled {
		suite.t.Skipf("set %s=1 to run browser suites", EnableEnv)
	}

	suite.t.Logf("Running tests for browser %s", suite.Browser)
	var err error
	suite.session, err = LaunchSession(suite.Browser)
	if err != nil {
		suite.t.Fatalf("Error launching %s: %s", suite.Browser, err)
	}
}

func (suite *BrowserTestsSuite) TearDownSuite() {
	if suite.session == nil {
		return
	}
	if err := suite.session.Quit(); err != nil {
		suite.t.Logf("Error quitting %s: %s", suite.Browser, err)
	}
}

func (suite *BrowserTestsSuite) login() *page.Login {
	login := page.NewLogin(suite.session, Config.URLs)
	suite.Require().NoError(login.Open())
	return login
}

func (suite *BrowserTestsSuite) TestLoginValidCredentials() {
	login := suite.login()
	suite.Require().NoError(login.LogIn(Fixtures.Credentials.Valid))

	title, err := login.DashboardTitle()
	suite.Require().NoError(err)
	suite.Regexp(regexp.MustCompile(`(?i)dashboard`), title)

	suite.Require().NoError(page.NewProfile(suite.session, Config.URLs).LogOut())
}

func (suite *BrowserTestsSuite) TestLoginInvalidCredentials() {
	login := suite.login()
	suite.Require().NoError(login.LogIn(Fixtures.Credentials.Invalid))

	want, err := Fixtures.Message("login", "invalid_credentials")
	suite.Require().NoError(err)
	text, err := login.ModalText()
	suite.Require().NoError(err)
	suite.Equal(want, text)
	suite.Require().NoError(login.DismissModal())
}

func (suite *BrowserTestsSuite) TestLoginEmptyUsernameDisablesSubmit() {
	login := suite.login()
	suite.Require().NoError(login.EnterUsername(""))
	suite.Require().NoError(login.EnterPassword(Fixtures.Credentials.Valid.Password))

	enabled, err := login.SubmitEnabled()
	suite.Require().NoError(err)
	suite.False(enabled)
}

func (suite *BrowserTestsSuite) TestForgotPasswordRedirect() {
	login := suite.login()
	got, err := login.ForgotPassword()
	suite.Require().NoError(err)

	want, err := Fixtures.RedirectURL(Config.URLs.Base, "recover_password")
	suite.Require().NoError(err)
	suite.Equal(want, got)
}

func (suite *BrowserTestsSuite) TestLoginTabOrder() {
	login := suite.login()
	v := focus.New(suite.session, focus.WithKeySettle(Config.Timeouts.KeySettle))
	res, err := v.Validate(login.TabOrder())
	suite.Require().NoError(err)
	suite.True(res.OK(), res.Diff())
}

func (suite *BrowserTestsSuite) TestNewAccountBlurValidation() {
	na := page.NewNewAccount(suite.session, Config.URLs)
	suite.Require().NoError(na.Open())

	for _, f := range []page.Field{page.FirstName, page.LastName, page.Email} {
		want, err := Fixtures.Message("new_account", string(f)+"_required")
		suite.Require().NoError(err)
		ok, err := na.VerifyBlurValidation(f, want)
		suite.Require().NoError(err)
		suite.True(ok, "blur on empty %s", f)
	}

	suite.Require().NoError(na.EnterField(page.FirstName, "Ana"))
	ok, err := na.VerifyBlurValidation(page.FirstName, "")
	suite.Require().NoError(err)
	suite.True(ok, "a filled first name shows no error")
}

func (suite *BrowserTestsSuite) TestNewAccountRegistration() {
	na := page.NewNewAccount(suite.session, Config.URLs)
	suite.Require().NoError(na.Open())
	suite.Require().NoError(na.Fill(fixtures.UniqueAccount()))
	suite.Require().NoError(na.Submit())

	want, err := Fixtures.Message("new_account", "created")
	suite.Require().NoError(err)
	got, err := na.SuccessMessage()
	suite.Require().NoError(err)
	suite.Equal(want, got)
}

func (suite *BrowserTestsSuite) TestGroups() {
	login := suite.login()
	suite.Require().NoError(login.LogIn(Fixtures.Credentials.Valid))
	_, err := login.DashboardTitle()
	suite.Require().NoError(err)

	groups := page.NewGroups(suite.session, Config.URLs)
	suite.Require().NoError(groups.Open())
	g := Fixtures.Group
	g.Name += " " + fixtures.UniqueAccount().Username

	has, err := groups.HasGroup(g.Name)
	suite.Require().NoError(err)
	suite.False(has)

	suite.Require().NoError(groups.Create(g))
	suite.Require().NoError(groups.WaitGroup(g.Name))
	suite.Require().NoError(groups.Search(g.Name))
	names, err := groups.GroupNames()
	suite.Require().NoError(err)
	suite.Contains(names, g.Name)

	suite.Require().NoError(groups.DeleteGroup(g.Name))
	has, err = groups.HasGroup(g.Name)
	suite.Require().NoError(err)
	suite.False(has)

	profile := page.NewProfile(suite.session, Config.URLs)
	suite.Require().NoError(profile.GoToProfile())
	heading, err := profile.Heading()
	suite.Require().NoError(err)
	suite.NotEmpty(heading)
	suite.Require().NoError(profile.LogOut())
}

func (suite *BrowserTestsSuite) TestQuitTwice() {
	s, err := LaunchSession(suite.Browser)
	suite.Require().NoError(err)
	suite.Require().NoError(s.Quit())
	suite.NoError(s.Quit())
	suite.ErrorIs(s.Navigate(Config.URLs.Login), session.ErrClosed)
}
