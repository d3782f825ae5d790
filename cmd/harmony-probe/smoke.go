package main

import (
	"fmt"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/padaiyal/harmony-e2e/page"
	"github.com/padaiyal/harmony-e2e/session"
)

var dashboardTitle = regexp.MustCompile(`(?i)dashboard`)

var smokeCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Log in with the valid fixture credentials and log out again",
	RunE:  runSmoke,
}

func runSmoke(cmd *cobra.Command, args []string) (err error) {
	set, err := loadFixtures()
	if err != nil {
		return err
	}
	s, err := session.Launch(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if qerr := s.Quit(); qerr != nil && err == nil {
			err = qerr
		}
	}()

	out := cmd.OutOrStdout()
	login := page.NewLogin(s, cfg.URLs)
	if err := login.Open(); err != nil {
		return err
	}
	if err := login.LogIn(set.Credentials.Valid); err != nil {
		return err
	}
	title, err := login.DashboardTitle()
	if err != nil {
		return err
	}
	if !dashboardTitle.MatchString(title) {
		return fmt.Errorf("dashboard title %q does not match %s", title, dashboardTitle)
	}
	fmt.Fprintf(out, "logged in as %s: %s\n", set.Credentials.Valid.Username, title)

	if err := page.NewProfile(s, cfg.URLs).LogOut(); err != nil {
		return err
	}
	fmt.Fprintln(out, "logged out")
	return nil
}
