package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/padaiyal/harmony-e2e/config"
	"github.com/padaiyal/harmony-e2e/focus"
	"github.com/padaiyal/harmony-e2e/page"
	"github.com/padaiyal/harmony-e2e/session"
)

// tabOrderPage opens a page and returns its expected focus sequence.
type tabOrderPage func(s *session.Session) ([]focus.Entry, error)

var tabOrderPages = map[string]tabOrderPage{
	"login": func(s *session.Session) ([]focus.Entry, error) {
		p := page.NewLogin(s, cfg.URLs)
		return p.TabOrder(), p.Open()
	},
	"new-account": func(s *session.Session) ([]focus.Entry, error) {
		p := page.NewNewAccount(s, cfg.URLs)
		return p.TabOrder(), p.Open()
	},
}

var (
	allPagesFlag bool
	jsonFlag     bool
	parallelFlag int
)

var tabOrderCmd = &cobra.Command{
	Use:   "tab-order [page...]",
	Short: "Check keyboard focus order on one or more pages",
	Long: `tab-order opens each named page in its own browser session, presses TAB
through its controls and reports every control that did not receive focus.

Pages: ` + strings.Join(pageNames(), ", "),
	RunE: runTabOrder,
}

func init() {
	tabOrderCmd.Flags().BoolVar(&allPagesFlag, "all", false, "Check every known page")
	tabOrderCmd.Flags().BoolVar(&jsonFlag, "json", false, "Print JSON reports instead of diffs")
	tabOrderCmd.Flags().IntVar(&parallelFlag, "parallel", 2, "Browsers to run at once")
}

func pageNames() []string {
	names := make([]string, 0, len(tabOrderPages))
	for name := range tabOrderPages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func runTabOrder(cmd *cobra.Command, args []string) error {
	names := args
	if allPagesFlag {
		names = pageNames()
	}
	if len(names) == 0 {
		return fmt.Errorf("name a page or pass --all (pages: %s)", strings.Join(pageNames(), ", "))
	}
	for _, name := range names {
		if _, ok := tabOrderPages[name]; !ok {
			return fmt.Errorf("unknown page %q", name)
		}
	}

	results := make([]focus.Result, len(names))
	var g errgroup.Group
	g.SetLimit(parallelism(cfg, parallelFlag))
	for i, name := range names {
		g.Go(func() error {
			res, err := checkTabOrder(name)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var failed []string
	for i, res := range results {
		if jsonFlag {
			raw, err := res.JSON()
			if err != nil {
				return err
			}
			fmt.Fprintln(out, raw)
		} else {
			fmt.Fprintf(out, "== %s\n%s", names[i], res.Diff())
		}
		if !res.OK() {
			failed = append(failed, names[i])
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("tab order mismatch on %s", strings.Join(failed, ", "))
	}
	return nil
}

// parallelism caps requested at one when every local session would bind the
// same configured driver port.
func parallelism(c *config.Config, requested int) int {
	if requested <= 1 {
		return 1
	}
	if c.Backend == config.BackendSelenium && c.Selenium.RemoteURL == "" && c.Selenium.Port != 0 {
		log.Warn("a fixed selenium.port serializes tab-order runs", zap.Int("port", c.Selenium.Port))
		return 1
	}
	return requested
}

// checkTabOrder runs one page in a session of its own.
func checkTabOrder(name string) (res focus.Result, err error) {
	plog := log.With(zap.String("page", name))
	s, err := session.Launch(cfg, plog)
	if err != nil {
		return res, err
	}
	defer func() {
		if qerr := s.Quit(); qerr != nil && err == nil {
			err = qerr
		}
	}()

	entries, err := tabOrderPages[name](s)
	if err != nil {
		return res, err
	}
	v := focus.New(s, focus.WithKeySettle(cfg.Timeouts.KeySettle), focus.WithLogger(plog.Named("focus")))
	return v.Validate(entries)
}
