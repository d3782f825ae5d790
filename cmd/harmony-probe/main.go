// Command harmony-probe drives a browser against a Harmony Church Suite
// deployment outside of go test: it prints the effective configuration,
// checks keyboard tab order page by page and runs a login smoke check.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/padaiyal/harmony-e2e/config"
	"github.com/padaiyal/harmony-e2e/fixtures"
	"github.com/padaiyal/harmony-e2e/logging"
)

var (
	configPathFlag string

	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "harmony-probe",
	Short: "Browser probes for Harmony Church Suite",
	Long: `harmony-probe launches a real browser through Selenium or Playwright and
runs the same page objects the end-to-end suites use.

Configuration comes from defaults, an optional YAML file and HARMONY_*
environment variables, in that order.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPathFlag, "config", "", "YAML config file (default $HARMONY_CONFIG)")
	flags.String("browser", "", "Browser to launch: chrome or firefox")
	flags.String("backend", "", "Automation backend: selenium or playwright")
	flags.Bool("headless", true, "Run the browser without a window")
	flags.String("base-url", "", "Application base URL")
	flags.String("log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(tabOrderCmd)
	rootCmd.AddCommand(smokeCmd)
}

// setup loads configuration with command line flags taking precedence over
// the file and the environment.
func setup(cmd *cobra.Command, args []string) error {
	v, err := config.New(configPathFlag)
	if err != nil {
		return err
	}
	if err := bindFlags(v, cmd); err != nil {
		return err
	}
	if cfg, err = config.FromViper(v); err != nil {
		return err
	}
	if log, err = logging.New(cfg.Log.Level, cfg.Log.Development); err != nil {
		return err
	}
	return nil
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for key, flag := range map[string]string{
		"browser":   "browser",
		"backend":   "backend",
		"headless":  "headless",
		"urls.base": "base-url",
		"log.level": "log-level",
	} {
		f := cmd.Flags().Lookup(flag)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding --%s: %w", flag, err)
		}
	}
	return nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		return enc.Close()
	},
}

func loadFixtures() (*fixtures.Set, error) {
	return fixtures.Load(cfg.Fixtures)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
