package main

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/advisor/internal/app"
	"github.com/bobmcallan/advisor/internal/common"
	"github.com/bobmcallan/advisor/internal/metrics"
	"github.com/bobmcallan/advisor/internal/models"
	"github.com/spf13/cobra"
)

// Route annotations read by the guard in PersistentPreRunE.
const (
	routeKey   = "route"
	routeAuth  = "auth"  // requires a session
	routeGuest = "guest" // requires no session
	routeBare  = "bare"  // runs without hydrating the workspace
)

// cli carries global flags and the hydrated workspace between hooks and
// subcommands.
type cli struct {
	configPath  string
	logLevel    string
	plain       bool
	showMetrics bool

	app *app.App
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	cmd := &cobra.Command{
		Use:   "advisor",
		Short: "Client and portfolio workspace for wealth advisors",
		Long: `Advisor manages clients and their investment portfolios.

Sign in with a demo account (see "advisor accounts demo") or create one with
"advisor signup". Data is kept in the configured store between runs.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.preRun,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.postRun(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", "", "Config file path (TOML)")
	flags.StringVar(&c.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.BoolVar(&c.plain, "plain", false, "Print plain markdown instead of rendered output")
	flags.BoolVar(&c.showMetrics, "metrics", false, "Dump Prometheus metrics to stderr on exit")

	cmd.AddCommand(
		c.loginCmd(),
		c.signupCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.accountsCmd(),
		c.usersCmd(),
		c.portfoliosCmd(),
		c.storeCmd(),
		c.versionCmd(),
	)

	return cmd
}

func (c *cli) preRun(cmd *cobra.Command, args []string) error {
	route := cmd.Annotations[routeKey]
	if route == routeBare {
		return nil
	}

	config, err := app.LoadConfig(c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		config.Logging.Level = c.logLevel
	}
	logger := common.NewLoggerFromConfig(config.Logging)

	a, err := app.NewAppWithConfig(cmd.Context(), config, logger)
	if err != nil {
		logger.Close()
		return err
	}
	c.app = a

	if err := guard(route, a); err != nil {
		c.close()
		return err
	}
	return nil
}

// guard enforces the route annotation against the hydrated session.
func guard(route string, a *app.App) error {
	switch route {
	case routeAuth:
		if !a.IsAuthenticated() {
			return fmt.Errorf("login required: %w", models.ErrNotAuthenticated)
		}
	case routeGuest:
		if a.IsAuthenticated() {
			return fmt.Errorf("already logged in as %s", a.Auth.CurrentUser().Email)
		}
	}
	return nil
}

func (c *cli) postRun(cmd *cobra.Command) error {
	if c.app == nil {
		return nil
	}
	defer c.close()

	if c.showMetrics {
		return metrics.WriteText(cmd.ErrOrStderr(), c.app.Registry)
	}
	return nil
}

// close releases the workspace. Cobra skips the post-run hook when RunE
// fails, so commands that error close it from run.
func (c *cli) close() {
	if c.app != nil {
		c.app.Close()
		c.app = nil
	}
}

// run adapts a workspace action into a cobra RunE.
func (c *cli) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			c.close()
			return err
		}
		return nil
	}
}

func annotate(route string) map[string]string {
	return map[string]string{routeKey: route}
}

func (c *cli) render(cmd *cobra.Command, markdown string) error {
	out, err := renderMarkdown(markdown, c.plain)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), out)
	return err
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
	if !strings.HasSuffix(format, "\n") {
		fmt.Fprintln(cmd.OutOrStdout())
	}
}
