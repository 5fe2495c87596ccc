package main

import (
	"errors"

	"github.com/bobmcallan/advisor/internal/app"
	"github.com/bobmcallan/advisor/internal/common"
	"github.com/spf13/cobra"
)

func (c *cli) storeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Maintain the workspace store",
	}

	var yes bool
	clearCmd := &cobra.Command{
		Use:         "clear",
		Short:       "Delete every client and portfolio; demo data is seeded again on the next run",
		Args:        cobra.NoArgs,
		Annotations: annotate(routeAuth),
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear the store without --yes")
			}
			ctx := cmd.Context()
			if err := c.app.Storage.Clear(ctx); err != nil {
				return err
			}
			if _, err := c.app.Users.FetchAll(ctx); err != nil {
				return err
			}
			if _, err := c.app.Portfolios.FetchAll(ctx); err != nil {
				return err
			}
			printf(cmd, "Cleared clients and portfolios")
			return nil
		}),
	}
	clearCmd.Flags().BoolVar(&yes, "yes", false, "Confirm the deletion")

	cmd.AddCommand(clearCmd)
	return cmd
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: annotate(routeBare),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := app.LoadConfig(c.configPath)
			if err != nil {
				return err
			}
			common.PrintBanner(cmd.OutOrStdout(), config)
			printf(cmd, "advisor %s", common.GetFullVersion())
			return nil
		},
	}
}
