package main

import (
	"fmt"

	"github.com/bobmcallan/advisor/internal/models"
	"github.com/spf13/cobra"
)

func (c *cli) usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"clients"},
		Short:   "Manage clients",
	}
	cmd.AddCommand(
		c.usersListCmd(),
		c.usersShowCmd(),
		c.usersCreateCmd(),
		c.usersUpdateCmd(),
		c.usersRemoveCmd(),
	)
	return cmd
}

func (c *cli) usersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "list",
		Short:       "List clients",
		Args:        cobra.NoArgs,
		Annotations: annotate(routeAuth),
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			return c.render(cmd, usersMarkdown(c.app.Users.All(), c.app.Portfolios.All()))
		}),
	}
}

func (c *cli) usersShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "show <id>",
		Short:       "Show a client and their portfolios",
		Args:        cobra.ExactArgs(1),
		Annotations: annotate(routeAuth),
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			u, ok := c.app.Users.ByID(args[0])
			if !ok {
				return fmt.Errorf("client not found: %s", args[0])
			}
			return c.render(cmd, userMarkdown(u, c.app.Portfolios.ByClient(u.ID)))
		}),
	}
}

func (c *cli) usersCreateCmd() *cobra.Command {
	var payload models.User

	cmd := &cobra.Command{
		Use:         "create",
		Short:       "Add a client",
		Args:        cobra.NoArgs,
		Annotations: annotate(routeAuth),
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			created, err := c.app.Users.Create(cmd.Context(), payload)
			if err != nil {
				return err
			}
			printf(cmd, "Created client %s (%s)", created.Name, created.ID)
			return nil
		}),
	}

	cmd.Flags().StringVar(&payload.Name, "name", "", "Client name")
	cmd.Flags().StringVar(&payload.Email, "email", "", "Client email")
	cmd.Flags().StringVar(&payload.Phone, "phone", "", "Client phone")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func (c *cli) usersUpdateCmd() *cobra.Command {
	var name, email, phone string

	cmd := &cobra.Command{
		Use:         "update <id>",
		Short:       "Change a client's details",
		Args:        cobra.ExactArgs(1),
		Annotations: annotate(routeAuth),
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			patch := models.UserPatch{ID: args[0]}
			flags := cmd.Flags()
			if flags.Changed("name") {
				patch.Name = &name
			}
			if flags.Changed("email") {
				patch.Email = &email
			}
			if flags.Changed("phone") {
				patch.Phone = &phone
			}

			updated, err := c.app.Users.Update(cmd.Context(), patch)
			if err != nil {
				return err
			}
			printf(cmd, "Updated client %s (%s)", updated.Name, updated.ID)
			return nil
		}),
	}

	cmd.Flags().StringVar(&name, "name", "", "Client name")
	cmd.Flags().StringVar(&email, "email", "", "Client email")
	cmd.Flags().StringVar(&phone, "phone", "", "Client phone")
	return cmd
}

func (c *cli) usersRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "remove <id>",
		Aliases:     []string{"rm"},
		Short:       "Remove a client (their portfolios are kept)",
		Args:        cobra.ExactArgs(1),
		Annotations: annotate(routeAuth),
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			if err := c.app.Users.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			printf(cmd, "Removed client %s", args[0])
			return nil
		}),
	}
}
