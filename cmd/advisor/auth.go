package main

import (
	"errors"

	"github.com/bobmcallan/advisor/internal/models"
	"github.com/spf13/cobra"
)

func (c *cli) loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:         "login",
		Short:       "Sign in with an advisor account",
		Args:        cobra.NoArgs,
		Annotations: annotate(routeGuest),
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			session, err := c.app.Auth.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			printf(cmd, "Logged in as %s <%s>", session.Name, session.Email)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (c *cli) signupCmd() *cobra.Command {
	var input models.SignupInput

	cmd := &cobra.Command{
		Use:         "signup",
		Short:       "Create an advisor account and sign in",
		Args:        cobra.NoArgs,
		Annotations: annotate(routeGuest),
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			session, err := c.app.Auth.Signup(cmd.Context(), input)
			if err != nil {
				return err
			}
			printf(cmd, "Welcome, %s. Logged in as %s", session.Name, session.Email)
			return nil
		}),
	}

	cmd.Flags().StringVar(&input.Name, "name", "", "Display name")
	cmd.Flags().StringVarP(&input.Email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&input.Password, "password", "p", "", "Account password")
	cmd.Flags().StringVar(&input.Title, "title", "", "Job title")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "logout",
		Short:       "End the current session",
		Args:        cobra.NoArgs,
		Annotations: annotate(routeAuth),
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			email := c.app.Auth.CurrentUser().Email
			if err := c.app.Auth.Logout(cmd.Context()); err != nil {
				return err
			}
			printf(cmd, "Logged out %s", email)
			return nil
		}),
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "whoami",
		Short:       "Show the signed-in advisor",
		Args:        cobra.NoArgs,
		Annotations: annotate(routeAuth),
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			return c.render(cmd, sessionMarkdown(c.app.Auth.CurrentUser()))
		}),
	}
}

func (c *cli) accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Inspect advisor accounts",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "demo",
		Short: "List the demo accounts and their passwords",
		Args:  cobra.NoArgs,
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			demo := c.app.Auth.DemoAccounts()
			if len(demo) == 0 {
				return errors.New("no demo accounts available")
			}
			return c.render(cmd, accountsMarkdown(demo))
		}),
	})
	return cmd
}
