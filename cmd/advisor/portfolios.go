package main

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/advisor/internal/models"
	"github.com/bobmcallan/advisor/internal/services/portfolio"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// portfolioFlags are the form fields shared by create and update. Values stay
// strings so the normalizer sees exactly what was typed.
type portfolioFlags struct {
	clientID string
	name     string
	status   string
	initial  string
	current  string
	rate     string
	holdings []string
}

func (f *portfolioFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.clientID, "client", "", "Client id")
	fs.StringVar(&f.name, "name", "", "Portfolio name")
	fs.StringVar(&f.status, "status", "", "Status (ACTIVE, UPCOMING, CLOSED)")
	fs.StringVar(&f.initial, "initial", "", "Initial investment")
	fs.StringVar(&f.current, "current", "", "Current value")
	fs.StringVar(&f.rate, "rate", "", "Expected return rate (percent)")
	fs.StringArrayVar(&f.holdings, "holding", nil, "Holding as SYMBOL:UNITS:AVG_PRICE (repeatable)")
}

// apply copies every flag the user set into payload.
func (f *portfolioFlags) apply(fs *pflag.FlagSet, payload portfolio.Payload) error {
	if fs.Changed("status") {
		status, ok := models.ParseStatus(f.status)
		if !ok {
			return fmt.Errorf("invalid status %q: expected one of ACTIVE, UPCOMING, CLOSED", f.status)
		}
		payload["status"] = string(status)
	}

	fields := map[string]struct {
		key   string
		value string
	}{
		"client":  {"clientId", f.clientID},
		"name":    {"name", f.name},
		"initial": {"initialInvestment", f.initial},
		"current": {"currentValue", f.current},
		"rate":    {"expectedReturnRate", f.rate},
	}
	for flag, field := range fields {
		if fs.Changed(flag) {
			payload[field.key] = field.value
		}
	}

	if fs.Changed("holding") {
		holdings := make([]any, 0, len(f.holdings))
		for _, raw := range f.holdings {
			h, err := parseHolding(raw)
			if err != nil {
				return err
			}
			holdings = append(holdings, h)
		}
		payload["holdings"] = holdings
	}
	return nil
}

// parseHolding splits "SYMBOL:UNITS:AVG_PRICE". Numbers are left for the
// normalizer; only the shape is checked here.
func parseHolding(raw string) (map[string]any, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid holding %q: expected SYMBOL:UNITS:AVG_PRICE", raw)
	}
	return map[string]any{
		"symbol":   strings.ToUpper(strings.TrimSpace(parts[0])),
		"units":    parts[1],
		"avgPrice": parts[2],
	}, nil
}

func (c *cli) portfoliosCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portfolios",
		Short: "Manage client portfolios",
	}
	cmd.AddCommand(
		c.portfoliosListCmd(),
		c.portfoliosShowCmd(),
		c.portfoliosCreateCmd(),
		c.portfoliosUpdateCmd(),
		c.portfoliosRemoveCmd(),
	)
	return cmd
}

func (c *cli) clientNames() map[string]string {
	names := map[string]string{}
	for _, u := range c.app.Users.All() {
		names[u.ID] = u.Name
	}
	return names
}

func (c *cli) portfoliosListCmd() *cobra.Command {
	var status, client string

	cmd := &cobra.Command{
		Use:         "list",
		Short:       "List portfolios",
		Args:        cobra.NoArgs,
		Annotations: annotate(routeAuth),
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			filter := models.StatusAll
			if status != "" && !strings.EqualFold(status, string(models.StatusAll)) {
				parsed, ok := models.ParseStatus(status)
				if !ok {
					return fmt.Errorf("invalid status %q: expected ALL, ACTIVE, UPCOMING or CLOSED", status)
				}
				filter = parsed
			}

			list := c.app.Portfolios.FilteredByStatus(filter)
			if client != "" {
				list = filterByClient(list, client)
			}

			title := "Portfolios"
			if filter != models.StatusAll {
				title = fmt.Sprintf("%s portfolios", filter)
			}
			return c.render(cmd, portfoliosMarkdown(title, list, c.clientNames()))
		}),
	}

	cmd.Flags().StringVar(&status, "status", "ALL", "Filter by status (ALL, ACTIVE, UPCOMING, CLOSED)")
	cmd.Flags().StringVar(&client, "client", "", "Only show portfolios of this client id")
	return cmd
}

func filterByClient(list []models.Portfolio, clientID string) []models.Portfolio {
	out := make([]models.Portfolio, 0, len(list))
	for _, p := range list {
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	return out
}

func (c *cli) portfoliosShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "show <id>",
		Short:       "Show a portfolio with its holdings",
		Args:        cobra.ExactArgs(1),
		Annotations: annotate(routeAuth),
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			p, ok := c.app.Portfolios.ByID(args[0])
			if !ok {
				return fmt.Errorf("portfolio not found: %s", args[0])
			}
			client := p.ClientID
			if name, ok := c.clientNames()[p.ClientID]; ok {
				client = name
			}
			return c.render(cmd, portfolioMarkdown(p, client))
		}),
	}
}

func (c *cli) portfoliosCreateCmd() *cobra.Command {
	var f portfolioFlags

	cmd := &cobra.Command{
		Use:         "create",
		Short:       "Create a portfolio for a client",
		Args:        cobra.NoArgs,
		Annotations: annotate(routeAuth),
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			payload := portfolio.Payload{"status": string(models.StatusActive)}
			if err := f.apply(cmd.Flags(), payload); err != nil {
				return err
			}
			if _, ok := c.app.Users.ByID(f.clientID); !ok {
				return fmt.Errorf("client not found: %s", f.clientID)
			}

			created, err := c.app.Portfolios.Create(cmd.Context(), payload)
			if err != nil {
				return err
			}
			printf(cmd, "Created portfolio %s (%s)", created.Name, created.ID)
			return nil
		}),
	}

	f.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("client")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func (c *cli) portfoliosUpdateCmd() *cobra.Command {
	var f portfolioFlags

	cmd := &cobra.Command{
		Use:         "update <id>",
		Short:       "Edit a portfolio; unset flags keep their current values",
		Args:        cobra.ExactArgs(1),
		Annotations: annotate(routeAuth),
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			existing, ok := c.app.Portfolios.ByID(args[0])
			if !ok {
				return fmt.Errorf("portfolio not found: %s", args[0])
			}

			payload := portfolio.PayloadFrom(existing)
			if err := f.apply(cmd.Flags(), payload); err != nil {
				return err
			}

			updated, err := c.app.Portfolios.Update(cmd.Context(), payload)
			if err != nil {
				return err
			}
			printf(cmd, "Updated portfolio %s (%s)", updated.Name, updated.ID)
			return nil
		}),
	}

	f.register(cmd.Flags())
	return cmd
}

func (c *cli) portfoliosRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "remove <id>",
		Aliases:     []string{"rm"},
		Short:       "Delete a portfolio",
		Args:        cobra.ExactArgs(1),
		Annotations: annotate(routeAuth),
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			if err := c.app.Portfolios.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			printf(cmd, "Removed portfolio %s", args[0])
			return nil
		}),
	}
}
