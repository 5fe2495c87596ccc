package main

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/advisor/internal/models"
	"github.com/bobmcallan/advisor/internal/services/portfolio"
	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"
)

// renderMarkdown renders md for the terminal, or returns it unchanged when
// plain is set.
func renderMarkdown(md string, plain bool) (string, error) {
	if plain {
		return md, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render output: %w", err)
	}
	return out, nil
}

// cell escapes table separators in user-supplied text.
func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", `\|`)
}

func writeTable(b *strings.Builder, header []string, rows [][]string) {
	b.WriteString("| " + strings.Join(header, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(header)) + "\n")
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = cell(v)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
}

func sessionMarkdown(s *models.Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", s.Name)
	writeTable(&b, []string{"Field", "Value"}, [][]string{
		{"Email", s.Email},
		{"Title", s.Title},
	})
	return b.String()
}

func accountsMarkdown(accounts []models.Account) string {
	var b strings.Builder
	b.WriteString("# Demo accounts\n\n")
	rows := make([][]string, 0, len(accounts))
	for _, a := range accounts {
		rows = append(rows, []string{a.Name, a.Email, a.Password, a.Title})
	}
	writeTable(&b, []string{"Name", "Email", "Password", "Title"}, rows)
	return b.String()
}

func usersMarkdown(users []models.User, portfolios []models.Portfolio) string {
	counts := map[string]int{}
	for _, p := range portfolios {
		counts[p.ClientID]++
	}

	var b strings.Builder
	b.WriteString("# Clients\n\n")
	if len(users) == 0 {
		b.WriteString("No clients yet.\n")
		return b.String()
	}
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{u.ID, u.Name, u.Email, u.Phone, fmt.Sprint(counts[u.ID])})
	}
	writeTable(&b, []string{"ID", "Name", "Email", "Phone", "Portfolios"}, rows)
	return b.String()
}

func userMarkdown(u models.User, portfolios []models.Portfolio) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", cell(u.Name))
	writeTable(&b, []string{"Field", "Value"}, [][]string{
		{"ID", u.ID},
		{"Email", u.Email},
		{"Phone", u.Phone},
	})
	b.WriteString("\n## Portfolios\n\n")
	if len(portfolios) == 0 {
		b.WriteString("No portfolios.\n")
		return b.String()
	}
	writeTable(&b, portfolioHeader, portfolioRows(portfolios, nil))
	return b.String()
}

var portfolioHeader = []string{"ID", "Name", "Client", "Status", "Invested", "Current", "Return"}

func portfolioRows(portfolios []models.Portfolio, clients map[string]string) [][]string {
	rows := make([][]string, 0, len(portfolios))
	for _, p := range portfolios {
		client := p.ClientID
		if name, ok := clients[p.ClientID]; ok {
			client = name
		}
		rows = append(rows, []string{
			p.ID,
			p.Name,
			client,
			string(p.Status),
			portfolio.FormatINR(decimal.NewFromFloat(p.InitialInvestment)),
			portfolio.FormatINR(decimal.NewFromFloat(p.CurrentValue)),
			portfolio.FormatPercent(portfolio.ReturnPercent(p)),
		})
	}
	return rows
}

func portfoliosMarkdown(title string, portfolios []models.Portfolio, clients map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if len(portfolios) == 0 {
		b.WriteString("No portfolios.\n")
		return b.String()
	}
	writeTable(&b, portfolioHeader, portfolioRows(portfolios, clients))
	return b.String()
}

func portfolioMarkdown(p models.Portfolio, client string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", cell(p.Name))
	writeTable(&b, []string{"Field", "Value"}, [][]string{
		{"ID", p.ID},
		{"Client", client},
		{"Status", string(p.Status)},
		{"Initial investment", portfolio.FormatINR(decimal.NewFromFloat(p.InitialInvestment))},
		{"Current value", portfolio.FormatINR(decimal.NewFromFloat(p.CurrentValue))},
		{"Gain", portfolio.FormatINR(portfolio.Gain(p))},
		{"Return", portfolio.FormatPercent(portfolio.ReturnPercent(p))},
		{"Expected return rate", portfolio.FormatPercent(decimal.NewFromFloat(p.ExpectedReturnRate))},
	})

	b.WriteString("\n## Holdings\n\n")
	if len(p.Holdings) == 0 {
		b.WriteString("No holdings.\n")
		return b.String()
	}
	rows := make([][]string, 0, len(p.Holdings)+1)
	for _, h := range p.Holdings {
		rows = append(rows, []string{
			h.Symbol,
			fmt.Sprint(h.Units),
			portfolio.FormatINR(decimal.NewFromFloat(h.AvgPrice)),
			portfolio.FormatINR(portfolio.PositionValue(h)),
		})
	}
	rows = append(rows, []string{"**Total**", "", "", portfolio.FormatINR(portfolio.CostBasis(p))})
	writeTable(&b, []string{"Symbol", "Units", "Avg price", "Cost"}, rows)
	return b.String()
}
