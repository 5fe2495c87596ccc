// Package models defines data structures for the advisor workspace
package models

import "strings"

// PortfolioStatus is the lifecycle state of a portfolio.
type PortfolioStatus string

const (
	StatusActive   PortfolioStatus = "ACTIVE"
	StatusUpcoming PortfolioStatus = "UPCOMING"
	StatusClosed   PortfolioStatus = "CLOSED"

	// StatusAll is a filter value only; it is never stored on a portfolio.
	StatusAll PortfolioStatus = "ALL"
)

// PortfolioStatuses lists the storable statuses in display order.
var PortfolioStatuses = []PortfolioStatus{StatusActive, StatusUpcoming, StatusClosed}

// ParseStatus matches s case-insensitively against the storable statuses.
func ParseStatus(s string) (PortfolioStatus, bool) {
	want := PortfolioStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, st := range PortfolioStatuses {
		if st == want {
			return st, true
		}
	}
	return "", false
}

// Portfolio is a client's investment portfolio. All numeric fields are
// user-supplied and already normalized to finite numbers.
type Portfolio struct {
	ID                 string          `json:"id"`
	ClientID           string          `json:"clientId"`
	Name               string          `json:"name"`
	Status             PortfolioStatus `json:"status"`
	InitialInvestment  float64         `json:"initialInvestment"`
	CurrentValue       float64         `json:"currentValue"`
	ExpectedReturnRate float64         `json:"expectedReturnRate"`
	Holdings           []Holding       `json:"holdings"`
}

// Holding represents a single position inside a portfolio.
type Holding struct {
	Symbol   string  `json:"symbol"`
	Units    float64 `json:"units"`
	AvgPrice float64 `json:"avgPrice"`
}
