package portfolio

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/bobmcallan/advisor/internal/models"
)

// Payload is loosely typed portfolio input as it arrives from a form or
// the command line.
type Payload = map[string]any

// Normalize coerces payload into a canonical portfolio. It never fails:
// unparseable numbers become 0, a missing or non-list holdings value becomes
// an empty list and non-string text fields become "". Status is copied
// as given.
func Normalize(payload Payload) models.Portfolio {
	return models.Portfolio{
		ID:                 text(payload["id"]),
		ClientID:           text(payload["clientId"]),
		Name:               text(payload["name"]),
		Status:             models.PortfolioStatus(text(payload["status"])),
		InitialInvestment:  NumberOrZero(payload["initialInvestment"]),
		CurrentValue:       NumberOrZero(payload["currentValue"]),
		ExpectedReturnRate: NumberOrZero(payload["expectedReturnRate"]),
		Holdings:           normalizeHoldings(payload["holdings"]),
	}
}

func normalizeHoldings(v any) []models.Holding {
	var items []any
	switch t := v.(type) {
	case []any:
		items = t
	case []map[string]any:
		items = make([]any, len(t))
		for i, m := range t {
			items[i] = m
		}
	case []models.Holding:
		items = make([]any, len(t))
		for i, h := range t {
			items[i] = holdingPayload(h)
		}
	default:
		return []models.Holding{}
	}

	holdings := make([]models.Holding, 0, len(items))
	for _, item := range items {
		m, _ := item.(map[string]any)
		holdings = append(holdings, models.Holding{
			Symbol:   text(m["symbol"]),
			Units:    NumberOrZero(m["units"]),
			AvgPrice: NumberOrZero(m["avgPrice"]),
		})
	}
	return holdings
}

// PayloadFrom converts a stored portfolio back into payload form, e.g. to
// prefill an edit.
func PayloadFrom(p models.Portfolio) Payload {
	holdings := make([]any, 0, len(p.Holdings))
	for _, h := range p.Holdings {
		holdings = append(holdings, holdingPayload(h))
	}
	return Payload{
		"id":                 p.ID,
		"clientId":           p.ClientID,
		"name":               p.Name,
		"status":             string(p.Status),
		"initialInvestment":  p.InitialInvestment,
		"currentValue":       p.CurrentValue,
		"expectedReturnRate": p.ExpectedReturnRate,
		"holdings":           holdings,
	}
}

func holdingPayload(h models.Holding) map[string]any {
	return map[string]any{
		"symbol":   h.Symbol,
		"units":    h.Units,
		"avgPrice": h.AvgPrice,
	}
}

func text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case models.PortfolioStatus:
		return string(t)
	default:
		return ""
	}
}

// NumberOrZero converts v to a finite number, or 0 when it has no numeric
// reading. Strings are trimmed and parsed as decimal literals, or as
// integers with a 0x, 0o or 0b prefix; true counts as 1.
func NumberOrZero(v any) float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int8:
		f = float64(t)
	case int16:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint:
		f = float64(t)
	case uint8:
		f = float64(t)
	case uint16:
		f = float64(t)
	case uint32:
		f = float64(t)
	case uint64:
		f = float64(t)
	case bool:
		if t {
			f = 1
		}
	case json.Number:
		f = parseNumber(string(t))
	case string:
		f = parseNumber(t)
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	lower := strings.ToLower(s)
	if base := radixBase(lower); base != 0 {
		n, err := strconv.ParseUint(lower[2:], base, 64)
		if err != nil {
			return 0
		}
		return float64(n)
	}

	// Go float syntax is wider than a plain decimal literal: hex floats,
	// digit separators and the inf/nan spellings are rejected here.
	if strings.ContainsAny(lower, "xp_") || strings.Contains(lower, "inf") || strings.Contains(lower, "nan") {
		return 0
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// radixBase returns the base named by a 0x, 0o or 0b prefix, or 0.
func radixBase(lower string) int {
	if len(lower) < 2 {
		return 0
	}
	switch lower[:2] {
	case "0x":
		return 16
	case "0o":
		return 8
	case "0b":
		return 2
	}
	return 0
}
