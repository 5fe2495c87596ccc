package portfolio

import (
	"github.com/Rhymond/go-money"
	"github.com/bobmcallan/advisor/internal/models"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ReturnPercent is (currentValue - initialInvestment) / initialInvestment
// as a percentage. A portfolio with no initial investment returns 0.
func ReturnPercent(p models.Portfolio) decimal.Decimal {
	initial := decimal.NewFromFloat(p.InitialInvestment)
	if initial.IsZero() {
		return decimal.Zero
	}
	return Gain(p).Div(initial).Mul(hundred)
}

// Gain is currentValue - initialInvestment.
func Gain(p models.Portfolio) decimal.Decimal {
	return decimal.NewFromFloat(p.CurrentValue).Sub(decimal.NewFromFloat(p.InitialInvestment))
}

// PositionValue is units * avgPrice for one holding.
func PositionValue(h models.Holding) decimal.Decimal {
	return decimal.NewFromFloat(h.Units).Mul(decimal.NewFromFloat(h.AvgPrice))
}

// CostBasis sums the position values of every holding.
func CostBasis(p models.Portfolio) decimal.Decimal {
	total := decimal.Zero
	for _, h := range p.Holdings {
		total = total.Add(PositionValue(h))
	}
	return total
}

// FormatPercent renders d with two decimals, e.g. "50.00%".
func FormatPercent(d decimal.Decimal) string {
	return d.StringFixed(2) + "%"
}

// FormatINR renders d as rupees, e.g. "₹50.00".
func FormatINR(d decimal.Decimal) string {
	paise := d.Mul(hundred).Round(0).IntPart()
	return money.New(paise, money.INR).Display()
}
