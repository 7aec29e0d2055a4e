package invoice

import (
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/papayaah/invoicees/internal/entity"
)

// CalculateTotal sums unitPrice*quantity over items. Sums are taken in decimal
// so that 0.1+0.2 style drift does not reach the displayed total.
func CalculateTotal(items []entity.LineItem) float64 {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(finite(it.UnitPrice).Mul(finite(it.Quantity)))
	}
	f, _ := sum.Float64()
	return f
}

func finite(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

var amountPrinter = message.NewPrinter(language.English)

// FormatCurrency renders an amount with thousands grouping and two decimals,
// e.g. 1234.5 -> "1,234.50". No currency symbol is added.
func FormatCurrency(amount float64) string {
	return amountPrinter.Sprintf("%.2f", amount)
}
