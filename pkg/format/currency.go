// Package format renders amounts the way Swiss customers read them.
package format

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iwvelando/credit-wizard/pkg/constants"
)

// Currency returns a currency string with the CHF code and apostrophe
// thousands separators (e.g., "CHF 10'000.00", "-CHF 1'234.56").
func Currency(amount float64) string {
	return CurrencyDecimal(decimal.NewFromFloat(amount))
}

// CurrencyDecimal is Currency for decimal amounts.
func CurrencyDecimal(amount decimal.Decimal) string {
	formatted := formatPositive(amount.Abs())
	if amount.IsNegative() && formatted != "0.00" {
		return "-" + constants.CurrencyCode + " " + formatted
	}
	return constants.CurrencyCode + " " + formatted
}

// NumericCurrency returns an amount without currency code but with separators (e.g., "-1'234.56").
func NumericCurrency(amount float64) string {
	d := decimal.NewFromFloat(amount)
	formatted := formatPositive(d.Abs())
	if d.IsNegative() && formatted != "0.00" {
		return "-" + formatted
	}
	return formatted
}

func formatPositive(value decimal.Decimal) string {
	formatted := value.StringFixed(2)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte('\'')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + "." + decPart
}
