package finance

import (
	"strings"

	"github.com/shopspring/decimal"
)

const currencySymbol = "₱"

// Peso renders an amount like "₱1,234,567.89".
func Peso(d decimal.Decimal) string {
	return currencySymbol + groupFixed(d, false)
}

// SignedPeso renders an amount with an explicit sign, like "₱+1,200.00".
func SignedPeso(d decimal.Decimal) string {
	return currencySymbol + groupFixed(d, true)
}

func groupFixed(d decimal.Decimal, forceSign bool) string {
	s := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	switch {
	case d.Round(2).IsNegative():
		b.WriteByte('-')
	case forceSign:
		b.WriteByte('+')
	}
	lead := len(intPart) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(intPart[:lead])
	for i := lead; i < len(intPart); i += 3 {
		b.WriteByte(',')
		b.WriteString(intPart[i : i+3])
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}
