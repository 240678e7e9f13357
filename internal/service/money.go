package service

import (
	"strings"

	"github.com/dustin/go-humanize"
)

// FormatCurrency renders cents as "$1,234.56" (negative: "-$1,234.56").
func FormatCurrency(cents int64) string {
	return FormatCurrencySymbol(cents, "$")
}

// FormatCurrencySymbol is FormatCurrency with a custom symbol.
func FormatCurrencySymbol(cents int64, symbol string) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := humanize.Comma(cents / 100)
	frac := cents % 100
	var b strings.Builder
	b.WriteString(sign)
	b.WriteString(symbol)
	b.WriteString(whole)
	b.WriteByte('.')
	b.WriteByte(byte('0' + frac/10))
	b.WriteByte(byte('0' + frac%10))
	return b.String()
}

// CentsToFloat converts cents to a float for JSON charts.
func CentsToFloat(cents int64) float64 {
	return float64(cents) / 100
}

// OccupancyRate returns occupied/total as a percentage, 0 when there are no rooms.
func OccupancyRate(total, occupied int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(occupied) / float64(total) * 100
}
