// Package format renders calculated values for display. Calculations keep
// full precision everywhere else; rounding happens only here.
//
// Zero, NaN and infinities render as the zero string ("$0", "₹0", "0.00%").
// Halves round away from zero.
package format

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	usPrinter     = message.NewPrinter(language.AmericanEnglish)
	indianPrinter = message.NewPrinter(language.MustParse("en-IN"))
)

// USD formats whole dollars with US digit grouping: $1,234,568.
func USD(v float64) string {
	return currency(usPrinter, "$", v)
}

// INR formats whole rupees with Indian digit grouping: ₹12,34,568.
func INR(v float64) string {
	return currency(indianPrinter, "₹", v)
}

// USDDecimal and INRDecimal format exact amounts such as quota buckets.
func USDDecimal(d decimal.Decimal) string {
	return currencyDecimal(usPrinter, "$", d)
}

func INRDecimal(d decimal.Decimal) string {
	return currencyDecimal(indianPrinter, "₹", d)
}

// Percent formats a fraction as a percentage with two decimals: 0.1235 -> 12.35%.
func Percent(fraction float64) string {
	if isZeroLike(fraction) {
		return "0.00%"
	}
	d := decimal.NewFromFloat(fraction).Shift(2).Round(2)
	if d.IsZero() {
		return "0.00%"
	}

	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	whole := d.Truncate(0)
	cents := d.Sub(whole).Shift(2).IntPart()
	return sign + usPrinter.Sprintf("%d", whole.IntPart()) + fmt.Sprintf(".%02d%%", cents)
}

// Points formats an attainment percentage that is already scaled to 0-100,
// one decimal as computed: 87.5 -> 87.5%.
func Points(percentage float64) string {
	if math.IsNaN(percentage) || math.IsInf(percentage, 0) {
		return "0%"
	}
	return decimal.NewFromFloat(percentage).Round(1).String() + "%"
}

func currency(p *message.Printer, symbol string, v float64) string {
	if isZeroLike(v) {
		return symbol + "0"
	}
	return currencyDecimal(p, symbol, decimal.NewFromFloat(v))
}

func currencyDecimal(p *message.Printer, symbol string, d decimal.Decimal) string {
	d = d.Round(0)
	if d.IsZero() {
		return symbol + "0"
	}
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	return sign + symbol + p.Sprintf("%d", d.IntPart())
}

func isZeroLike(v float64) bool {
	return v == 0 || math.IsNaN(v) || math.IsInf(v, 0)
}
