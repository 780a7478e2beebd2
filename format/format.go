// Package format renders money and percentages for display in es-ES.
// The output is for people only and is never parsed back.
package format

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.Spanish)

// EUR formats an amount with two decimals and a euro suffix, e.g. "1.095,10 €".
func EUR(v decimal.Decimal) string {
	return printer.Sprintf("%v €", number.Decimal(
		v.Round(2).InexactFloat64(),
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}

// Pct formats a percentage with up to three decimals, e.g. "2,7 %".
func Pct(v decimal.Decimal) string {
	return printer.Sprintf("%v %%", number.Decimal(
		v.Round(3).InexactFloat64(),
		number.MaxFractionDigits(3),
	))
}

// Months formats a term as "360 meses".
func Months(n int) string {
	return printer.Sprintf("%d meses", n)
}
