// Package moneyx formats monetary amounts for display.
package moneyx

import (
	"math"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var symbols = map[currency.Unit]string{
	currency.USD: "$",
	currency.EUR: "€",
	currency.GBP: "£",
	currency.JPY: "¥",
}

// FormatCurrency renders a balance as en-US dollars, e.g. "$1,234.50".
func FormatCurrency(balance float64) string {
	return Format(balance, currency.USD, language.AmericanEnglish)
}

// Format renders amount in unit using the grouping and decimal marks of
// tag. The number of decimals is the currency's standard scale.
func Format(amount float64, unit currency.Unit, tag language.Tag) string {
	scale, _ := currency.Standard.Rounding(unit)

	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	p := message.NewPrinter(tag)
	digits := p.Sprint(number.Decimal(amount, number.Scale(scale)))
	if digits == p.Sprint(number.Decimal(0.0, number.Scale(scale))) {
		sign = ""
	}

	return sign + Symbol(unit) + digits
}

// Symbol returns the display symbol of unit, falling back to its ISO code
// followed by a space.
func Symbol(unit currency.Unit) string {
	if s, ok := symbols[unit]; ok {
		return s
	}
	return unit.String() + " "
}

// Round rounds amount to the standard scale of unit.
func Round(amount float64, unit currency.Unit) float64 {
	scale, _ := currency.Standard.Rounding(unit)
	pow := math.Pow10(scale)
	return math.Round(amount*pow) / pow
}
