package model

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.English)

// FormatMoney renders a dollar amount with grouping separators and two
// decimals, e.g. 1234.5 -> "$1,234.50".
func FormatMoney(amount float64) string {
	return moneyPrinter.Sprintf("$%.2f", amount)
}
