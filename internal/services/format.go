package services

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.English)

// formatMoney renders an amount with thousands separators and two decimals
func formatMoney(amount float64) string {
	return moneyPrinter.Sprintf("%.2f", amount)
}
