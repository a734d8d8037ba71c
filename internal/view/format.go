package view

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// Money formats a naira amount with grouping and two decimals.
func Money(amount float64) string {
	return printer.Sprintf("₦%v", number.Decimal(amount,
		number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// Number formats an integer count with grouping.
func Number(n int) string {
	return printer.Sprintf("%v", number.Decimal(n))
}
