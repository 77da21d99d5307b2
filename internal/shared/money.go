package shared

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var sarPrinter = message.NewPrinter(language.MustParse("ar-SA"))

// FormatSAR renders an amount as Saudi riyal the way invoices and reports
// display it, without fraction digits for whole amounts.
func FormatSAR(amount float64) string {
	unit := currency.SAR.Amount(amount)
	return sarPrinter.Sprint(currency.Symbol(unit))
}
