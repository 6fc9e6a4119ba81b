package catalog

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FreeLabel is shown instead of a zero price.
const FreeLabel = "Free"

var inrPrinter = message.NewPrinter(language.MustParse("en-IN"))

// FormatPrice renders a rupee amount with Indian digit grouping, or "Free" for 0.
func FormatPrice(price int) string {
	if price == 0 {
		return FreeLabel
	}
	return "₹" + inrPrinter.Sprintf("%d", price)
}
