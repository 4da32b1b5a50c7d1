package billing

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CurrencyLabel is the display suffix for formatted amounts.
const CurrencyLabel = "F CFA"

var frPrinter = message.NewPrinter(language.French)

// CLDR uses a narrow no-break space as the French grouping separator; the
// regular no-break space is what cp1252 (and the PDF renderer) can print.
var groupSeparator = strings.NewReplacer("\u202f", "\u00a0")

// FormatAmount groups thousands the French way, without decimals.
func FormatAmount(amount float64) string {
	return groupSeparator.Replace(frPrinter.Sprintf("%d", int64(math.Round(amount))))
}

// FormatCFA formats an amount for display, e.g. "40\u00a0000 F CFA".
func FormatCFA(amount float64) string {
	return FormatAmount(amount) + " " + CurrencyLabel
}
