package format

import (
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// The dashboard shows Russian marketplace data, so both the number
// printer and the collator use the Russian locale.
var printer = message.NewPrinter(language.Russian)

// Number renders an integer amount with locale thousands separators.
func Number(n int) string {
	return printer.Sprintf("%d", n)
}

// Price renders a price without decimals, with thousands separators.
func Price(v float64) string {
	return printer.Sprintf("%.0f", v)
}

var (
	collatorMu sync.Mutex
	collator   = collate.New(language.Russian)
)

// CompareNames is a locale-aware string comparison for product names.
// The underlying collator is not safe for concurrent use.
func CompareNames(a, b string) int {
	collatorMu.Lock()
	defer collatorMu.Unlock()
	return collator.CompareString(a, b)
}
