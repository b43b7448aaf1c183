// Package format renders quotes and amounts for display.
package format

import (
	"sort"

	"github.com/robotomize/swapkit/quote"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	MinFractionDigits     = 2
	DefaultFractionDigits = 8
)

// Amount formats v as a grouped decimal with at least two and at most maxFraction fraction digits.
// A non-positive maxFraction means DefaultFractionDigits
func Amount(v float64, maxFraction int) string {
	if maxFraction <= 0 {
		maxFraction = DefaultFractionDigits
	}

	if maxFraction < MinFractionDigits {
		maxFraction = MinFractionDigits
	}

	return message.NewPrinter(language.English).Sprint(number.Decimal(
		v,
		number.MinFractionDigits(MinFractionDigits),
		number.MaxFractionDigits(maxFraction),
	))
}

// SortByCode orders quotes by currency code, keeping the input order of equal codes
func SortByCode(list []quote.CanonicalQuote) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Currency < list[j].Currency
	})
}
