package quote

import (
	"math"
	"path"
	"sort"
	"strings"
	"time"
)

// AssetsDir is the root of the icon asset path convention
const AssetsDir = "/assets"

// RawQuote represents one reported price observation of a currency. Price is expressed in the reference unit,
// an absent price is represented by zero
type RawQuote struct {
	Currency   string
	Price      float64
	ObservedAt time.Time
}

// Valid reports whether the observation can take part in reconciliation. Only strictly positive finite prices
// are valid
func (q RawQuote) Valid() bool {
	if q.Currency == "" {
		return false
	}

	return q.Price > 0 && !math.IsInf(q.Price, 1)
}

// CanonicalQuote is the single deduplicated, display-ready price record of a currency
type CanonicalQuote struct {
	Currency string
	Price    float64
	IconRef  string
}

// IconRef returns the icon asset path for the currency code, e.g. ETH => /assets/eth.svg
func IconRef(code string) string {
	return path.Join(AssetsDir, strings.ToLower(code)+".svg")
}

// Book indexes canonical quotes by currency code
type Book map[string]CanonicalQuote

func NewBook(quotes []CanonicalQuote) Book {
	b := make(Book, len(quotes))
	for _, q := range quotes {
		b[q.Currency] = q
	}

	return b
}

func (b Book) Lookup(code string) (CanonicalQuote, bool) {
	q, ok := b[code]
	return q, ok
}

// Codes returns the sorted list of quoted currency codes
func (b Book) Codes() []string {
	codes := make([]string, 0, len(b))
	for code := range b {
		codes = append(codes, code)
	}

	sort.Strings(codes)

	return codes
}
