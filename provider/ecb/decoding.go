package ecb

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/text/currency"
)

var (
	errDecodeToken       = errors.New("decoding of the markup failed")
	errAttributeNotValid = errors.New("attr is not valid")
	errMissingIterFunc   = errors.New("missing iter function")
	errNoReference       = errors.New("reference currency rate not found")
)

// referenceCode is the currency every ECB rate is re-expressed in
const referenceCode = "USD"

const baseCode = "EUR"

// decodeFunc for parsing data and processing it in streaming mode
type decodeFunc func([]byte, func(rates euroLatestRates) error) error

// euroLatestRates holds one publication day. Each rate is units of currency per 1 EUR
type euroLatestRates struct {
	time  time.Time
	rates []euroExchangeRate
}

type euroExchangeRate struct {
	code string
	rate float64
}

// isoCode normalizes and validates an ISO 4217 code
func isoCode(s string) (string, bool) {
	unit, err := currency.ParseISO(strings.TrimSpace(s))
	if err != nil {
		return "", false
	}

	return unit.String(), true
}
