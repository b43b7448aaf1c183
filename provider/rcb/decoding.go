package rcb

import (
	"errors"
	"time"
)

const (
	referenceCode = "USD"
	baseCode      = "RUB"
)

var errNoReference = errors.New("reference currency rate not found")

// rubLatestRates holds one publication day. Each rate is RUB per 1 unit of currency
type rubLatestRates struct {
	time  time.Time
	rates []rubExchangeRate
}

type rubExchangeRate struct {
	code string
	rate float64
}
