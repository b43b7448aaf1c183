package provider

import (
	"context"

	"github.com/robotomize/swapkit/quote"
)

// Source is an interface for getting price observations from external sources. Source takes care of receiving
// and decoding data and gives back raw quotes priced in the reference unit
//
//go:generate mockgen -source source.go -destination mock_source.go -package provider
type Source interface {
	// FetchLatest obtains the latest price observations. Records that can not be decoded are skipped,
	// an error means the source as a whole was unavailable
	FetchLatest(ctx context.Context) ([]quote.RawQuote, error)
}
