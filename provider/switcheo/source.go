package switcheo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/robotomize/swapkit/provider"
	"github.com/robotomize/swapkit/provider/httputil"
	"github.com/robotomize/swapkit/quote"
)

const hostname = "interview.switcheo.com"

const latestRawPath = "/prices.json"

// DefaultLatestURL is the public price list of the swap form
var DefaultLatestURL = url.URL{Scheme: "https", Host: hostname, Path: latestRawPath}

var _ provider.Source = (*source)(nil)

type fetcher struct {
	u url.URL
	httputil.SourceHTTPClient
}

// NewSource returns the price list source reading from DefaultLatestURL
func NewSource(client *http.Client) *source {
	return NewSourceURL(client, DefaultLatestURL)
}

// NewSourceURL returns the price list source reading from u
func NewSourceURL(client *http.Client, u url.URL) *source {
	return &source{
		client: fetcher{
			u:                u,
			SourceHTTPClient: httputil.NewHTTPClient(client),
		},
	}
}

type source struct {
	client fetcher
}

func (s *source) FetchLatest(ctx context.Context) ([]quote.RawQuote, error) {
	b, err := s.client.Get(ctx, s.client.u)
	if err != nil {
		return nil, fmt.Errorf("fetching: %w", err)
	}

	list, err := decodePrices(b)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	return list, nil
}
