package cae

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/robotomize/swapkit/provider"
	"github.com/robotomize/swapkit/provider/httputil"
	"github.com/robotomize/swapkit/quote"
)

const hostname = "www.centralbank.ae"

const (
	referenceCode = "USD"
	baseCode      = "AED"
)

var errNoReference = errors.New("reference currency rate not found")

type fetcher struct {
	u url.URL
	httputil.SourceHTTPClient
}

var _ provider.Source = (*source)(nil)

// NewSource returns the Central Bank of the UAE rates source
func NewSource(client *http.Client) *source {
	return &source{
		client: fetcher{
			u: url.URL{
				Scheme: "https",
				Host:   hostname,
				Path:   "en/fx-rates",
			},
			SourceHTTPClient: httputil.NewHTTPClient(client),
		},
		now: time.Now,
	}
}

type source struct {
	client fetcher
	now    func() time.Time
}

func (s *source) FetchLatest(ctx context.Context) ([]quote.RawQuote, error) {
	list, err := s.fetchingPlan(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching plan: %w", err)
	}

	return list, nil
}

func (s *source) fetchingPlan(ctx context.Context) ([]quote.RawQuote, error) {
	u := s.client.u
	query := u.Query()
	query.Set("date_req", s.now().UTC().Format("02/01/2006"))
	u.RawQuery = query.Encode()

	b, err := s.client.Get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("fetching: %w", err)
	}

	list, err := s.decode(b)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	return list, nil
}

// decode re-expresses AED rates in the reference unit: price(ccy) = aed(ccy) / aed(USD)
func (s *source) decode(b []byte) ([]quote.RawQuote, error) {
	aedExchangeRates, err := parseHTML(b)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var refRate float64
	for _, r := range aedExchangeRates.rates {
		if r.code == referenceCode {
			refRate = r.rate
			break
		}
	}

	if refRate <= 0 {
		return nil, errNoReference
	}

	list := make([]quote.RawQuote, 0, len(aedExchangeRates.rates)+1)
	list = append(list, quote.RawQuote{
		Currency:   baseCode,
		Price:      1 / refRate,
		ObservedAt: aedExchangeRates.time,
	})

	for _, r := range aedExchangeRates.rates {
		list = append(list, quote.RawQuote{
			Currency:   r.code,
			Price:      r.rate / refRate,
			ObservedAt: aedExchangeRates.time,
		})
	}

	return list, nil
}
