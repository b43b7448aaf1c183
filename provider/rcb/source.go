package rcb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/robotomize/swapkit/provider"
	"github.com/robotomize/swapkit/provider/httputil"
	"github.com/robotomize/swapkit/quote"
)

const hostname = "cbr.ru"

type fetcher struct {
	u url.URL
	httputil.SourceHTTPClient
}

var _ provider.Source = (*source)(nil)

// NewSource returns the Central Bank of Russia daily rates source
func NewSource(client *http.Client) *source {
	return &source{
		client: fetcher{
			u: url.URL{
				Scheme: "https",
				Host:   hostname,
				Path:   "scripts/XML_daily.asp",
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

// decode re-expresses RUB rates in the reference unit: price(ccy) = rub(ccy) / rub(USD)
func (s *source) decode(b []byte) ([]quote.RawQuote, error) {
	rubExchangeRates, err := decodeXML(b)
	if err != nil {
		return nil, fmt.Errorf("decode xml: %w", err)
	}

	var refRate float64
	for _, r := range rubExchangeRates.rates {
		if r.code == referenceCode {
			refRate = r.rate
			break
		}
	}

	if refRate <= 0 {
		return nil, errNoReference
	}

	list := make([]quote.RawQuote, 0, len(rubExchangeRates.rates)+1)
	list = append(list, quote.RawQuote{
		Currency:   baseCode,
		Price:      1 / refRate,
		ObservedAt: rubExchangeRates.time,
	})

	for _, r := range rubExchangeRates.rates {
		list = append(list, quote.RawQuote{
			Currency:   r.code,
			Price:      r.rate / refRate,
			ObservedAt: rubExchangeRates.time,
		})
	}

	return list, nil
}
