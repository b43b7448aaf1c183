package ecb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/hashicorp/go-multierror"
	"github.com/robotomize/swapkit/provider"
	"github.com/robotomize/swapkit/provider/httputil"
	"github.com/robotomize/swapkit/quote"
)

const hostname = "www.ecb.europa.eu"

const (
	latestXMLRawPath = "/stats/eurofxref/eurofxref-daily.xml"
	latestCSVRawPath = "/stats/eurofxref/eurofxref.zip"
)

var (
	defaultLatestResourceCSV = url.URL{Scheme: "https", Host: hostname, Path: latestCSVRawPath}
	defaultLatestResourceXML = url.URL{Scheme: "https", Host: hostname, Path: latestXMLRawPath}
)

var _ provider.Source = (*source)(nil)

type fetcher struct {
	latestURL url.URL
	decodeFunc
	httputil.SourceHTTPClient
}

// NewSource returns the ECB reference rates source. Both published formats are requested concurrently and the
// first successful response is used
func NewSource(client *http.Client) *source {
	httpClient := httputil.NewHTTPClient(client)

	return &source{
		fetchers: []fetcher{{
			latestURL:        defaultLatestResourceCSV,
			decodeFunc:       decodeCSV(),
			SourceHTTPClient: httpClient,
		}, {
			latestURL:        defaultLatestResourceXML,
			decodeFunc:       decodeXML(),
			SourceHTTPClient: httpClient,
		}},
	}
}

type source struct {
	fetchers []fetcher
}

func (s *source) FetchLatest(ctx context.Context) ([]quote.RawQuote, error) {
	list, err := s.fetchingPlan(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching plan: %w", err)
	}

	return list, nil
}

func (s *source) fetchingPlan(ctx context.Context) ([]quote.RawQuote, error) {
	type fetchingDat struct {
		err  error
		list []quote.RawQuote
	}

	var ferr *multierror.Error

	ch := make(chan fetchingDat, len(s.fetchers))

	for _, fet := range s.fetchers {
		fet := fet
		go func() {
			b, err := fet.Get(ctx, fet.latestURL)
			if err != nil {
				ch <- fetchingDat{err: err}
				return
			}

			list, err := s.decode(b, fet.decodeFunc)
			if err != nil {
				ch <- fetchingDat{err: fmt.Errorf("decode %s: %w", fet.latestURL.Path, err)}
				return
			}

			ch <- fetchingDat{list: list}
		}()
	}

	// the first response that decodes wins, a failed one falls back to the formats still in flight
	for n := len(s.fetchers); n > 0; n-- {
		select {
		case <-ctx.Done():
			ferr = multierror.Append(ferr, fmt.Errorf("ctx cancelled: %w", ctx.Err()))
			return nil, ferr.ErrorOrNil()
		case dat := <-ch:
			if dat.err == nil {
				return dat.list, nil
			}
			ferr = multierror.Append(ferr, dat.err)
		}
	}

	return nil, ferr.ErrorOrNil()
}

// decode re-expresses euro based rates in the reference unit: price(ccy) = rate(USD) / rate(ccy)
func (s *source) decode(b []byte, decodeFunc decodeFunc) ([]quote.RawQuote, error) {
	var list []quote.RawQuote

	if err := decodeFunc(b, func(r euroLatestRates) error {
		var refRate float64
		for _, pair := range r.rates {
			if pair.code == referenceCode {
				refRate = pair.rate
				break
			}
		}

		if refRate <= 0 {
			return nil
		}

		list = append(list, quote.RawQuote{Currency: baseCode, Price: refRate, ObservedAt: r.time})

		for _, pair := range r.rates {
			if pair.code == baseCode {
				continue
			}

			list = append(list, quote.RawQuote{
				Currency:   pair.code,
				Price:      refRate / pair.rate,
				ObservedAt: r.time,
			})
		}

		return nil
	}); err != nil {
		return nil, fmt.Errorf("%T decode func: %w", decodeFunc, err)
	}

	if len(list) == 0 {
		return nil, errNoReference
	}

	return list, nil
}
