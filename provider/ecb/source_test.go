package ecb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/robotomize/swapkit/provider/httputil"
	"github.com/robotomize/swapkit/quote"
)

const (
	testXMLLatestPattern = "/latest/xml"
	testCSVLatestPattern = "/latest/csv"
)

func TestSource_FetchLatest(t *testing.T) {
	t.Parallel()

	observedAt := time.Date(2021, 6, 18, 0, 0, 0, 0, time.UTC)
	expected := []quote.RawQuote{
		{Currency: "EUR", Price: 1.1898, ObservedAt: observedAt},
		{Currency: "USD", Price: 1, ObservedAt: observedAt},
		{Currency: "JPY", Price: 0.009074130567419158, ObservedAt: observedAt},
	}

	testCases := []struct {
		name           string
		handlerFunc    func() http.Handler
		xml, csv       bool
		requestTimeout time.Duration
		expected       []quote.RawQuote
		err            error
	}{
		{
			name: "test_fetch_latest_xml_and_csv",
			xml:  true,
			csv:  true,
			handlerFunc: func() http.Handler {
				mux := http.NewServeMux()
				mux.HandleFunc(testXMLLatestPattern, func(w http.ResponseWriter, r *http.Request) {
					w.Header().Set("Content-Type", "text/xml")
					_, _ = w.Write([]byte(testXMLBody))
				})
				mux.HandleFunc(testCSVLatestPattern, func(w http.ResponseWriter, r *http.Request) {
					w.Header().Set("Content-Type", "application/zip")
					_, _ = w.Write(zipped(t, "eurofxref.csv", testCSVBody))
				})
				return mux
			},
			expected: expected,
		},
		{
			name: "test_fetch_latest_xml_fails_csv_ok",
			xml:  true,
			csv:  true,
			handlerFunc: func() http.Handler {
				mux := http.NewServeMux()
				mux.HandleFunc(testXMLLatestPattern, func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusBadGateway)
				})
				mux.HandleFunc(testCSVLatestPattern, func(w http.ResponseWriter, r *http.Request) {
					_, _ = w.Write([]byte(testCSVBody))
				})
				return mux
			},
			expected: expected,
		},
		{
			name: "test_fetch_latest_xml_undecodable_csv_ok",
			xml:  true,
			csv:  true,
			handlerFunc: func() http.Handler {
				mux := http.NewServeMux()
				mux.HandleFunc(testXMLLatestPattern, func(w http.ResponseWriter, r *http.Request) {
					_, _ = w.Write([]byte(`<Cube><Cube time="2021-06-18">`))
				})
				mux.HandleFunc(testCSVLatestPattern, func(w http.ResponseWriter, r *http.Request) {
					time.Sleep(50 * time.Millisecond)
					_, _ = w.Write(zipped(t, "eurofxref.csv", testCSVBody))
				})
				return mux
			},
			expected: expected,
		},
		{
			name: "test_fetch_latest_http_not_ok",
			xml:  true,
			csv:  true,
			handlerFunc: func() http.Handler {
				mux := http.NewServeMux()
				mux.HandleFunc(testXMLLatestPattern, func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusInternalServerError)
				})
				mux.HandleFunc(testCSVLatestPattern, func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusInternalServerError)
				})
				return mux
			},
			err: httputil.ErrStatusCode,
		},
		{
			name: "test_fetch_latest_no_reference",
			xml:  true,
			handlerFunc: func() http.Handler {
				mux := http.NewServeMux()
				mux.HandleFunc(testXMLLatestPattern, func(w http.ResponseWriter, r *http.Request) {
					_, _ = w.Write([]byte(`<Cube><Cube time="2021-06-18"><Cube currency="JPY" rate="131.12"/></Cube></Cube>`))
				})
				return mux
			},
			err: errNoReference,
		},
		{
			name: "test_fetch_latest_request_timeout",
			xml:  true,
			handlerFunc: func() http.Handler {
				mux := http.NewServeMux()
				mux.HandleFunc(testXMLLatestPattern, func(w http.ResponseWriter, r *http.Request) {
					time.Sleep(50 * time.Millisecond)
					_, _ = w.Write([]byte(testXMLBody))
				})
				return mux
			},
			requestTimeout: time.Nanosecond,
			err:            context.DeadlineExceeded,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(tc.handlerFunc())
			defer srv.Close()
			client := srv.Client()

			source := NewSource(client)
			source.fetchers = make([]fetcher, 0)

			if tc.xml {
				xmlURL, err := url.Parse(srv.URL + testXMLLatestPattern)
				if err != nil {
					t.Fatalf("unable to parse xml url: %v", err)
				}

				source.fetchers = append(source.fetchers, fetcher{
					latestURL:        *xmlURL,
					decodeFunc:       decodeXML(),
					SourceHTTPClient: httputil.NewHTTPClient(client),
				})
			}

			if tc.csv {
				csvURL, err := url.Parse(srv.URL + testCSVLatestPattern)
				if err != nil {
					t.Fatalf("unable to parse csv url: %v", err)
				}

				source.fetchers = append(source.fetchers, fetcher{
					latestURL:        *csvURL,
					decodeFunc:       decodeCSV(),
					SourceHTTPClient: httputil.NewHTTPClient(client),
				})
			}

			timeout := 10 * time.Second
			if tc.requestTimeout != 0 {
				timeout = tc.requestTimeout
			}

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			raw, err := source.FetchLatest(ctx)
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Errorf("expected error %v, got %v", tc.err, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("fetch latest: %v", err)
			}

			if diff := cmp.Diff(tc.expected, raw, cmpopts.EquateApprox(0, 1e-15)); diff != "" {
				t.Errorf("mismatch (-want, +got):\n%s", diff)
			}
		})
	}
}
