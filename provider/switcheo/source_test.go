package switcheo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/robotomize/swapkit/provider/httputil"
	"github.com/robotomize/swapkit/quote"
)

const testPricesPattern = "/prices.json"

var testPricesHandlerFunc = func(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`[
		{"currency":"USD","date":"2023-08-29T07:10:30.000Z","price":1},
		{"currency":"ETH","date":"2023-08-29T07:10:52.000Z","price":1645.9337373737374},
		{"currency":"ETH","date":"2023-08-29T07:10:40.000Z","price":1645.93},
		{"currency":"LUNA","date":"2023-08-29T07:10:40.000Z","price":0}
	]`))
}

func TestSource_FetchLatest(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name           string
		handlerFunc    http.HandlerFunc
		requestTimeout time.Duration
		expectedLen    int
		err            error
	}{
		{
			name:        "test_fetch_latest",
			handlerFunc: testPricesHandlerFunc,
			expectedLen: 4,
		},
		{
			name: "test_fetch_latest_http_not_ok",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			err: httputil.ErrStatusCode,
		},
		{
			name: "test_fetch_latest_decode_err",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(`<html></html>`))
			},
			err: errDecodeToken,
		},
		{
			name: "test_fetch_latest_request_timeout",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(50 * time.Millisecond)
				testPricesHandlerFunc(w, r)
			},
			requestTimeout: time.Nanosecond,
			err:            context.DeadlineExceeded,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mux := http.NewServeMux()
			mux.HandleFunc(testPricesPattern, tc.handlerFunc)
			srv := httptest.NewServer(mux)
			defer srv.Close()

			u, err := url.Parse(srv.URL + testPricesPattern)
			if err != nil {
				t.Fatalf("unable to parse url: %v", err)
			}

			timeout := 10 * time.Second
			if tc.requestTimeout != 0 {
				timeout = tc.requestTimeout
			}

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			source := NewSourceURL(srv.Client(), *u)
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

			if diff := cmp.Diff(tc.expectedLen, len(raw)); diff != "" {
				t.Errorf("mismatch (-want, +got):\n%s", diff)
			}

			book := quote.NewBook(quote.Reconcile(raw))
			eth, ok := book.Lookup("ETH")
			if !ok {
				t.Fatalf("ETH not found")
			}

			if diff := cmp.Diff(1645.9337373737374, eth.Price); diff != "" {
				t.Errorf("mismatch (-want, +got):\n%s", diff)
			}

			if _, ok := book.Lookup("LUNA"); ok {
				t.Errorf("zero priced LUNA must be dropped")
			}
		})
	}
}

func TestNewSource_DefaultURL(t *testing.T) {
	t.Parallel()

	s := NewSource(http.DefaultClient)
	if diff := cmp.Diff("https://interview.switcheo.com/prices.json", s.client.u.String()); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}
}
