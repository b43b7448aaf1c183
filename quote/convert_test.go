package quote

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestConvert(t *testing.T) {
	t.Parallel()

	usd := CanonicalQuote{Currency: "USD", Price: 1}
	eth := CanonicalQuote{Currency: "ETH", Price: 1645.93}
	atom := CanonicalQuote{Currency: "ATOM", Price: 7.18}

	testCases := []struct {
		name     string
		amount   float64
		from, to CanonicalQuote
		expected float64
	}{
		{
			name:     "test_identity_usd",
			amount:   100,
			from:     usd,
			to:       usd,
			expected: 100,
		},
		{
			name:     "test_identity_non_representable",
			amount:   0.3,
			from:     CanonicalQuote{Currency: "BLUR", Price: 0.20811525423728813},
			to:       CanonicalQuote{Currency: "BLUR", Price: 0.20811525423728813},
			expected: 0.3,
		},
		{
			name:     "test_eth_to_usd",
			amount:   2,
			from:     eth,
			to:       usd,
			expected: 3291.86,
		},
		{
			name:     "test_usd_to_atom",
			amount:   71.8,
			from:     usd,
			to:       atom,
			expected: 10,
		},
		{
			name:     "test_zero_price_guard",
			amount:   5,
			from:     eth,
			to:       CanonicalQuote{Currency: "LUNA"},
			expected: 0,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Convert(tc.amount, tc.from, tc.to)
			if diff := cmp.Diff(tc.expected, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Errorf("mismatch (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestConvert_IdentityExact(t *testing.T) {
	t.Parallel()

	prices := []float64{0.1, 1.0 / 3.0, 0.20811525423728813, 26002.82202020202, 1e-12}
	amounts := []float64{0.1, 1, 100, 12345.6789}

	for _, p := range prices {
		q := CanonicalQuote{Currency: "X", Price: p}
		for _, a := range amounts {
			if got := Convert(a, q, q); got != a {
				t.Errorf("identity conversion of %v at price %v returned %v", a, p, got)
			}
		}
	}
}

func TestConvert_RoundTrip(t *testing.T) {
	t.Parallel()

	quotes := []CanonicalQuote{
		{Currency: "USD", Price: 1},
		{Currency: "ETH", Price: 1645.9337373737374},
		{Currency: "BLUR", Price: 0.20811525423728813},
		{Currency: "WBTC", Price: 26002.82202020202},
		{Currency: "STEVMOS", Price: 0.07238},
	}
	amounts := []float64{0.5, 1, 42, 1e6}

	for _, from := range quotes {
		for _, to := range quotes {
			for _, a := range amounts {
				back := Convert(Convert(a, from, to), to, from)
				if diff := cmp.Diff(a, back, cmpopts.EquateApprox(1e-12, 0)); diff != "" {
					t.Errorf("%s->%s->%s mismatch (-want, +got):\n%s", from.Currency, to.Currency, from.Currency, diff)
				}
			}
		}
	}
}

func TestRate(t *testing.T) {
	t.Parallel()

	eth := CanonicalQuote{Currency: "ETH", Price: 1600}
	usdc := CanonicalQuote{Currency: "USDC", Price: 0.8}

	if diff := cmp.Diff(2000.0, Rate(eth, usdc)); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}

	if diff := cmp.Diff(1.0, Rate(eth, eth)); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}
}

func TestAmountInReferenceUnit(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		amount   float64
		q        CanonicalQuote
		expected float64
	}{
		{name: "test_zero_amount", amount: 0, q: CanonicalQuote{Currency: "ETH", Price: 1645.93}, expected: 0},
		{name: "test_usd", amount: 500, q: CanonicalQuote{Currency: "USD", Price: 1}, expected: 500},
		{name: "test_eth", amount: 2, q: CanonicalQuote{Currency: "ETH", Price: 1645.93}, expected: 3291.86},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := AmountInReferenceUnit(tc.amount, tc.q)
			if diff := cmp.Diff(tc.amount*tc.q.Price, got); diff != "" {
				t.Errorf("mismatch (-want, +got):\n%s", diff)
			}

			if diff := cmp.Diff(tc.expected, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Errorf("mismatch (-want, +got):\n%s", diff)
			}
		})
	}
}
