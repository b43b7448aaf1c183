package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/robotomize/swapkit/provider"
	"github.com/robotomize/swapkit/quote"
	"golang.org/x/time/rate"
)

var _ provider.Source = (*source)(nil)

// Wrap paces FetchLatest calls of the source to one per every interval with the given burst.
// A non-positive every disables pacing and returns the source as is
func Wrap(s provider.Source, every time.Duration, burst int) provider.Source {
	if every <= 0 {
		return s
	}

	if burst < 1 {
		burst = 1
	}

	return &source{
		next:    s,
		limiter: rate.NewLimiter(rate.Every(every), burst),
	}
}

type source struct {
	next    provider.Source
	limiter *rate.Limiter
}

func (s *source) FetchLatest(ctx context.Context) ([]quote.RawQuote, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	return s.next.FetchLatest(ctx)
}
