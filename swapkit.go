package swapkit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/robotomize/swapkit/internal/cache"
	"github.com/robotomize/swapkit/internal/logging"
	"github.com/robotomize/swapkit/provider"
	"github.com/robotomize/swapkit/provider/cae"
	"github.com/robotomize/swapkit/provider/ecb"
	"github.com/robotomize/swapkit/provider/ratelimit"
	"github.com/robotomize/swapkit/provider/rcb"
	"github.com/robotomize/swapkit/provider/switcheo"
	"github.com/robotomize/swapkit/quote"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

var (
	ErrCurrencyNotFound = errors.New("currency symbol is not supported")
	ErrSameCurrency     = errors.New("source and target currency are the same")
	ErrZeroAmount       = errors.New("amount must be greater than zero")
	ErrLimitExceeded    = errors.New("amount exceeds the maximum allowed swap")
	ErrUnavailable      = errors.New("quotes are unavailable")
)

const (
	DefaultRequestTimeout     = 10 * time.Second
	DefaultRetryNum           = 1
	DefaultRetryDuration      = 5 * time.Second
	DefaultMaxReferenceAmount = 500
)

const (
	// ProviderNameSwitcheo source name for the swap form price list
	ProviderNameSwitcheo = "switcheo"
	// ProviderNameECB source name for European central bank
	ProviderNameECB = "ecb"
	// ProviderNameCAE source name for the UAE central bank
	ProviderNameCAE = "cae"
	// ProviderNameRCB source name for the Russia central bank
	ProviderNameRCB = "rcb"
)

const latestCacheKey = "latest"

type Swapper interface {
	GetQuotable(ctx context.Context) []string
	GetLatest(ctx context.Context) LatestResponse
	Convert(ctx context.Context, param ConvOpt) (ConversionResponse, error)
	CheckSwap(resp ConversionResponse) error
}

var _ Swapper = (*swapper)(nil)

type Option func(*swapper)

type Options struct {
	RetryNum           uint64
	RetryDuration      time.Duration
	RequestTimeout     time.Duration
	CacheTTL           time.Duration
	MaxReferenceAmount float64
	SourceURL          url.URL
	FiatSources        bool
	RateEvery          time.Duration
	RateBurst          int
}

type LatestResponse struct {
	Result   []quote.CanonicalQuote
	Received int
	Dropped  int
	Info     []SourceInfo
}

// OK reports whether at least one source answered
func (r LatestResponse) OK() bool {
	for _, info := range r.Info {
		if info.Status == ProviderRespStatusOK {
			return true
		}
	}

	return false
}

// Err collects the failures of every source that did not answer
func (r LatestResponse) Err() error {
	var result *multierror.Error
	for _, info := range r.Info {
		if info.Status == ProviderRespStatusFailed {
			result = multierror.Append(result, fmt.Errorf("%s: %s", info.Name, info.ErrorMessage))
		}
	}

	return result.ErrorOrNil()
}

func (r LatestResponse) Book() quote.Book {
	return quote.NewBook(r.Result)
}

type ProviderRespStatus byte

const (
	ProviderRespStatusFailed ProviderRespStatus = iota
	ProviderRespStatusOK
)

func (s ProviderRespStatus) String() string {
	if s == ProviderRespStatusOK {
		return "ok"
	}

	return "failed"
}

type SourceInfo struct {
	Name         string
	Status       ProviderRespStatus
	Received     int
	ErrorMessage string
}

type Prior int32

type Provider struct {
	name  string
	prior Prior
	provider.Source
}

// WithRetryNum set number of repeated requests for data retrieval errors from the source
func WithRetryNum(n uint64) Option {
	return func(s *swapper) {
		s.opts.RetryNum = n
	}
}

// WithRetryDuration constant retry backoff
func WithRetryDuration(t time.Duration) Option {
	return func(s *swapper) {
		s.opts.RetryDuration = t
	}
}

// WithRequestTimeout set a timeout for source requests
func WithRequestTimeout(t time.Duration) Option {
	return func(s *swapper) {
		s.opts.RequestTimeout = t
	}
}

// WithCacheTTL keeps the latest quotes for t. Concurrent requests for expired quotes share a single fetch
func WithCacheTTL(t time.Duration) Option {
	return func(s *swapper) {
		s.opts.CacheTTL = t
	}
}

// WithMaxReferenceAmount set the swap limit expressed in the reference unit. Zero disables the limit
func WithMaxReferenceAmount(v float64) Option {
	return func(s *swapper) {
		s.opts.MaxReferenceAmount = v
	}
}

// WithSourceURL set the price list endpoint
func WithSourceURL(u url.URL) Option {
	return func(s *swapper) {
		s.opts.SourceURL = u
	}
}

// WithFiatSources adds the central bank sources with a lower priority than the price list
func WithFiatSources() Option {
	return func(s *swapper) {
		s.opts.FiatSources = true
	}
}

// WithRateLimit allows at most one request to each source per every duration with the given burst
func WithRateLimit(every time.Duration, burst int) Option {
	return func(s *swapper) {
		s.opts.RateEvery = every
		s.opts.RateBurst = burst
	}
}

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(s *swapper) {
		s.logger = logger
	}
}

// New return swapper
func New(client *http.Client, opts ...Option) *swapper {
	s := &swapper{
		opts: Options{
			RetryNum:           DefaultRetryNum,
			RetryDuration:      DefaultRetryDuration,
			RequestTimeout:     DefaultRequestTimeout,
			MaxReferenceAmount: DefaultMaxReferenceAmount,
			SourceURL:          switcheo.DefaultLatestURL,
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.opts.CacheTTL > 0 {
		s.cache = cache.New[LatestResponse](s.opts.CacheTTL)
	}

	s.providers = append(s.providers, s.newProvider(
		ProviderNameSwitcheo, switcheo.NewSourceURL(client, s.opts.SourceURL), 3,
	))

	if s.opts.FiatSources {
		s.providers = append(
			s.providers,
			s.newProvider(ProviderNameECB, ecb.NewSource(client), 2),
			s.newProvider(ProviderNameCAE, cae.NewSource(client), 1),
			s.newProvider(ProviderNameRCB, rcb.NewSource(client), 0),
		)
	}

	s.sortProviders()

	return s
}

type swapper struct {
	opts   Options
	logger *zap.SugaredLogger

	mtx       sync.RWMutex
	providers []*Provider
	cache     *cache.Cache[LatestResponse]
}

type FetchFunc func(ctx context.Context) LatestResponse

type ConvOpt struct {
	From    string
	To      string
	Value   float64
	CacheFn FetchFunc
}

// Convert returns an object with currency conversion data.
// The CacheFn option allows you to define your own data delivery function for caching
//
//	ctx := context.Background()
//	s := swapkit.New(http.DefaultClient)
//	latest := s.GetLatest(ctx)
//	s.Convert(
//		ctx, swapkit.ConvOpt{
//			From:  "ETH",
//			To:    "USDC",
//			Value: 10,
//			CacheFn: func(ctx context.Context) swapkit.LatestResponse {
//				return latest
//			},
//		},
//	)
func (s *swapper) Convert(ctx context.Context, param ConvOpt) (ConversionResponse, error) {
	if param.CacheFn == nil {
		param.CacheFn = s.GetLatest
	}

	latest := param.CacheFn(ctx)

	resp := ConversionResponse{
		Value: param.Value,
		From:  quote.CanonicalQuote{Currency: param.From},
		To:    quote.CanonicalQuote{Currency: param.To},
		Info:  latest.Info,
	}

	if !latest.OK() {
		return resp, fmt.Errorf("%w: %v", ErrUnavailable, latest.Err())
	}

	book := latest.Book()

	from, ok := book.Lookup(param.From)
	if !ok {
		return resp, fmt.Errorf("%w: %s", ErrCurrencyNotFound, param.From)
	}

	to, ok := book.Lookup(param.To)
	if !ok {
		return resp, fmt.Errorf("%w: %s", ErrCurrencyNotFound, param.To)
	}

	resp.From, resp.To = from, to
	resp.Rate = quote.Rate(from, to)
	resp.Amount = quote.Convert(param.Value, from, to)
	resp.AmountInReference = quote.AmountInReferenceUnit(param.Value, from)

	return resp, nil
}

// CheckSwap applies the swap submit rules with the configured limit
func (s *swapper) CheckSwap(resp ConversionResponse) error {
	return resp.Check(s.opts.MaxReferenceAmount)
}

// GetLatest returns the reconciled quotes of all sources. With a cache TTL the answer is reused until it
// expires, answers where every source failed are never cached. The shared fetch outlives the caller that
// started it and is bounded by the request timeout only
func (s *swapper) GetLatest(ctx context.Context) LatestResponse {
	if s.cache == nil {
		return s.fetchLatest(ctx)
	}

	resp, hit, _ := s.cache.GetOrFetch(ctx, latestCacheKey, func(ctx context.Context) (LatestResponse, error) {
		return s.fetchLatest(context.WithoutCancel(ctx)), nil
	}, LatestResponse.OK)
	if hit {
		s.loggerFor(ctx).Debugw("latest quotes served from cache")
	}

	return resp
}

// GetQuotable returns the sorted codes of every currency that currently has a valid quote
func (s *swapper) GetQuotable(ctx context.Context) []string {
	return s.GetLatest(ctx).Book().Codes()
}

// Delete providers by name
func (s *swapper) Delete(names ...string) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, name := range names {
		for idx, p := range s.providers {
			if p.name == name {
				s.providers = append(s.providers[:idx], s.providers[idx+1:]...)
				break
			}
		}
	}

	s.purge()
}

// ChangePrior change provider priority
func (s *swapper) ChangePrior(name string, prior Prior) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, p := range s.providers {
		if p.name == name {
			p.prior = prior
		}
	}

	s.sortProviders()
	s.purge()
}

// Register allows you to add your own provider of price observations
func (s *swapper) Register(name string, source provider.Source, prior Prior) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.providers = append(s.providers, s.newProvider(name, source, prior))

	s.sortProviders()
	s.purge()
}

type ConversionResponse struct {
	Value             float64
	From              quote.CanonicalQuote
	To                quote.CanonicalQuote
	Rate              float64
	Amount            float64
	AmountInReference float64
	Info              []SourceInfo
}

// Check reports the first swap rule the conversion breaks. A non-positive limit disables the limit check
func (r ConversionResponse) Check(limit float64) error {
	if r.From.Currency == r.To.Currency {
		return ErrSameCurrency
	}

	if !(r.Value > 0) {
		return ErrZeroAmount
	}

	if limit > 0 && r.AmountInReference > limit {
		return fmt.Errorf("%w: %.2f > %.2f", ErrLimitExceeded, r.AmountInReference, limit)
	}

	return nil
}

func (r ConversionResponse) String() string {
	return fmt.Sprintf(
		"Value: %f, From: %s, To: %s, Rate: %f, Amount: %f, AmountInReference: %f",
		r.Value,
		r.From.Currency,
		r.To.Currency,
		r.Rate,
		r.Amount,
		r.AmountInReference,
	)
}

func (s *swapper) newProvider(name string, source provider.Source, prior Prior) *Provider {
	return &Provider{
		name:   name,
		prior:  prior,
		Source: ratelimit.Wrap(source, s.opts.RateEvery, s.opts.RateBurst),
	}
}

func (s *swapper) sortProviders() {
	sort.SliceStable(s.providers, func(i, j int) bool {
		return s.providers[i].prior > s.providers[j].prior
	})
}

func (s *swapper) purge() {
	if s.cache != nil {
		s.cache.Purge()
	}
}

func (s *swapper) loggerFor(ctx context.Context) *zap.SugaredLogger {
	if s.logger != nil {
		return s.logger
	}

	return logging.FromContext(ctx)
}

func (s *swapper) fetchLatest(ctx context.Context) LatestResponse {
	s.mtx.RLock()
	providers := make([]*Provider, len(s.providers))
	copy(providers, s.providers)
	s.mtx.RUnlock()

	var wg sync.WaitGroup

	logger := s.loggerFor(ctx)

	ctx, cancel := context.WithTimeout(ctx, s.opts.RequestTimeout)
	defer cancel()

	batches := make([][]quote.RawQuote, len(providers))
	infos := make([]SourceInfo, len(providers))

	for idx, source := range providers {
		idx, source := idx, source
		wg.Add(1)
		go func() {
			defer wg.Done()
			report := SourceInfo{Name: source.name}

			b, _ := retry.NewConstant(s.opts.RetryDuration)

			b = retry.WithMaxRetries(s.opts.RetryNum, b)

			if err := retry.Do(ctx, b, func(ctx context.Context) error {
				list, err := source.FetchLatest(ctx)
				if err != nil {
					logger.Debugw("fetch latest failed", "source", source.name, "error", err)
					return retry.RetryableError(fmt.Errorf("fetch latest: %w", err))
				}

				batches[idx] = list
				report.Status = ProviderRespStatusOK
				report.Received = len(list)

				return nil
			}); err != nil {
				logger.Warnw("source unavailable", "source", source.name, "error", err)
				report.ErrorMessage = err.Error()
				report.Status = ProviderRespStatusFailed
			}

			infos[idx] = report
		}()
	}

	wg.Wait()

	// providers are sorted by descending priority, the higher priority batch goes last so it wins ties
	raw := make([]quote.RawQuote, 0)
	for idx := len(batches) - 1; idx >= 0; idx-- {
		raw = append(raw, batches[idx]...)
	}

	return LatestResponse{
		Result:   quote.Reconcile(raw),
		Received: len(raw),
		Dropped:  quote.Dropped(raw),
		Info:     infos,
	}
}
