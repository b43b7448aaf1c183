package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/robotomize/swapkit"
	"github.com/robotomize/swapkit/format"
	"github.com/robotomize/swapkit/internal/config"
	"github.com/robotomize/swapkit/internal/httpapi"
	"github.com/robotomize/swapkit/internal/logging"
	"github.com/robotomize/swapkit/quote"
	"go.uber.org/zap"
)

const usage = `usage: swapctl <command> [flags]

commands:
  list      print the latest quotes
  convert   convert an amount between two currencies
  serve     run the http api`

const shutdownTimeout = 5 * time.Second

var errUsage = errors.New("unknown command")

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := realMain(ctx, os.Args[1], os.Args[2:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}

		logging.FromContext(ctx).Fatal(err)
	}
}

func realMain(ctx context.Context, cmd string, args []string, out io.Writer) error {
	flagSet := flag.NewFlagSet(cmd, flag.ContinueOnError)
	configPath := flagSet.String("config", os.Getenv(config.PathEnv), "path to the yaml config file")

	var (
		from, to string
		amount   float64
		addr     string
	)

	switch cmd {
	case "list":
	case "convert":
		flagSet.StringVar(&from, "from", "", "source currency code")
		flagSet.StringVar(&to, "to", "", "target currency code")
		flagSet.Float64Var(&amount, "amount", 1, "amount of the source currency")
	case "serve":
		flagSet.StringVar(&addr, "addr", "", "listen address, overrides the config")
	default:
		return fmt.Errorf("%w: %s", errUsage, cmd)
	}

	if err := flagSet.Parse(args); err != nil {
		return fmt.Errorf("flag parse: %w", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}

	logger := logging.NewLogger(cfg.Log.Level, cfg.Log.Development)
	defer func() { _ = logger.Sync() }()

	ctx = logging.WithLogger(ctx, logger)

	s, err := newSwapper(cfg, logger)
	if err != nil {
		return fmt.Errorf("new swapper: %w", err)
	}

	switch cmd {
	case "convert":
		if from == "" || to == "" {
			return errors.New("use -from <code> -to <code>")
		}

		return convert(ctx, s, from, to, amount, out)
	case "serve":
		if addr == "" {
			addr = cfg.Server.Addr
		}

		return serve(ctx, s, addr, logger)
	default:
		return list(ctx, s, out)
	}
}

func newSwapper(cfg *config.Config, logger *zap.SugaredLogger) (swapkit.Swapper, error) {
	u, err := url.Parse(cfg.Source.URL)
	if err != nil {
		return nil, fmt.Errorf("source url parse: %w", err)
	}

	client := &http.Client{Transport: &http.Transport{
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       5 * time.Minute,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
	}}

	opts := []swapkit.Option{
		swapkit.WithSourceURL(*u),
		swapkit.WithRequestTimeout(cfg.Source.RequestTimeout),
		swapkit.WithRetryNum(cfg.Source.RetryNum),
		swapkit.WithRetryDuration(cfg.Source.RetryDuration),
		swapkit.WithRateLimit(cfg.Source.MinInterval, cfg.Source.Burst),
		swapkit.WithCacheTTL(cfg.Swap.CacheTTL),
		swapkit.WithMaxReferenceAmount(cfg.Swap.MaxReferenceAmount),
		swapkit.WithLogger(logger),
	}

	if cfg.Source.FiatSources {
		opts = append(opts, swapkit.WithFiatSources())
	}

	return swapkit.New(client, opts...), nil
}

func list(ctx context.Context, s swapkit.Swapper, out io.Writer) error {
	latest := s.GetLatest(ctx)
	if !latest.OK() {
		return fmt.Errorf("no source answered: %v", latest.Err())
	}

	quotes := make([]quote.CanonicalQuote, len(latest.Result))
	copy(quotes, latest.Result)
	format.SortByCode(quotes)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CURRENCY\tPRICE\tICON")
	for _, q := range quotes {
		fmt.Fprintf(w, "%s\t%s\t%s\n", q.Currency, format.Amount(q.Price, 0), q.IconRef)
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	fmt.Fprintf(out, "\nreceived %d records, dropped %d\n", latest.Received, latest.Dropped)
	for _, info := range latest.Info {
		fmt.Fprintf(out, "source %s: %s %s\n", info.Name, info.Status, info.ErrorMessage)
	}

	return nil
}

func convert(ctx context.Context, s swapkit.Swapper, from, to string, amount float64, out io.Writer) error {
	resp, err := s.Convert(ctx, swapkit.ConvOpt{From: from, To: to, Value: amount})
	if err != nil {
		return fmt.Errorf("convert: %w", err)
	}

	fmt.Fprintf(
		out,
		"%s %s = %s %s (%s USD)\n",
		format.Amount(resp.Value, 0),
		resp.From.Currency,
		format.Amount(resp.Amount, 0),
		resp.To.Currency,
		format.Amount(resp.AmountInReference, 2),
	)

	if err := s.CheckSwap(resp); err != nil {
		fmt.Fprintf(out, "swap is not allowed: %v\n", err)
	}

	return nil
}

func serve(ctx context.Context, s swapkit.Swapper, addr string, logger *zap.SugaredLogger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           httpapi.NewRouter(s, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen and serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}
