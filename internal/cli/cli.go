package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pfrederiksen/rastreio/internal/api"
	"github.com/pfrederiksen/rastreio/internal/carrier"
	"github.com/pfrederiksen/rastreio/internal/config"
	"github.com/pfrederiksen/rastreio/internal/fetcher"
	"github.com/pfrederiksen/rastreio/internal/logger"
	"github.com/pfrederiksen/rastreio/internal/scraper"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess  = 0
	ExitError    = 1
	ExitFailures = 2
)

// errSomeFailed signals that at least one code could not be scraped
var errSomeFailed = errors.New("one or more tracking codes failed")

type trackOptions struct {
	format   string
	baseURL  string
	delay    time.Duration
	timeout  time.Duration
	logLevel string
	verbose  bool
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rastreio",
		Short: "Scrape shipment tracking events from rastreadordepacotes.com.br",
		Long: `A tool that resolves shipment tracking codes into tracking events by
scraping the public tracking page, retrying when the site rate limits.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newTrackCmd(os.Stdout), newServeCmd())
	return cmd
}

func newTrackCmd(stdout io.Writer) *cobra.Command {
	opts := &trackOptions{}

	cmd := &cobra.Command{
		Use:   "track CODE [CODE...]",
		Short: "Scrape one or more tracking codes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrack(cmd.Context(), stdout, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&opts.baseURL, "base-url", carrier.DefaultBaseURL, "Tracking site base URL")
	cmd.Flags().DurationVar(&opts.delay, "delay", scraper.InterCodeDelay, "Minimum delay between requests")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Abort the whole batch after this long (0 = no limit)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "Show URLs and fetch diagnostics")

	return cmd
}

// runTrack is the track command logic
func runTrack(ctx context.Context, stdout io.Writer, opts *trackOptions, codes []string) error {
	format := OutputFormat(strings.ToLower(opts.format))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", opts.format)
	}
	if opts.delay < 0 {
		return fmt.Errorf("invalid delay: %s", opts.delay)
	}

	log := logger.NewConsole(logger.ParseLevel(opts.logLevel), os.Stderr)
	logger.SetDefault(log)

	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	sc := scraper.New(
		scraper.WithBaseURL(opts.baseURL),
		scraper.WithDelay(opts.delay),
		scraper.WithLogger(log),
	)

	result := sc.ScrapeBatch(ctx, codes)

	if err := WriteOutput(stdout, result, format, opts.verbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	for _, out := range result.Results {
		if !out.Success {
			return errSomeFailed
		}
	}
	return nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the /track HTTP API",
		Long: `Serve the tracking API. Settings are read from the environment:
PORT, LOG_LEVEL, LOG_PRETTY, TRACKING_BASE_URL, INTER_CODE_DELAY,
FETCH_TIMEOUT, BATCH_TIMEOUT and MAX_CODES.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

// runServe starts the HTTP API and blocks until SIGINT/SIGTERM
func runServe(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	level := logger.ParseLevel(cfg.LogLevel)
	log := logger.New(level, os.Stdout)
	if cfg.Pretty {
		log = logger.NewConsole(level, os.Stdout)
	}
	logger.SetDefault(log)

	f := fetcher.New(
		fetcher.WithTransport(fetcher.NewHTTPTransport(cfg.Scraper.FetchTimeout)),
		fetcher.WithLogger(log),
	)
	sc := scraper.New(
		scraper.WithFetcher(f),
		scraper.WithBaseURL(cfg.Scraper.BaseURL),
		scraper.WithDelay(cfg.Scraper.InterCodeDelay),
		scraper.WithLogger(log),
	)

	e := api.NewRouter(sc, api.Options{
		MaxCodes:     cfg.Server.MaxCodes,
		BatchTimeout: cfg.Server.BatchTimeout,
		Logger:       log,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", logger.Fields{"addr": cfg.Addr()})
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("starting server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown did not complete", nil, err)
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Execute runs the CLI and exits with ExitSuccess, ExitError or ExitFailures
func Execute() {
	err := NewRootCmd().Execute()
	switch {
	case err == nil:
		os.Exit(ExitSuccess)
	case errors.Is(err, errSomeFailed):
		os.Exit(ExitFailures)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
