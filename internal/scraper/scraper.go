package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pfrederiksen/rastreio/internal/carrier"
	"github.com/pfrederiksen/rastreio/internal/event"
	"github.com/pfrederiksen/rastreio/internal/extract"
	"github.com/pfrederiksen/rastreio/internal/fetcher"
	"github.com/pfrederiksen/rastreio/internal/logger"
	"github.com/pfrederiksen/rastreio/internal/metrics"
	"golang.org/x/time/rate"
)

// InterCodeDelay is the minimum spacing between requests of a batch
const InterCodeDelay = 1200 * time.Millisecond

var (
	// ErrEmptyInput is reported for codes that are blank after trimming
	ErrEmptyInput = errors.New("empty trackCode")
	// ErrRateLimited is reported when the site still answers 429 after all retries
	ErrRateLimited = errors.New("rate_limited_429")
)

// Fetcher retrieves a page. *fetcher.Fetcher satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) fetcher.Result
}

// Scraper handles fetching and parsing tracking pages
type Scraper struct {
	fetcher Fetcher
	baseURL string
	resolve func(code string) carrier.Carrier
	limiter *rate.Limiter
	log     *logger.Logger
}

// Option configures a Scraper
type Option func(*Scraper)

// WithFetcher replaces the default retrying fetcher
func WithFetcher(f Fetcher) Option {
	return func(s *Scraper) { s.fetcher = f }
}

// WithBaseURL points the scraper at another tracking host
func WithBaseURL(baseURL string) Option {
	return func(s *Scraper) { s.baseURL = baseURL }
}

// WithDelay sets the minimum spacing between requests. Zero disables pacing.
func WithDelay(d time.Duration) Option {
	return func(s *Scraper) { s.limiter = rate.NewLimiter(rate.Every(d), 1) }
}

// WithResolver replaces the carrier prefix lookup
func WithResolver(resolve func(code string) carrier.Carrier) Option {
	return func(s *Scraper) { s.resolve = resolve }
}

// WithLogger sets the logger
func WithLogger(l *logger.Logger) Option {
	return func(s *Scraper) { s.log = l }
}

// New creates a new Scraper instance
func New(opts ...Option) *Scraper {
	s := &Scraper{
		baseURL: carrier.DefaultBaseURL,
		resolve: carrier.Resolve,
		limiter: rate.NewLimiter(rate.Every(InterCodeDelay), 1),
		log:     logger.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fetcher == nil {
		s.fetcher = fetcher.New(fetcher.WithLogger(s.log))
	}
	return s
}

// ScrapeOne fetches the tracking page for code and extracts its events.
// Failures are reported in the returned outcome, never as an error.
func (s *Scraper) ScrapeOne(ctx context.Context, code string) event.Outcome {
	code = strings.TrimSpace(code)
	if code == "" {
		metrics.RecordScrape(string(event.ParserNone), false)
		return event.Failed(code, ErrEmptyInput.Error())
	}

	c := s.resolve(code)
	url := carrier.URL(s.baseURL, c, code)
	res := s.fetcher.Fetch(ctx, url)

	out := event.Outcome{
		TrackCode:  code,
		HTTPStatus: res.StatusCode,
		Carrier:    string(c),
		URL:        url,
		Events:     []event.TrackingEvent{},
		Parser:     event.ParserNone,
		Debug: event.Debug{
			Attempts: res.Attempts,
			HTMLSize: len(res.Body),
		},
	}

	switch {
	case res.StatusCode == 0:
		out.Error = res.Body
	case res.RateLimited():
		out.Error = ErrRateLimited.Error()
	case res.StatusCode >= http.StatusBadRequest:
		out.Error = fmt.Sprintf("HTTP %d", res.StatusCode)
	default:
		events, parser := Extract(res.Body)
		out.Success = true
		out.Events = event.Dedupe(events)
		out.HasData = len(out.Events) > 0
		out.Parser = parser
	}

	metrics.RecordScrape(string(out.Parser), out.Success)
	fields := logger.Fields{
		"track_code": code,
		"carrier":    out.Carrier,
		"status":     out.HTTPStatus,
		"attempts":   out.Debug.Attempts,
		"html_size":  out.Debug.HTMLSize,
		"parser":     out.Parser,
		"events":     len(out.Events),
	}
	if out.Success {
		s.log.Info("Scraped tracking code", fields)
	} else {
		fields["error"] = out.Error
		s.log.Warn("Scrape failed", fields)
	}

	return out
}

// ScrapeBatch scrapes codes in order. Each code's first request waits at
// least the scraper's delay after the previous code's last request finished;
// once ctx is done the remaining codes fail without a network call.
func (s *Scraper) ScrapeBatch(ctx context.Context, codes []string) event.BatchResult {
	outcomes := make([]event.Outcome, 0, len(codes))

	for _, code := range codes {
		if err := ctx.Err(); err != nil {
			outcomes = append(outcomes, event.Failed(strings.TrimSpace(code), err.Error()))
			continue
		}

		// Blank codes never reach the network, so they do not consume a slot
		if strings.TrimSpace(code) == "" {
			outcomes = append(outcomes, s.ScrapeOne(ctx, code))
			continue
		}
		if err := s.limiter.Wait(ctx); err != nil {
			outcomes = append(outcomes, event.Failed(strings.TrimSpace(code), err.Error()))
			continue
		}

		outcomes = append(outcomes, s.ScrapeOne(ctx, code))

		// The bucket refills while a slow or retried fetch runs. Taking a
		// second slot here makes the next Wait count the full delay from the
		// end of this code's last request.
		s.limiter.Reserve()
	}

	return event.NewBatchResult(outcomes)
}

// Extract runs the structured extractor and, when it yields nothing, the list
// extractor. It reports which one produced the events.
func Extract(page string) ([]event.TrackingEvent, event.Parser) {
	if events := extract.Structured(page); len(events) > 0 {
		return events, event.ParserStructured
	}
	if events := extract.Fallback(page); len(events) > 0 {
		return events, event.ParserFallback
	}
	return []event.TrackingEvent{}, event.ParserNone
}
