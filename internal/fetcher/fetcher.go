package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pfrederiksen/rastreio/internal/identity"
	"github.com/pfrederiksen/rastreio/internal/logger"
	"github.com/pfrederiksen/rastreio/internal/metrics"
)

// Timeout bounds a single attempt
const Timeout = 30 * time.Second

// Schedule is the wait applied before each attempt. Its length is the
// maximum number of attempts.
var Schedule = []time.Duration{0, 3 * time.Second, 10 * time.Second, 25 * time.Second}

// ErrTransport prefixes the diagnostic body of a result whose request never
// produced an HTTP response.
var ErrTransport = errors.New("transport error")

// Result is the outcome of one fetch cycle
type Result struct {
	StatusCode int
	Body       string
	Attempts   int
}

// RateLimited reports whether the cycle ended on HTTP 429
func (r Result) RateLimited() bool {
	return r.StatusCode == http.StatusTooManyRequests
}

// Sleeper waits for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the default Sleeper, backed by a timer
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Fetcher performs GETs with the retry schedule
type Fetcher struct {
	transport Transport
	identity  identity.Source
	sleep     Sleeper
	schedule  []time.Duration
	log       *logger.Logger
}

// Option configures a Fetcher
type Option func(*Fetcher)

// WithTransport replaces the default net/http transport
func WithTransport(t Transport) Option {
	return func(f *Fetcher) { f.transport = t }
}

// WithIdentity replaces the randomized header source
func WithIdentity(src identity.Source) Option {
	return func(f *Fetcher) { f.identity = src }
}

// WithSleeper replaces the real-time wait between attempts
func WithSleeper(s Sleeper) Option {
	return func(f *Fetcher) { f.sleep = s }
}

// WithSchedule overrides the wait schedule
func WithSchedule(schedule []time.Duration) Option {
	return func(f *Fetcher) { f.schedule = schedule }
}

// WithLogger sets the logger used for attempt diagnostics
func WithLogger(l *logger.Logger) Option {
	return func(f *Fetcher) { f.log = l }
}

// New creates a Fetcher. Without options it uses net/http with Timeout,
// randomized identities and the default Schedule.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		transport: NewHTTPTransport(Timeout),
		identity:  identity.Randomized{},
		sleep:     Sleep,
		schedule:  Schedule,
		log:       logger.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch GETs url, retrying on HTTP 429 according to the schedule.
// It never returns an error: transport failures and context cancellation
// are reported as status 0 with a diagnostic body.
func (f *Fetcher) Fetch(ctx context.Context, url string) Result {
	start := time.Now()
	defer metrics.RecordFetch(start)

	var res Result
	for i, wait := range f.schedule {
		if wait > 0 {
			f.log.Warn("Rate limited, backing off", logger.Fields{
				"url":     url,
				"attempt": i + 1,
				"wait":    wait.String(),
			})
			if err := f.sleep(ctx, wait); err != nil {
				return Result{
					StatusCode: 0,
					Body:       fmt.Sprintf("%v: %v", ErrTransport, err),
					Attempts:   res.Attempts,
				}
			}
		}

		res.Attempts = i + 1
		status, body, err := f.transport.Get(ctx, url, f.identity.Headers())
		if err != nil {
			f.log.Error("Fetch attempt failed", logger.Fields{
				"url":     url,
				"attempt": res.Attempts,
			}, err)
			status = 0
			body = fmt.Sprintf("%v: %v", ErrTransport, err)
		}
		res.StatusCode = status
		res.Body = body
		metrics.RecordAttempt(status)

		f.log.Debug("Fetch attempt", logger.Fields{
			"url":       url,
			"attempt":   res.Attempts,
			"status":    status,
			"html_size": len(body),
		})

		// Only 429 is retried. Status 0 and 5xx end the cycle as well.
		if status != http.StatusTooManyRequests {
			return res
		}
	}

	return res
}
