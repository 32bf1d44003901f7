// Package metrics defines and registers the Prometheus metrics exposed by the
// tracking scraper. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package init
// via promauto.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "rastreio"

// FetchAttemptsTotal counts every HTTP attempt made against the tracking site.
// Label:
//   - status: HTTP status code returned, "0" for transport failures
var FetchAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_attempts_total",
		Help:      "Total number of fetch attempts, labelled by returned status.",
	},
	[]string{"status"},
)

// FetchDuration measures a whole fetch cycle, retries and waits included.
var FetchDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fetch_duration_seconds",
		Help:      "Duration of a fetch cycle including backoff waits.",
		Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 40, 80},
	},
)

// ScrapesTotal counts scraped tracking codes.
// Labels:
//   - parser: "structured", "fallback" or "none"
//   - result: "success" or "failure"
var ScrapesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scrapes_total",
		Help:      "Total number of tracking codes scraped, by parser and result.",
	},
	[]string{"parser", "result"},
)

// RecordAttempt increments FetchAttemptsTotal for status
func RecordAttempt(status int) {
	FetchAttemptsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
}

// RecordFetch observes the duration of a fetch cycle that started at start
func RecordFetch(start time.Time) {
	FetchDuration.Observe(time.Since(start).Seconds())
}

// RecordScrape increments ScrapesTotal
func RecordScrape(parser string, success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	ScrapesTotal.WithLabelValues(parser, result).Inc()
}
