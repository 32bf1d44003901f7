package scraper

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pfrederiksen/rastreio/internal/carrier"
	"github.com/pfrederiksen/rastreio/internal/event"
	"github.com/pfrederiksen/rastreio/internal/fetcher"
	"github.com/pfrederiksen/rastreio/internal/logger"
)

const structuredHTML = `<script>var rastreio = {"success": true, "posicoes": [
  {"data": "10/01/2025 08:00", "descricao": "Objeto postado"},
  {"data": "10/01/2025 08:00", "descricao": "Objeto postado"},
  {"data": "11/01/2025 09:30", "descricao": "Em trânsito"}
]};</script>`

const fallbackHTML = `<h2>Rastreamento detalhado</h2><ul>
<li><span>12/03/2025</span><span>14:22</span> Objeto entregue</li>
<li><span>12/03/2025</span><span>14:22</span> Objeto entregue</li>
</ul>`

// stubFetcher returns a canned result per URL and records calls
type stubFetcher struct {
	mu      sync.Mutex
	results map[string]fetcher.Result
	def     fetcher.Result
	latency time.Duration
	urls    []string
	times   []time.Time
	ends    []time.Time
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) fetcher.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, url)
	f.times = append(f.times, time.Now())
	if f.latency > 0 {
		time.Sleep(f.latency)
	}
	f.ends = append(f.ends, time.Now())
	if r, ok := f.results[url]; ok {
		return r
	}
	return f.def
}

func newTestScraper(f Fetcher, opts ...Option) *Scraper {
	base := []Option{
		WithFetcher(f),
		WithBaseURL("https://track.test"),
		WithDelay(0),
		WithLogger(logger.New(logger.LevelError, io.Discard)),
	}
	return New(append(base, opts...)...)
}

func TestScrapeOne(t *testing.T) {
	tests := []struct {
		name        string
		result      fetcher.Result
		wantSuccess bool
		wantParser  event.Parser
		wantEvents  int
		wantError   string
	}{
		{
			name:        "structured page",
			result:      fetcher.Result{StatusCode: 200, Body: structuredHTML, Attempts: 1},
			wantSuccess: true,
			wantParser:  event.ParserStructured,
			wantEvents:  2,
		},
		{
			name:        "fallback page",
			result:      fetcher.Result{StatusCode: 200, Body: fallbackHTML, Attempts: 2},
			wantSuccess: true,
			wantParser:  event.ParserFallback,
			wantEvents:  1,
		},
		{
			name:        "page without events",
			result:      fetcher.Result{StatusCode: 200, Body: "<html><body>Nada</body></html>", Attempts: 1},
			wantSuccess: true,
			wantParser:  event.ParserNone,
			wantEvents:  0,
		},
		{
			name:        "redirect status treated as success",
			result:      fetcher.Result{StatusCode: 302, Body: "", Attempts: 1},
			wantSuccess: true,
			wantParser:  event.ParserNone,
		},
		{
			name:        "http error",
			result:      fetcher.Result{StatusCode: 503, Body: "down", Attempts: 1},
			wantSuccess: false,
			wantParser:  event.ParserNone,
			wantError:   "HTTP 503",
		},
		{
			name:        "rate limited after retries",
			result:      fetcher.Result{StatusCode: 429, Body: "limit", Attempts: 4},
			wantSuccess: false,
			wantParser:  event.ParserNone,
			wantError:   "rate_limited_429",
		},
		{
			name:        "transport failure",
			result:      fetcher.Result{StatusCode: 0, Body: "transport error: connection refused", Attempts: 1},
			wantSuccess: false,
			wantParser:  event.ParserNone,
			wantError:   "transport error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &stubFetcher{def: tt.result}
			out := newTestScraper(f).ScrapeOne(context.Background(), " 411234567 ")

			if out.Success != tt.wantSuccess {
				t.Errorf("Success = %v, want %v", out.Success, tt.wantSuccess)
			}
			if out.Parser != tt.wantParser {
				t.Errorf("Parser = %q, want %q", out.Parser, tt.wantParser)
			}
			if len(out.Events) != tt.wantEvents {
				t.Errorf("got %d events, want %d: %#v", len(out.Events), tt.wantEvents, out.Events)
			}
			if out.HasData != (tt.wantEvents > 0) {
				t.Errorf("HasData = %v with %d events", out.HasData, len(out.Events))
			}
			if out.Error != tt.wantError {
				t.Errorf("Error = %q, want %q", out.Error, tt.wantError)
			}
			if out.HTTPStatus != tt.result.StatusCode {
				t.Errorf("HTTPStatus = %d, want %d", out.HTTPStatus, tt.result.StatusCode)
			}
			if out.Debug.Attempts != tt.result.Attempts || out.Debug.HTMLSize != len(tt.result.Body) {
				t.Errorf("Debug = %+v", out.Debug)
			}
			if out.TrackCode != "411234567" {
				t.Errorf("TrackCode = %q, want trimmed code", out.TrackCode)
			}
			if out.Events == nil {
				t.Error("Events should never be nil")
			}
		})
	}
}

func TestScrapeOne_ResolvesCarrier(t *testing.T) {
	f := &stubFetcher{def: fetcher.Result{StatusCode: 200, Attempts: 1}}
	out := newTestScraper(f).ScrapeOne(context.Background(), "411234567")

	if out.Carrier != string(carrier.Jadlog) {
		t.Errorf("Carrier = %q, want jadlog", out.Carrier)
	}
	want := "https://track.test/rastreio/jadlog/411234567"
	if len(f.urls) != 1 || f.urls[0] != want {
		t.Errorf("fetched %v, want %s", f.urls, want)
	}
	if out.URL != want {
		t.Errorf("URL = %q", out.URL)
	}
}

func TestScrapeOne_EmptyCode(t *testing.T) {
	f := &stubFetcher{def: fetcher.Result{StatusCode: 200}}

	for _, code := range []string{"", "   ", "\t\n"} {
		out := newTestScraper(f).ScrapeOne(context.Background(), code)
		if out.Success {
			t.Errorf("ScrapeOne(%q) should fail", code)
		}
		if out.Error != "empty trackCode" {
			t.Errorf("Error = %q, want 'empty trackCode'", out.Error)
		}
	}
	if len(f.urls) != 0 {
		t.Errorf("expected no fetches, got %v", f.urls)
	}
}

func TestScrapeOne_StructuredPreferredOverFallback(t *testing.T) {
	f := &stubFetcher{def: fetcher.Result{StatusCode: 200, Body: structuredHTML + fallbackHTML, Attempts: 1}}
	out := newTestScraper(f).ScrapeOne(context.Background(), "411234567")

	if out.Parser != event.ParserStructured {
		t.Errorf("Parser = %q, want structured", out.Parser)
	}
}

func TestScrapeOne_StructuredWithoutEventsFallsBack(t *testing.T) {
	page := `<script>var rastreio = {"success": false, "posicoes": []};</script>` + fallbackHTML
	f := &stubFetcher{def: fetcher.Result{StatusCode: 200, Body: page, Attempts: 1}}
	out := newTestScraper(f).ScrapeOne(context.Background(), "411234567")

	if out.Parser != event.ParserFallback {
		t.Errorf("Parser = %q, want fallback", out.Parser)
	}
	if len(out.Events) != 1 {
		t.Errorf("expected 1 deduplicated event, got %d", len(out.Events))
	}
}

func TestScrapeBatch(t *testing.T) {
	f := &stubFetcher{
		def: fetcher.Result{StatusCode: 200, Body: fallbackHTML, Attempts: 1},
		results: map[string]fetcher.Result{
			"https://track.test/rastreio/jadlog/BAD": {StatusCode: 404, Body: "nope", Attempts: 1},
		},
	}

	res := newTestScraper(f).ScrapeBatch(context.Background(), []string{"411000001", "", "BAD", "411000002"})

	if !res.Success || res.Count != 4 {
		t.Fatalf("unexpected batch: success=%v count=%d", res.Success, res.Count)
	}

	wantCodes := []string{"411000001", "", "BAD", "411000002"}
	wantSuccess := []bool{true, false, false, true}
	for i, out := range res.Results {
		if out.TrackCode != wantCodes[i] {
			t.Errorf("result %d TrackCode = %q, want %q", i, out.TrackCode, wantCodes[i])
		}
		if out.Success != wantSuccess[i] {
			t.Errorf("result %d Success = %v, want %v", i, out.Success, wantSuccess[i])
		}
	}
	if res.Results[2].Error != "HTTP 404" {
		t.Errorf("Error = %q, want HTTP 404", res.Results[2].Error)
	}
	if len(f.urls) != 3 {
		t.Errorf("expected 3 fetches, got %d", len(f.urls))
	}
}

func TestScrapeBatch_Spacing(t *testing.T) {
	f := &stubFetcher{def: fetcher.Result{StatusCode: 200, Attempts: 1}}
	s := newTestScraper(f, WithDelay(50*time.Millisecond))

	s.ScrapeBatch(context.Background(), []string{"411000001", "411000002", "411000003"})

	if len(f.times) != 3 {
		t.Fatalf("expected 3 fetches, got %d", len(f.times))
	}
	for i := 1; i < len(f.times); i++ {
		// allow a little scheduler slack below the nominal spacing
		if gap := f.times[i].Sub(f.times[i-1]); gap < 40*time.Millisecond {
			t.Errorf("gap between request %d and %d = %v, want >= 50ms", i-1, i, gap)
		}
	}
}

func TestScrapeBatch_SpacingAfterSlowFetch(t *testing.T) {
	// each fetch outlasts the delay, as a code retried through 429s would
	f := &stubFetcher{
		def:     fetcher.Result{StatusCode: 429, Attempts: 4},
		latency: 150 * time.Millisecond,
	}
	s := newTestScraper(f, WithDelay(100*time.Millisecond))

	s.ScrapeBatch(context.Background(), []string{"411000001", "411000002", "411000003"})

	if len(f.times) != 3 {
		t.Fatalf("expected 3 fetches, got %d", len(f.times))
	}
	for i := 1; i < len(f.times); i++ {
		if gap := f.times[i].Sub(f.ends[i-1]); gap < 90*time.Millisecond {
			t.Errorf("gap between end of request %d and start of %d = %v, want >= 100ms", i-1, i, gap)
		}
	}
}

func TestScrapeBatch_ContextCancelled(t *testing.T) {
	f := &stubFetcher{def: fetcher.Result{StatusCode: 200, Attempts: 1}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := newTestScraper(f).ScrapeBatch(ctx, []string{"411000001", "411000002"})

	if res.Count != 2 {
		t.Fatalf("Count = %d, want 2", res.Count)
	}
	for _, out := range res.Results {
		if out.Success || !strings.Contains(out.Error, "canceled") {
			t.Errorf("expected cancellation failure, got %+v", out)
		}
	}
	if len(f.urls) != 0 {
		t.Errorf("expected no fetches, got %v", f.urls)
	}
}

func TestExtract(t *testing.T) {
	if _, p := Extract(structuredHTML); p != event.ParserStructured {
		t.Errorf("parser = %q, want structured", p)
	}
	if _, p := Extract(fallbackHTML); p != event.ParserFallback {
		t.Errorf("parser = %q, want fallback", p)
	}
	events, p := Extract("")
	if p != event.ParserNone || events == nil || len(events) != 0 {
		t.Errorf("Extract(\"\") = %#v, %q", events, p)
	}
}
