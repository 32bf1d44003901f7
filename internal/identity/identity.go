// Package identity builds browser-like request headers for the tracking site.
//
// Each call to Random picks one user agent from a fixed pool of real browser
// identities and pairs it with the locale, referrer and cache headers a
// Brazilian visitor of the tracking site would send.
package identity

import (
	"math/rand"
	"net/http"
)

const (
	AcceptLanguage = "pt-BR,pt;q=0.9,en-US;q=0.8,en;q=0.7"
	Referer        = "https://www.rastreadordepacotes.com.br/"
	Accept         = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8"
)

// UserAgents is the pool Random draws from
var UserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36 Edg/123.0.2420.81",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4.1 Safari/605.1.15",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 17_4_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4.1 Mobile/15E148 Safari/604.1",
	"Mozilla/5.0 (Linux; Android 14; SM-S918B) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.6367.82 Mobile Safari/537.36",
}

// Source supplies the headers for one request attempt
type Source interface {
	Headers() http.Header
}

// Randomized is a Source that returns a fresh Random identity on every call
type Randomized struct{}

// Headers implements Source
func (Randomized) Headers() http.Header {
	return Random()
}

// Fixed is a Source that always presents the same user agent
type Fixed string

// Headers implements Source
func (f Fixed) Headers() http.Header {
	return build(string(f))
}

// Random returns a header set with a user agent chosen uniformly from UserAgents
func Random() http.Header {
	return build(UserAgents[rand.Intn(len(UserAgents))])
}

func build(userAgent string) http.Header {
	h := make(http.Header)
	h.Set("User-Agent", userAgent)
	h.Set("Accept", Accept)
	h.Set("Accept-Language", AcceptLanguage)
	h.Set("Referer", Referer)
	h.Set("Cache-Control", "no-cache")
	h.Set("Pragma", "no-cache")
	return h
}
