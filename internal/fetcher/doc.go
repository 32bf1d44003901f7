// Package fetcher performs the HTTP GET against the tracking site with a fixed
// retry schedule tuned for rate limiting.
//
// A fetch makes up to four attempts, waiting 0s, 3s, 10s and 25s before each
// one. Only HTTP 429 is retried; every other status, including transport
// failures reported as status 0, ends the cycle immediately. Each attempt
// presents a freshly drawn browser identity.
package fetcher
