package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxBodySize caps how much of a response body is read
const maxBodySize = 10 << 20

// Transport issues a single GET and returns the status code and body text.
// Implementations must be safe for concurrent use.
type Transport interface {
	Get(ctx context.Context, url string, header http.Header) (int, string, error)
}

// HTTPTransport is the default Transport, backed by net/http
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport creates a transport whose requests time out after timeout
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Get implements Transport
func (t *HTTPTransport) Get(ctx context.Context, url string, header http.Header) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, "", fmt.Errorf("creating request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, "", fmt.Errorf("reading body: %w", err)
	}

	return resp.StatusCode, string(body), nil
}
