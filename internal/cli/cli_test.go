package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pfrederiksen/rastreio/internal/event"
)

const trackingPage = `<h2>Rastreamento detalhado</h2><ul>
<li><span>12/03/2025</span> <span>14:22</span> Objeto entregue ao destinatário</li>
</ul>`

func newTrackingServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/rastreio/jadlog/000" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(trackingPage))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestTrackCommand_JSON(t *testing.T) {
	server := newTrackingServer(t)

	var buf bytes.Buffer
	cmd := newTrackCmd(&buf)
	cmd.SetArgs([]string{"--format", "json", "--delay", "0s", "--log-level", "error", "--base-url", server.URL, "411234567"})

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	var result event.BatchResult
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, buf.String())
	}
	if result.Count != 1 || !result.Results[0].Success {
		t.Fatalf("unexpected result: %+v", result)
	}
	out := result.Results[0]
	if out.Parser != event.ParserFallback || len(out.Events) != 1 {
		t.Errorf("unexpected outcome: %+v", out)
	}
	if out.Events[0].DateTime != "12/03/2025 14:22" {
		t.Errorf("DateTime = %q", out.Events[0].DateTime)
	}
}

func TestTrackCommand_FailureReported(t *testing.T) {
	server := newTrackingServer(t)

	var buf bytes.Buffer
	cmd := newTrackCmd(&buf)
	cmd.SetArgs([]string{"--delay", "0s", "--log-level", "error", "--base-url", server.URL, "411234567", "000"})

	err := cmd.ExecuteContext(context.Background())
	if !errors.Is(err, errSomeFailed) {
		t.Fatalf("expected errSomeFailed, got %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("000: FAILED (HTTP 404)")) {
		t.Errorf("expected failure line in output:\n%s", buf.String())
	}
}

func TestTrackCommand_InvalidFormat(t *testing.T) {
	cmd := newTrackCmd(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "xml", "411234567"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	if err := cmd.Execute(); err == nil {
		t.Error("expected error for invalid format")
	}
}

func TestTrackCommand_RequiresCode(t *testing.T) {
	cmd := newTrackCmd(&bytes.Buffer{})
	cmd.SetArgs([]string{})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	if err := cmd.Execute(); err == nil {
		t.Error("expected error without codes")
	}
}

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"track", "serve"} {
		if !names[want] {
			t.Errorf("expected %q subcommand", want)
		}
	}
}
