package chat

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/veridianlabs/governport-backend/pkg/config"
)

func TestUpstreamClientTimeoutOnlyCoversHeaders(t *testing.T) {
	cfg := config.ChatConfig{RequestTimeout: 90 * time.Second}
	upstream, ok := NewUpstreamClient(cfg, nil).(*httpUpstreamClient)
	if !ok {
		t.Fatalf("expected *httpUpstreamClient, got %T", NewUpstreamClient(cfg, nil))
	}

	if upstream.client.Timeout != 0 {
		t.Fatalf("client-wide timeout would cut long streams, got %s", upstream.client.Timeout)
	}
	transport, ok := upstream.client.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("expected *http.Transport, got %T", upstream.client.Transport)
	}
	if transport.ResponseHeaderTimeout != cfg.RequestTimeout {
		t.Fatalf("expected header timeout %s, got %s", cfg.RequestTimeout, transport.ResponseHeaderTimeout)
	}
}

func TestUpstreamClientAllowsBodyReadPastHeaderTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		time.Sleep(120 * time.Millisecond)
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	cfg := config.ChatConfig{
		BaseURL:        srv.URL,
		APIKey:         "test-key",
		Model:          "test-model",
		RequestTimeout: 40 * time.Millisecond,
	}
	body, err := NewUpstreamClient(cfg, nil).Stream(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(data), "[DONE]") {
		t.Fatalf("expected the full stream past the header timeout, got %q", string(data))
	}
}
