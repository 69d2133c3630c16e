package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/veridianlabs/governport-backend/pkg/config"
	pkgerrors "github.com/veridianlabs/governport-backend/pkg/errors"
	"github.com/veridianlabs/governport-backend/pkg/logger"
)

// UpstreamClient starts a streamed completion and hands back the raw SSE body.
type UpstreamClient interface {
	Stream(ctx context.Context, messages []Message) (io.ReadCloser, error)
}

type completionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type httpUpstreamClient struct {
	cfg    config.ChatConfig
	client *http.Client
	logg   *logger.Logger
}

// NewUpstreamClient builds the OpenAI-compatible streaming client. The API
// key is checked per call so a misconfigured deployment fails loudly instead
// of at first import.
//
// The timeout only covers the wait for response headers. A client-wide
// timeout would also cap the body read and cut off streams that legitimately
// run longer; once headers arrive the request context governs the stream.
func NewUpstreamClient(cfg config.ChatConfig, logg *logger.Logger) UpstreamClient {
	return &httpUpstreamClient{
		cfg: cfg,
		client: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: cfg.RequestTimeout,
			},
		},
		logg: logg,
	}
}

func (c *httpUpstreamClient) Stream(ctx context.Context, messages []Message) (io.ReadCloser, error) {
	if c.cfg.APIKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "chat upstream api key is not configured")
	}

	payload, err := json.Marshal(completionRequest{
		Model:    c.cfg.Model,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode completion request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build completion request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "call chat upstream")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Upstream error bodies are logged, never forwarded to the browser.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		if c.logg != nil {
			c.logg.Error(ctx, fmt.Sprintf("chat upstream returned %d: %s", resp.StatusCode, string(body)), nil)
		}
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "chat upstream request failed")
	}
	return resp.Body, nil
}
