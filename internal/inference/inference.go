// Package inference provides clients for the hosted model endpoint
// used to score transactions. Two wire envelopes are supported behind
// one interface; the orchestrator never sees the difference.
package inference

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/opensource-finance/kestrel/internal/domain"
)

// Client is the scoring capability boundary: prompt text in, free text
// out, within a bounded time. Any failure (timeout, transport error,
// malformed response) comes back as an error; the fallback policy
// lives with the caller.
type Client interface {
	// Complete sends the prompt and returns the raw response text.
	Complete(ctx context.Context, prompt string) (string, error)

	// ModelID returns the configured model identifier.
	ModelID() string

	// Lifecycle
	Close() error
}

// New creates an inference client based on configuration.
func New(cfg domain.InferenceConfig) (Client, error) {
	switch cfg.Provider {
	case domain.ProviderChat:
		return newChatClient(cfg), nil

	case domain.ProviderInstruct:
		return newInstructClient(cfg), nil

	case domain.ProviderStub:
		return NewStub(cfg.ModelID, cfg.StubResponse), nil

	default:
		return nil, fmt.Errorf("unsupported inference provider: %s", cfg.Provider)
	}
}

const defaultTimeout = 10 * time.Second

// httpClient holds the transport shared by both envelope variants.
type httpClient struct {
	http    *http.Client
	baseURL string
	modelID string
	apiKey  string
}

func newHTTPClient(cfg domain.InferenceConfig) httpClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return httpClient{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimSuffix(cfg.Endpoint, "/"),
		modelID: cfg.ModelID,
		apiKey:  cfg.APIKey,
	}
}

// invokeURL builds the per-model invocation URL.
func (c *httpClient) invokeURL() string {
	return c.baseURL + "/model/" + url.PathEscape(c.modelID) + "/invoke"
}

func (c *httpClient) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("inference endpoint returned status %d", resp.StatusCode)
	}
	return resp, nil
}
