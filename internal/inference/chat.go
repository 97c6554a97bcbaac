package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/opensource-finance/kestrel/internal/domain"
)

// chatClient speaks the chat-completion envelope: a flat messages
// array with a token cap, response text under content[0].
type chatClient struct {
	httpClient
	maxTokens int
}

func newChatClient(cfg domain.InferenceConfig) *chatClient {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 200
	}
	return &chatClient{
		httpClient: newHTTPClient(cfg),
		maxTokens:  maxTokens,
	}
}

type chatRequest struct {
	MaxTokens int           `json:"max_tokens"`
	Messages  []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// Complete sends the prompt using the chat envelope.
func (c *chatClient) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		MaxTokens: c.maxTokens,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.invokeURL(), bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	if len(out.Content) == 0 {
		return "", fmt.Errorf("chat response contained no content")
	}

	return out.Content[0].Text, nil
}

// ModelID returns the configured model identifier.
func (c *chatClient) ModelID() string {
	return c.modelID
}

// Close releases idle transport connections.
func (c *chatClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
