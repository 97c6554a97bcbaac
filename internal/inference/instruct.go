package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/opensource-finance/kestrel/internal/domain"
)

// instructClient speaks the instruction-following envelope: messages
// carry content parts, generation settings ride in inferenceConfig,
// and the response text sits under output.message.content[0].
type instructClient struct {
	httpClient
	maxTokens   int
	temperature float64
}

func newInstructClient(cfg domain.InferenceConfig) *instructClient {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 200
	}
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = 0.7
	}
	return &instructClient{
		httpClient:  newHTTPClient(cfg),
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

type instructRequest struct {
	Messages        []instructMessage `json:"messages"`
	InferenceConfig instructSettings  `json:"inferenceConfig"`
}

type instructMessage struct {
	Role    string         `json:"role"`
	Content []instructPart `json:"content"`
}

type instructPart struct {
	Text string `json:"text"`
}

type instructSettings struct {
	MaxNewTokens int     `json:"max_new_tokens"`
	Temperature  float64 `json:"temperature"`
}

type instructResponse struct {
	Output struct {
		Message struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"message"`
	} `json:"output"`
}

// Complete sends the prompt using the instruct envelope.
func (c *instructClient) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(instructRequest{
		Messages: []instructMessage{
			{Role: "user", Content: []instructPart{{Text: prompt}}},
		},
		InferenceConfig: instructSettings{
			MaxNewTokens: c.maxTokens,
			Temperature:  c.temperature,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal instruct request: %w", err)
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

	var out instructResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode instruct response: %w", err)
	}
	if len(out.Output.Message.Content) == 0 {
		return "", fmt.Errorf("instruct response contained no content")
	}

	return out.Output.Message.Content[0].Text, nil
}

// ModelID returns the configured model identifier.
func (c *instructClient) ModelID() string {
	return c.modelID
}

// Close releases idle transport connections.
func (c *instructClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
