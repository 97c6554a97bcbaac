package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/opensource-finance/kestrel/internal/domain"
)

func TestChatClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/model/risk-scorer-small/invoke" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		if req.MaxTokens != 200 {
			t.Errorf("expected max_tokens 200, got %d", req.MaxTokens)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{
				{"text": "Score: 0.91 - unusual merchant and velocity"},
			},
		})
	}))
	defer srv.Close()

	client, err := New(domain.InferenceConfig{
		Provider: domain.ProviderChat,
		ModelID:  "risk-scorer-small",
		Endpoint: srv.URL,
		APIKey:   "test-key",
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer client.Close()

	text, err := client.Complete(context.Background(), "analyze this")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if text != "Score: 0.91 - unusual merchant and velocity" {
		t.Errorf("unexpected response text: %q", text)
	}
}

func TestInstructClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req instructRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if len(req.Messages) != 1 || len(req.Messages[0].Content) != 1 {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		if req.InferenceConfig.MaxNewTokens != 200 {
			t.Errorf("expected max_new_tokens 200, got %d", req.InferenceConfig.MaxNewTokens)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"output": map[string]any{
				"message": map[string]any{
					"content": []map[string]string{
						{"text": "Score: 0.05 - routine purchase"},
					},
				},
			},
		})
	}))
	defer srv.Close()

	client, err := New(domain.InferenceConfig{
		Provider: domain.ProviderInstruct,
		ModelID:  "risk-scorer-rft",
		Endpoint: srv.URL,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer client.Close()

	text, err := client.Complete(context.Background(), "analyze this")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if text != "Score: 0.05 - routine purchase" {
		t.Errorf("unexpected response text: %q", text)
	}
}

func TestClientErrors(t *testing.T) {
	t.Run("NonOKStatus", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "throttled", http.StatusTooManyRequests)
		}))
		defer srv.Close()

		client, _ := New(domain.InferenceConfig{
			Provider: domain.ProviderChat,
			ModelID:  "m",
			Endpoint: srv.URL,
		})
		defer client.Close()

		if _, err := client.Complete(context.Background(), "p"); err == nil {
			t.Error("expected error for non-200 status")
		}
	})

	t.Run("EmptyContent", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"content": []any{}})
		}))
		defer srv.Close()

		client, _ := New(domain.InferenceConfig{
			Provider: domain.ProviderChat,
			ModelID:  "m",
			Endpoint: srv.URL,
		})
		defer client.Close()

		if _, err := client.Complete(context.Background(), "p"); err == nil {
			t.Error("expected error for empty content")
		}
	})

	t.Run("Timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		client, _ := New(domain.InferenceConfig{
			Provider: domain.ProviderChat,
			ModelID:  "m",
			Endpoint: srv.URL,
			Timeout:  20 * time.Millisecond,
		})
		defer client.Close()

		if _, err := client.Complete(context.Background(), "p"); err == nil {
			t.Error("expected timeout error")
		}
	})

	t.Run("UnsupportedProvider", func(t *testing.T) {
		if _, err := New(domain.InferenceConfig{Provider: "grpc"}); err == nil {
			t.Error("expected error for unsupported provider")
		}
	})
}
