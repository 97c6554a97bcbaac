package domain

import "time"

// InferenceProvider selects the request/response envelope used to talk
// to the hosted model endpoint. Both providers satisfy the same
// contract: prompt text in, free text out, bounded by a timeout.
type InferenceProvider string

const (
	// ProviderChat uses the chat-completion envelope
	// (messages + max_tokens, text under content[0]).
	ProviderChat InferenceProvider = "chat"

	// ProviderInstruct uses the instruction-following envelope
	// (messages with content parts + inferenceConfig, text under
	// output.message.content[0]).
	ProviderInstruct InferenceProvider = "instruct"

	// ProviderStub returns a canned response without a network call.
	// Used in tests and offline dry-runs.
	ProviderStub InferenceProvider = "stub"
)

// InferenceConfig holds configuration for the inference client.
type InferenceConfig struct {
	Provider InferenceProvider
	ModelID  string
	Endpoint string
	APIKey   string

	// Timeout bounds a single inference call. The fallback policy
	// depends on this being enforced client-side.
	Timeout time.Duration

	MaxTokens   int
	Temperature float64

	// StubResponse is the canned text returned by the stub provider.
	StubResponse string
}
