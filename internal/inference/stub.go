package inference

import "context"

// Stub is a canned-response client for tests and offline dry-runs.
type Stub struct {
	modelID  string
	response string

	// Err, when set, is returned instead of the response.
	Err error
}

// NewStub creates a stub client returning the given response.
func NewStub(modelID, response string) *Stub {
	if response == "" {
		response = "Score: 0.10 - no risk indicators in stub mode"
	}
	return &Stub{modelID: modelID, response: response}
}

// Complete returns the canned response.
func (s *Stub) Complete(ctx context.Context, prompt string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.response, nil
}

// ModelID returns the configured model identifier.
func (s *Stub) ModelID() string {
	return s.modelID
}

// Close is a no-op.
func (s *Stub) Close() error {
	return nil
}
