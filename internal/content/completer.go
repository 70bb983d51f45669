package content

import "context"

// Request is a single completion request.
type Request struct {
	// Prompt is sent as the only user message.
	Prompt string

	// MaxTokens caps the response length.
	MaxTokens int

	// Temperature is the sampling temperature.
	Temperature float64
}

// Completer sends one prompt to a language model and returns the raw reply.
// Implementations return *transport.ProviderError for transport failures
// and non-2xx statuses, and an error wrapping transport.ErrMalformedResponse
// when a 2xx body has no usable text.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)

	// Name identifies the provider in logs.
	Name() string
}
