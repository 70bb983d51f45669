package content

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/nao1215/pressgen/internal/transport"
)

// DefaultGeminiModel is the Gemini model used when none is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

const providerGemini = "gemini"

// GeminiClient generates text with Google Gemini.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini client. Call Close when done.
//
// When httpClient is non-nil, requests go through it, so the proxy, TLS and
// User-Agent settings of the shared client apply. opts are appended to the
// client options, e.g. option.WithEndpoint.
func NewGeminiClient(ctx context.Context, httpClient *http.Client, apiKey, model string, opts ...option.ClientOption) (*GeminiClient, error) {
	if model == "" {
		model = DefaultGeminiModel
	}
	// WithAPIKey is ignored by clients built from WithHTTPClient; the key
	// travels in a header set by geminiHTTPClient instead.
	clientOpts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if httpClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(geminiHTTPClient(httpClient, apiKey)))
	}
	client, err := genai.NewClient(ctx, append(clientOpts, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

// apiKeyHeader authenticates Generative Language API requests.
const apiKeyHeader = "x-goog-api-key"

// geminiHTTPClient returns a copy of base whose transport adds the API key.
func geminiHTTPClient(base *http.Client, apiKey string) *http.Client {
	next := base.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	keyed := *base
	keyed.Transport = &apiKeyTransport{key: apiKey, next: next}
	return &keyed
}

type apiKeyTransport struct {
	key  string
	next http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set(apiKeyHeader, t.key)
	return t.next.RoundTrip(req)
}

// Name implements Completer.
func (c *GeminiClient) Name() string {
	return "gemini:" + c.model
}

// Complete implements Completer.
func (c *GeminiClient) Complete(ctx context.Context, req Request) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(float32(req.Temperature))
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(min(req.MaxTokens, 1<<20))) //nolint:gosec // bounded above
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", &transport.ProviderError{Provider: providerGemini, Err: err}
	}
	return textFromResponse(resp)
}

// Close releases the underlying client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// textFromResponse concatenates the text parts of the first candidate.
func textFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", transport.Malformed(providerGemini, "no candidates (possibly blocked by safety filters)")
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", transport.Malformed(providerGemini, "first candidate has no content parts")
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", transport.Malformed(providerGemini, "no text parts in first candidate")
	}
	return text, nil
}

var _ Completer = (*GeminiClient)(nil)
