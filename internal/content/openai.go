package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/nao1215/pressgen/internal/transport"
)

const (
	// DefaultOpenAIBaseURL is the Groq OpenAI-compatible API root.
	DefaultOpenAIBaseURL = "https://api.groq.com/openai/v1"

	// DefaultOpenAIModel is the default chat model.
	DefaultOpenAIModel = "llama-3.1-8b-instant"

	// maxCompletionBody bounds how much of a completion response is read.
	maxCompletionBody = 1 << 20

	providerCompletion = "completion"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// OpenAIClient talks to an OpenAI-compatible chat-completion endpoint.
type OpenAIClient struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
}

// NewOpenAIClient creates a client. Empty baseURL and model use the Groq defaults.
func NewOpenAIClient(client *http.Client, baseURL, model, apiKey string) *OpenAIClient {
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		client:  client,
	}
}

// Name implements Completer.
func (c *OpenAIClient) Name() string {
	return "openai:" + c.model
}

// Complete implements Completer.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", &transport.ProviderError{Provider: providerCompletion, Err: err}
	}
	defer resp.Body.Close()

	body, _, err := transport.ReadBody(resp.Body, maxCompletionBody)
	if err != nil {
		return "", &transport.ProviderError{Provider: providerCompletion, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &transport.ProviderError{
			Provider:   providerCompletion,
			StatusCode: resp.StatusCode,
			Snippet:    transport.Snippet(body),
		}
	}

	var decoded chatResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", transport.Malformed(providerCompletion, "decode body: %v", err)
	}
	if len(decoded.Choices) == 0 {
		return "", transport.Malformed(providerCompletion, "no choices")
	}
	text := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if text == "" {
		return "", transport.Malformed(providerCompletion, "empty content")
	}
	return text, nil
}

var _ Completer = (*OpenAIClient)(nil)
