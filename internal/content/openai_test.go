package content

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nao1215/pressgen/internal/transport"
)

// TestOpenAIClientComplete tests the chat-completion client.
func TestOpenAIClientComplete(t *testing.T) {
	t.Parallel()

	t.Run("sends the request shape and returns content", func(t *testing.T) {
		t.Parallel()

		received := make(chan chatRequest, 1)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/chat/completions" || r.Method != http.MethodPost {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer secret" {
				t.Errorf("Authorization = %q", got)
			}
			var req chatRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode request: %v", err)
			}
			received <- req
			_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  5 AI Tools  "}}]}`))
		}))
		defer srv.Close()

		client := NewOpenAIClient(srv.Client(), srv.URL+"/", "test-model", "secret")
		text, err := client.Complete(context.Background(), Request{Prompt: "hi", MaxTokens: 50, Temperature: 0.5})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if text != "5 AI Tools" {
			t.Errorf("got %q", text)
		}

		req := <-received
		if req.Model != "test-model" || req.MaxTokens != 50 || req.Temperature != 0.5 {
			t.Errorf("unexpected request %+v", req)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" || req.Messages[0].Content != "hi" {
			t.Errorf("unexpected messages %+v", req.Messages)
		}
	})

	t.Run("non-2xx is a provider error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}))
		defer srv.Close()

		_, err := NewOpenAIClient(srv.Client(), srv.URL, "", "k").Complete(context.Background(), Request{Prompt: "x"})
		var pe *transport.ProviderError
		if !errors.As(err, &pe) {
			t.Fatalf("expected ProviderError, got %v", err)
		}
		if pe.StatusCode != http.StatusTooManyRequests || pe.Snippet != "rate limited" {
			t.Errorf("unexpected provider error %+v", pe)
		}
	})

	malformed := map[string]string{
		"not json":      `<html>oops</html>`,
		"no choices":    `{"choices":[]}`,
		"empty content": `{"choices":[{"message":{"content":"   "}}]}`,
	}
	for name, body := range malformed {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			_, err := NewOpenAIClient(srv.Client(), srv.URL, "", "k").Complete(context.Background(), Request{Prompt: "x"})
			if !errors.Is(err, transport.ErrMalformedResponse) {
				t.Errorf("expected ErrMalformedResponse, got %v", err)
			}
		})
	}

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		client := NewOpenAIClient(http.DefaultClient, "", "", "k")
		if client.baseURL != DefaultOpenAIBaseURL || client.model != DefaultOpenAIModel {
			t.Errorf("unexpected defaults %q %q", client.baseURL, client.model)
		}
	})
}
