package content

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/pressgen/internal/model"
	"github.com/nao1215/pressgen/internal/transport"
)

// stubCompleter returns a canned reply or error and records prompts.
type stubCompleter struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []Request
}

func (s *stubCompleter) Complete(_ context.Context, req Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, req)
	return s.reply, s.err
}

func (s *stubCompleter) Name() string { return "stub" }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestGenerateTopic tests topic generation and its fallback.
func TestGenerateTopic(t *testing.T) {
	t.Parallel()

	t.Run("sanitized reply", func(t *testing.T) {
		t.Parallel()

		g := NewGenerator(&stubCompleter{reply: "Title: **5 AI Tools**"}, WithLogger(quietLogger()))
		topic := g.GenerateTopic(context.Background(), "ai")
		if topic.Title != "5 AI Tools" || topic.Fallback {
			t.Errorf("unexpected topic %+v", topic)
		}
	})

	failures := map[string]*stubCompleter{
		"provider error":  {err: &transport.ProviderError{Provider: "stub", StatusCode: 500}},
		"malformed":       {err: transport.Malformed("stub", "no choices")},
		"unusable output": {reply: "***"},
	}
	for name, stub := range failures {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			g := NewGenerator(stub, WithLogger(quietLogger()))
			topic := g.GenerateTopic(context.Background(), "ai")
			if topic.IsZero() || !topic.Fallback {
				t.Errorf("expected non-empty fallback topic, got %+v", topic)
			}
			if again := g.GenerateTopic(context.Background(), "ai"); again != topic {
				t.Errorf("fallback is not deterministic: %q vs %q", again.Title, topic.Title)
			}
		})
	}
}

// TestGenerateBody tests body generation and its fallback.
func TestGenerateBody(t *testing.T) {
	t.Parallel()

	topic := model.NewTopic("5 AI Tools", false)

	t.Run("paragraphs are capped to the style", func(t *testing.T) {
		t.Parallel()

		stub := &stubCompleter{reply: "Para1 text.\n\nPara2 text.\n\nPara3 text.\n\nPara4 text.\n\nPara5 text."}
		g := NewGenerator(stub, WithLogger(quietLogger()))

		body := g.GenerateBody(context.Background(), topic, DefaultStyle())
		expected := []string{"Para1 text.", "Para2 text.", "Para3 text.", "Para4 text."}
		if !reflect.DeepEqual(body.Paragraphs, expected) || body.Fallback {
			t.Errorf("unexpected body %+v", body)
		}
		if len(stub.prompts) != 1 {
			t.Fatalf("expected exactly one completion call, got %d", len(stub.prompts))
		}
		if stub.prompts[0].MaxTokens != DefaultStyle().MaxTokens {
			t.Errorf("MaxTokens = %d", stub.prompts[0].MaxTokens)
		}
		if !strings.Contains(stub.prompts[0].Prompt, `"5 AI Tools"`) {
			t.Errorf("prompt does not mention the topic: %q", stub.prompts[0].Prompt)
		}
	})

	t.Run("failure yields readable fallback", func(t *testing.T) {
		t.Parallel()

		g := NewGenerator(&stubCompleter{err: context.DeadlineExceeded}, WithLogger(quietLogger()))
		style := DefaultStyle()
		body := g.GenerateBody(context.Background(), topic, style)

		if body.IsEmpty() || !body.Fallback {
			t.Fatalf("expected non-empty fallback body, got %+v", body)
		}
		if len(body.Paragraphs) != style.ParagraphCount {
			t.Errorf("expected %d paragraphs, got %d", style.ParagraphCount, len(body.Paragraphs))
		}
		if !strings.Contains(body.Paragraphs[0], "5 AI Tools") {
			t.Errorf("fallback does not mention the topic: %q", body.Paragraphs[0])
		}
		for _, p := range body.Paragraphs {
			if strings.Contains(p, "%!") || strings.ContainsAny(p, "*#`[]") {
				t.Errorf("fallback paragraph is not clean: %q", p)
			}
		}
	})

	t.Run("invalid style falls back to defaults", func(t *testing.T) {
		t.Parallel()

		stub := &stubCompleter{reply: "One.\n\nTwo."}
		g := NewGenerator(stub, WithLogger(quietLogger()))
		body := g.GenerateBody(context.Background(), topic, Style{})
		if len(body.Paragraphs) != 2 {
			t.Errorf("unexpected body %+v", body)
		}
		if stub.prompts[0].MaxTokens != DefaultStyle().MaxTokens {
			t.Errorf("expected default max tokens, got %d", stub.prompts[0].MaxTokens)
		}
	})
}

// TestGeneratePage tests page generation.
func TestGeneratePage(t *testing.T) {
	t.Parallel()

	t.Run("custom instruction is used", func(t *testing.T) {
		t.Parallel()

		stub := &stubCompleter{reply: "We help teams.\n\nOur mission."}
		g := NewGenerator(stub, WithLogger(quietLogger()))
		body := g.GeneratePage(context.Background(), "About Us", "Write an About Us page.", PageStyle())
		if len(body.Paragraphs) != 2 || body.Fallback {
			t.Errorf("unexpected body %+v", body)
		}
		if !strings.HasPrefix(stub.prompts[0].Prompt, "Write an About Us page.") {
			t.Errorf("unexpected prompt %q", stub.prompts[0].Prompt)
		}
	})

	t.Run("failure yields fallback page", func(t *testing.T) {
		t.Parallel()

		g := NewGenerator(&stubCompleter{err: errors.New("down")}, WithLogger(quietLogger()))
		body := g.GeneratePage(context.Background(), "About Us", "", PageStyle())
		if body.IsEmpty() || !body.Fallback {
			t.Errorf("expected fallback page, got %+v", body)
		}
	})
}

// TestGeneratorTimeout tests that the per-call deadline is applied.
func TestGeneratorTimeout(t *testing.T) {
	t.Parallel()

	blocking := completerFunc(func(ctx context.Context, _ Request) (string, error) {
		<-ctx.Done()
		return "", &transport.ProviderError{Provider: "slow", Err: ctx.Err()}
	})
	g := NewGenerator(blocking, WithLogger(quietLogger()), WithTimeouts(10*time.Millisecond, 10*time.Millisecond))

	done := make(chan model.Topic, 1)
	go func() { done <- g.GenerateTopic(context.Background(), "") }()

	select {
	case topic := <-done:
		if !topic.Fallback {
			t.Errorf("expected fallback topic after timeout, got %+v", topic)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("generator did not honor its timeout")
	}
}

type completerFunc func(ctx context.Context, req Request) (string, error)

func (f completerFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

func (f completerFunc) Name() string {
	return "func"
}
