package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/nao1215/pressgen/internal/model"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, run *model.Run) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, run *model.Run) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, run)
	}
	run.RecordStage(m.name, model.StageOK, "")
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestPipelineNew tests the Pipeline constructor.
func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with default settings", func(t *testing.T) {
		t.Parallel()

		p := New()

		if p == nil {
			t.Fatal("expected non-nil pipeline")
		}
		if p.StepCount() != 0 {
			t.Errorf("expected 0 steps, got %d", p.StepCount())
		}
		if p.logger == nil {
			t.Error("expected default logger")
		}
	})

	t.Run("applies WithStatusWriter option", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		p := New(WithStatusWriter(&buf))

		if p.status != &buf {
			t.Error("expected status writer to be set")
		}
	})
}

// TestPipelineAddStep tests adding steps to the pipeline.
func TestPipelineAddStep(t *testing.T) {
	t.Parallel()

	t.Run("adds multiple steps with AddSteps", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddSteps(&mockStep{name: "step-1"}, &mockStep{name: "step-2"}, &mockStep{name: "step-3"})

		if p.StepCount() != 3 {
			t.Errorf("expected 3 steps, got %d", p.StepCount())
		}
	})

	t.Run("maintains step order", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddStep(&mockStep{name: "first"})
		p.AddStep(&mockStep{name: "second"})
		p.AddStep(&mockStep{name: "third"})

		names := p.StepNames()
		expected := []string{"first", "second", "third"}
		for i, name := range names {
			if name != expected[i] {
				t.Errorf("step %d: got %q, expected %q", i, name, expected[i])
			}
		}
	})
}

// TestPipelineExecute tests pipeline execution.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes all steps in order", func(t *testing.T) {
		t.Parallel()

		p := New(WithLogger(quietLogger()))
		p.AddSteps(&mockStep{name: "a"}, &mockStep{name: "b"}, &mockStep{name: "c"})

		run := model.NewRun(model.Job{Slug: "order"})
		if err := p.Execute(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(run.Stages) != 3 {
			t.Fatalf("expected 3 stages, got %d", len(run.Stages))
		}
		for i, name := range []string{"a", "b", "c"} {
			if run.Stages[i].Name != name {
				t.Errorf("stage %d: got %q, expected %q", i, run.Stages[i].Name, name)
			}
		}
		if run.FinishedAt.IsZero() {
			t.Error("expected FinishedAt to be set")
		}
	})

	t.Run("stops on first error and records failed stage", func(t *testing.T) {
		t.Parallel()

		stepErr := errors.New("boom")
		failing := &mockStep{
			name: "failing",
			doFunc: func(_ context.Context, _ *model.Run) error {
				return stepErr
			},
		}
		after := &mockStep{name: "after"}

		p := New(WithLogger(quietLogger()))
		p.AddSteps(&mockStep{name: "before"}, failing, after)

		run := model.NewRun(model.Job{Slug: "fail"})
		err := p.Execute(context.Background(), run)

		if !errors.Is(err, stepErr) {
			t.Fatalf("expected step error, got %v", err)
		}
		if after.callCount != 0 {
			t.Error("expected step after failure to be skipped")
		}
		last, ok := run.LastStage()
		if !ok || last.Name != "failing" || last.State != model.StageFailed {
			t.Errorf("expected failed stage for failing step, got %+v", last)
		}
		if run.ErrorMessage != "boom" {
			t.Errorf("expected error message %q, got %q", "boom", run.ErrorMessage)
		}
	})

	t.Run("does not duplicate a failed stage the step recorded", func(t *testing.T) {
		t.Parallel()

		failing := &mockStep{
			name: "publish",
			doFunc: func(_ context.Context, run *model.Run) error {
				run.RecordStage("publish", model.StageFailed, "HTTP 500")
				return errors.New("HTTP 500")
			},
		}

		p := New(WithLogger(quietLogger()))
		p.AddStep(failing)

		run := model.NewRun(model.Job{Slug: "once"})
		_ = p.Execute(context.Background(), run)

		if len(run.Stages) != 1 {
			t.Errorf("expected 1 stage, got %d", len(run.Stages))
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		first := &mockStep{
			name: "first",
			doFunc: func(_ context.Context, run *model.Run) error {
				run.RecordStage("first", model.StageOK, "")
				cancel()
				return nil
			},
		}
		second := &mockStep{name: "second"}

		p := New(WithLogger(quietLogger()))
		p.AddSteps(first, second)

		run := model.NewRun(model.Job{Slug: "cancel"})
		err := p.Execute(ctx, run)

		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if second.callCount != 0 {
			t.Error("expected second step to be skipped")
		}
		last, _ := run.LastStage()
		if last.Name != "second" || last.State != model.StageFailed {
			t.Errorf("expected cancelled stage for second step, got %+v", last)
		}
	})
}

// TestPipelineStatusLines tests the per-stage status output.
func TestPipelineStatusLines(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := New(WithLogger(quietLogger()), WithStatusWriter(&buf))
	p.AddStep(&mockStep{
		name: "topic",
		doFunc: func(_ context.Context, run *model.Run) error {
			run.RecordStage("topic", model.StageFallback, "offline")
			return nil
		},
	})
	p.AddStep(&mockStep{name: "body"})

	run := model.NewRun(model.Job{Slug: "status-line"})
	if err := p.Execute(context.Background(), run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 status lines, got %d: %q", len(lines), buf.String())
	}
	for _, want := range []string{"status-line", "topic", "fallback", "offline"} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("expected first line to contain %q, got %q", want, lines[0])
		}
	}
	if !strings.Contains(lines[1], "ok") {
		t.Errorf("expected second line to report ok, got %q", lines[1])
	}
}

// TestSyncWriter tests that concurrent writes are not interleaved.
func TestSyncWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := SyncWriter(&buf)
	if SyncWriter(w) != w {
		t.Error("expected wrapping a SyncWriter to return it unchanged")
	}

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = io.WriteString(w, "line\n")
		}()
	}
	wg.Wait()

	if got := strings.Count(buf.String(), "line\n"); got != 20 {
		t.Errorf("expected 20 lines, got %d", got)
	}
}
