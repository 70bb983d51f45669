package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/nao1215/pressgen/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step receiving the run
// accumulated by the previous steps.
type Step interface {
	// Do executes the step. A step records its own stage status on the run.
	// Returning an error aborts the run.
	Do(ctx context.Context, run *model.Run) error

	// Name returns the step's name for logging and status lines.
	Name() string
}

// Pipeline orchestrates the execution of steps.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// status receives one human-readable line per stage. May be nil.
	status io.Writer
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithStatusWriter sets where stage status lines are printed.
// Pipelines running concurrently should share a writer wrapped by SyncWriter.
func WithStatusWriter(w io.Writer) Option {
	return func(p *Pipeline) {
		p.status = w
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0, 5),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps in order and stamps the run's finish time.
//
// Cancellation is checked before each step; a cancelled context aborts the
// run with ctx.Err(). The first step error aborts the run and is returned.
func (p *Pipeline) Execute(ctx context.Context, run *model.Run) error {
	defer run.Finish()

	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"job", run.Job.Label(),
				"reason", ctx.Err(),
			)
			run.RecordStage(step.Name(), model.StageFailed, "cancelled")
			p.printStatus(run)
			run.Fail(ctx.Err())
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"job", run.Job.Label(),
			"run", run.ID,
		)

		recorded := len(run.Stages)
		err := step.Do(ctx, run)
		if err != nil && len(run.Stages) == recorded {
			run.RecordStage(step.Name(), model.StageFailed, err.Error())
		}
		if len(run.Stages) > recorded {
			p.printStatus(run)
		}

		if err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"job", run.Job.Label(),
				"error", err,
			)
			run.Fail(err)
			return err
		}
	}
	return nil
}

// printStatus writes the most recent stage of run to the status writer.
func (p *Pipeline) printStatus(run *model.Run) {
	if p.status == nil {
		return
	}
	stage, ok := run.LastStage()
	if !ok {
		return
	}
	line := fmt.Sprintf("%-24s %-8s %-9s", run.Job.Label(), stage.Name, stage.State)
	if stage.Detail != "" {
		line += " " + stage.Detail
	}
	if _, err := fmt.Fprintln(p.status, line); err != nil {
		p.logger.Debug("failed to write status line", "error", err)
	}
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}

// SyncWriter serializes writes to w so concurrent pipelines can share it.
func SyncWriter(w io.Writer) io.Writer {
	if _, ok := w.(*syncWriter); ok {
		return w
	}
	return &syncWriter{w: w}
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
