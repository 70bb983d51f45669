package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/pressgen/internal/model"
)

// DefaultConcurrency is the number of jobs a BatchProcessor runs at once.
const DefaultConcurrency = 4

// ErrDuplicateSlug is returned when two jobs in one batch share a slug.
// Upsert is lookup-then-write, so two concurrent runs on one slug could both
// create a resource.
var ErrDuplicateSlug = errors.New("duplicate slug in batch")

// BatchProcessor runs several jobs concurrently, each on a fresh pipeline.
//
// Design decision: We use a separate BatchProcessor rather than adding batch
// functionality to Pipeline because:
// 1. It keeps the Pipeline focused on single-run execution
// 2. Slug conflicts across jobs are a batch-level concern
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each job.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent runs.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent runs.
// Values below 1 are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// CheckSlugs returns ErrDuplicateSlug if two jobs would upsert the same
// resource. Jobs without a slug get one from their generated topic and are
// not checked.
func CheckSlugs(jobs []model.Job) error {
	seen := make(map[string]int, len(jobs))
	for i, job := range jobs {
		if job.Slug == "" {
			continue
		}
		key := string(job.Collection) + "/" + job.Slug
		if j, ok := seen[key]; ok {
			return fmt.Errorf("%w: %q (jobs %d and %d)", ErrDuplicateSlug, job.Slug, j+1, i+1)
		}
		seen[key] = i
	}
	return nil
}

// ProcessJobs runs every job and returns one run per job, in input order.
// A failed run does not stop the others; its error is recorded on the run.
// The returned error is non-nil only for duplicate slugs or cancellation.
func (bp *BatchProcessor) ProcessJobs(ctx context.Context, jobs []model.Job) ([]*model.Run, error) {
	runs := make([]*model.Run, len(jobs))
	err := bp.ProcessJobsWithCallback(ctx, jobs, func(run *model.Run, index int) {
		runs[index] = run
	})
	return runs, err
}

// ProcessJobsWithCallback runs every job and calls callback for each
// finished run with the job's index. The callback is called from the
// goroutine that ran the job and must be safe for concurrent use.
func (bp *BatchProcessor) ProcessJobsWithCallback(
	ctx context.Context,
	jobs []model.Job,
	callback func(run *model.Run, index int),
) error {
	if err := CheckSlugs(jobs); err != nil {
		return err
	}

	bp.logger.Info("starting batch",
		"jobs", len(jobs),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, job := range jobs {
		g.Go(func() error {
			run := model.NewRun(job)

			select {
			case <-gctx.Done():
				run.Fail(gctx.Err())
				run.Finish()
				callback(run, i)
				return gctx.Err()
			default:
			}

			pipeline := bp.pipelineFactory()
			if err := pipeline.Execute(gctx, run); err != nil {
				bp.logger.Warn("run failed",
					"job", job.Label(),
					"error", err,
				)
			}
			callback(run, i)

			// Failures stay on the run so the other jobs keep going.
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Info("batch complete",
		"jobs", len(jobs),
		"elapsed", time.Since(startTime),
	)
	return err
}
