package model

import (
	"time"

	"github.com/google/uuid"
)

// Run is the accumulated state of one pipeline execution.
// Steps fill it in order; reports render it and the history database stores it.
type Run struct {
	// ID uniquely identifies the run.
	ID string `json:"id"`

	// Job is the request this run executes.
	Job Job `json:"job"`

	// StartedAt is when the run was created.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the pipeline returned. Zero while running.
	FinishedAt time.Time `json:"finished_at,omitzero"`

	// Topic is the generated or provided topic.
	Topic Topic `json:"topic"`

	// Body is the generated article body.
	Body ArticleBody `json:"body"`

	// Image is the resolved featured image.
	Image ImageReference `json:"image"`

	// Descriptor is the composed page, set by the compose step.
	Descriptor *PageDescriptor `json:"descriptor,omitempty"`

	// Result is the publish outcome, set by the publish step.
	Result *PublishResult `json:"result,omitempty"`

	// ImageSource is the URL the featured image was taken from.
	ImageSource string `json:"image_source,omitempty"`

	// Fingerprint is a content hash of the composed descriptor.
	Fingerprint string `json:"fingerprint,omitempty"`

	// Stages lists the stage outcomes in execution order.
	Stages []StageStatus `json:"stages"`

	// Error is the error that aborted the run, if any.
	Error error `json:"-"`

	// ErrorMessage is the string form of Error for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// NewRun creates a run for the given job.
func NewRun(job Job) *Run {
	if job.Collection == "" {
		job.Collection = CollectionPosts
	}
	if job.Layout == "" {
		job.Layout = LayoutArticle
	}
	return &Run{
		ID:        uuid.NewString(),
		Job:       job,
		StartedAt: time.Now(),
		Stages:    make([]StageStatus, 0, 5),
	}
}

// RecordStage appends a stage status.
func (r *Run) RecordStage(name string, state StageState, detail string) {
	r.Stages = append(r.Stages, StageStatus{Name: name, State: state, Detail: detail})
}

// LastStage returns the most recently recorded stage, if any.
func (r *Run) LastStage() (StageStatus, bool) {
	if len(r.Stages) == 0 {
		return StageStatus{}, false
	}
	return r.Stages[len(r.Stages)-1], true
}

// Fail records err as the reason the run aborted.
func (r *Run) Fail(err error) {
	r.Error = err
	if err != nil {
		r.ErrorMessage = err.Error()
	}
}

// Finish stamps the completion time.
func (r *Run) Finish() {
	r.FinishedAt = time.Now()
}

// Succeeded reports whether the run published successfully.
func (r *Run) Succeeded() bool {
	return r.ErrorMessage == "" && r.Result != nil && r.Result.Succeeded()
}

// Slug returns the slug the run publishes under.
func (r *Run) Slug() string {
	if r.Descriptor != nil && r.Descriptor.Slug != "" {
		return r.Descriptor.Slug
	}
	return r.Job.Slug
}

// UsedFallback reports whether any stage fell back to a substitute value.
func (r *Run) UsedFallback() bool {
	for _, s := range r.Stages {
		if s.State == StageFallback {
			return true
		}
	}
	return false
}

// Duration returns how long the run took, or zero if it has not finished.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
