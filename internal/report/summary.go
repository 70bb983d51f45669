package report

import (
	"time"

	"github.com/nao1215/pressgen/internal/model"
)

// Item is the report line for one run.
type Item struct {
	RunID      string           `json:"run_id"`
	Label      string           `json:"label"`
	Collection model.Collection `json:"collection"`
	Slug       string           `json:"slug,omitempty"`
	Title      string           `json:"title,omitempty"`
	Outcome    model.Outcome    `json:"outcome"`
	RemoteID   int64            `json:"remote_id,omitempty"`
	URL        string           `json:"url,omitempty"`
	Image      string           `json:"image,omitempty"`
	Fallback   bool             `json:"fallback,omitempty"`

	// Unchanged is true when the published body matches the previous
	// successful publish of the same slug.
	Unchanged bool `json:"unchanged,omitempty"`

	Error    string              `json:"error,omitempty"`
	Duration time.Duration       `json:"duration_ns"`
	Stages   []model.StageStatus `json:"stages"`
}

// Summary aggregates the runs of one invocation.
//
// Design decision: We flatten runs into items rather than serializing
// model.Run directly. A run carries the full body and descriptor, which
// is noise in a report and may be large for batch invocations.
type Summary struct {
	GeneratedAt time.Time `json:"generated_at"`
	Total       int       `json:"total"`
	Created     int       `json:"created"`
	Updated     int       `json:"updated"`
	Failed      int       `json:"failed"`
	Fallbacks   int       `json:"fallbacks"`
	Items       []Item    `json:"items"`
}

// NewSummary builds a summary from runs. Nil runs are ignored.
func NewSummary(runs []*model.Run) *Summary {
	s := &Summary{
		GeneratedAt: time.Now(),
		Items:       make([]Item, 0, len(runs)),
	}
	for _, run := range runs {
		if run == nil {
			continue
		}
		s.add(run)
	}
	return s
}

func (s *Summary) add(run *model.Run) {
	item := Item{
		RunID:      run.ID,
		Label:      run.Job.Label(),
		Collection: run.Job.Collection,
		Slug:       run.Slug(),
		Title:      run.Topic.Title,
		Outcome:    model.OutcomeFailed,
		Fallback:   run.UsedFallback(),
		Error:      run.ErrorMessage,
		Duration:   run.Duration(),
		Stages:     run.Stages,
	}
	if run.Image.Kind != model.ImageKindNone {
		item.Image = run.Image.String()
	}
	if run.Result != nil {
		item.Outcome = run.Result.Outcome
		item.RemoteID = run.Result.RemoteID
		item.URL = run.Result.URL
		if item.Error == "" {
			item.Error = run.Result.ErrorDetail
		}
	}

	s.Total++
	switch {
	case !run.Succeeded():
		item.Outcome = model.OutcomeFailed
		s.Failed++
	case item.Outcome == model.OutcomeCreated:
		s.Created++
	case item.Outcome == model.OutcomeUpdated:
		s.Updated++
	}
	if item.Fallback {
		s.Fallbacks++
	}
	s.Items = append(s.Items, item)
}

// MarkUnchanged flags the item for runID as unchanged.
// It reports whether an item was found.
func (s *Summary) MarkUnchanged(runID string) bool {
	for i := range s.Items {
		if s.Items[i].RunID == runID {
			s.Items[i].Unchanged = true
			return true
		}
	}
	return false
}

// Succeeded reports whether every run published successfully.
func (s *Summary) Succeeded() bool {
	return s.Failed == 0
}

// FailedItems returns the items that did not publish.
func (s *Summary) FailedItems() []Item {
	var items []Item
	for _, item := range s.Items {
		if item.Outcome == model.OutcomeFailed {
			items = append(items, item)
		}
	}
	return items
}
