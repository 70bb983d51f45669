package model

import "fmt"

// Outcome is the terminal state of a publish attempt.
type Outcome int

const (
	// OutcomeFailed means nothing was written, or the write could not be confirmed.
	OutcomeFailed Outcome = iota

	// OutcomeCreated means a new remote resource was created.
	OutcomeCreated

	// OutcomeUpdated means an existing resource matched by slug was updated.
	OutcomeUpdated
)

// String returns the lowercase outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	default:
		return "failed"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Outcome) UnmarshalText(text []byte) error {
	switch string(text) {
	case "created":
		*o = OutcomeCreated
	case "updated":
		*o = OutcomeUpdated
	case "failed":
		*o = OutcomeFailed
	default:
		return fmt.Errorf("unknown outcome %q", string(text))
	}
	return nil
}

// PublishResult is returned by the publisher. It is never retried internally.
type PublishResult struct {
	// Outcome is created, updated or failed.
	Outcome Outcome `json:"outcome"`

	// RemoteID is the CMS resource id. Zero means absent.
	RemoteID int64 `json:"remote_id,omitempty"`

	// URL is the canonical link of the resource.
	URL string `json:"url,omitempty"`

	// ErrorDetail is a human-readable diagnosis for failed results,
	// usually including a snippet of the CMS response.
	ErrorDetail string `json:"error_detail,omitempty"`

	// Err is the typed error behind a failed result.
	Err error `json:"-"`
}

// Succeeded reports whether the resource was created or updated.
func (r PublishResult) Succeeded() bool {
	return r.Outcome == OutcomeCreated || r.Outcome == OutcomeUpdated
}

// HasRemoteID reports whether a remote id is present.
func (r PublishResult) HasRemoteID() bool {
	return r.RemoteID > 0
}

// FailedResult builds a failed result from an error.
func FailedResult(err error) PublishResult {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	return PublishResult{
		Outcome:     OutcomeFailed,
		ErrorDetail: detail,
		Err:         err,
	}
}
