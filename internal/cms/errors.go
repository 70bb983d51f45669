package cms

import (
	"errors"
	"fmt"
)

// Stage names the CMS call that failed.
type Stage string

// CMS call stages.
const (
	StageLookup Stage = "lookup"
	StageCreate Stage = "create"
	StageUpdate Stage = "update"
	StageUpload Stage = "upload"
	StageTags   Stage = "tags"
)

// ErrInvalidDescriptor is returned when a descriptor fails validation
// before any request is sent.
var ErrInvalidDescriptor = errors.New("invalid page descriptor")

// PublishError describes a failed CMS call.
// StatusCode is zero when no response was received.
type PublishError struct {
	// Stage is the call that failed.
	Stage Stage

	// StatusCode is the HTTP status, if a response arrived.
	StatusCode int

	// Snippet is a bounded, human-readable excerpt of the response body.
	Snippet string

	// Err is the underlying error.
	Err error
}

// Error implements error.
func (e *PublishError) Error() string {
	msg := fmt.Sprintf("cms %s failed", e.Stage)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": HTTP %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Snippet != "" {
		msg += ": " + e.Snippet
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *PublishError) Unwrap() error {
	return e.Err
}
