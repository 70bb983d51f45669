package config

import (
	"errors"
	"strings"
)

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrMissingRequired is wrapped by MissingFieldsError.
	ErrMissingRequired = errors.New("missing required configuration")

	// ErrInvalidTimeout is returned when a timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidStyle is returned when a generation style is out of range.
	ErrInvalidStyle = errors.New("invalid style")

	// ErrInvalidCollection is returned for a collection other than posts or pages.
	ErrInvalidCollection = errors.New("invalid collection: must be posts or pages")

	// ErrInvalidLayout is returned for a layout other than article or page.
	ErrInvalidLayout = errors.New("invalid layout: must be article or page")

	// ErrInvalidPage is returned when a configured page cannot be published.
	ErrInvalidPage = errors.New("invalid page")

	// ErrUnknownProvider is returned when the completion provider is not supported.
	ErrUnknownProvider = errors.New("unknown completion provider: must be openai or gemini")

	// ErrInvalidTitleTemplate is returned when a title template has more than one %s.
	ErrInvalidTitleTemplate = errors.New("invalid title template: at most one %s allowed")

	// ErrInvalidSiteURL is returned when the CMS site URL is not an http(s) URL.
	ErrInvalidSiteURL = errors.New("invalid site URL: must start with http:// or https://")

	// ErrInvalidEnv is returned when an environment variable cannot be parsed.
	ErrInvalidEnv = errors.New("invalid environment variable")
)

// MissingFieldsError lists required settings that are absent.
// Fields are named by their environment variable.
type MissingFieldsError struct {
	Fields []string
}

// Error implements the error interface.
func (e *MissingFieldsError) Error() string {
	return ErrMissingRequired.Error() + ": " + strings.Join(e.Fields, ", ")
}

// Unwrap returns ErrMissingRequired.
func (e *MissingFieldsError) Unwrap() error {
	return ErrMissingRequired
}
