package transport

import (
	"errors"
	"fmt"
	"strings"
)

// MaxSnippetBytes is the maximum number of response bytes kept in errors.
const MaxSnippetBytes = 500

// Transport errors.
var (
	// ErrInvalidProxyAddress is returned when the proxy address format is invalid.
	// Expected format is "host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrProxyUnavailable is returned when the SOCKS5 proxy does not answer
	// the version negotiation.
	ErrProxyUnavailable = errors.New("SOCKS5 proxy is not available")

	// ErrMalformedResponse is returned when a provider answers with a success
	// status but the body cannot be decoded into the expected shape.
	// Callers wrap it with detail; test with errors.Is.
	ErrMalformedResponse = errors.New("malformed response")
)

// ProviderError describes a failed call to an external provider: a transport
// failure, a timeout or a non-2xx status.
//
// Design decision: provider failures are never retried by pressgen, so the
// error only carries what a human needs to diagnose the call (status and a
// bounded snippet of the body). StatusCode is zero when no response arrived.
type ProviderError struct {
	// Provider names the remote service, e.g. "completion" or "pexels".
	Provider string

	// StatusCode is the HTTP status, or zero for transport failures.
	StatusCode int

	// Snippet is at most MaxSnippetBytes of the response body.
	Snippet string

	// Err is the underlying transport error, if any.
	Err error
}

// Error implements error.
func (e *ProviderError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode == 0:
		return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
	case e.Snippet != "":
		return fmt.Sprintf("%s returned HTTP %d: %s", e.Provider, e.StatusCode, e.Snippet)
	default:
		return fmt.Sprintf("%s returned HTTP %d", e.Provider, e.StatusCode)
	}
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Malformed wraps ErrMalformedResponse with a provider and detail.
func Malformed(provider, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", provider, ErrMalformedResponse, fmt.Sprintf(format, args...))
}

// Snippet returns a single-line prefix of body of at most MaxSnippetBytes,
// cut on a UTF-8 boundary.
func Snippet(body []byte) string {
	s := strings.Join(strings.Fields(string(body)), " ")
	if len(s) <= MaxSnippetBytes {
		return s
	}
	cut := MaxSnippetBytes
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
