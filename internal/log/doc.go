// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// pressgen handles three sets of credentials: the completion API key, the
// stock photo API key and the WordPress application password. Request
// failures are logged with enough context to diagnose them, so the handler
// masks these values wherever they appear:
//   - Attributes whose key names a credential (authorization, api_key, WP_APP_PASS)
//   - Values shaped like a credential (Bearer/Basic tokens, gsk_ keys, application passwords)
//   - Credentials embedded in longer strings and error messages (query keys, URL userinfo)
//
// # Usage
//
//	logger := log.New(os.Stderr, verbose, jsonOutput)
//	slog.SetDefault(logger)
package log
