// Package transport builds the HTTP clients pressgen uses to talk to the
// completion endpoint, the stock photo provider and the CMS, and defines the
// errors those calls share.
//
// Every outbound request goes through a client created by NewHTTPClient.
// The client carries the per-process settings: TLS verification, the default
// timeout, an optional SOCKS5 egress proxy and the User-Agent header.
// Per-call deadlines are set by callers with context.WithTimeout.
package transport
