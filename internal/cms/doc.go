// Package cms publishes pages and posts to a WordPress-compatible REST API.
//
// Client wraps the raw endpoints (slug lookup, create, update, media
// upload and tag terms) and authenticates every request with a single
// Basic-auth credential pair. Publisher builds on it to upsert a
// model.PageDescriptor by slug: a lookup decides between create and update,
// and the response must prove the write happened.
//
// Design decision: a 2xx response is only accepted when its body decodes as
// a JSON object carrying both an id and a link. Reverse proxies and hosting
// providers sometimes answer with an HTML challenge page and a success
// status; treating that as success would hide a failed publish.
package cms
