// Package media resolves the featured image of a page.
//
// Resolution has three steps. A stock photo search (Pexels) proposes a
// candidate URL; when the search fails or finds nothing, a deterministic
// placeholder URL built from the query is used instead. When an upload
// target is supplied the candidate is downloaded and uploaded into the CMS
// media library. Any failure in that last step degrades to referencing the
// candidate URL directly.
//
// The Resolver never returns an error: each step reports (value, error)
// internally, and the caller-visible result is always a valid
// model.ImageReference.
package media
