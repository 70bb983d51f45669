// Package model defines the core data structures used throughout pressgen.
//
// This package contains the following main types:
//   - Topic: the short subject line a piece of content is about
//   - ArticleBody: sanitized long-form prose split into paragraphs
//   - ImageReference: a hero image, either CMS-owned media or an external URL
//   - PageDescriptor: everything the publisher needs to upsert one CMS resource
//   - PublishResult: the terminal outcome of one publish attempt
//   - Run: the accumulated state of one pipeline execution
//
// Design decision: We keep the models in their own package so that content,
// media, cms, pipeline, report and database can all share them without
// import cycles. Every type here is plain data and serializes to JSON for
// reports and the run history database.
package model
