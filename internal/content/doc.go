// Package content turns topics into finished prose.
//
// A Generator owns prompt construction and sanitization and delegates the
// network call to a Completer. Two completers are provided: OpenAIClient for
// OpenAI-compatible chat-completion endpoints (Groq by default) and
// GeminiClient for Google Gemini.
//
// Design decision: the Generator never returns an error. Any failed or
// malformed completion is logged and replaced by copy from a small static
// pool, chosen deterministically from the input, so the pipeline can always
// proceed. Fallback values are flagged so callers and reports can tell them
// apart from generated content.
package content
