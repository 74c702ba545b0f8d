// Package gemini implements generation.Generator on top of Google's Gemini
// API. It asks the model for a JSON list of example sentences for a word,
// rate limits outgoing requests, and retries transient failures with
// exponential backoff and jitter. Safety blocks and malformed responses are
// treated as permanent and returned without retrying.
package gemini
