// Package redact removes secrets from commit messages and diffs before they
// are fingerprinted or sent to any LLM provider.
//
// Detection uses regex heuristics covering common secret shapes: API keys,
// JWTs, private keys, AWS access key IDs and secret access keys, bearer
// tokens, and provider-specific tokens (Anthropic, OpenAI, GitHub, Slack).
//
// Path-based redaction is also supported: diff sections for files whose paths
// match configured glob patterns have their entire body replaced with
// [REDACTED] rather than being scanned line by line.
package redact
