// Package summarize turns commits and diffs into changelog entries and commit
// messages.
//
// Every completion goes through [Engine.Complete], which consults the
// response cache first, asks the rate limiter for admission only on a miss,
// calls the provider, and stores the result. Cache and limiter problems never
// abort a run; provider errors are returned to the caller, except in
// [Engine.SummarizeCommit], which records a placeholder summary for the
// failed commit and carries on unless the failure is an authentication error
// or a cancelled context.
//
// [Engine.Compare] generates a message in every style for a set of commits
// without showing the model the original message, for side-by-side quality
// review. [Statistics] aggregates a finished changelog.
package summarize
