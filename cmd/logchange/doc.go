// Logchange turns git history into changelogs and drafts commit messages
// with LLM providers.
//
// Responses are cached on disk under the repository root and provider calls
// are paced by a sliding-window rate limiter, so re-running over the same
// commits is fast and free.
//
// Usage:
//
//	logchange changelog                      # summarize the last 50 commits into changelog.md
//	logchange changelog --format json --stats --output changelog.json
//	logchange commit-msg --staged            # draft a message for staged changes
//	logchange compare --count 5              # compare real and generated messages
//	logchange experiment --quick             # benchmark model configurations
//	logchange cache clear --expired          # drop stale cache entries
//	logchange hook install                   # draft messages from a prepare-commit-msg hook
package main
