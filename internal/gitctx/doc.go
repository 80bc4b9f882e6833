// Package gitctx reads commit history and diffs from a git repository.
//
// Everything shells out to the git binary with the repository directory as
// the working directory. [ListCommits] returns recent commits newest first,
// [LoadDiffs] fills in each commit's diff with bounded concurrency, and
// [WorkingDiff] returns the uncommitted changes used to draft a commit
// message.
package gitctx
