package gitctx

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
)

// ErrNoCommits is returned when a repository has no history yet.
var ErrNoCommits = errors.New("repository has no commits")

// Commit holds the metadata of one commit and, once loaded, its diff.
type Commit struct {
	SHA      string
	ShortSHA string
	Author   string
	Email    string
	Date     time.Time
	Subject  string
	Message  string
	Diff     string
	Files    []string
}

const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
	logFormat = "%H%x1f%an%x1f%ae%x1f%ct%x1f%B%x1e"
)

// RepoRoot returns the top-level directory of the repository containing dir.
func RepoRoot(ctx context.Context, dir string) (string, error) {
	root, err := gitOutput(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("not a git repository: %w", err)
	}
	return strings.TrimSpace(root), nil
}

// ListCommits returns up to max commits reachable from HEAD, newest first.
// Diffs are not loaded.
func ListCommits(ctx context.Context, dir string, max int) ([]Commit, error) {
	if _, err := gitOutput(ctx, dir, "rev-parse", "--verify", "--quiet", "HEAD"); err != nil {
		return nil, ErrNoCommits
	}
	args := []string{"log", "--format=" + logFormat}
	if max > 0 {
		args = append(args, "-n", strconv.Itoa(max))
	}
	out, err := gitOutput(ctx, dir, args...)
	if err != nil {
		return nil, fmt.Errorf("git log: %w", err)
	}
	return parseLog(out)
}

// ShowCommit returns the metadata of a single commit.
func ShowCommit(ctx context.Context, dir, rev string) (Commit, error) {
	out, err := gitOutput(ctx, dir, "log", "-n", "1", "--format="+logFormat, rev)
	if err != nil {
		return Commit{}, fmt.Errorf("git log %s: %w", rev, err)
	}
	commits, err := parseLog(out)
	if err != nil {
		return Commit{}, err
	}
	if len(commits) == 0 {
		return Commit{}, fmt.Errorf("commit %s not found", rev)
	}
	return commits[0], nil
}

func parseLog(out string) ([]Commit, error) {
	var commits []Commit
	for _, rec := range strings.Split(out, recordSep) {
		rec = strings.TrimLeft(rec, "\n")
		if strings.TrimSpace(rec) == "" {
			continue
		}
		fields := strings.SplitN(rec, fieldSep, 5)
		if len(fields) != 5 {
			return nil, fmt.Errorf("unexpected git log record: %q", rec)
		}
		ts, err := strconv.ParseInt(fields[3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing commit time %q: %w", fields[3], err)
		}
		msg := strings.TrimSpace(fields[4])
		subject, _, _ := strings.Cut(msg, "\n")
		commits = append(commits, Commit{
			SHA:      fields[0],
			ShortSHA: shortSHA(fields[0]),
			Author:   fields[1],
			Email:    fields[2],
			Date:     time.Unix(ts, 0),
			Subject:  subject,
			Message:  msg,
		})
	}
	return commits, nil
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

// CommitDiff returns the diff a commit introduced. Root commits are diffed
// against the empty tree.
func CommitDiff(ctx context.Context, dir, sha string) (string, error) {
	diff, err := gitOutput(ctx, dir, "diff", sha+"~1", sha)
	if err == nil {
		return diff, nil
	}
	// Initial commit has no parent.
	diff, err = gitOutput(ctx, dir, "show", "--format=", sha)
	if err != nil {
		return "", fmt.Errorf("git show %s: %w", sha, err)
	}
	return diff, nil
}

// WorkingDiff returns uncommitted changes. With staged set only the index is
// considered; otherwise unstaged changes are used, falling back to the index
// when the working tree matches it.
func WorkingDiff(ctx context.Context, dir string, staged bool) (string, error) {
	if !staged {
		diff, err := gitOutput(ctx, dir, "diff")
		if err != nil {
			return "", fmt.Errorf("git diff: %w", err)
		}
		if strings.TrimSpace(diff) != "" {
			return diff, nil
		}
	}
	diff, err := gitOutput(ctx, dir, "diff", "--cached")
	if err != nil {
		return "", fmt.Errorf("git diff --cached: %w", err)
	}
	return diff, nil
}

// LoadDiffs fills in Diff and Files for each commit, running at most
// concurrency git processes at once. The slice is updated in place.
func LoadDiffs(ctx context.Context, dir string, commits []Commit, concurrency int) error {
	if concurrency <= 0 {
		concurrency = 4
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := range commits {
		c := &commits[i]
		g.Go(func() error {
			diff, err := CommitDiff(ctx, dir, c.SHA)
			if err != nil {
				return err
			}
			c.Diff = diff
			c.Files = extractFiles(diff)
			return nil
		})
	}
	return g.Wait()
}

// Truncate shortens s to at most n bytes without splitting a UTF-8 sequence.
func Truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func extractFiles(diff string) []string {
	var files []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(diff, "\n") {
		if strings.HasPrefix(line, "+++ b/") {
			f := strings.TrimPrefix(line, "+++ b/")
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}
	return files
}

func gitOutput(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return string(out), fmt.Errorf("%s: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", err
	}
	return string(out), nil
}

// GitDir returns the absolute path of the repository's git directory.
func GitDir(ctx context.Context, dir string) (string, error) {
	out, err := gitOutput(ctx, dir, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return "", fmt.Errorf("not a git repository: %w", err)
	}
	return strings.TrimSpace(out), nil
}
