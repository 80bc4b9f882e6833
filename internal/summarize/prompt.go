package summarize

import (
	"fmt"
	"strings"

	"github.com/dshills/logchange/internal/gitctx"
)

// Diff budgets sent to the model.
const (
	changelogDiffBytes = 3000
	commitMsgDiffBytes = 4000
)

const changelogSystemPrompt = "Summarize code changes for changelogs."

const commitMsgSystemPrompt = "You are an expert at writing clear, concise commit messages. " +
	"Generate only the commit message, no extra commentary."

var styleInstructions = map[string]string{
	StyleConventional: `Follow Conventional Commits format:
<type>(<scope>): <subject>

<body>

<footer>

Types: feat, fix, docs, style, refactor, test, chore
Subject: imperative mood, no period, max %d chars
Body: explain what and why (optional)
Footer: breaking changes, issue references (optional)`,
	StyleConcise: `Generate a single-line commit message that:
- Is concise and under %d characters
- Uses imperative mood (e.g., "Add feature" not "Added feature")
- Clearly describes what changed`,
	StyleDetailed: `Generate a detailed commit message with:
- Subject line (max %d chars, imperative mood)
- Blank line
- Detailed body explaining what changed and why
- Any relevant technical details`,
}

// BuildChangelogPrompt constructs the user prompt for summarizing one commit.
func BuildChangelogPrompt(message, diff string) string {
	var b strings.Builder
	b.WriteString("You are an AI assistant creating a human-readable changelog.\n")
	b.WriteString("Analyze the following commit details:\n\n")
	b.WriteString("Commit Message:\n")
	b.WriteString(strings.TrimSpace(message))
	b.WriteString("\n\nCode Changes:\n")
	b.WriteString(gitctx.Truncate(diff, changelogDiffBytes))
	b.WriteString("\n\nProvide a concise summary of the significant changes in plain language.\n")
	return b.String()
}

// BuildCommitMessagePrompt constructs the user prompt for drafting a commit
// message. original may be empty.
func BuildCommitMessagePrompt(diff, original, style string, maxLength int) (string, error) {
	instr, ok := styleInstructions[style]
	if !ok {
		return "", fmt.Errorf("unknown style %q (want one of %s)", style, strings.Join(AllStyles, ", "))
	}
	var b strings.Builder
	b.WriteString("Generate a commit message for the following code changes.\n\n")
	fmt.Fprintf(&b, instr, maxLength)
	b.WriteString("\n\nCode Changes:\n")
	b.WriteString(gitctx.Truncate(diff, commitMsgDiffBytes))
	b.WriteString("\n")
	if original = strings.TrimSpace(original); original != "" {
		fmt.Fprintf(&b, "\n\nOriginal commit message (for reference):\n%s\n", original)
	}
	return b.String(), nil
}
