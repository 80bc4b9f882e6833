package redact

import (
	"path/filepath"
	"regexp"
	"strings"
)

const placeholder = "[REDACTED]"

// secretPatterns are regex heuristics for common secret types.
var secretPatterns = []*regexp.Regexp{
	// Generic API keys (long hex/base64 strings after common key patterns)
	regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']?([A-Za-z0-9/+=_-]{20,})["']?`),
	// AWS access key IDs
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	// AWS secret access keys
	regexp.MustCompile(`(?i)(aws[_-]?secret[_-]?access[_-]?key)\s*[:=]\s*["']?([A-Za-z0-9/+=]{40})["']?`),
	// Generic secrets/tokens/passwords in assignments
	regexp.MustCompile(`(?i)(secret|token|password|passwd|credential)\s*[:=]\s*["']([^"']{8,})["']`),
	// Bearer tokens
	regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`),
	// JWTs (three base64 segments separated by dots)
	regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`),
	// Private key blocks
	regexp.MustCompile(`-----BEGIN\s+(RSA\s+)?PRIVATE KEY-----`),
	// GitHub tokens
	regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`),
	// Slack tokens
	regexp.MustCompile(`xox[bporas]-[A-Za-z0-9-]{10,}`),
	// Anthropic API keys
	regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{20,}`),
	// OpenAI API keys
	regexp.MustCompile(`sk-[A-Za-z0-9]{20,}`),
	// Generic long hex strings that look like secrets (32+ chars in an assignment)
	regexp.MustCompile(`(?i)(key|secret|token)\s*[:=]\s*["']?[0-9a-f]{32,}["']?`),
}

// Secrets replaces detected secrets in text with [REDACTED].
func Secrets(text string) string {
	result := text
	for _, pat := range secretPatterns {
		result = pat.ReplaceAllStringFunc(result, func(match string) string {
			return placeholder
		})
	}
	return result
}

// ShouldRedactPath checks if a file path matches any of the redaction path patterns.
func ShouldRedactPath(path string, patterns []string) bool {
	for _, pattern := range patterns {
		matched, err := filepath.Match(pattern, path)
		if err == nil && matched {
			return true
		}
		// Also try matching just the filename for patterns like "**/.env"
		cleanPattern := strings.TrimPrefix(pattern, "**/")
		if cleanPattern != pattern {
			base := filepath.Base(path)
			matched, err = filepath.Match(cleanPattern, base)
			if err == nil && matched {
				return true
			}
		}
	}
	return false
}

// Diff redacts a unified diff section by section. Sections for files that
// match redactPaths keep their header lines and lose their hunks; every other
// section is scanned for secrets.
func Diff(diff string, redactPaths []string) string {
	return redactDiff(diff, redactPaths, true)
}

func redactDiff(diff string, redactPaths []string, secrets bool) string {
	if diff == "" {
		return diff
	}
	var b strings.Builder
	for _, section := range splitSections(diff) {
		path := sectionPath(section)
		if path == "" || !ShouldRedactPath(path, redactPaths) {
			if secrets {
				section = Secrets(section)
			}
			b.WriteString(section)
			continue
		}
		header, _, _ := strings.Cut(section, "\n@@")
		b.WriteString(strings.TrimSuffix(header, "\n"))
		b.WriteString("\n" + placeholder + " (file content redacted by path policy)\n")
	}
	return b.String()
}

// Redactor applies the configured redaction policy.
type Redactor struct {
	Secrets bool
	Paths   []string
}

// Text scrubs free-form text such as commit messages.
func (r Redactor) Text(s string) string {
	if !r.Secrets {
		return s
	}
	return Secrets(s)
}

// Diff scrubs a unified diff.
func (r Redactor) Diff(d string) string {
	if !r.Secrets && len(r.Paths) == 0 {
		return d
	}
	return redactDiff(d, r.Paths, r.Secrets)
}

// splitSections splits a diff before each "diff --git" line. Joining the
// result gives back the input.
func splitSections(diff string) []string {
	var sections []string
	start := 0
	for i := 0; i < len(diff); {
		if i > start && strings.HasPrefix(diff[i:], "diff --git ") {
			sections = append(sections, diff[start:i])
			start = i
		}
		nl := strings.IndexByte(diff[i:], '\n')
		if nl < 0 {
			break
		}
		i += nl + 1
	}
	return append(sections, diff[start:])
}

// sectionPath returns the file a diff section touches. Deleted files only
// carry the old path.
func sectionPath(section string) string {
	var oldPath string
	for _, line := range strings.Split(section, "\n") {
		switch {
		case strings.HasPrefix(line, "+++ b/"):
			return strings.TrimPrefix(line, "+++ b/")
		case strings.HasPrefix(line, "--- a/") && oldPath == "":
			oldPath = strings.TrimPrefix(line, "--- a/")
		case strings.HasPrefix(line, "@@"):
			return oldPath
		}
	}
	return oldPath
}
