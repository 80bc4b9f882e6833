package output

import (
	"io"
	"strings"
)

// MarkdownWriter outputs a changelog grouped by commit date.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, cl *Changelog) error {
	ew := &errWriter{w: w}
	ew.printf("# Changelog\n\n")

	if s := cl.Stats; s != nil {
		ew.printf("## Statistics\n\n")
		ew.printf("- Total commits: %d\n", s.TotalCommits)
		ew.printf("- Date range: %s\n", s.DateRange)
		ew.printf("- Contributors: %d\n", s.Contributors)
		if len(s.TopContributors) > 0 {
			names := make([]string, len(s.TopContributors))
			for i, c := range s.TopContributors {
				names[i] = c.Name
			}
			ew.printf("- Top contributors: %s\n", strings.Join(names, ", "))
		}
		ew.printf("- Model used: %s\n\n", s.Model)
	}

	currentDate := ""
	for i, e := range cl.Entries {
		if i == 0 || e.Date != currentDate {
			currentDate = e.Date
			ew.printf("## %s\n\n", currentDate)
		}
		author := e.Author
		if author == "" {
			author = "Unknown"
		}
		ew.printf("### %s\n", e.Hash)
		ew.printf("**Author:** %s\n", author)
		ew.printf("**Commit Message:** %s\n\n", e.Message)
		ew.printf("**AI Summary:** %s\n\n", e.Summary)
	}
	return ew.err
}
