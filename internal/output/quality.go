package output

import (
	"io"

	"github.com/dshills/logchange/internal/summarize"
)

// WriteQualityReport renders a markdown report comparing real commit
// messages with generated ones, leaving assessment cells for a human.
func WriteQualityReport(w io.Writer, results []summarize.QualityResult) error {
	ew := &errWriter{w: w}
	ew.printf("# Commit Message Quality Assessment Report\n\n")
	ew.printf("This report compares actual commit messages with AI-generated messages using logchange.\n\n")
	ew.printf("**Total Commits Analyzed:** %d\n\n", len(results))
	ew.printf("---\n\n")

	for i, r := range results {
		ew.printf("## Commit %d: `%s`\n\n", i+1, r.Hash)
		ew.printf("**Author:** %s  \n", r.Author)
		ew.printf("**Date:** %s\n\n", r.Date)

		ew.printf("### Actual Commit Message\n```\n%s\n```\n\n", r.Actual)

		ew.printf("### AI-Generated Messages\n\n")
		for _, style := range summarize.AllStyles {
			msg, ok := r.Generated[style]
			if !ok {
				continue
			}
			ew.printf("#### Style: `%s`\n```\n%s\n```\n\n", style, msg)
		}

		ew.printf("### Assessment\n\n")
		ew.println("| Criteria | Actual | AI (Conventional) | Notes |")
		ew.println("|----------|--------|-------------------|-------|")
		for _, c := range []string{"Clarity", "Completeness", "Style Consistency"} {
			ew.printf("| %s | - | - | *Your assessment here* |\n", c)
		}
		ew.printf("\n---\n\n")
	}

	ew.printf("## Summary\n\n### Observations\n\n")
	for _, h := range []string{"Strengths of AI-generated messages", "Strengths of actual messages", "Areas for improvement"} {
		ew.printf("- **%s:**\n  - (Add your observations)\n\n", h)
	}
	return ew.err
}
