package output

import (
	"io"
	"strings"
	"unicode"

	"github.com/dshills/logchange/internal/summarize"
)

// ExperimentSummary is one experiment's row in the comparison report.
type ExperimentSummary struct {
	Name  string
	Model string
	Stats summarize.Stats
}

// WriteComparison renders a plain-text table comparing experiment runs,
// followed by per-run statistics.
func WriteComparison(w io.Writer, runs []ExperimentSummary) error {
	ew := &errWriter{w: w}
	rule := strings.Repeat("=", 80)
	dash := strings.Repeat("-", 80)

	ew.printf("\n%s\nEXPERIMENT COMPARISON REPORT\n%s\n\n", rule, rule)
	ew.println("Summary:")
	ew.println(dash)
	ew.printf("%-30s %-15s %-10s %-12s %s\n", "Experiment", "Model", "Commits", "Duration", "Avg/Commit")
	ew.println(dash)
	for _, r := range runs {
		ew.printf("%-30s %-15s %-10d %8.2fs    %6.2fs\n",
			r.Name, r.Model, r.Stats.TotalCommits, r.Stats.DurationSeconds, r.Stats.AvgSecsPerCommit)
	}
	ew.printf("%s\n\n", dash)

	ew.println("Detailed Statistics:")
	ew.println(dash)
	for _, r := range runs {
		s := r.Stats
		ew.printf("\n%s:\n", r.Name)
		ew.printf("  Model: %s\n", s.Model)
		ew.printf("  Total commits: %d\n", s.TotalCommits)
		ew.printf("  Contributors: %d\n", s.Contributors)
		ew.printf("  Date range: %s\n", s.DateRange)
		ew.printf("  Duration: %.2fs\n", s.DurationSeconds)
		ew.printf("  Avg time per commit: %.2fs\n", s.AvgSecsPerCommit)
		ew.printf("  Cache hits: %d\n", s.CacheHits)
		if top := topNames(s.TopContributors, 3); top != "" {
			ew.printf("  Top contributors: %s\n", top)
		}
	}
	ew.printf("\n%s\n", rule)
	return ew.err
}

// WriteExperimentChangelog renders a single run's changelog in the
// compact per-experiment layout.
func WriteExperimentChangelog(w io.Writer, run ExperimentSummary, entries []summarize.Entry) error {
	ew := &errWriter{w: w}
	ew.printf("# Changelog - %s\n\n", run.Name)
	ew.printf("**Model:** %s\n", run.Model)
	ew.printf("**Duration:** %.2fs\n\n", run.Stats.DurationSeconds)
	for _, e := range entries {
		ew.printf("## %s - %s\n", e.Date, e.Hash)
		ew.printf("**Author:** %s\n", e.Author)
		ew.printf("**Message:** %s\n\n", e.Message)
		ew.printf("**Summary:** %s\n\n", e.Summary)
	}
	return ew.err
}

func topNames(cs []summarize.Contributor, n int) string {
	names := make([]string, 0, n)
	for _, c := range cs {
		if len(names) == n {
			break
		}
		names = append(names, c.Name)
	}
	return strings.Join(names, ", ")
}

// Slug turns an experiment name into a file name fragment.
func Slug(name string) string {
	parts := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '.'
	})
	return strings.Join(parts, "_")
}

