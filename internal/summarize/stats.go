package summarize

import (
	"sort"
	"time"
)

// Statistics aggregates entries generated with model. elapsed may be zero
// when timing is not tracked.
func Statistics(entries []Entry, model string, elapsed time.Duration) Stats {
	stats := Stats{
		TotalCommits: len(entries),
		DateRange:    "N/A",
		Model:        model,
	}
	if elapsed > 0 {
		stats.DurationSeconds = elapsed.Seconds()
		if len(entries) > 0 {
			stats.AvgSecsPerCommit = elapsed.Seconds() / float64(len(entries))
		}
	}
	if len(entries) == 0 {
		return stats
	}

	authors := make(map[string]int)
	var order []string
	stats.CommitsByDate = make(map[string]int)
	minDate, maxDate := entries[0].Date, entries[0].Date
	for _, e := range entries {
		author := e.Author
		if author == "" {
			author = "Unknown"
		}
		if _, seen := authors[author]; !seen {
			order = append(order, author)
		}
		authors[author]++
		stats.CommitsByDate[e.Date]++
		if e.Date < minDate {
			minDate = e.Date
		}
		if e.Date > maxDate {
			maxDate = e.Date
		}
		if e.Cached {
			stats.CacheHits++
		}
		if e.Failed {
			stats.Failed++
		}
	}

	stats.Contributors = len(authors)
	stats.DateRange = minDate + " to " + maxDate

	// Most commits first; ties keep first-seen order.
	sort.SliceStable(order, func(i, j int) bool {
		return authors[order[i]] > authors[order[j]]
	})
	for i, name := range order {
		if i == 5 {
			break
		}
		stats.TopContributors = append(stats.TopContributors, Contributor{Name: name, Commits: authors[name]})
	}
	return stats
}
