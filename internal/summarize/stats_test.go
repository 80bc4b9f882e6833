package summarize

import (
	"reflect"
	"testing"
	"time"
)

func TestStatistics_Empty(t *testing.T) {
	s := Statistics(nil, "gpt-4", 0)
	if s.TotalCommits != 0 || s.Contributors != 0 || s.DateRange != "N/A" || s.Model != "gpt-4" {
		t.Errorf("stats = %+v", s)
	}
}

func TestStatistics(t *testing.T) {
	entries := []Entry{
		{Author: "Ada", Date: "2024-03-02", Cached: true},
		{Author: "Bob", Date: "2024-03-01"},
		{Author: "Ada", Date: "2024-03-02", Failed: true},
		{Author: "", Date: "2024-02-28"},
		{Author: "Cy", Date: "2024-03-03"},
		{Author: "Di", Date: "2024-03-03"},
		{Author: "Ed", Date: "2024-03-03"},
	}
	s := Statistics(entries, "gpt-4", 14*time.Second)

	if s.TotalCommits != 7 || s.Contributors != 6 {
		t.Errorf("totals = %d/%d", s.TotalCommits, s.Contributors)
	}
	if s.DateRange != "2024-02-28 to 2024-03-03" {
		t.Errorf("DateRange = %q", s.DateRange)
	}
	wantTop := []Contributor{{"Ada", 2}, {"Bob", 1}, {"Unknown", 1}, {"Cy", 1}, {"Di", 1}}
	if !reflect.DeepEqual(s.TopContributors, wantTop) {
		t.Errorf("TopContributors = %v, want %v", s.TopContributors, wantTop)
	}
	if s.CommitsByDate["2024-03-03"] != 3 || s.CommitsByDate["2024-03-02"] != 2 {
		t.Errorf("CommitsByDate = %v", s.CommitsByDate)
	}
	if s.CacheHits != 1 || s.Failed != 1 {
		t.Errorf("CacheHits/Failed = %d/%d", s.CacheHits, s.Failed)
	}
	if s.DurationSeconds != 14 || s.AvgSecsPerCommit != 2 {
		t.Errorf("timing = %v/%v", s.DurationSeconds, s.AvgSecsPerCommit)
	}
}
