package summarize

// Commit message styles.
const (
	StyleConventional = "conventional"
	StyleConcise      = "concise"
	StyleDetailed     = "detailed"
)

// AllStyles lists every commit message style in presentation order.
var AllStyles = []string{StyleConventional, StyleConcise, StyleDetailed}

// SummaryUnavailable is recorded for commits whose summary could not be
// generated.
const SummaryUnavailable = "Summary unavailable."

// Entry is one changelog line item.
type Entry struct {
	Hash     string   `json:"hash"`
	FullHash string   `json:"full_hash"`
	Message  string   `json:"message"`
	Date     string   `json:"date"`
	Author   string   `json:"author"`
	Email    string   `json:"email"`
	Summary  string   `json:"summary"`
	Files    []string `json:"files,omitempty"`
	Cached   bool     `json:"-"`
	Failed   bool     `json:"-"`
}

// QualityResult pairs a commit's real message with generated ones.
type QualityResult struct {
	Hash       string            `json:"hash"`
	Author     string            `json:"author"`
	Date       string            `json:"date"`
	Actual     string            `json:"actual"`
	Generated  map[string]string `json:"ai_messages"`
	FailedWith map[string]string `json:"errors,omitempty"`
}

// Contributor is an author and their commit count.
type Contributor struct {
	Name    string `json:"name"`
	Commits int    `json:"commits"`
}

// Stats summarizes a changelog.
type Stats struct {
	TotalCommits     int            `json:"total_commits"`
	Contributors     int            `json:"contributors"`
	DateRange        string         `json:"date_range"`
	Model            string         `json:"model"`
	TopContributors  []Contributor  `json:"top_contributors,omitempty"`
	CommitsByDate    map[string]int `json:"commits_by_date,omitempty"`
	CacheHits        int            `json:"cache_hits"`
	Failed           int            `json:"failed,omitempty"`
	DurationSeconds  float64        `json:"duration_seconds,omitempty"`
	AvgSecsPerCommit float64        `json:"avg_time_per_commit,omitempty"`
}
