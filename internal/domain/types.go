// Package domain defines the normalized domain types for contribution
// scraping. These types represent the core concepts independent of the
// GitHub API structure and of how snapshots are persisted.
package domain

import "time"

// Scrape is one immutable, timestamped snapshot of collected contribution
// facts. Once a scrape is visible in the store its fact set never changes.
type Scrape struct {
	ID        int64     // Monotonically increasing store identifier
	StartTime time.Time // Beginning of the collected time window
	EndTime   time.Time // End of the collected time window
	RepoCount int       // Distinct repositories with facts in this scrape
}

// ContributionFact is one (org, repo, author) record of activity inside a
// scrape. At most one fact exists per (ScrapeID, Org, Repo, Author) tuple;
// all counters are non-negative.
type ContributionFact struct {
	ScrapeID     int64
	Org          string
	Repo         string
	Author       string
	Commits      int64
	LinesChanged int64
	Reviews      int64
}

// OrgStats is the per-organization aggregate derived from one scrape's facts.
type OrgStats struct {
	Name             string
	TotalCommits     int64
	TotalLines       int64
	RepoCount        int64
	ContributorCount int64
}

// RepoStats is the per-repository aggregate derived from one scrape's facts.
type RepoStats struct {
	Org              string
	Repo             string
	Commits          int64
	Lines            int64
	Reviews          int64
	ContributorCount int64
}

// ContributorStats is the per-author aggregate derived from one scrape's
// facts. Orgs lists the distinct organizations the author touched, sorted.
type ContributorStats struct {
	Author       string
	TotalCommits int64
	TotalLines   int64
	RepoCount    int64
	Orgs         []string
}

// SortField selects the column a view is ordered by. Not every field applies
// to every view; callers fall back to SortCommits for inapplicable fields.
type SortField int

const (
	SortName SortField = iota
	SortCommits
	SortLines
	SortRepos
	SortReviews
)

// String returns the display label for the field.
func (f SortField) String() string {
	switch f {
	case SortName:
		return "Name"
	case SortCommits:
		return "Commits"
	case SortLines:
		return "Lines"
	case SortRepos:
		return "Repos"
	case SortReviews:
		return "Reviews"
	}
	return "Unknown"
}

// SortOrder is the direction a view is ordered in.
type SortOrder int

const (
	Descending SortOrder = iota
	Ascending
)

// Toggle returns the opposite order.
func (o SortOrder) Toggle() SortOrder {
	if o == Ascending {
		return Descending
	}
	return Ascending
}

// String returns the arrow used in the footer.
func (o SortOrder) String() string {
	if o == Ascending {
		return "↑"
	}
	return "↓"
}
