package stats

import (
	"github.com/montanaflynn/stats"
	"github.com/robby/orgpulse/internal/domain"
)

// Summary condenses one scrape's facts into the figures shown in the TUI
// header line.
type Summary struct {
	TotalCommits      int64
	TotalLines        int64
	RepoCount         int
	ContributorCount  int
	MedianRepoCommits float64
	MeanRepoLines     float64
}

// Summarize computes the headline figures for a fact set. Median and mean
// are taken over per-repository totals.
func Summarize(facts []domain.ContributionFact, bots *domain.BotFilter) Summary {
	repos := RepoStats(facts, bots)

	var sum Summary
	sum.RepoCount = len(repos)
	commits := make([]float64, 0, len(repos))
	lines := make([]float64, 0, len(repos))
	for _, r := range repos {
		sum.TotalCommits += r.Commits
		sum.TotalLines += r.Lines
		commits = append(commits, float64(r.Commits))
		lines = append(lines, float64(r.Lines))
	}

	contributors := make(map[string]struct{})
	for _, f := range filtered(facts, bots) {
		contributors[f.Author] = struct{}{}
	}
	sum.ContributorCount = len(contributors)

	if len(repos) > 0 {
		// stats.Median and Mean only fail on empty input.
		sum.MedianRepoCommits, _ = stats.Median(commits)
		sum.MeanRepoLines, _ = stats.Mean(lines)
	}
	return sum
}
