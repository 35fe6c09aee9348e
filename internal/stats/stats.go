// Package stats turns the fact set of one scrape into organization,
// repository, and contributor aggregates. Every function here is a pure
// reducer: sums and distinct counts only, so any permutation of the input
// facts yields identical output. Ties on the sort key fall back to the
// row's name, guaranteeing a total order and reproducible listings.
package stats

import (
	"sort"

	"github.com/robby/orgpulse/internal/domain"
)

// filtered drops facts whose author matches the bot predicate. The collector
// already excludes bots at the source; applying the same shared predicate
// here keeps the invariant even for facts written by older collectors.
func filtered(facts []domain.ContributionFact, bots *domain.BotFilter) []domain.ContributionFact {
	out := make([]domain.ContributionFact, 0, len(facts))
	for _, f := range facts {
		if bots.IsBot(f.Author) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// OrgStats groups facts by organization. ContributorCount counts distinct
// authors across the org's repos; an author active in two repos of the same
// org counts once.
func OrgStats(facts []domain.ContributionFact, bots *domain.BotFilter) []domain.OrgStats {
	type orgAcc struct {
		stats        domain.OrgStats
		repos        map[string]struct{}
		contributors map[string]struct{}
	}
	byOrg := make(map[string]*orgAcc)
	for _, f := range filtered(facts, bots) {
		acc, ok := byOrg[f.Org]
		if !ok {
			acc = &orgAcc{
				stats:        domain.OrgStats{Name: f.Org},
				repos:        make(map[string]struct{}),
				contributors: make(map[string]struct{}),
			}
			byOrg[f.Org] = acc
		}
		acc.stats.TotalCommits += f.Commits
		acc.stats.TotalLines += f.LinesChanged
		acc.repos[f.Repo] = struct{}{}
		acc.contributors[f.Author] = struct{}{}
	}

	out := make([]domain.OrgStats, 0, len(byOrg))
	for _, acc := range byOrg {
		acc.stats.RepoCount = int64(len(acc.repos))
		acc.stats.ContributorCount = int64(len(acc.contributors))
		out = append(out, acc.stats)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RepoStats groups facts by (org, repo).
func RepoStats(facts []domain.ContributionFact, bots *domain.BotFilter) []domain.RepoStats {
	type repoKey struct{ org, repo string }
	type repoAcc struct {
		stats        domain.RepoStats
		contributors map[string]struct{}
	}
	byRepo := make(map[repoKey]*repoAcc)
	for _, f := range filtered(facts, bots) {
		k := repoKey{f.Org, f.Repo}
		acc, ok := byRepo[k]
		if !ok {
			acc = &repoAcc{
				stats:        domain.RepoStats{Org: f.Org, Repo: f.Repo},
				contributors: make(map[string]struct{}),
			}
			byRepo[k] = acc
		}
		acc.stats.Commits += f.Commits
		acc.stats.Lines += f.LinesChanged
		acc.stats.Reviews += f.Reviews
		acc.contributors[f.Author] = struct{}{}
	}

	out := make([]domain.RepoStats, 0, len(byRepo))
	for _, acc := range byRepo {
		acc.stats.ContributorCount = int64(len(acc.contributors))
		out = append(out, acc.stats)
	}
	sort.Slice(out, func(i, j int) bool { return repoName(out[i]) < repoName(out[j]) })
	return out
}

// ContributorStats groups facts by author. Orgs is the sorted set of
// distinct organizations the author touched in the scrape.
func ContributorStats(facts []domain.ContributionFact, bots *domain.BotFilter) []domain.ContributorStats {
	type contribAcc struct {
		stats domain.ContributorStats
		repos map[string]struct{}
		orgs  map[string]struct{}
	}
	byAuthor := make(map[string]*contribAcc)
	for _, f := range filtered(facts, bots) {
		acc, ok := byAuthor[f.Author]
		if !ok {
			acc = &contribAcc{
				stats: domain.ContributorStats{Author: f.Author},
				repos: make(map[string]struct{}),
				orgs:  make(map[string]struct{}),
			}
			byAuthor[f.Author] = acc
		}
		acc.stats.TotalCommits += f.Commits
		acc.stats.TotalLines += f.LinesChanged
		acc.repos[f.Org+"/"+f.Repo] = struct{}{}
		acc.orgs[f.Org] = struct{}{}
	}

	out := make([]domain.ContributorStats, 0, len(byAuthor))
	for _, acc := range byAuthor {
		acc.stats.RepoCount = int64(len(acc.repos))
		acc.stats.Orgs = make([]string, 0, len(acc.orgs))
		for org := range acc.orgs {
			acc.stats.Orgs = append(acc.stats.Orgs, org)
		}
		sort.Strings(acc.stats.Orgs)
		out = append(out, acc.stats)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Author < out[j].Author })
	return out
}

func repoName(r domain.RepoStats) string { return r.Org + "/" + r.Repo }

// SortOrgs orders org rows in place by the given field and order, with the
// org name as tie-break. Fields that do not apply (reviews) rank by commits.
func SortOrgs(rows []domain.OrgStats, field domain.SortField, order domain.SortOrder) {
	key := func(r domain.OrgStats) int64 {
		switch field {
		case domain.SortLines:
			return r.TotalLines
		case domain.SortRepos:
			return r.RepoCount
		default:
			return r.TotalCommits
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if field == domain.SortName {
			return lessName(rows[i].Name, rows[j].Name, order)
		}
		return lessNumeric(key(rows[i]), key(rows[j]), rows[i].Name, rows[j].Name, order)
	})
}

// SortRepos orders repo rows in place; the tie-break key is "org/repo".
func SortRepos(rows []domain.RepoStats, field domain.SortField, order domain.SortOrder) {
	key := func(r domain.RepoStats) int64 {
		switch field {
		case domain.SortLines:
			return r.Lines
		case domain.SortReviews:
			return r.Reviews
		default:
			return r.Commits
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if field == domain.SortName {
			return lessName(repoName(rows[i]), repoName(rows[j]), order)
		}
		return lessNumeric(key(rows[i]), key(rows[j]), repoName(rows[i]), repoName(rows[j]), order)
	})
}

// SortContributors orders contributor rows in place by the given field.
func SortContributors(rows []domain.ContributorStats, field domain.SortField, order domain.SortOrder) {
	key := func(r domain.ContributorStats) int64 {
		switch field {
		case domain.SortLines:
			return r.TotalLines
		case domain.SortRepos:
			return r.RepoCount
		default:
			return r.TotalCommits
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if field == domain.SortName {
			return lessName(rows[i].Author, rows[j].Author, order)
		}
		return lessNumeric(key(rows[i]), key(rows[j]), rows[i].Author, rows[j].Author, order)
	})
}

func lessName(a, b string, order domain.SortOrder) bool {
	if order == domain.Ascending {
		return a < b
	}
	return a > b
}

// lessNumeric compares by value in the requested order; equal values fall
// back to the row name in the same direction, so toggling the order yields
// the exact reverse sequence.
func lessNumeric(a, b int64, nameA, nameB string, order domain.SortOrder) bool {
	if a != b {
		if order == domain.Ascending {
			return a < b
		}
		return a > b
	}
	return lessName(nameA, nameB, order)
}
