package collector

import (
	"sort"

	"github.com/robby/orgpulse/internal/domain"
)

type factKey struct {
	org, repo, author string
}

// Builder accumulates contribution facts as an in-memory reducer keyed by
// (org, repo, author). Bot accounts are dropped at the door, so a fact for
// an automation login never exists even transiently.
type Builder struct {
	bots  *domain.BotFilter
	facts map[factKey]*domain.ContributionFact
}

// NewBuilder returns an empty builder using the shared bot predicate.
func NewBuilder(bots *domain.BotFilter) *Builder {
	return &Builder{
		bots:  bots,
		facts: make(map[factKey]*domain.ContributionFact),
	}
}

func (b *Builder) fact(org, repo, author string) *domain.ContributionFact {
	k := factKey{org, repo, author}
	f, ok := b.facts[k]
	if !ok {
		f = &domain.ContributionFact{Org: org, Repo: repo, Author: author}
		b.facts[k] = f
	}
	return f
}

// AddCommit records one commit by author in org/repo. Bots are ignored.
func (b *Builder) AddCommit(org, repo, author string) {
	if b.bots.IsBot(author) {
		return
	}
	b.fact(org, repo, author).Commits++
}

// AddLines records line changes attributed to author in org/repo.
func (b *Builder) AddLines(org, repo, author string, lines int64) {
	if lines <= 0 || b.bots.IsBot(author) {
		return
	}
	b.fact(org, repo, author).LinesChanged += lines
}

// AddReview records one submitted review by reviewer in org/repo. The same
// bot predicate applies to reviewers as to commit authors.
func (b *Builder) AddReview(org, repo, reviewer string) {
	if b.bots.IsBot(reviewer) {
		return
	}
	b.fact(org, repo, reviewer).Reviews++
}

// Facts returns the accumulated facts ordered by (org, repo, author).
func (b *Builder) Facts() []domain.ContributionFact {
	out := make([]domain.ContributionFact, 0, len(b.facts))
	for _, f := range b.facts {
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool {
		a, z := out[i], out[j]
		if a.Org != z.Org {
			return a.Org < z.Org
		}
		if a.Repo != z.Repo {
			return a.Repo < z.Repo
		}
		return a.Author < z.Author
	})
	return out
}
