package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robby/orgpulse/internal/domain"
)

func TestBuilder_Accumulates(t *testing.T) {
	b := NewBuilder(nil)

	b.AddCommit("acme", "api", "alice")
	b.AddCommit("acme", "api", "alice")
	b.AddLines("acme", "api", "alice", 40)
	b.AddReview("acme", "api", "bob")

	facts := b.Facts()
	require.Len(t, facts, 2)
	assert.Equal(t, domain.ContributionFact{
		Org: "acme", Repo: "api", Author: "alice", Commits: 2, LinesChanged: 40,
	}, facts[0])
	assert.Equal(t, int64(1), facts[1].Reviews)
}

func TestBuilder_DropsBots(t *testing.T) {
	bots, err := domain.NewBotFilter(`^ci-`)
	require.NoError(t, err)
	b := NewBuilder(bots)

	b.AddCommit("acme", "api", "dependabot[bot]")
	b.AddLines("acme", "api", "dependabot[bot]", 9000)
	b.AddReview("acme", "api", "ci-checker")
	b.AddCommit("acme", "api", "alice")

	facts := b.Facts()
	require.Len(t, facts, 1)
	assert.Equal(t, "alice", facts[0].Author)
}

func TestBuilder_IgnoresNonPositiveLines(t *testing.T) {
	b := NewBuilder(nil)

	b.AddLines("acme", "api", "alice", 0)
	b.AddLines("acme", "api", "alice", -3)

	assert.Empty(t, b.Facts())
}

func TestBuilder_FactsSorted(t *testing.T) {
	b := NewBuilder(nil)

	b.AddCommit("zeta", "a", "alice")
	b.AddCommit("acme", "web", "bob")
	b.AddCommit("acme", "api", "carol")
	b.AddCommit("acme", "api", "alice")

	facts := b.Facts()
	require.Len(t, facts, 4)
	assert.Equal(t, "acme", facts[0].Org)
	assert.Equal(t, "alice", facts[0].Author)
	assert.Equal(t, "carol", facts[1].Author)
	assert.Equal(t, "web", facts[2].Repo)
	assert.Equal(t, "zeta", facts[3].Org)
}

func TestMatchRepo(t *testing.T) {
	assert.True(t, matchRepo("", "anything"))
	assert.True(t, matchRepo("api-*", "api-server"))
	assert.False(t, matchRepo("api-*", "web"))
	assert.True(t, matchRepo("API", "my-api-server"), "plain pattern matches substring")
	assert.False(t, matchRepo("api", "frontend"))
}
