package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robby/orgpulse/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func window(daysAgo int) (time.Time, time.Time) {
	end := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC).AddDate(0, 0, -daysAgo)
	return end.AddDate(0, 0, -7), end
}

func TestSaveScrape_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	start, end := window(0)

	facts := []domain.ContributionFact{
		{Org: "acme", Repo: "api", Author: "alice", Commits: 5, LinesChanged: 120, Reviews: 2},
		{Org: "acme", Repo: "web", Author: "bob", Commits: 1},
	}
	id, err := s.SaveScrape(ctx, start, end, facts)
	require.NoError(t, err)
	require.NotZero(t, id)

	got, err := s.FactsFor(ctx, id)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "alice", got[0].Author)
	assert.Equal(t, int64(5), got[0].Commits)
	assert.Equal(t, id, got[0].ScrapeID)

	latest, err := s.GetLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, latest.ID)
	assert.Equal(t, 2, latest.RepoCount)
	assert.True(t, latest.StartTime.Equal(start.Truncate(time.Second)))
}

func TestScrapesAreImmutable(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	start1, end1 := window(7)
	first, err := s.SaveScrape(ctx, start1, end1, []domain.ContributionFact{
		{Org: "acme", Repo: "api", Author: "alice", Commits: 5},
	})
	require.NoError(t, err)

	before, err := s.FactsFor(ctx, first)
	require.NoError(t, err)

	// A second scrape over the same repos must not disturb the first.
	start2, end2 := window(0)
	_, err = s.SaveScrape(ctx, start2, end2, []domain.ContributionFact{
		{Org: "acme", Repo: "api", Author: "alice", Commits: 9},
		{Org: "acme", Repo: "api", Author: "bob", Commits: 4},
	})
	require.NoError(t, err)

	after, err := s.FactsFor(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestListScrapes_NewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var ids []int64
	for i := 2; i >= 0; i-- {
		start, end := window(i * 7)
		id, err := s.SaveScrape(ctx, start, end, nil)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	scrapes, err := s.ListScrapes(ctx)
	require.NoError(t, err)
	require.Len(t, scrapes, 3)
	assert.Equal(t, ids[2], scrapes[0].ID)
	assert.Equal(t, ids[0], scrapes[2].ID)
}

func TestGetLatest_Empty(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetLatest(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFactsFor_UnknownScrape(t *testing.T) {
	s := openTestStore(t)

	_, err := s.FactsFor(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAppendFacts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	start, end := window(0)

	id, err := s.CreateScrape(ctx, start, end)
	require.NoError(t, err)

	err = s.AppendFacts(ctx, id, []domain.ContributionFact{
		{Org: "acme", Repo: "api", Author: "alice", Commits: 1},
	})
	require.NoError(t, err)

	facts, err := s.FactsFor(ctx, id)
	require.NoError(t, err)
	assert.Len(t, facts, 1)

	err = s.AppendFacts(ctx, 12345, facts)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveScrape_EmptyFactsStillListed(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	start, end := window(0)

	id, err := s.SaveScrape(ctx, start, end, nil)
	require.NoError(t, err)

	facts, err := s.FactsFor(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, facts)

	latest, err := s.GetLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, latest.RepoCount)
}
