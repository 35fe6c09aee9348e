package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robby/orgpulse/internal/domain"
)

func orgData() ViewData {
	return ViewData{Orgs: []domain.OrgStats{
		{Name: "acme", TotalCommits: 10},
		{Name: "globex", TotalCommits: 7},
		{Name: "initech", TotalCommits: 3},
	}}
}

func repoData() ViewData {
	return ViewData{Repos: []domain.RepoStats{
		{Org: "acme", Repo: "api", Commits: 8},
		{Org: "acme", Repo: "web", Commits: 2},
	}}
}

// resolve pops the pending request and answers it with data, the way the
// fetch bridge would.
func resolve(t *testing.T, n *Nav, data ViewData) {
	t.Helper()
	req := n.TakePending()
	require.NotNil(t, req)
	n.ApplyData(*req, data)
}

func loadedNav(t *testing.T) *Nav {
	t.Helper()
	n := NewNav()
	resolve(t, n, orgData())
	return n
}

func TestNav_InitialFetchRequested(t *testing.T) {
	n := NewNav()

	assert.True(t, n.Loading())
	req := n.TakePending()
	require.NotNil(t, req)
	assert.Equal(t, ViewOrg, req.View)
	assert.True(t, n.Loading(), "still loading while the request is in flight")

	n.ApplyData(*req, orgData())
	assert.False(t, n.Loading())
}

func TestNav_SelectionWrapsAround(t *testing.T) {
	n := loadedNav(t)

	assert.Equal(t, 0, n.Selected())
	n.MoveUp()
	assert.Equal(t, 2, n.Selected(), "up from the top wraps to the last row")
	n.MoveDown()
	assert.Equal(t, 0, n.Selected(), "down from the last row wraps to the top")
}

func TestNav_SelectionOnEmptyList(t *testing.T) {
	n := NewNav()
	resolve(t, n, ViewData{})

	n.MoveDown()
	n.MoveUp()
	assert.Equal(t, 0, n.Selected())
}

func TestNav_DrillDownAndBack(t *testing.T) {
	n := loadedNav(t)
	n.MoveDown() // globex
	n.ToggleSortOrder()
	wantField, wantOrder := n.SortField(), n.SortOrder()
	wantSel := n.Selected()

	n.Enter()
	assert.Equal(t, ViewOrgDetail, n.View())
	assert.Equal(t, 1, n.Depth())
	req := n.TakePending()
	require.NotNil(t, req)
	assert.Equal(t, "initech", req.Org, "toggling the order moved initech under the cursor")
	n.ApplyData(*req, repoData())

	require.True(t, n.Escape())
	assert.Equal(t, ViewOrg, n.View())
	assert.Equal(t, wantField, n.SortField())
	assert.Equal(t, wantOrder, n.SortOrder())
	assert.Equal(t, wantSel, n.Selected())
	assert.False(t, n.Loading(), "popping a frame reuses its cached data")
	assert.Nil(t, n.TakePending())
	assert.Len(t, n.visibleOrgs(), 3)
}

func TestNav_EscapeAtTopLevel(t *testing.T) {
	n := loadedNav(t)
	assert.False(t, n.Escape())
}

func TestNav_StaleResultDropped(t *testing.T) {
	n := NewNav()
	old := n.TakePending()
	require.NotNil(t, old)

	n.SwitchView(ViewRepo)
	n.ApplyData(*old, orgData())

	assert.True(t, n.Loading(), "the repo view fetch is still outstanding")
	assert.Empty(t, n.visibleOrgs())
	resolve(t, n, repoData())
	assert.Len(t, n.visibleRepos(), 2)
}

func TestNav_PendingSlotOverwritten(t *testing.T) {
	n := NewNav()
	n.SwitchView(ViewRepo)
	n.SwitchView(ViewContributor)

	req := n.TakePending()
	require.NotNil(t, req)
	assert.Equal(t, ViewContributor, req.View)
	assert.Nil(t, n.TakePending(), "only one request in the slot")
}

func TestNav_SortFieldFallback(t *testing.T) {
	n := loadedNav(t)

	n.SetSortField(domain.SortReviews)
	assert.Equal(t, domain.SortCommits, n.SortField(), "reviews do not apply to org rows")

	n.SetSortField(domain.SortRepos)
	assert.Equal(t, domain.SortRepos, n.SortField())
}

func TestNav_ToggleSortOrderReverses(t *testing.T) {
	n := loadedNav(t)
	before := append([]domain.OrgStats(nil), n.visibleOrgs()...)

	n.ToggleSortOrder()
	after := n.visibleOrgs()
	require.Len(t, after, len(before))
	for i := range after {
		assert.Equal(t, before[len(before)-1-i], after[i])
	}
	assert.Equal(t, 0, n.Selected())
}

func TestNav_Filter(t *testing.T) {
	n := loadedNav(t)
	n.MoveDown()

	n.SetFilter("GLO")
	rows := n.visibleOrgs()
	require.Len(t, rows, 1)
	assert.Equal(t, "globex", rows[0].Name)
	assert.Equal(t, 0, n.Selected())

	n.SetFilter("")
	assert.Len(t, n.visibleOrgs(), 3)
}

func TestNav_ScrapeSelection(t *testing.T) {
	n := loadedNav(t)
	n.SetScrapes([]domain.Scrape{
		{ID: 3, EndTime: time.Now()},
		{ID: 2},
		{ID: 1},
	})
	n.SetActiveScrape(3)

	n.ToggleScrapes()
	assert.Equal(t, ViewScrapes, n.View())
	resolve(t, n, ViewData{})

	n.MoveDown() // scrape id 2
	n.Enter()
	assert.Equal(t, int64(2), n.ActiveScrape())
	assert.Equal(t, ViewOrg, n.View(), "activating a scrape returns to the top-level view")
	req := n.TakePending()
	require.NotNil(t, req)
	assert.Equal(t, int64(2), req.ScrapeID)
}

func TestNav_LeaveScrapesRestoresFrame(t *testing.T) {
	n := loadedNav(t)
	n.MoveDown()

	n.ToggleScrapes()
	resolve(t, n, ViewData{})
	n.ToggleScrapes()

	assert.Equal(t, ViewOrg, n.View())
	assert.Equal(t, 1, n.Selected())
	assert.Nil(t, n.TakePending(), "restored frame keeps its data, no refetch")
}

func TestNav_ScrapeRunLifecycle(t *testing.T) {
	n := loadedNav(t)

	require.True(t, n.RequestScrape())
	assert.True(t, n.Scraping())
	assert.False(t, n.RequestScrape(), "a second request while running is a no-op")

	n.ScrapeDone(domain.Scrape{ID: 9, RepoCount: 4})
	assert.False(t, n.Scraping())
	assert.Equal(t, int64(9), n.ActiveScrape())
	require.NotEmpty(t, n.Scrapes())
	assert.Equal(t, int64(9), n.Scrapes()[0].ID)
	req := n.TakePending()
	require.NotNil(t, req)
	assert.Equal(t, int64(9), req.ScrapeID)
}

func TestNav_ScrapeFailureKeepsData(t *testing.T) {
	n := loadedNav(t)
	n.SetActiveScrape(1)

	require.True(t, n.RequestScrape())
	n.ScrapeFailed("boom")

	assert.False(t, n.Scraping())
	assert.Equal(t, "boom", n.Status())
	assert.Equal(t, int64(1), n.ActiveScrape())
	assert.Len(t, n.visibleOrgs(), 3)
	assert.True(t, n.RequestScrape(), "a failed run can be retried")
}
