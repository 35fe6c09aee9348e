package tui

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robby/orgpulse/internal/collector"
	"github.com/robby/orgpulse/internal/domain"
	"github.com/robby/orgpulse/internal/store"
)

// stubCollector records Collect calls and returns canned facts.
type stubCollector struct {
	calls int
	facts []domain.ContributionFact
	err   error
}

func (s *stubCollector) Collect(ctx context.Context, req collector.Request) ([]domain.ContributionFact, error) {
	s.calls++
	return s.facts, s.err
}

func newTestApp(t *testing.T, coll collector.Collector) (App, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app := NewApp(context.Background(), st, coll, nil, CollectParams{
		Organization: "acme",
		Days:         7,
	}, logger)
	return app, st
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, app App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	m, cmd := app.Update(msg)
	next, ok := m.(App)
	require.True(t, ok)
	return next, cmd
}

func TestApp_LoadingVisibleBeforeFetchRuns(t *testing.T) {
	app, _ := newTestApp(t, nil)

	// The initial fetch request exists before Init's command has executed:
	// the first rendered frame already carries the loading indicator.
	assert.Contains(t, app.View(), "Loading")

	app, cmd := update(t, app, initLoadedMsg{})
	require.NotNil(t, cmd, "the fetch for the org view is handed back as a command")
	assert.Contains(t, app.View(), "Loading", "still loading until the command's result lands")

	msg := cmd()
	loaded, ok := msg.(dataLoadedMsg)
	require.True(t, ok)
	app, _ = update(t, app, loaded)
	assert.NotContains(t, app.View(), "Loading")
}

func TestApp_ScrapingVisibleBeforeCollectorRuns(t *testing.T) {
	coll := &stubCollector{facts: []domain.ContributionFact{
		{Org: "acme", Repo: "api", Author: "alice", Commits: 5},
	}}
	app, _ := newTestApp(t, coll)
	app = drainFetches(t, app)

	app, cmd := update(t, app, keyMsg("S"))
	require.NotNil(t, cmd)
	assert.Equal(t, 0, coll.calls, "the collector must not run before the frame renders")
	assert.Contains(t, app.View(), "Scraping")

	msg := cmd()
	assert.Equal(t, 1, coll.calls)
	done, ok := msg.(scrapeDoneMsg)
	require.True(t, ok)
	assert.Equal(t, 1, done.scrape.RepoCount)
}

func TestApp_RepeatScrapeKeyIsNoOp(t *testing.T) {
	coll := &stubCollector{}
	app, st := newTestApp(t, coll)
	app = drainFetches(t, app)

	app, cmd := update(t, app, keyMsg("S"))
	require.NotNil(t, cmd)

	// Pressing S again while the first run is still out: nothing new starts.
	app, cmd2 := update(t, app, keyMsg("S"))
	assert.Nil(t, cmd2)

	app, _ = update(t, app, cmd())
	app = drainFetches(t, app)

	scrapes, err := st.ListScrapes(context.Background())
	require.NoError(t, err)
	assert.Len(t, scrapes, 1, "one key press, one snapshot")
}

func TestApp_ScrapeFailureLeavesStoreUntouched(t *testing.T) {
	coll := &stubCollector{err: context.DeadlineExceeded}
	app, st := newTestApp(t, coll)
	app = drainFetches(t, app)

	app, cmd := update(t, app, keyMsg("S"))
	require.NotNil(t, cmd)
	app, _ = update(t, app, cmd())

	assert.Contains(t, app.View(), "scrape failed")
	scrapes, err := st.ListScrapes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, scrapes)

	// The next attempt is allowed.
	_, cmd = update(t, app, keyMsg("S"))
	assert.NotNil(t, cmd)
}

func TestApp_DrillAndSortKeys(t *testing.T) {
	app, st := newTestApp(t, nil)
	_, err := st.SaveScrape(context.Background(),
		time.Now().Add(-7*24*time.Hour), time.Now(),
		[]domain.ContributionFact{
			{Org: "acme", Repo: "api", Author: "alice", Commits: 5},
			{Org: "acme", Repo: "web", Author: "bob", Commits: 2},
		})
	require.NoError(t, err)

	app = startApp(t, app)
	assert.Contains(t, app.View(), "acme")

	app, cmd := update(t, app, keyMsg("r"))
	app, _ = update(t, app, cmd())
	assert.Contains(t, app.View(), "acme/api")

	app, _ = update(t, app, keyMsg("n"))
	assert.Contains(t, app.View(), "sort: Name")
}

// startApp runs Init's load and every follow-up fetch synchronously.
func startApp(t *testing.T, app App) App {
	t.Helper()
	var cmd tea.Cmd
	app, cmd = update(t, app, app.loadInitial()())
	for cmd != nil {
		app, cmd = update(t, app, cmd())
	}
	return app
}

// drainFetches executes pending fetch commands until the app settles.
func drainFetches(t *testing.T, app App) App {
	t.Helper()
	for i := 0; i < 10; i++ {
		cmd := app.dispatch()
		if cmd == nil {
			return app
		}
		var next App
		next, _ = update(t, app, cmd())
		app = next
	}
	t.Fatal("app never settled")
	return app
}
