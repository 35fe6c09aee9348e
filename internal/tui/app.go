package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/browser"

	"github.com/robby/orgpulse/internal/collector"
	"github.com/robby/orgpulse/internal/domain"
	"github.com/robby/orgpulse/internal/stats"
	"github.com/robby/orgpulse/internal/store"
)

// CollectParams describes the scrape the S key triggers.
type CollectParams struct {
	Organization   string
	Days           int
	RepoPattern    string
	IncludePrivate bool
	MaxRepos       int
}

// App is the root Bubble Tea model. Key handling only mutates the pure
// navigation state and sets request flags; every blocking store read and
// every collector run executes inside a returned command, after the frame
// carrying the loading/scraping status has been emitted. This preserves the
// status-before-blocking ordering even under an arbitrarily slow store.
type App struct {
	nav       *Nav
	store     *store.Store
	collector collector.Collector
	bots      *domain.BotFilter
	logger    *slog.Logger
	ctx       context.Context
	collect   CollectParams

	keymap      KeyMap
	help        HelpModel
	spinner     spinner.Model
	filterInput textinput.Model

	width      int
	height     int
	showHelp   bool
	filterMode bool
}

// NewApp wires the app model. The collector may be nil when browsing an
// existing store without credentials; the S key then reports an error
// instead of scraping.
func NewApp(ctx context.Context, st *store.Store, coll collector.Collector, bots *domain.BotFilter, params CollectParams, logger *slog.Logger) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Placeholder = "Filter..."
	ti.Prompt = "/ "

	return App{
		nav:         NewNav(),
		store:       st,
		collector:   coll,
		bots:        bots,
		logger:      logger,
		ctx:         ctx,
		collect:     params,
		keymap:      DefaultKeyMap(),
		help:        NewHelpModel(DefaultKeyMap()),
		spinner:     sp,
		filterInput: ti,
	}
}

// Init loads the scrape list and the latest snapshot.
func (m App) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadInitial())
}

func (m App) loadInitial() tea.Cmd {
	return func() tea.Msg {
		scrapes, err := m.store.ListScrapes(m.ctx)
		if err != nil {
			return fetchErrorMsg{err: fmt.Errorf("list scrapes: %w", err)}
		}
		latest, err := m.store.GetLatest(m.ctx)
		if errors.Is(err, store.ErrNotFound) {
			return initLoadedMsg{scrapes: scrapes}
		}
		if err != nil {
			return fetchErrorMsg{err: fmt.Errorf("load latest scrape: %w", err)}
		}
		return initLoadedMsg{scrapes: scrapes, latest: latest, hasData: true}
	}
}

// Update handles messages.
func (m App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case initLoadedMsg:
		m.nav.SetScrapes(msg.scrapes)
		if msg.hasData {
			m.nav.SetActiveScrape(msg.latest.ID)
		}
		return m, m.dispatch()

	case dataLoadedMsg:
		m.nav.ApplyData(msg.req, msg.data)
		return m, m.dispatch()

	case scrapesLoadedMsg:
		m.nav.SetScrapes(msg.scrapes)
		m.nav.ApplyData(msg.req, ViewData{})
		return m, m.dispatch()

	case fetchErrorMsg:
		m.logger.Error("fetch failed", "error", msg.err)
		m.nav.FetchFailed(msg.req, msg.err.Error())
		return m, m.dispatch()

	case scrapeDoneMsg:
		m.logger.Info("scrape complete", "scrape", msg.scrape.ID, "repos", msg.scrape.RepoCount)
		m.nav.ScrapeDone(msg.scrape)
		return m, m.dispatch()

	case scrapeErrorMsg:
		m.logger.Error("scrape failed", "error", msg.err)
		m.nav.ScrapeFailed(fmt.Sprintf("scrape failed: %v", msg.err))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.filterMode {
		switch msg.String() {
		case "enter":
			m.filterMode = false
			m.nav.SetFilter(m.filterInput.Value())
			return m, nil
		case "esc":
			m.filterMode = false
			m.filterInput.SetValue(m.nav.Filter())
			return m, nil
		default:
			var cmd tea.Cmd
			m.filterInput, cmd = m.filterInput.Update(msg)
			return m, cmd
		}
	}

	k := m.keymap
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case key.Matches(msg, k.Help):
		m.showHelp = true
	case key.Matches(msg, k.Up):
		m.nav.MoveUp()
	case key.Matches(msg, k.Down):
		m.nav.MoveDown()
	case key.Matches(msg, k.Orgs):
		m.nav.SwitchView(ViewOrg)
		return m, m.dispatch()
	case key.Matches(msg, k.Repos):
		m.nav.SwitchView(ViewRepo)
		return m, m.dispatch()
	case key.Matches(msg, k.Users):
		m.nav.SwitchView(ViewContributor)
		return m, m.dispatch()
	case key.Matches(msg, k.Scrapes):
		m.nav.ToggleScrapes()
		return m, m.dispatch()
	case key.Matches(msg, k.Enter):
		m.nav.Enter()
		return m, m.dispatch()
	case key.Matches(msg, k.Back):
		if !m.nav.Escape() {
			return m, tea.Quit
		}
	case key.Matches(msg, k.SortName):
		m.nav.SetSortField(domain.SortName)
	case key.Matches(msg, k.SortCommits):
		m.nav.SetSortField(domain.SortCommits)
	case key.Matches(msg, k.SortLines):
		m.nav.SetSortField(domain.SortLines)
	case key.Matches(msg, k.SortRepos):
		m.nav.SetSortField(domain.SortRepos)
	case key.Matches(msg, k.SortReviews):
		m.nav.SetSortField(domain.SortReviews)
	case key.Matches(msg, k.SortOrder):
		m.nav.ToggleSortOrder()
	case key.Matches(msg, k.Filter):
		if m.nav.View() != ViewScrapes {
			m.filterMode = true
			m.filterInput.Focus()
		}
	case key.Matches(msg, k.Open):
		m.openSelected()
	case key.Matches(msg, k.Scrape):
		if m.collector == nil {
			m.nav.SetStatus("no collector configured: set a GitHub token")
			return m, nil
		}
		if m.nav.RequestScrape() {
			return m, m.runScrape()
		}
	}

	return m, nil
}

// dispatch consumes the pending fetch request, if any, and returns the
// command that will execute it after the current frame renders.
func (m App) dispatch() tea.Cmd {
	req := m.nav.TakePending()
	if req == nil {
		return nil
	}
	return m.fetch(*req)
}

// fetch performs the blocking read for one request. It runs inside a Bubble
// Tea command goroutine, never on the render path.
func (m App) fetch(req FetchRequest) tea.Cmd {
	return func() tea.Msg {
		if req.View == ViewScrapes {
			scrapes, err := m.store.ListScrapes(m.ctx)
			if err != nil {
				return fetchErrorMsg{req: req, err: err}
			}
			return scrapesLoadedMsg{req: req, scrapes: scrapes}
		}

		facts, err := m.factsFor(req.ScrapeID)
		if err != nil {
			return fetchErrorMsg{req: req, err: err}
		}
		return dataLoadedMsg{req: req, data: m.aggregate(req, facts)}
	}
}

// factsFor loads a scrape's facts, treating an absent scrape (or none
// selected yet) as an empty fact set rather than an error.
func (m App) factsFor(scrapeID int64) ([]domain.ContributionFact, error) {
	if scrapeID == 0 {
		return nil, nil
	}
	facts, err := m.store.FactsFor(m.ctx, scrapeID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return facts, err
}

// aggregate reduces the fact set into the view's rows, scoping detail views
// to their selected entity first.
func (m App) aggregate(req FetchRequest, facts []domain.ContributionFact) ViewData {
	scope := func(keep func(domain.ContributionFact) bool) []domain.ContributionFact {
		out := make([]domain.ContributionFact, 0, len(facts))
		for _, f := range facts {
			if keep(f) {
				out = append(out, f)
			}
		}
		return out
	}

	var data ViewData
	switch req.View {
	case ViewOrg:
		data.Orgs = stats.OrgStats(facts, m.bots)
	case ViewRepo:
		data.Repos = stats.RepoStats(facts, m.bots)
	case ViewContributor:
		data.Contributors = stats.ContributorStats(facts, m.bots)
	case ViewOrgDetail:
		facts = scope(func(f domain.ContributionFact) bool { return f.Org == req.Org })
		data.Repos = stats.RepoStats(facts, m.bots)
	case ViewRepoDetail:
		facts = scope(func(f domain.ContributionFact) bool { return f.Org == req.Org && f.Repo == req.Repo })
		data.Contributors = stats.ContributorStats(facts, m.bots)
	case ViewContributorDetail:
		facts = scope(func(f domain.ContributionFact) bool { return f.Author == req.Author })
		data.Repos = stats.RepoStats(facts, m.bots)
	}
	data.Summary = stats.Summarize(facts, m.bots)
	return data
}

// runScrape invokes the collector and persists the result as one atomic
// snapshot. Store writes happen only after the collector returns a complete
// result, so a failed run never leaves a partial scrape behind.
func (m App) runScrape() tea.Cmd {
	return func() tea.Msg {
		end := time.Now().UTC()
		start := end.AddDate(0, 0, -m.collect.Days)
		req := collector.Request{
			Organization:   m.collect.Organization,
			Window:         collector.TimeWindow{Start: start, End: end},
			RepoPattern:    m.collect.RepoPattern,
			IncludePrivate: m.collect.IncludePrivate,
			MaxRepos:       m.collect.MaxRepos,
		}

		facts, err := m.collector.Collect(m.ctx, req)
		if err != nil {
			return scrapeErrorMsg{err: err}
		}

		id, err := m.store.SaveScrape(m.ctx, start, end, facts)
		if err != nil {
			return scrapeErrorMsg{err: err}
		}

		repos := make(map[string]struct{})
		for _, f := range facts {
			repos[f.Org+"/"+f.Repo] = struct{}{}
		}
		return scrapeDoneMsg{scrape: domain.Scrape{
			ID:        id,
			StartTime: start,
			EndTime:   end,
			RepoCount: len(repos),
		}}
	}
}

// View renders the whole screen. It reads only in-memory state: the
// header and status banners for an in-flight fetch or scrape are drawn from
// flags set during Update, before the blocking command has produced anything.
func (m App) View() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	var b strings.Builder
	b.WriteString(m.headerView(width))
	b.WriteString("\n\n")

	if m.showHelp {
		b.WriteString(m.help.View(width))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.bodyView(width))
	b.WriteString("\n")
	b.WriteString(m.footerView(width))
	return b.String()
}

func (m App) headerView(width int) string {
	title := TitleStyle.Render("orgpulse · " + m.nav.View().Title())
	if org, repo, author := m.nav.Detail(); author != "" {
		title += DimStyle.Render(" " + author)
	} else if repo != "" {
		title += DimStyle.Render(" " + org + "/" + repo)
	} else if org != "" {
		title += DimStyle.Render(" " + org)
	}

	scrape := "no scrape loaded"
	if s, ok := m.activeScrape(); ok {
		scrape = fmt.Sprintf("scrape %d · %s → %s",
			s.ID, s.StartTime.Format("2006-01-02"), s.EndTime.Format("2006-01-02"))
	}
	return title + "\n" + DimStyle.Render(scrape)
}

func (m App) activeScrape() (domain.Scrape, bool) {
	id := m.nav.ActiveScrape()
	for _, s := range m.nav.Scrapes() {
		if s.ID == id {
			return s, true
		}
	}
	return domain.Scrape{}, false
}

func (m App) bodyView(width int) string {
	n := m.nav
	switch n.View().rows() {
	case scrapeRows:
		if len(n.Scrapes()) == 0 {
			return DimStyle.Render("  No scrapes recorded yet. Press S to run one.")
		}
		return renderScrapeTable(n.Scrapes(), n.Selected(), n.ActiveScrape(), width)
	case orgRows:
		rows := n.visibleOrgs()
		if len(rows) == 0 {
			return m.emptyView()
		}
		return renderOrgTable(rows, n.Selected(), width)
	case repoRows:
		rows := n.visibleRepos()
		if len(rows) == 0 {
			return m.emptyView()
		}
		return renderRepoTable(rows, n.Selected(), width)
	case contributorRows:
		rows := n.visibleContributors()
		if len(rows) == 0 {
			return m.emptyView()
		}
		return renderContributorTable(rows, n.Selected(), width)
	}
	return ""
}

func (m App) emptyView() string {
	if m.nav.Loading() {
		return ""
	}
	if m.nav.Filter() != "" {
		return DimStyle.Render("  No rows match the filter.")
	}
	return DimStyle.Render("  No data in this scrape. Press S to scrape, t to pick another.")
}

func (m App) footerView(width int) string {
	var lines []string

	if sum := m.nav.Summary(); m.nav.View() != ViewScrapes && sum.RepoCount > 0 {
		lines = append(lines, DimStyle.Render(fmt.Sprintf(
			"%s commits · %s lines · %d repos · %d contributors",
			formatNumber(sum.TotalCommits), formatNumber(sum.TotalLines),
			sum.RepoCount, sum.ContributorCount)))
	}

	if m.filterMode {
		lines = append(lines, m.filterInput.View())
	} else if f := m.nav.Filter(); f != "" {
		lines = append(lines, DimStyle.Render("filter: "+f))
	}

	switch {
	case m.nav.Scraping():
		lines = append(lines, StatusStyle.Render(m.spinner.View()+" Scraping…"))
	case m.nav.Loading():
		lines = append(lines, StatusStyle.Render(m.spinner.View()+" Loading…"))
	}

	if s := m.nav.Status(); s != "" {
		lines = append(lines, ErrorStyle.Render(s))
	}

	hint := fmt.Sprintf("sort: %s %s", m.nav.SortField(), m.nav.SortOrder())
	lines = append(lines, DimStyle.Render(hint+"  ·  ? help  ·  q quit"))
	return strings.Join(lines, "\n")
}

// openSelected opens the selected entity on github.com.
func (m App) openSelected() {
	url := m.selectedURL()
	if url == "" {
		return
	}
	if err := browser.OpenURL(url); err != nil {
		m.logger.Warn("open browser", "url", url, "error", err)
	}
}

func (m App) selectedURL() string {
	n := m.nav
	switch n.View().rows() {
	case orgRows:
		rows := n.visibleOrgs()
		if len(rows) == 0 {
			return ""
		}
		return "https://github.com/" + rows[n.Selected()].Name
	case repoRows:
		rows := n.visibleRepos()
		if len(rows) == 0 {
			return ""
		}
		r := rows[n.Selected()]
		return "https://github.com/" + r.Org + "/" + r.Repo
	case contributorRows:
		rows := n.visibleContributors()
		if len(rows) == 0 {
			return ""
		}
		return "https://github.com/" + rows[n.Selected()].Author
	}
	return ""
}
