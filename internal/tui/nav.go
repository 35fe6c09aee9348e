// Package tui provides the interactive terminal interface: a pure
// navigation state machine plus a Bubble Tea app model that bridges it to
// the snapshot store and the collector.
package tui

import (
	"strings"

	"github.com/robby/orgpulse/internal/domain"
	"github.com/robby/orgpulse/internal/stats"
)

// View identifies what the main panel is showing.
type View int

const (
	ViewOrg View = iota
	ViewRepo
	ViewContributor
	ViewScrapes
	ViewOrgDetail
	ViewRepoDetail
	ViewContributorDetail
)

// Title returns the heading rendered for the view.
func (v View) Title() string {
	switch v {
	case ViewOrg:
		return "Organizations"
	case ViewRepo:
		return "Repositories"
	case ViewContributor:
		return "Contributors"
	case ViewScrapes:
		return "Scrapes"
	case ViewOrgDetail:
		return "Organization"
	case ViewRepoDetail:
		return "Repository"
	case ViewContributorDetail:
		return "Contributor"
	}
	return ""
}

// topLevel reports whether the view is one of the three root listings.
func (v View) topLevel() bool {
	return v == ViewOrg || v == ViewRepo || v == ViewContributor
}

// rowKind says which slice of ViewData backs the view's rows.
type rowKind int

const (
	orgRows rowKind = iota
	repoRows
	contributorRows
	scrapeRows
)

func (v View) rows() rowKind {
	switch v {
	case ViewOrg:
		return orgRows
	case ViewRepo, ViewOrgDetail, ViewContributorDetail:
		return repoRows
	case ViewContributor, ViewRepoDetail:
		return contributorRows
	case ViewScrapes:
		return scrapeRows
	}
	return orgRows
}

// ViewData is the loaded, already-aggregated backing data for one view.
// Exactly one slice is populated depending on the view's row kind.
type ViewData struct {
	Orgs         []domain.OrgStats
	Repos        []domain.RepoStats
	Contributors []domain.ContributorStats
	Summary      stats.Summary
}

// FetchRequest describes one blocking read the fetch bridge should perform.
// Org/Repo/Author scope detail views; ScrapeID selects the snapshot.
type FetchRequest struct {
	View     View
	ScrapeID int64
	Org      string
	Repo     string
	Author   string
}

// frame is one self-contained navigation level: the view, its detail
// payload, sort and selection state, and the data loaded for it. Frames on
// the drill-down stack keep their data so popping never refetches.
type frame struct {
	view      View
	org       string
	repo      string
	author    string
	sortField domain.SortField
	sortOrder domain.SortOrder
	selected  int
	filter    string
	data      ViewData
	loaded    bool
}

func newFrame(v View) frame {
	return frame{view: v, sortField: domain.SortCommits, sortOrder: domain.Descending}
}

func (f *frame) request(scrapeID int64) FetchRequest {
	return FetchRequest{
		View:     f.view,
		ScrapeID: scrapeID,
		Org:      f.org,
		Repo:     f.repo,
		Author:   f.author,
	}
}

// Nav owns all view, sort, selection, and drill-down state. It performs no
// I/O: key handling mutates this state and sets request flags which the app
// model's command layer executes. All mutations keep the selection inside
// the current list bounds (0 on an empty list).
type Nav struct {
	cur     frame
	stack   []frame
	topView View // last top-level view, returned to from scrape selection

	scrapes      []domain.Scrape
	scrapeSel    int
	savedFrame   *frame // frame to restore when leaving scrape selection
	activeScrape int64  // 0 means no scrape selected yet

	pending  *FetchRequest // request slot; a new request overwrites it
	inFlight *FetchRequest // request currently executing in the bridge

	scraping bool
	status   string // last collector or store error, shown in the footer
}

// NewNav starts on the organization view with a fetch already requested.
func NewNav() *Nav {
	n := &Nav{cur: newFrame(ViewOrg), topView: ViewOrg}
	n.requestFetch()
	return n
}

// View returns the current view.
func (n *Nav) View() View { return n.cur.view }

// ActiveScrape returns the id of the scrape being browsed, 0 if none.
func (n *Nav) ActiveScrape() int64 { return n.activeScrape }

// Status returns the transient status/error message.
func (n *Nav) Status() string { return n.status }

// ClearStatus drops the transient message.
func (n *Nav) ClearStatus() { n.status = "" }

// SetStatus records a user-visible message, e.g. a collector failure.
func (n *Nav) SetStatus(msg string) { n.status = msg }

// Scraping reports whether a scrape run is in progress.
func (n *Nav) Scraping() bool { return n.scraping }

// Loading reports whether a fetch is pending or executing; the renderer
// shows the loading indicator while true.
func (n *Nav) Loading() bool { return n.pending != nil || n.inFlight != nil }

// Selected returns the current selection index within the visible rows.
func (n *Nav) Selected() int {
	if n.cur.view == ViewScrapes {
		return n.scrapeSel
	}
	return n.cur.selected
}

// Depth returns how many levels deep the drill-down stack is.
func (n *Nav) Depth() int { return len(n.stack) }

// SortField returns the current frame's sort field.
func (n *Nav) SortField() domain.SortField { return n.cur.sortField }

// SortOrder returns the current frame's sort order.
func (n *Nav) SortOrder() domain.SortOrder { return n.cur.sortOrder }

// Filter returns the current frame's substring filter.
func (n *Nav) Filter() string { return n.cur.filter }

// Detail returns the current frame's drill-down payload.
func (n *Nav) Detail() (org, repo, author string) {
	return n.cur.org, n.cur.repo, n.cur.author
}

// Summary returns the headline figures loaded with the current view.
func (n *Nav) Summary() stats.Summary { return n.cur.data.Summary }

// Scrapes returns the known scrapes, newest first.
func (n *Nav) Scrapes() []domain.Scrape { return n.scrapes }

// requestFetch stores a request for the current frame, overwriting any
// unconsumed one.
func (n *Nav) requestFetch() {
	req := n.cur.request(n.activeScrape)
	n.pending = &req
}

// TakePending hands the pending request to the fetch bridge, marking it
// in flight. Returns nil when there is nothing to execute.
func (n *Nav) TakePending() *FetchRequest {
	if n.pending == nil {
		return nil
	}
	req := n.pending
	n.pending = nil
	n.inFlight = req
	return req
}

// ApplyData installs the result of a fetch. Results for a request that is
// no longer in flight (overwritten by a newer one, or the user navigated
// away) are dropped; the previous data stays intact until a matching swap.
func (n *Nav) ApplyData(req FetchRequest, data ViewData) {
	if n.inFlight != nil && *n.inFlight == req {
		n.inFlight = nil
	}
	if n.cur.request(n.activeScrape) != req {
		return
	}
	n.cur.data = data
	n.cur.loaded = true
	n.sortData()
	n.clampSelection()
}

// FetchFailed clears the in-flight slot and surfaces the error message.
func (n *Nav) FetchFailed(req FetchRequest, msg string) {
	if n.inFlight != nil && *n.inFlight == req {
		n.inFlight = nil
	}
	n.status = msg
}

// SetScrapes replaces the scrape list, clamping its selection.
func (n *Nav) SetScrapes(scrapes []domain.Scrape) {
	n.scrapes = scrapes
	if n.scrapeSel >= len(scrapes) {
		n.scrapeSel = 0
	}
}

// SetActiveScrape records which snapshot subsequent fetches read from and
// requests a fetch of the current frame against it. Any request issued for
// the previously active scrape is superseded.
func (n *Nav) SetActiveScrape(id int64) {
	n.activeScrape = id
	n.requestFetch()
}

// SwitchView jumps to a top-level view, clearing the drill-down stack and
// resetting the selection. A fetch is always requested: the backing data
// for the new view may not be loaded yet.
func (n *Nav) SwitchView(v View) {
	if !v.topLevel() {
		return
	}
	sortField, sortOrder := n.cur.sortField, n.cur.sortOrder
	n.cur = newFrame(v)
	n.cur.sortField, n.cur.sortOrder = sortField, sortOrder
	n.stack = nil
	n.savedFrame = nil
	n.topView = v
	n.status = ""
	n.requestFetch()
}

// ToggleScrapes enters or leaves the scrape-selection list. Leaving
// restores the exact frame that was showing, without refetching.
func (n *Nav) ToggleScrapes() {
	if n.cur.view == ViewScrapes {
		n.leaveScrapes()
		return
	}
	saved := n.cur
	n.savedFrame = &saved
	n.cur = newFrame(ViewScrapes)
	n.requestFetch()
}

func (n *Nav) leaveScrapes() {
	if n.savedFrame != nil {
		n.cur = *n.savedFrame
		n.savedFrame = nil
	} else {
		n.cur = newFrame(n.topView)
		n.requestFetch()
	}
}

// Enter drills into the selected row. On the scrape list it instead
// activates the selected scrape, clears the drill-down stack, and requests
// a fetch of the active top-level view against the new snapshot.
func (n *Nav) Enter() {
	if n.cur.view == ViewScrapes {
		if len(n.scrapes) == 0 {
			return
		}
		n.activeScrape = n.scrapes[n.scrapeSel].ID
		n.stack = nil
		n.savedFrame = nil
		n.cur = newFrame(n.topView)
		n.requestFetch()
		return
	}

	next, ok := n.drillTarget()
	if !ok {
		return
	}
	n.stack = append(n.stack, n.cur)
	next.sortField = n.cur.sortField
	next.sortOrder = n.cur.sortOrder
	n.cur = next
	n.requestFetch()
}

// drillTarget derives the detail frame for the currently selected row.
func (n *Nav) drillTarget() (frame, bool) {
	switch n.cur.view.rows() {
	case orgRows:
		rows := n.visibleOrgs()
		if len(rows) == 0 {
			return frame{}, false
		}
		f := newFrame(ViewOrgDetail)
		f.org = rows[n.cur.selected].Name
		return f, true
	case repoRows:
		rows := n.visibleRepos()
		if len(rows) == 0 {
			return frame{}, false
		}
		f := newFrame(ViewRepoDetail)
		f.org = rows[n.cur.selected].Org
		f.repo = rows[n.cur.selected].Repo
		return f, true
	case contributorRows:
		rows := n.visibleContributors()
		if len(rows) == 0 {
			return frame{}, false
		}
		f := newFrame(ViewContributorDetail)
		f.author = rows[n.cur.selected].Author
		return f, true
	}
	return frame{}, false
}

// Escape pops the drill-down stack, restoring the exact prior view, sort,
// selection, and data without refetching. In the scrape list it restores
// the saved frame instead. Returns false when there was nothing to pop.
func (n *Nav) Escape() bool {
	if n.cur.view == ViewScrapes {
		n.leaveScrapes()
		return true
	}
	if len(n.stack) == 0 {
		return false
	}
	n.cur = n.stack[len(n.stack)-1]
	n.stack = n.stack[:len(n.stack)-1]
	return true
}

// SetSortField applies a sort field to the current frame. A field that does
// not apply to the active view falls back to commits. The sort order is
// unchanged; the already-loaded list is re-sorted and selection reset.
func (n *Nav) SetSortField(f domain.SortField) {
	if n.cur.view == ViewScrapes {
		return
	}
	if !fieldApplies(n.cur.view.rows(), f) {
		f = domain.SortCommits
	}
	n.cur.sortField = f
	n.sortData()
	n.cur.selected = 0
}

// ToggleSortOrder flips the direction, re-sorts in memory, and resets the
// selection.
func (n *Nav) ToggleSortOrder() {
	if n.cur.view == ViewScrapes {
		return
	}
	n.cur.sortOrder = n.cur.sortOrder.Toggle()
	n.sortData()
	n.cur.selected = 0
}

func fieldApplies(kind rowKind, f domain.SortField) bool {
	switch kind {
	case orgRows, contributorRows:
		return f != domain.SortReviews
	case repoRows:
		return f != domain.SortRepos
	}
	return false
}

func (n *Nav) sortData() {
	field, order := n.cur.sortField, n.cur.sortOrder
	stats.SortOrgs(n.cur.data.Orgs, field, order)
	stats.SortRepos(n.cur.data.Repos, field, order)
	stats.SortContributors(n.cur.data.Contributors, field, order)
}

// SetFilter applies an in-memory substring filter to the current list and
// resets the selection. No fetch is issued.
func (n *Nav) SetFilter(text string) {
	if n.cur.view == ViewScrapes {
		return
	}
	n.cur.filter = text
	n.cur.selected = 0
}

// MoveUp moves the selection up one row, wrapping to the last row from the
// top. On an empty list the selection stays at 0.
func (n *Nav) MoveUp() {
	count := n.rowCount()
	if count == 0 {
		return
	}
	if n.cur.view == ViewScrapes {
		n.scrapeSel = (n.scrapeSel - 1 + count) % count
		return
	}
	n.cur.selected = (n.cur.selected - 1 + count) % count
}

// MoveDown moves the selection down one row, wrapping to row 0 past the end.
func (n *Nav) MoveDown() {
	count := n.rowCount()
	if count == 0 {
		return
	}
	if n.cur.view == ViewScrapes {
		n.scrapeSel = (n.scrapeSel + 1) % count
		return
	}
	n.cur.selected = (n.cur.selected + 1) % count
}

func (n *Nav) rowCount() int {
	switch n.cur.view.rows() {
	case orgRows:
		return len(n.visibleOrgs())
	case repoRows:
		return len(n.visibleRepos())
	case contributorRows:
		return len(n.visibleContributors())
	case scrapeRows:
		return len(n.scrapes)
	}
	return 0
}

func (n *Nav) clampSelection() {
	if count := n.rowCount(); n.cur.selected >= count {
		n.cur.selected = 0
	}
}

func matchesFilter(filter, name string) bool {
	return filter == "" || strings.Contains(strings.ToLower(name), strings.ToLower(filter))
}

// visibleOrgs returns the org rows after the frame filter.
func (n *Nav) visibleOrgs() []domain.OrgStats {
	if n.cur.filter == "" {
		return n.cur.data.Orgs
	}
	out := make([]domain.OrgStats, 0, len(n.cur.data.Orgs))
	for _, r := range n.cur.data.Orgs {
		if matchesFilter(n.cur.filter, r.Name) {
			out = append(out, r)
		}
	}
	return out
}

func (n *Nav) visibleRepos() []domain.RepoStats {
	if n.cur.filter == "" {
		return n.cur.data.Repos
	}
	out := make([]domain.RepoStats, 0, len(n.cur.data.Repos))
	for _, r := range n.cur.data.Repos {
		if matchesFilter(n.cur.filter, r.Org+"/"+r.Repo) {
			out = append(out, r)
		}
	}
	return out
}

func (n *Nav) visibleContributors() []domain.ContributorStats {
	if n.cur.filter == "" {
		return n.cur.data.Contributors
	}
	out := make([]domain.ContributorStats, 0, len(n.cur.data.Contributors))
	for _, r := range n.cur.data.Contributors {
		if matchesFilter(n.cur.filter, r.Author) {
			out = append(out, r)
		}
	}
	return out
}

// RequestScrape flags a scrape run. Returns false when one is already in
// progress: repeated requests are no-ops and only one scrape runs at a time.
func (n *Nav) RequestScrape() bool {
	if n.scraping {
		return false
	}
	n.scraping = true
	n.status = ""
	return true
}

// ScrapeDone activates the freshly written scrape and requests a refresh of
// the active top-level view.
func (n *Nav) ScrapeDone(scrape domain.Scrape) {
	n.scraping = false
	n.scrapes = append([]domain.Scrape{scrape}, n.scrapes...)
	n.activeScrape = scrape.ID
	n.stack = nil
	n.savedFrame = nil
	n.cur = newFrame(n.topView)
	n.requestFetch()
}

// ScrapeFailed records the failure for display. The previously active
// scrape and its data are untouched.
func (n *Nav) ScrapeFailed(msg string) {
	n.scraping = false
	n.status = msg
}
