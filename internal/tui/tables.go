package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/truncate"

	"github.com/robby/orgpulse/internal/domain"
)

// Column width constants for the numeric table columns.
const (
	numColWidth  = 10
	minNameWidth = 16
)

// formatNumber renders large counters compactly (1.2K, 3.4M).
func formatNumber(n int64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

// fitName truncates a name cell to the given width, padding to align the
// numeric columns that follow.
func fitName(name string, width int) string {
	s := truncate.StringWithTail(name, uint(width), "…")
	if pad := width - len([]rune(s)); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

func numCell(n int64) string {
	return fmt.Sprintf("%*s", numColWidth, formatNumber(n))
}

// nameWidth computes how much room names get after the numeric columns.
func nameWidth(total, numCols int) int {
	w := total - numCols*numColWidth - 4 // 2 for the cursor prefix, 2 slack
	if w < minNameWidth {
		w = minNameWidth
	}
	return w
}

// renderRow styles one line with the selection cursor.
func renderRow(line string, selected bool) string {
	if selected {
		return SelectedRowStyle.Render("> " + line)
	}
	return NormalRowStyle.Render("  " + line)
}

func renderOrgTable(rows []domain.OrgStats, selected, width int) string {
	nw := nameWidth(width, 4)
	var b strings.Builder
	b.WriteString(HeaderRowStyle.Render(fmt.Sprintf("  %s%*s%*s%*s%*s",
		fitName("Organization", nw), numColWidth, "Commits", numColWidth, "Lines",
		numColWidth, "Repos", numColWidth, "People")))
	b.WriteString("\n")
	for i, r := range rows {
		line := fmt.Sprintf("%s%s%s%s%s",
			fitName(r.Name, nw), numCell(r.TotalCommits), numCell(r.TotalLines),
			numCell(r.RepoCount), numCell(r.ContributorCount))
		b.WriteString(renderRow(line, i == selected))
		b.WriteString("\n")
	}
	return b.String()
}

func renderRepoTable(rows []domain.RepoStats, selected, width int) string {
	nw := nameWidth(width, 4)
	var b strings.Builder
	b.WriteString(HeaderRowStyle.Render(fmt.Sprintf("  %s%*s%*s%*s%*s",
		fitName("Repository", nw), numColWidth, "Commits", numColWidth, "Lines",
		numColWidth, "Reviews", numColWidth, "People")))
	b.WriteString("\n")
	for i, r := range rows {
		line := fmt.Sprintf("%s%s%s%s%s",
			fitName(r.Org+"/"+r.Repo, nw), numCell(r.Commits), numCell(r.Lines),
			numCell(r.Reviews), numCell(r.ContributorCount))
		b.WriteString(renderRow(line, i == selected))
		b.WriteString("\n")
	}
	return b.String()
}

func renderContributorTable(rows []domain.ContributorStats, selected, width int) string {
	nw := nameWidth(width, 4) / 2
	if nw < minNameWidth {
		nw = minNameWidth
	}
	var b strings.Builder
	b.WriteString(HeaderRowStyle.Render(fmt.Sprintf("  %s%*s%*s%*s  %s",
		fitName("Contributor", nw), numColWidth, "Commits", numColWidth, "Lines",
		numColWidth, "Repos", "Organizations")))
	b.WriteString("\n")
	for i, r := range rows {
		line := fmt.Sprintf("%s%s%s%s  %s",
			fitName(r.Author, nw), numCell(r.TotalCommits), numCell(r.TotalLines),
			numCell(r.RepoCount), formatOrgList(r.Orgs))
		b.WriteString(renderRow(line, i == selected))
		b.WriteString("\n")
	}
	return b.String()
}

// formatOrgList abbreviates long org memberships ("a, b (+3)").
func formatOrgList(orgs []string) string {
	if len(orgs) <= 2 {
		return strings.Join(orgs, ", ")
	}
	return fmt.Sprintf("%s, %s (+%d)", orgs[0], orgs[1], len(orgs)-2)
}

func renderScrapeTable(rows []domain.Scrape, selected int, activeID int64, width int) string {
	var b strings.Builder
	b.WriteString(HeaderRowStyle.Render(fmt.Sprintf("  %-6s  %-32s%*s", "ID", "Window", numColWidth, "Repos")))
	b.WriteString("\n")
	for i, s := range rows {
		window := fmt.Sprintf("%s → %s",
			s.StartTime.Format("2006-01-02"), s.EndTime.Format("2006-01-02"))
		marker := " "
		if s.ID == activeID {
			marker = "*"
		}
		line := fmt.Sprintf("%-6s  %-32s%*s",
			fmt.Sprintf("%s%d", marker, s.ID), window, numColWidth, formatNumber(int64(s.RepoCount)))
		b.WriteString(renderRow(line, i == selected))
		b.WriteString("\n")
	}
	return b.String()
}
