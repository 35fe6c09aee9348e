package tui

import "github.com/robby/orgpulse/internal/domain"

// Messages delivered by the fetch bridge and scrape orchestrator commands.
type (
	// initLoadedMsg carries the startup state: known scrapes and the
	// latest one to activate (zero Scrape when the store is empty).
	initLoadedMsg struct {
		scrapes []domain.Scrape
		latest  domain.Scrape
		hasData bool
	}

	// dataLoadedMsg delivers the result of one fetch request.
	dataLoadedMsg struct {
		req  FetchRequest
		data ViewData
	}

	// scrapesLoadedMsg refreshes the scrape-selection list.
	scrapesLoadedMsg struct {
		req     FetchRequest
		scrapes []domain.Scrape
	}

	// fetchErrorMsg reports a failed fetch.
	fetchErrorMsg struct {
		req FetchRequest
		err error
	}

	// scrapeDoneMsg reports a completed collector run already persisted as
	// a new snapshot.
	scrapeDoneMsg struct {
		scrape domain.Scrape
	}

	// scrapeErrorMsg reports a failed collector run; the store is untouched.
	scrapeErrorMsg struct {
		err error
	}
)
