package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the browser.
type KeyMap struct {
	// Navigation
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Back   key.Binding
	Orgs   key.Binding
	Repos  key.Binding
	Users  key.Binding
	Scrape key.Binding

	// Sorting
	SortName    key.Binding
	SortCommits key.Binding
	SortLines   key.Binding
	SortRepos   key.Binding
	SortReviews key.Binding
	SortOrder   key.Binding

	// Actions
	Scrapes key.Binding
	Filter  key.Binding
	Open    key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous row"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next row"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "drill down / pick scrape"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Orgs: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "organizations"),
		),
		Repos: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "repositories"),
		),
		Users: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "contributors"),
		),
		Scrape: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "run scrape"),
		),
		SortName: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "sort by name"),
		),
		SortCommits: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "sort by commits"),
		),
		SortLines: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "sort by lines"),
		),
		SortRepos: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "sort by repos"),
		),
		SortReviews: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "sort by reviews"),
		),
		SortOrder: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "toggle sort order"),
		),
		Scrapes: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "scrape list"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter rows"),
		),
		Open: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "open on github"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns key bindings to be shown in the mini help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the expanded help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter, k.Back},
		{k.Orgs, k.Repos, k.Users, k.Scrapes},
		{k.SortName, k.SortCommits, k.SortLines, k.SortRepos},
		{k.SortReviews, k.SortOrder, k.Filter, k.Open},
		{k.Scrape, k.Help, k.Quit},
	}
}
