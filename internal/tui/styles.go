package tui

import "github.com/charmbracelet/lipgloss"

var (
	// TitleStyle is used for the header line.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")) // Purple

	// HeaderRowStyle is used for table column headers.
	HeaderRowStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	// SelectedRowStyle is used for the highlighted row.
	SelectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true)

	// NormalRowStyle is used for non-selected rows.
	NormalRowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")) // Light gray

	// DimStyle is used for footers and secondary info.
	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")) // Dark gray

	// ErrorStyle is used for error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // Red
			Bold(true)

	// StatusStyle is used for the loading/scraping banner.
	StatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")). // Orange
			Bold(true)
)
