package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Primary colors
	ColorPrimary   = lipgloss.Color("#E11D48") // Rose
	ColorSecondary = lipgloss.Color("#F97316") // Orange

	// Status colors
	ColorSuccess = lipgloss.Color("#22C55E") // Green
	ColorError   = lipgloss.Color("#EF4444") // Red
	ColorWarning = lipgloss.Color("#F59E0B") // Amber

	// Text colors
	ColorText   = lipgloss.Color("#F8FAFC") // Bright white
	ColorMuted  = lipgloss.Color("#94A3B8") // Slate gray
	ColorSubtle = lipgloss.Color("#64748B") // Darker gray
)
