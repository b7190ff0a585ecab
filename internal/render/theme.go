package render

import "github.com/charmbracelet/lipgloss"

// Theme holds Lip Gloss styles for wizard output.
type Theme struct {
	Title     lipgloss.Style
	Active    lipgloss.Style
	Completed lipgloss.Style
	Dim       lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Normal    lipgloss.Style
	BreadSep  lipgloss.Style

	// Colored enables coloured table headers and result markers.
	Colored bool
}

// NewTheme creates a Theme with the default color palette.
func NewTheme() Theme {
	cyan := lipgloss.Color("6")
	green := lipgloss.Color("2")
	yellow := lipgloss.Color("3")
	red := lipgloss.Color("1")
	dim := lipgloss.Color("8")

	return Theme{
		Title:     lipgloss.NewStyle().Bold(true),
		Active:    lipgloss.NewStyle().Bold(true).Foreground(cyan),
		Completed: lipgloss.NewStyle().Foreground(green),
		Dim:       lipgloss.NewStyle().Foreground(dim),
		Warning:   lipgloss.NewStyle().Foreground(yellow),
		Error:     lipgloss.NewStyle().Foreground(red),
		Normal:    lipgloss.NewStyle(),
		BreadSep:  lipgloss.NewStyle().Foreground(dim),
		Colored:   true,
	}
}

// PlainTheme returns a Theme that renders text unchanged.
func PlainTheme() Theme {
	plain := lipgloss.NewStyle()

	return Theme{
		Title:     plain,
		Active:    plain,
		Completed: plain,
		Dim:       plain,
		Warning:   plain,
		Error:     plain,
		Normal:    plain,
		BreadSep:  plain,
	}
}
