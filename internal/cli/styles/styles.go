// Package styles provides the lipgloss styles shared by lacquer's CLI output.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme holds the styles used across commands.
type Theme struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Subtle   lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style

	Badge      lipgloss.Style
	BadgeMuted lipgloss.Style

	ListItem         lipgloss.Style
	ListItemSelected lipgloss.Style
}

// NewTheme builds the default dark theme.
func NewTheme() *Theme {
	text := lipgloss.Color("#ffffff")
	muted := lipgloss.Color("#909090")
	accent := lipgloss.Color("#4ade80")
	surface := lipgloss.Color("#1a1a1b")

	return &Theme{
		Title:    lipgloss.NewStyle().Foreground(text).Bold(true),
		Subtitle: lipgloss.NewStyle().Foreground(muted).Bold(true),
		Normal:   lipgloss.NewStyle().Foreground(text),
		Subtle:   lipgloss.NewStyle().Foreground(muted),
		Success:  lipgloss.NewStyle().Foreground(accent),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")),

		Badge: lipgloss.NewStyle().
			Foreground(surface).
			Background(accent).
			Padding(0, 1),
		BadgeMuted: lipgloss.NewStyle().
			Foreground(text).
			Background(surface).
			Padding(0, 1),

		ListItem:         lipgloss.NewStyle().PaddingLeft(2),
		ListItemSelected: lipgloss.NewStyle().PaddingLeft(0).Foreground(accent).SetString("> "),
	}
}

// Swatch renders a colored block for a skin preview color. Empty values
// render as a placeholder so columns stay aligned.
func Swatch(hex string) string {
	if hex == "" {
		return "  "
	}
	return lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("  ")
}
