package components

import (
	"github.com/theirongolddev/orca/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar. right is typically the
// budget name and data age; notice, when set, replaces the key hints.
func RenderStatusBar(width int, right, notice string) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Width(width)

	left := " [?]help  [r]efresh  [q]uit"
	if notice != "" {
		left = " " + lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).Render(notice)
	}
	if right != "" {
		right += " "
	}

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	fill := lipgloss.NewStyle().Background(t.Surface).Width(gap).Render("")

	return style.Render(left + fill + right)
}
