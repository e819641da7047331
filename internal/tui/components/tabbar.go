package components

import (
	"strings"

	"github.com/theirongolddev/orca/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int // rune index of the shortcut letter in the name
}

// Tab indices, in display order.
const (
	TabSummary = iota
	TabItems
	TabABC
	TabSchedule
	TabMeasurements
)

// Tabs defines all available tabs.
var Tabs = []Tab{
	{Name: "Resumo", Key: 'o', KeyPos: 5},
	{Name: "Itens", Key: 'i', KeyPos: 0},
	{Name: "Curva ABC", Key: 'a', KeyPos: 6},
	{Name: "Cronograma", Key: 'c', KeyPos: 0},
	{Name: "Medições", Key: 'm', KeyPos: 0},
}

// tabPadding is the horizontal padding on each side of a tab label.
const tabPadding = 1

// TabVisualWidth returns the rendered width of a tab, including padding.
// Inactive tabs bracket their shortcut key, adding two columns.
func TabVisualWidth(tab Tab, active bool) int {
	w := lipgloss.Width(tab.Name) + 2*tabPadding
	if !active {
		w += 2
	}
	return w
}

// RenderTabBar renders the tab bar with the given active index.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.SurfaceHover).
		Bold(true).
		Padding(0, tabPadding)

	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Bold(true)

	dimKeyStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface)

	padStyle := lipgloss.NewStyle().Background(t.Surface)
	pad := padStyle.Render(strings.Repeat(" ", tabPadding))

	var parts []string
	for i, tab := range Tabs {
		if i == activeIdx {
			parts = append(parts, activeStyle.Render(tab.Name))
			continue
		}
		runes := []rune(tab.Name)
		before := string(runes[:tab.KeyPos])
		key := string(runes[tab.KeyPos])
		after := string(runes[tab.KeyPos+1:])
		parts = append(parts, pad+
			inactiveStyle.Render(before)+
			dimKeyStyle.Render("[")+keyStyle.Render(key)+dimKeyStyle.Render("]")+
			inactiveStyle.Render(after)+pad)
	}

	row := strings.Join(parts, padStyle.Render(" "))
	return lipgloss.NewStyle().Background(t.Surface).Width(width).Render(row)
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
