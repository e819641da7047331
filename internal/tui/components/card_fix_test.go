package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/theirongolddev/orca/internal/tui/theme"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestCardRowBackgroundFill(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("Short", "Content", 22)
	tallCard := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22)

	shortLines := len(strings.Split(shortCard, "\n"))
	tallLines := len(strings.Split(tallCard, "\n"))
	if shortLines >= tallLines {
		t.Fatal("Test setup error: short card should be shorter than tall card")
	}

	joined := CardRow([]string{tallCard, shortCard})
	lines := strings.Split(joined, "\n")
	if len(lines) != tallLines {
		t.Errorf("Joined height should match tallest card: got %d, want %d", len(lines), tallLines)
	}

	// Padding below the short card must carry background styling.
	for i := shortLines; i < len(lines); i++ {
		if !strings.Contains(lines[i], "\x1b[") {
			t.Errorf("Line %d has no ANSI codes: %q", i, lines[i])
		}
	}
}

func TestCardRowWidthConsistency(t *testing.T) {
	theme.SetActive("flexoki-dark")

	joined := CardRow([]string{
		ContentCard("Tall", "A\nB\nC\nD\nE\nF", 20),
		ContentCard("Short", "A", 30),
	})
	lines := strings.Split(joined, "\n")

	want := lipgloss.Width(lines[0])
	for i, line := range lines {
		if w := lipgloss.Width(line); w != want {
			t.Errorf("Line %d width = %d, want %d", i, w, want)
		}
	}
}

func TestLayoutRow(t *testing.T) {
	got := LayoutRow(10, 3)
	if got[0] != 4 || got[1] != 3 || got[2] != 3 {
		t.Fatalf("LayoutRow(10, 3) = %v, want [4 3 3]", got)
	}
	if LayoutRow(10, 0) != nil {
		t.Fatal("LayoutRow with n=0 should be nil")
	}
}

func TestFormatChartLabel(t *testing.T) {
	tests := map[float64]string{
		1500:    "1,5mil",
		2000:    "2mil",
		3500000: "3,5mi",
		12:      "12",
		0.5:     "0,50",
	}
	for in, want := range tests {
		if got := formatChartLabel(in); got != want {
			t.Errorf("formatChartLabel(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestRenderTabBar(t *testing.T) {
	theme.SetActive("flexoki-dark")
	for active := range Tabs {
		if w := lipgloss.Width(RenderTabBar(active, 120)); w != 120 {
			t.Errorf("active=%d: tab bar width %d, want 120", active, w)
		}
	}
}

func TestTabIdxByKey(t *testing.T) {
	for i, tab := range Tabs {
		if got := TabIdxByKey(tab.Key); got != i {
			t.Errorf("TabIdxByKey(%q) = %d, want %d", tab.Key, got, i)
		}
		if []rune(tab.Name)[tab.KeyPos] != tab.Key && []rune(strings.ToLower(tab.Name))[tab.KeyPos] != tab.Key {
			t.Errorf("tab %q: key %q is not at position %d", tab.Name, tab.Key, tab.KeyPos)
		}
	}
	if TabIdxByKey('z') != -1 {
		t.Error("unknown key should map to -1")
	}
}

func TestFlowChart(t *testing.T) {
	theme.SetActive("flexoki-dark")
	points := []FlowPoint{
		{Label: "Mês 1", Value: 5000, CumulativePct: 50},
		{Label: "Mês 2", Value: 5000, CumulativePct: 100},
	}
	out := FlowChart(points, 60, 8)
	if !strings.Contains(out, "Mês") {
		t.Error("period labels missing from chart")
	}
	if strings.Count(out, "●") != 2 {
		t.Errorf("want one cumulative marker per period, got %d", strings.Count(out, "●"))
	}
	if got := FlowChart(points, 10, 8); strings.Contains(got, "│") {
		t.Error("narrow chart should fall back to a sparkline")
	}
	if FlowChart(nil, 60, 8) != "" {
		t.Error("empty chart should render nothing")
	}
}
