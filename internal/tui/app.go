// Package tui provides the interactive Bubble Tea dashboard for one budget.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/orca/internal/model"
	"github.com/theirongolddev/orca/internal/pipeline"
	"github.com/theirongolddev/orca/internal/store"
	"github.com/theirongolddev/orca/internal/tui/components"
	"github.com/theirongolddev/orca/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DataLoadedMsg is sent when the budget and catalog finish loading.
type DataLoadedMsg struct {
	Budget       model.Budget
	Inputs       pipeline.InputMap
	Compositions pipeline.CompositionMap
	LoadTime     time.Duration
	Err          error
}

// LoadFunc loads the dashboard data.
type LoadFunc func(ctx context.Context) DataLoadedMsg

// App is the root Bubble Tea model.
type App struct {
	// Data
	budget   model.Budget
	inputs   pipeline.InputMap
	comps    pipeline.CompositionMap
	loaded   bool
	loadErr  error
	loadTime time.Duration
	load     LoadFunc

	// Derived views, rebuilt by recompute
	abc         []model.AbcEntry
	abcWarnings []pipeline.ReferenceWarning
	stages      []pipeline.StageValidation
	periods     []pipeline.PeriodTotal
	progress    pipeline.Progress

	// UI state
	width      int
	height     int
	activeTab  int
	showHelp   bool
	abcByInput bool
	measureIdx int
	refreshing bool
	itemsTable table.Model
	abcTable   table.Model
	spinner    spinner.Model
}

const (
	minTerminalWidth = 80
	maxContentWidth  = 180
	minContentHeight = 5
)

// NewApp creates a dashboard that loads budgetID from the database at dbPath.
func NewApp(dbPath, budgetID string) App {
	return NewAppWithLoader(StoreLoader(dbPath, budgetID))
}

// NewAppWithLoader creates a dashboard backed by an arbitrary loader.
func NewAppWithLoader(load LoadFunc) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		load:       load,
		spinner:    sp,
		itemsTable: newTable(),
		abcTable:   newTable(),
	}
}

// StoreLoader reads one budget and the catalog snapshot from the store.
func StoreLoader(dbPath, budgetID string) LoadFunc {
	return func(ctx context.Context) DataLoadedMsg {
		start := time.Now()
		repo, err := store.Open(ctx, dbPath)
		if err != nil {
			return DataLoadedMsg{Err: err}
		}
		defer func() { _ = repo.Close() }()

		b, err := repo.FindBudget(ctx, budgetID)
		if err != nil {
			return DataLoadedMsg{Err: err}
		}
		inputs, comps, err := repo.Catalog(ctx)
		if err != nil {
			return DataLoadedMsg{Err: err}
		}
		return DataLoadedMsg{Budget: b, Inputs: inputs, Compositions: comps, LoadTime: time.Since(start)}
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.load),
		a.spinner.Tick,
	)
}

func loadDataCmd(load LoadFunc) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return load(ctx)
	}
}

// recompute rebuilds every derived view from the loaded budget.
func (a *App) recompute() {
	b := a.budget

	if a.abcByInput {
		a.abc, a.abcWarnings = pipeline.ClassifyInputs(b.Items, a.comps, a.inputs)
	} else {
		a.abc, a.abcWarnings = pipeline.ClassifyBudgetItems(b.Items), nil
	}
	a.stages = pipeline.ValidateSchedule(b.Items, b.ScheduleAllocations)
	a.periods = pipeline.PeriodTotals(pipeline.SortPeriods(b.SchedulePeriods), b.Items, b.ScheduleAllocations)
	a.progress = pipeline.AggregateProgress(b)

	if a.measureIdx >= len(b.Measurements) {
		a.measureIdx = len(b.Measurements) - 1
	}
	if a.measureIdx < 0 {
		a.measureIdx = 0
	}

	a.itemsTable.SetColumns(itemColumns(a.contentWidth()))
	a.itemsTable.SetRows(itemRows(b.Items))
	a.abcTable.SetColumns(abcColumns(a.contentWidth()))
	a.abcTable.SetRows(abcRows(a.abc))
	a.resizeTables()
}

func (a *App) resizeTables() {
	h := max(a.height-8, minContentHeight)
	a.itemsTable.SetHeight(h)
	a.abcTable.SetHeight(h)
	a.itemsTable.SetWidth(a.contentWidth())
	a.abcTable.SetWidth(a.contentWidth())
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.loaded {
			a.recompute()
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp {
			return a, nil
		}
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case DataLoadedMsg:
		a.refreshing = false
		if msg.Err != nil {
			a.loadErr = msg.Err
			a.loaded = true
			return a, nil
		}
		a.loadErr = nil
		a.budget = msg.Budget
		a.inputs = msg.Inputs
		a.comps = msg.Compositions
		a.loadTime = msg.LoadTime
		a.loaded = true
		a.recompute()
		return a, nil

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if !a.refreshing {
			a.refreshing = true
			return a, loadDataCmd(a.load)
		}
		return a, nil
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	if runes := []rune(key); len(runes) == 1 {
		if idx := components.TabIdxByKey(runes[0]); idx >= 0 {
			a.activeTab = idx
			return a, nil
		}
	}

	var cmd tea.Cmd
	switch a.activeTab {
	case components.TabItems:
		a.itemsTable.Focus()
		a.itemsTable, cmd = a.itemsTable.Update(msg)
	case components.TabABC:
		if key == "x" {
			a.abcByInput = !a.abcByInput
			a.recompute()
			return a, nil
		}
		a.abcTable.Focus()
		a.abcTable, cmd = a.abcTable.Update(msg)
	case components.TabMeasurements:
		switch key {
		case "j", "down", "]":
			if a.measureIdx < len(a.budget.Measurements)-1 {
				a.measureIdx++
			}
		case "k", "up", "[":
			if a.measureIdx > 0 {
				a.measureIdx--
			}
		}
	}
	return a, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.loadErr != nil {
		return a.viewError()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  orca needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ orca"))
	b.WriteString(subtitleStyle.Render(" · Orçamento de Obras"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	b.WriteString(subtitleStyle.Render(" Carregando orçamento..."))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewError() string {
	t := theme.Active
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Red).
		Padding(1, 3)
	body := lipgloss.NewStyle().Foreground(t.Red).Render("Could not load budget") + "\n\n" +
		lipgloss.NewStyle().Foreground(t.TextMuted).Render(a.loadErr.Error()) + "\n\n" +
		lipgloss.NewStyle().Foreground(t.TextDim).Render("[r] retry  [q] quit")
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(body),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Atalhos"))
	b.WriteString("\n\n")
	bindings := []struct{ key, desc string }{
		{"o i a c m", "Jump to tab"},
		{"← → tab", "Previous / Next tab"},
		{"j k", "Move in tables and measurements"},
		{"x", "ABC: toggle items / inputs"},
		{"r", "Reload from database"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}
	for _, bind := range bindings {
		fmt.Fprintf(&b, "  %s  %s\n",
			keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
			descStyle.Render(bind.desc))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)

	right := a.budget.Name
	if right == "" {
		right = a.budget.ID
	}
	right += fmt.Sprintf(" · %.2fs", a.loadTime.Seconds())
	notice := ""
	if a.refreshing {
		notice = "reloading..."
	}
	statusBar := components.RenderStatusBar(w, right, notice)

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case components.TabSummary:
		content = a.renderSummaryTab(cw)
	case components.TabItems:
		content = a.renderItemsTab(cw)
	case components.TabABC:
		content = a.renderABCTab(cw)
	case components.TabSchedule:
		content = a.renderScheduleTab(cw)
	case components.TabMeasurements:
		content = a.renderMeasurementsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Helpers ────────────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1 // separator
	}
	return -1
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		placed := lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
		result.WriteString(placed)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}
