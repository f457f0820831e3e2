// Package tui provides the interactive Bubble Tea dashboard for rupee.
package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/rupee/internal/config"
	"github.com/theirongolddev/rupee/internal/ledger"
	"github.com/theirongolddev/rupee/internal/model"
	"github.com/theirongolddev/rupee/internal/pipeline"
	"github.com/theirongolddev/rupee/internal/tui/components"
	"github.com/theirongolddev/rupee/internal/tui/theme"
)

// Tab indexes, matching components.Tabs.
const (
	tabOverview = iota
	tabExpenses
	tabBills
	tabWaste
	tabAlerts
)

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180
	minContentHeight = 5

	chartDays       = 14
	refreshInterval = 30 * time.Second
	flashDuration   = 4 * time.Second
)

// DataLoadedMsg carries a full reload of the ledger views.
type DataLoadedMsg struct {
	Overview      []ledger.DomainStatus
	Entries       map[model.Domain][]model.Entry
	Notifications []model.Notification
	Unread        int
	Err           error
}

// mutationMsg reports the outcome of an add/toggle/delete/read action.
type mutationMsg struct {
	message string
	alerts  []model.Notification
	err     error
}

type tickMsg struct{}

// listState is the selection of one scrollable list.
type listState struct {
	cursor int
}

// App is the root Bubble Tea model.
type App struct {
	svc *ledger.Service
	cfg config.Config

	// Data
	overview      []ledger.DomainStatus
	entries       map[model.Domain][]model.Entry
	notifications []model.Notification
	unread        int
	loaded        bool
	lastLoad      time.Time
	loading       bool

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	lists     [5]listState

	flash      string
	flashErr   bool
	flashUntil time.Time

	// Add-entry form
	addForm *huh.Form
	addVals *entryValues

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *setupValues
	needSetup bool

	spinner spinner.Model
}

// NewApp creates a new TUI app model over svc.
func NewApp(svc *ledger.Service, cfg config.Config) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		svc:       svc,
		cfg:       cfg,
		needSetup: !config.Exists(),
		spinner:   sp,
		loading:   true,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.svc),
		a.spinner.Tick,
		tickCmd(),
	)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		if a.addForm != nil {
			a.addForm = a.addForm.WithWidth(formWidth(msg.Width))
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.setupForm != nil || a.addForm != nil {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			a.moveCursor(-1)
		case tea.MouseButtonWheelDown:
			a.moveCursor(1)
		case tea.MouseButtonLeft:
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.loaded {
			return a, nil
		}
		if a.setupForm != nil {
			return a.updateSetupForm(msg)
		}
		if a.addForm != nil {
			return a.updateAddForm(msg)
		}
		return a.handleKey(msg.String())

	case DataLoadedMsg:
		a.loading = false
		if msg.Err != nil {
			a.setFlash(msg.Err.Error(), true)
			a.loaded = true
			return a, nil
		}
		a.overview = msg.Overview
		a.entries = msg.Entries
		a.notifications = msg.Notifications
		a.unread = msg.Unread
		a.lastLoad = time.Now()
		a.clampCursors()

		if !a.loaded && a.needSetup {
			a.loaded = true
			a.setupVals = newSetupValues(a.cfg)
			a.setupForm = newSetupForm(a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		a.loaded = true
		return a, nil

	case mutationMsg:
		switch {
		case msg.err != nil:
			a.setFlash(msg.err.Error(), true)
		case len(msg.alerts) > 0:
			a.setFlash(msg.alerts[0].Message, true)
		default:
			a.setFlash(msg.message, false)
		}
		a.loading = true
		return a, loadDataCmd(a.svc)

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.flash != "" && time.Now().After(a.flashUntil) {
			a.flash = ""
		}
		if a.loaded && !a.loading && time.Since(a.lastLoad) >= refreshInterval {
			a.loading = true
			cmds = append(cmds, evaluateCmd(a.svc))
		}
		return a, tea.Batch(cmds...)
	}

	// Forward unhandled messages (cursor blinks, etc.) to an open form.
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.addForm != nil {
		return a.updateAddForm(msg)
	}
	return a, nil
}

func (a App) handleKey(key string) (tea.Model, tea.Cmd) {
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
	case "ctrl+r":
		a.loading = true
		return a, evaluateCmd(a.svc)
	case "left", "h":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "l", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	case "j", "down":
		a.moveCursor(1)
		return a, nil
	case "k", "up":
		a.moveCursor(-1)
		return a, nil
	case "g":
		a.lists[a.activeTab] = listState{}
		return a, nil
	case "G":
		a.lists[a.activeTab].cursor = a.listLen() - 1
		a.clampCursors()
		return a, nil
	}

	if len(key) == 1 {
		if idx := components.TabIdxByKey(rune(key[0])); idx >= 0 {
			a.activeTab = idx
			return a, nil
		}
	}

	if domain, ok := a.activeDomain(); ok {
		switch key {
		case "a":
			a.addVals = newEntryValues(domain)
			a.addForm = newEntryForm(a.addVals).WithWidth(formWidth(a.width))
			return a, a.addForm.Init()
		case "t", " ":
			if e, ok := a.selectedEntry(); ok {
				return a, toggleEntryCmd(a.svc, domain, e)
			}
		case "x", "d":
			if e, ok := a.selectedEntry(); ok {
				return a, removeEntryCmd(a.svc, domain, e)
			}
		}
		return a, nil
	}

	if a.activeTab == tabAlerts {
		switch key {
		case "r", "enter":
			if n, ok := a.selectedNotification(); ok {
				return a, markReadCmd(a.svc, n.ID)
			}
		case "R":
			return a, markAllReadCmd(a.svc)
		case "x", "d":
			if n, ok := a.selectedNotification(); ok {
				return a, removeNotificationCmd(a.svc, n.ID)
			}
		}
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		cfg, err := a.setupVals.apply(a.cfg)
		if err == nil {
			err = config.Save(cfg)
		}
		a.needSetup = false
		a.setupForm = nil
		if err != nil {
			a.setFlash("could not save config: "+err.Error(), true)
			return a, nil
		}
		a.cfg = cfg
		theme.SetActive(cfg.Appearance.Theme)
		return a, applySeedCmd(a.svc, ledger.SeedFromConfig(cfg))
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) updateAddForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		a.addForm = nil
		return a, nil
	}

	form, cmd := a.addForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.addForm = f
	}

	switch a.addForm.State {
	case huh.StateCompleted:
		vals := a.addVals
		a.addForm = nil
		a.addVals = nil
		return a, addEntryCmd(a.svc, vals.draft())
	case huh.StateAborted:
		a.addForm = nil
		a.addVals = nil
		return a, nil
	}
	return a, cmd
}

func (a *App) setFlash(msg string, isErr bool) {
	a.flash = msg
	a.flashErr = isErr
	a.flashUntil = time.Now().Add(flashDuration)
}

// activeDomain returns the ledger domain shown by the active tab, if any.
func (a App) activeDomain() (model.Domain, bool) {
	switch a.activeTab {
	case tabExpenses:
		return model.DomainExpense, true
	case tabBills:
		return model.DomainBill, true
	case tabWaste:
		return model.DomainWaste, true
	}
	return "", false
}

func (a App) listLen() int {
	if d, ok := a.activeDomain(); ok {
		return len(a.entries[d])
	}
	if a.activeTab == tabAlerts {
		return len(a.notifications)
	}
	return 0
}

func (a *App) moveCursor(delta int) {
	ls := &a.lists[a.activeTab]
	ls.cursor += delta
	a.clampCursors()
}

func (a *App) clampCursors() {
	lens := [5]int{
		0,
		len(a.entries[model.DomainExpense]),
		len(a.entries[model.DomainBill]),
		len(a.entries[model.DomainWaste]),
		len(a.notifications),
	}
	for i := range a.lists {
		ls := &a.lists[i]
		if ls.cursor >= lens[i] {
			ls.cursor = lens[i] - 1
		}
		if ls.cursor < 0 {
			ls.cursor = 0
		}
	}
}

func (a App) selectedEntry() (model.Entry, bool) {
	d, ok := a.activeDomain()
	if !ok {
		return model.Entry{}, false
	}
	list := a.entries[d]
	c := a.lists[a.activeTab].cursor
	if c < 0 || c >= len(list) {
		return model.Entry{}, false
	}
	return list[c], true
}

func (a App) selectedNotification() (model.Notification, bool) {
	c := a.lists[tabAlerts].cursor
	if c < 0 || c >= len(a.notifications) {
		return model.Notification{}, false
	}
	return a.notifications[c], true
}

func (a App) status(d model.Domain) (ledger.DomainStatus, bool) {
	for _, st := range a.overview {
		if st.Domain == d {
			return st, true
		}
	}
	return ledger.DomainStatus{}, false
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
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
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  rupee needs at least %d columns.\n",
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
	b.WriteString(logoStyle.Render("₹ rupee"))
	b.WriteString(subtitleStyle.Render(" · budget ledger"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	b.WriteString(subtitleStyle.Render(" Loading ledger..."))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
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
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"1-5", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Move selection"},
			{"g G", "First / Last row"},
		}},
		{"Ledgers", []struct{ key, desc string }{
			{"a", "Add entry"},
			{"t", "Toggle paid / cleared / disposed"},
			{"x", "Delete entry"},
		}},
		{"Alerts", []struct{ key, desc string }{
			{"r", "Mark read"},
			{"R", "Mark all read"},
			{"x", "Delete notification"},
		}},
		{"General", []struct{ key, desc string }{
			{"^r", "Re-evaluate limits"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("₹ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, s := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(s.title))
		b.WriteString("\n")
		for _, bind := range s.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-6s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, a.unread, w)
	statusBar := components.RenderStatusBar(w, a.unread, a.flash, a.flashErr, a.lastLoad)

	contentH := h - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	if a.addForm != nil {
		content = components.ContentCard("New "+string(a.addVals.domain), a.addForm.View(), cw)
	} else {
		switch a.activeTab {
		case tabOverview:
			content = a.renderOverviewTab(cw)
		case tabExpenses, tabBills, tabWaste:
			d, _ := a.activeDomain()
			content = a.renderEntriesTab(d, cw, contentH)
		case tabAlerts:
			content = a.renderAlertsTab(cw, contentH)
		}
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Commands ───────────────────────────────────────────────────

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// loadDataCmd reads every view the dashboard renders in one pass.
func loadDataCmd(svc *ledger.Service) tea.Cmd {
	return func() tea.Msg {
		return loadData(svc)
	}
}

// evaluateCmd re-runs threshold evaluation, so period rollovers and entries
// added by other processes raise their alerts, then reloads.
func evaluateCmd(svc *ledger.Service) tea.Cmd {
	return func() tea.Msg {
		if _, err := svc.EvaluateAll(); err != nil {
			return DataLoadedMsg{Err: err}
		}
		return loadData(svc)
	}
}

func loadData(svc *ledger.Service) DataLoadedMsg {
	overview, err := svc.Overview()
	if err != nil {
		return DataLoadedMsg{Err: err}
	}
	entries := make(map[model.Domain][]model.Entry, len(model.Domains))
	for _, d := range model.Domains {
		list, err := svc.Entries(d)
		if err != nil {
			return DataLoadedMsg{Err: err}
		}
		entries[d] = list
	}
	notes, err := svc.Notifications()
	if err != nil {
		return DataLoadedMsg{Err: err}
	}
	unread := 0
	for _, n := range notes {
		if !n.IsRead {
			unread++
		}
	}
	return DataLoadedMsg{Overview: overview, Entries: entries, Notifications: notes, Unread: unread}
}

func addEntryCmd(svc *ledger.Service, d ledger.Draft) tea.Cmd {
	return func() tea.Msg {
		e, alerts, err := svc.Add(d)
		if err != nil {
			return mutationMsg{err: err}
		}
		return mutationMsg{message: "added " + e.Category, alerts: alerts}
	}
}

func toggleEntryCmd(svc *ledger.Service, d model.Domain, e model.Entry) tea.Cmd {
	return func() tea.Msg {
		updated, alerts, err := svc.ToggleFlag(d, e.ID)
		if err != nil {
			return mutationMsg{err: err}
		}
		state := d.FlagLabel()
		if !updated.Flag {
			state = "not " + state
		}
		return mutationMsg{message: updated.Category + " marked " + state, alerts: alerts}
	}
}

func removeEntryCmd(svc *ledger.Service, d model.Domain, e model.Entry) tea.Cmd {
	return func() tea.Msg {
		alerts, err := svc.Remove(d, e.ID)
		if err != nil {
			return mutationMsg{err: err}
		}
		return mutationMsg{message: "deleted " + e.Category, alerts: alerts}
	}
}

// applySeedCmd moves the default limits to the budget chosen during setup.
func applySeedCmd(svc *ledger.Service, seed ledger.SeedBudget) tea.Cmd {
	return func() tea.Msg {
		alerts, err := svc.ApplySeed(seed)
		if err != nil {
			return mutationMsg{err: err}
		}
		return mutationMsg{message: "saved " + config.Path(), alerts: alerts}
	}
}

func markReadCmd(svc *ledger.Service, id string) tea.Cmd {
	return func() tea.Msg {
		if err := svc.MarkRead(id); err != nil {
			return mutationMsg{err: err}
		}
		return mutationMsg{message: "marked read"}
	}
}

func markAllReadCmd(svc *ledger.Service) tea.Cmd {
	return func() tea.Msg {
		n, err := svc.MarkAllRead()
		if err != nil {
			return mutationMsg{err: err}
		}
		return mutationMsg{message: fmt.Sprintf("marked %d read", n)}
	}
}

func removeNotificationCmd(svc *ledger.Service, id string) tea.Cmd {
	return func() tea.Msg {
		if err := svc.RemoveNotification(id); err != nil && !errors.Is(err, model.ErrNotFound) {
			return mutationMsg{err: err}
		}
		return mutationMsg{message: "notification deleted"}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

// dailyExpenseSeries returns the last n days of expense totals, oldest first,
// with matching axis labels.
func dailyExpenseSeries(entries []model.Entry, now time.Time, n int) ([]float64, []string) {
	days := pipeline.AggregateDays(entries, now.AddDate(0, 0, -(n-1)), now)
	vals := make([]float64, len(days))
	for i, d := range days {
		vals[len(days)-1-i] = d.Expense
	}
	return vals, chartDateLabels(days)
}

// chartDateLabels builds compact X-axis labels for a chronological date series.
// First label and month boundaries show the month abbreviation, the rest the day.
// days is sorted newest-first; labels are returned oldest-left.
func chartDateLabels(days []model.DailyStats) []string {
	n := len(days)
	labels := make([]string, n)
	prevMonth := time.Month(0)
	for i := 0; i < n; i++ {
		dt := days[n-1-i].Date
		switch {
		case i == 0 || (dt.Month() != prevMonth && i != n-1):
			labels[i] = dt.Format("Jan")
		default:
			labels[i] = strconv.Itoa(dt.Day())
		}
		prevMonth = dt.Month()
	}
	return labels
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
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// scrollWindow returns the [start, end) rows to show so cursor stays visible.
func scrollWindow(cursor, total, visible int) (int, int) {
	if visible < 1 {
		visible = 1
	}
	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := start + visible
	if end > total {
		end = total
	}
	return start, end
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
func (a App) tabAtX(x int) int {
	return components.TabAtX(a.activeTab, x)
}
