package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/rupee/internal/tui/theme"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name string
	Key  rune
}

// Tabs defines all available tabs. Keys are the digits shown before each name.
var Tabs = []Tab{
	{Name: "Overview", Key: '1'},
	{Name: "Expenses", Key: '2'},
	{Name: "Bills", Key: '3'},
	{Name: "Waste", Key: '4'},
	{Name: "Alerts", Key: '5'},
}

const tabGap = 2

// TabVisualWidth returns the rendered cell width of a tab label.
func TabVisualWidth(tab Tab, active bool) int {
	w := lipgloss.Width(tab.Name) + 2 // padding
	if !active {
		w += 3 // "[n]"
	}
	return w
}

// RenderTabBar renders the tab bar with the given active index. badge, when
// positive, is shown next to the Alerts tab.
func RenderTabBar(activeIdx, badge, width int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.TextPrimary).
		Background(t.SurfaceHover).
		Bold(true).
		Padding(0, 1)
	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Background).
		Padding(0, 1)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Background).Bold(true)
	badgeStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Background).Bold(true)
	gapStyle := lipgloss.NewStyle().Background(t.Background)

	var parts []string
	for i, tab := range Tabs {
		if i == activeIdx {
			parts = append(parts, activeStyle.Render(tab.Name))
		} else {
			parts = append(parts, keyStyle.Render("["+string(tab.Key)+"]")+inactiveStyle.Render(tab.Name))
		}
	}
	bar := " " + strings.Join(parts, gapStyle.Render(strings.Repeat(" ", tabGap)))
	if badge > 0 {
		bar += gapStyle.Render(" ") + badgeStyle.Render("●")
	}

	if pad := width - lipgloss.Width(bar); pad > 0 {
		bar += gapStyle.Render(strings.Repeat(" ", pad))
	}
	return bar
}

// TabAtX returns the tab index under column x of the tab bar, or -1.
func TabAtX(activeIdx, x int) int {
	pos := 1
	for i, tab := range Tabs {
		w := TabVisualWidth(tab, i == activeIdx)
		if x >= pos && x < pos+w {
			return i
		}
		pos += w + tabGap
	}
	return -1
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
