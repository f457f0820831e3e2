package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/rupee/internal/tui/theme"
)

// RenderStatusBar renders the bottom status bar: key hints on the left, the
// latest flash message in the middle, unread count and data age on the right.
func RenderStatusBar(width, unread int, message string, isErr bool, lastLoad time.Time) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	msgStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
	if isErr {
		msgStyle = msgStyle.Foreground(t.Red)
	}
	unreadStyle := base
	if unread > 0 {
		unreadStyle = lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).Bold(true)
	}

	left := base.Render(" [?]help  [a]dd  [q]uit")
	if message != "" {
		left += base.Render("  ") + msgStyle.Render(message)
	}

	right := unreadStyle.Render(fmt.Sprintf("🔔 %d", unread))
	if !lastLoad.IsZero() {
		right += base.Render(fmt.Sprintf("  updated %s ", lastLoad.Format("15:04:05")))
	} else {
		right += base.Render(" ")
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}
	return left + base.Render(strings.Repeat(" ", padding)) + right
}
