package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/rupee/internal/cli"
	"github.com/theirongolddev/rupee/internal/tui/components"
	"github.com/theirongolddev/rupee/internal/tui/theme"
)

func (a App) renderAlertsTab(cw, h int) string {
	t := theme.Active
	inner := components.CardInnerWidth(cw)

	dimStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	timeStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	title := fmt.Sprintf("Notifications (%d unread)", a.unread)
	if len(a.notifications) == 0 {
		return components.ContentCard(title, dimStyle.Render("Nothing here. Alerts appear when a limit is first exceeded."), cw)
	}

	cursor := a.lists[tabAlerts].cursor
	start, end := scrollWindow(cursor, len(a.notifications), h-3)

	msgW := inner - 2 - 9 - 18
	if msgW < 10 {
		msgW = 10
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		n := a.notifications[i]
		bg := t.Surface
		if i == cursor {
			bg = t.SurfaceHover
		}
		dot := lipgloss.NewStyle().Foreground(t.ForKind(string(n.Kind))).Background(bg).Render("●")
		if n.IsRead {
			dot = lipgloss.NewStyle().Foreground(t.TextDim).Background(bg).Render("○")
		}
		msgStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(bg)
		if n.IsRead {
			msgStyle = msgStyle.Foreground(t.TextMuted)
		}
		if i == cursor {
			msgStyle = msgStyle.Bold(true)
		}
		idStyle := timeStyle.Background(bg)

		line := dot + msgStyle.Render(" ") +
			idStyle.Render(fmt.Sprintf("%-8s ", cli.ShortID(n.ID))) +
			msgStyle.Render(padRight(truncStr(n.Message, msgW), msgW)) +
			idStyle.Render(" "+n.CreatedAt.Local().Format("02 Jan 15:04"))
		if i > start {
			b.WriteString("\n")
		}
		b.WriteString(line)
	}
	if end < len(a.notifications) {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("… %d more", len(a.notifications)-end)))
	}
	return components.ContentCard(title, b.String(), cw)
}
