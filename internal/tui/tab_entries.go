package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/rupee/internal/cli"
	"github.com/theirongolddev/rupee/internal/ledger"
	"github.com/theirongolddev/rupee/internal/model"
	"github.com/theirongolddev/rupee/internal/tui/components"
	"github.com/theirongolddev/rupee/internal/tui/theme"
)

// renderEntriesTab renders one ledger domain: a summary line, its limits, and
// the selectable entry list.
func (a App) renderEntriesTab(d model.Domain, cw, h int) string {
	t := theme.Active
	st, _ := a.status(d)

	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	strong := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)

	var head []string
	switch d {
	case model.DomainExpense:
		head = append(head,
			muted.Render("Balance ")+lipgloss.NewStyle().Foreground(t.ForSign(st.Summary.Balance)).Background(t.Surface).Bold(true).Render(cli.FormatRupee(st.Summary.Balance))+
				muted.Render("   Income ")+strong.Render(cli.FormatRupee(st.Summary.TotalIncome))+
				muted.Render("   Expenses ")+strong.Render(cli.FormatRupee(st.Summary.TotalExpense)))
	case model.DomainBill:
		if st.Bills != nil {
			head = append(head,
				muted.Render("Due ")+strong.Render(cli.FormatRupee(st.Bills.Due))+
					muted.Render("   Paid ")+strong.Render(cli.FormatRupee(st.Bills.Paid))+
					muted.Render(fmt.Sprintf("   %d overdue · %d due soon", st.Bills.Overdue, st.Bills.DueSoon)))
		}
	case model.DomainWaste:
		if st.Waste != nil {
			head = append(head,
				muted.Render("Total ")+strong.Render(cli.FormatKg(st.Waste.TotalKg))+
					muted.Render("   Recyclable ")+strong.Render(cli.FormatKg(st.Waste.RecyclableKg))+
					muted.Render("   Disposed ")+strong.Render(cli.FormatKg(st.Waste.DisposedKg))+
					muted.Render("   Rate ")+strong.Render(cli.FormatPercent(st.Waste.RecyclingRate)))
		}
	}
	inner := components.CardInnerWidth(cw)
	if bars := domainLimitBars(st, inner); bars != "" {
		head = append(head, bars)
	}
	summary := components.ContentCard(titleFor(d), strings.Join(head, "\n"), cw)

	listH := h - lipgloss.Height(summary) - 4 // card border, title, column header
	list := a.renderEntryList(d, inner, listH)
	return summary + "\n" + components.ContentCard("", list, cw)
}

func titleFor(d model.Domain) string {
	switch d {
	case model.DomainBill:
		return "Bills"
	case model.DomainWaste:
		return "Waste"
	default:
		return "Expenses"
	}
}

func domainLimitBars(st ledger.DomainStatus, innerW int) string {
	unit := st.Domain.Unit()
	labelW := 22
	barW := innerW - labelW - 30
	if barW < 8 {
		barW = 8
	}
	var lines []string
	for _, ls := range st.Limits {
		if !ls.Limit.Active {
			continue
		}
		detail := cli.FormatAmount(unit, ls.Spent) + " / " + cli.FormatAmount(unit, ls.Limit.Amount)
		lines = append(lines, components.BudgetBar(ls.Limit.Label(), ls.RawPercentUsed, detail, labelW, barW))
	}
	return strings.Join(lines, "\n")
}

func (a App) renderEntryList(d model.Domain, w, h int) string {
	t := theme.Active
	entries := a.entries[d]

	headStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)

	if len(entries) == 0 {
		return dimStyle.Render("No entries yet. Press a to add one.")
	}

	descW := w - 8 - 12 - 16 - 14 - 10 - 5
	if descW < 8 {
		descW = 8
	}
	header := fmt.Sprintf("%-8s %-12s %-16s %14s %-10s %s", "ID", "DATE", "CATEGORY", "AMOUNT", strings.ToUpper(d.FlagLabel()), "DESCRIPTION")

	var b strings.Builder
	b.WriteString(headStyle.Render(padRight(header, w)))

	cursor := a.lists[a.activeTab].cursor
	start, end := scrollWindow(cursor, len(entries), h)
	for i := start; i < end; i++ {
		e := entries[i]
		amount := cli.FormatAmount(d.Unit(), e.Amount)
		if e.IsIncome() {
			amount = "+" + amount
		}
		flag := "·"
		if e.Flag {
			flag = "✓"
		}
		desc := e.Description
		if e.Bill != nil && e.Bill.Provider != "" {
			desc = e.Bill.Provider + " " + desc
		}
		line := fmt.Sprintf("%-8s %-12s %-16s %14s %-10s %s",
			cli.ShortID(e.ID),
			cli.FormatDate(e.Date),
			truncStr(e.Category, 16),
			amount,
			flag,
			truncStr(desc, descW),
		)

		b.WriteString("\n")
		switch {
		case i == cursor:
			b.WriteString(selStyle.Render(padRight(line, w)))
		case e.Flag:
			b.WriteString(dimStyle.Render(padRight(line, w)))
		default:
			b.WriteString(rowStyle.Render(padRight(line, w)))
		}
	}
	if end < len(entries) {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("… %d more", len(entries)-end)))
	}
	return b.String()
}

func padRight(s string, w int) string {
	if pad := w - lipgloss.Width(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}
