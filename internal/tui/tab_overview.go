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

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	var b strings.Builder

	exp, _ := a.status(model.DomainExpense)
	bills, _ := a.status(model.DomainBill)
	waste, _ := a.status(model.DomainWaste)

	// Row 1: metric cards
	over := 0
	for _, st := range a.overview {
		for _, ls := range st.Limits {
			if ls.Limit.Active && ls.Exceeded {
				over++
			}
		}
	}

	balance := components.Metric{
		Label: "Balance",
		Value: cli.FormatRupee(exp.Summary.Balance),
		Delta: "in " + cli.FormatRupeeShort(exp.Summary.TotalIncome) + " · out " + cli.FormatRupeeShort(exp.Summary.TotalExpense),
		Color: t.ForSign(exp.Summary.Balance),
	}
	today := components.Metric{
		Label: "Spent today",
		Value: cli.FormatRupee(exp.Today.TotalExpense),
		Delta: "month " + cli.FormatRupeeShort(exp.Month.TotalExpense),
	}
	billCard := components.Metric{Label: "Bills due", Value: cli.FormatRupee(0)}
	if bills.Bills != nil {
		billCard.Value = cli.FormatRupee(bills.Bills.Due)
		billCard.Delta = fmt.Sprintf("%d unpaid · %d overdue", bills.Bills.Unpaid, bills.Bills.Overdue)
		if bills.Bills.Overdue > 0 {
			billCard.Color = t.Red
		}
	}
	wasteCard := components.Metric{Label: "Waste", Value: cli.FormatKg(0)}
	if waste.Waste != nil {
		wasteCard.Value = cli.FormatKg(waste.Waste.TotalKg)
		wasteCard.Delta = cli.FormatPercent(waste.Waste.RecyclingRate) + " recyclable"
	}
	alertCard := components.Metric{
		Label: "Limits exceeded",
		Value: fmt.Sprintf("%d", over),
		Delta: fmt.Sprintf("%d unread alerts", a.unread),
	}
	if over > 0 {
		alertCard.Color = t.Red
	}

	cards := []components.Metric{balance, today, billCard, wasteCard, alertCard}
	if a.isCompactLayout() {
		b.WriteString(components.MetricCardRow(cards[:3], cw))
		b.WriteString("\n")
		b.WriteString(components.MetricCardRow(cards[3:], cw))
	} else {
		b.WriteString(components.MetricCardRow(cards, cw))
	}
	b.WriteString("\n")

	// Row 2: limits and daily spending side by side
	halves := components.LayoutRow(cw, 2)
	limitsW, chartW := halves[0], halves[1]
	if a.isCompactLayout() {
		limitsW, chartW = cw, cw
	}

	limitsCard := components.ContentCard("Limits", renderLimitBars(a.overview, components.CardInnerWidth(limitsW)), limitsW)

	vals, labels := dailyExpenseSeries(a.entries[model.DomainExpense], exp.Now, chartDays)
	chartCard := components.ContentCard(
		fmt.Sprintf("Daily spending (%dd)", chartDays),
		components.BarChart(vals, labels, dailyLimit(exp), components.CardInnerWidth(chartW), 8),
		chartW,
	)

	if a.isCompactLayout() {
		b.WriteString(limitsCard)
		b.WriteString("\n")
		b.WriteString(chartCard)
	} else {
		b.WriteString(components.CardRow([]string{limitsCard, chartCard}))
	}
	b.WriteString("\n")

	// Row 3: top categories this month
	b.WriteString(components.ContentCard("Top categories this month", renderCategoryBars(exp.Month, components.CardInnerWidth(cw)), cw))

	return b.String()
}

// dailyLimit is the amount of the active whole-domain daily limit, or 0.
func dailyLimit(st ledger.DomainStatus) float64 {
	for _, ls := range st.Limits {
		l := ls.Limit
		if l.Active && l.Category == "" && l.Period == model.PeriodDaily {
			return l.Amount
		}
	}
	return 0
}

func renderLimitBars(overview []ledger.DomainStatus, innerW int) string {
	t := theme.Active
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	labelW := 22
	barW := innerW - labelW - 30
	if barW < 8 {
		barW = 8
	}

	var lines []string
	for _, st := range overview {
		unit := st.Domain.Unit()
		for _, ls := range st.Limits {
			if !ls.Limit.Active {
				continue
			}
			detail := cli.FormatAmount(unit, ls.Spent) + " / " + cli.FormatAmount(unit, ls.Limit.Amount)
			lines = append(lines, components.BudgetBar(ls.Limit.Label(), ls.RawPercentUsed, detail, labelW, barW))
		}
	}
	if len(lines) == 0 {
		return dim.Render("No active limits. Add one with `rupee limits add`.")
	}
	return strings.Join(lines, "\n")
}

func renderCategoryBars(month model.Summary, innerW int) string {
	t := theme.Active
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	bar := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	cats := month.ByCategory
	if len(cats) == 0 {
		return dim.Render("No spending this month.")
	}
	if len(cats) > 5 {
		cats = cats[:5]
	}

	nameW := 16
	valueW := 14
	barMax := innerW - nameW - valueW - 8
	if barMax < 5 {
		barMax = 5
	}

	var lines []string
	for _, c := range cats {
		n := int(c.SharePercent / 100 * float64(barMax))
		line := label.Render(fmt.Sprintf("%-*s", nameW, truncStr(c.Category, nameW))) +
			value.Render(fmt.Sprintf("%*s ", valueW, cli.FormatRupee(c.Total))) +
			bar.Render(strings.Repeat("█", n)) +
			dim.Render(" "+cli.FormatPercent(c.SharePercent))
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
