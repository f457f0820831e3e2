package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/rupee/internal/cli"
	"github.com/theirongolddev/rupee/internal/ledger"
	"github.com/theirongolddev/rupee/internal/model"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Overview of every ledger and its limits",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	return withRuntime(func(rt *runtime) error {
		// Catch period rollovers and bills coming due since the last run.
		alerts, err := rt.svc.EvaluateAll()
		if err != nil {
			return err
		}
		overview, err := rt.svc.Overview()
		if err != nil {
			return err
		}
		unread, err := rt.svc.UnreadCount()
		if err != nil {
			return err
		}

		now := rt.svc.Now()
		fmt.Println()
		fmt.Println(cli.RenderTitle("RUPEE  " + cli.FormatDate(now)))
		fmt.Println()

		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Metric", "Value"},
			Rows:    summaryRows(overview),
		}))

		if rows := limitRows(overview, true); len(rows) > 0 {
			fmt.Println()
			fmt.Print(cli.RenderTable(cli.Table{
				Title:   "Limits",
				Headers: []string{"Limit", "Spent", "Of", "Used", ""},
				Rows:    rows,
			}))
		}

		if len(alerts) > 0 {
			fmt.Println()
			printAlerts(alerts)
		}
		if unread > 0 {
			fmt.Println()
			fmt.Println(cli.Warn(fmt.Sprintf("  %d unread notifications. Run `rupee alerts` to review.", unread)))
		}
		return nil
	})
}

func summaryRows(overview []ledger.DomainStatus) [][]string {
	var rows [][]string
	for _, st := range overview {
		switch st.Domain {
		case model.DomainExpense:
			rows = append(rows,
				[]string{"Balance", cli.FormatRupee(st.Summary.Balance)},
				[]string{"Income", cli.FormatRupee(st.Summary.TotalIncome)},
				[]string{"Expenses", cli.FormatRupee(st.Summary.TotalExpense)},
				[]string{"Spent today", cli.FormatRupee(st.Today.TotalExpense)},
				[]string{"Spent this month", cli.FormatRupee(st.Month.TotalExpense)},
			)
			if len(st.Month.ByCategory) > 0 {
				top := st.Month.ByCategory[0]
				rows = append(rows, []string{"Top category", fmt.Sprintf("%s (%s)", top.Category, cli.FormatPercent(top.SharePercent))})
			}
			rows = append(rows, []string{"---"})
		case model.DomainBill:
			if st.Bills == nil {
				continue
			}
			rows = append(rows,
				[]string{"Bills due", cli.FormatRupee(st.Bills.Due)},
				[]string{"Bills paid", cli.FormatRupee(st.Bills.Paid)},
				[]string{"Unpaid / overdue", fmt.Sprintf("%d / %d", st.Bills.Unpaid, st.Bills.Overdue)},
				[]string{"---"},
			)
		case model.DomainWaste:
			if st.Waste == nil {
				continue
			}
			rows = append(rows,
				[]string{"Waste logged", cli.FormatKg(st.Waste.TotalKg)},
				[]string{"Recyclable", fmt.Sprintf("%s (%s)", cli.FormatKg(st.Waste.RecyclableKg), cli.FormatPercent(st.Waste.RecyclingRate))},
			)
		}
	}
	return rows
}

// limitRows renders one row per limit. activeOnly drops inactive limits.
func limitRows(overview []ledger.DomainStatus, activeOnly bool) [][]string {
	var rows [][]string
	for _, st := range overview {
		unit := st.Domain.Unit()
		for _, ls := range st.Limits {
			if activeOnly && !ls.Limit.Active {
				continue
			}
			used := cli.FormatPercent(ls.RawPercentUsed)
			if ls.Exceeded {
				used = cli.Bad(used)
			}
			rows = append(rows, []string{
				ls.Limit.Label(),
				cli.FormatAmount(unit, ls.Spent),
				cli.FormatAmount(unit, ls.Limit.Amount),
				used,
				cli.RenderBudgetBar(ls.PercentUsed, 16),
			})
		}
	}
	return rows
}
