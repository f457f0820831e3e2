package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/rupee/internal/cli"
	"github.com/theirongolddev/rupee/internal/model"
	"github.com/theirongolddev/rupee/internal/pipeline"
)

var flagDays int

var dailyCmd = &cobra.Command{
	Use:   "daily [domain]",
	Short: "Per-day totals",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDaily,
}

func init() {
	dailyCmd.Flags().IntVarP(&flagDays, "days", "n", 0, "Days to show (default from config)")
	rootCmd.AddCommand(dailyCmd)
}

func runDaily(_ *cobra.Command, args []string) error {
	domain := model.DomainExpense
	if len(args) == 1 {
		d, err := parseDomainArg(args[0])
		if err != nil {
			return err
		}
		domain = d
	}

	return withRuntime(func(rt *runtime) error {
		days := flagDays
		if days <= 0 {
			days = rt.cfg.General.DefaultDays
		}
		if days <= 0 {
			days = 7
		}

		entries, err := rt.svc.Entries(domain)
		if err != nil {
			return err
		}
		now := rt.svc.Now()
		stats := pipeline.AggregateDays(entries, now.AddDate(0, 0, -(days-1)), now)

		fmt.Println()
		fmt.Println(cli.RenderTitle(fmt.Sprintf("DAILY %s  Last %dd", strings.ToUpper(string(domain)), days)))
		fmt.Println()

		unit := domain.Unit()
		headers := []string{"Date", "Day", "Entries", "Spent"}
		if domain == model.DomainExpense {
			headers = []string{"Date", "Day", "Entries", "Income", "Spent"}
		}

		spark := make([]float64, len(stats))
		rows := make([][]string, 0, len(stats))
		for i, d := range stats {
			spark[len(stats)-1-i] = d.Expense
			row := []string{
				d.Date.Format("2006-01-02"),
				cli.FormatDayOfWeek(int(d.Date.Weekday())),
				cli.FormatNumber(int64(d.Entries)),
			}
			if domain == model.DomainExpense {
				row = append(row, cli.FormatRupee(d.Income))
			}
			row = append(row, cli.FormatAmount(unit, d.Expense))
			rows = append(rows, row)
		}

		fmt.Print(cli.RenderTable(cli.Table{Headers: headers, Rows: rows}))
		info("\n  Trend  %s", cli.RenderSparkline(spark))
		return nil
	})
}
