package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/rupee/internal/cli"
	"github.com/theirongolddev/rupee/internal/model"
	"github.com/theirongolddev/rupee/internal/pipeline"
)

var flagRemindDays int

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Notify about unpaid bills coming due",
	Long: "Lists unpaid bills due within the reminder horizon and adds one reminder\n" +
		"notification per bill and due date. Running it again does not repeat reminders.",
	Args: cobra.NoArgs,
	RunE: runRemind,
}

func init() {
	remindCmd.Flags().IntVar(&flagRemindDays, "within", 0, "Horizon in days (default from config)")
	rootCmd.AddCommand(remindCmd)
}

func runRemind(_ *cobra.Command, _ []string) error {
	return withRuntime(func(rt *runtime) error {
		within := rt.svc.RemindWithin()
		if flagRemindDays > 0 {
			within = time.Duration(flagRemindDays) * 24 * time.Hour
		}

		emitted, err := rt.svc.BillReminders(within)
		if err != nil {
			return err
		}
		bills, err := rt.svc.Entries(model.DomainBill)
		if err != nil {
			return err
		}
		now := rt.svc.Now()
		due := pipeline.BillsDueSoon(bills, now, within)

		if len(due) == 0 {
			info("\n  No unpaid bills due in the next %d days.", int(within.Hours()/24))
			return nil
		}

		rows := make([][]string, 0, len(due))
		for _, b := range due {
			provider := ""
			if b.Bill != nil {
				provider = b.Bill.Provider
			}
			when := cli.FormatDate(b.Date)
			if b.Date.Before(now) {
				when = cli.Bad(when + " overdue")
			}
			rows = append(rows, []string{cli.ShortID(b.ID), b.Category, provider, cli.FormatRupee(b.Amount), when})
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Bills due",
			Headers: []string{"ID", "Bill", "Provider", "Amount", "Due"},
			Rows:    rows,
			Left:    []int{1, 2},
		}))
		if len(emitted) > 0 {
			fmt.Println()
			printAlerts(emitted)
		}
		return nil
	})
}
