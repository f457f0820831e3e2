package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/rupee/internal/cli"
	"github.com/theirongolddev/rupee/internal/ledger"
	"github.com/theirongolddev/rupee/internal/model"
)

var (
	flagLimitCategory string
	flagLimitAmount   string
	flagLimitPeriod   string
)

var limitsCmd = &cobra.Command{
	Use:   "limits",
	Short: "Show and edit spending limits and waste goals",
	RunE:  runLimitsList,
}

var limitsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every limit with its current usage",
	Args:  cobra.NoArgs,
	RunE:  runLimitsList,
}

var limitsAddCmd = &cobra.Command{
	Use:     "add <domain> <daily|weekly|monthly> <amount>",
	Short:   "Add a limit",
	Example: "  rupee limits add expense monthly 5000 --category Food\n  rupee limits add waste weekly 8",
	Args:    cobra.ExactArgs(3),
	RunE:    runLimitsAdd,
}

var limitsSetCmd = &cobra.Command{
	Use:   "set <id> [amount]",
	Short: "Change a limit's amount, period or category",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runLimitsSet,
}

var limitsRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a limit",
	Args:  cobra.ExactArgs(1),
	RunE:  runLimitsRemove,
}

var limitsToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Activate or deactivate a limit",
	Args:  cobra.ExactArgs(1),
	RunE:  runLimitsToggle,
}

func init() {
	limitsAddCmd.Flags().StringVarP(&flagLimitCategory, "category", "c", "", "Only count this category")

	limitsSetCmd.Flags().StringVar(&flagLimitAmount, "amount", "", "New amount")
	limitsSetCmd.Flags().StringVar(&flagLimitPeriod, "period", "", "New period: daily, weekly or monthly")
	limitsSetCmd.Flags().StringVarP(&flagLimitCategory, "category", "c", "", "New category, empty for the whole domain")

	limitsCmd.AddCommand(limitsListCmd, limitsAddCmd, limitsSetCmd, limitsRmCmd, limitsToggleCmd)
	rootCmd.AddCommand(limitsCmd)
}

func runLimitsList(_ *cobra.Command, _ []string) error {
	return withRuntime(func(rt *runtime) error {
		overview, err := rt.svc.Overview()
		if err != nil {
			return err
		}

		var rows [][]string
		for _, st := range overview {
			unit := st.Domain.Unit()
			for _, ls := range st.Limits {
				active := "yes"
				used := cli.FormatPercent(ls.RawPercentUsed)
				if !ls.Limit.Active {
					active = cli.Muted("no")
				} else if ls.Exceeded {
					used = cli.Bad(used)
				}
				category := ls.Limit.Category
				if category == "" {
					category = cli.Muted("all")
				}
				rows = append(rows, []string{
					cli.ShortID(ls.Limit.ID),
					string(ls.Limit.Domain),
					category,
					string(ls.Limit.Period),
					cli.FormatAmount(unit, ls.Limit.Amount),
					cli.FormatAmount(unit, ls.Spent),
					used,
					active,
				})
			}
		}
		if len(rows) == 0 {
			fmt.Println("\n  No limits. Add one with `rupee limits add`.")
			return nil
		}

		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"ID", "Domain", "Category", "Period", "Limit", "Spent", "Used", "Active"},
			Rows:    rows,
			Left:    []int{1, 2, 3},
		}))
		return nil
	})
}

func parsePeriodArg(s string) (model.Period, error) {
	p, ok := model.ParsePeriod(strings.ToLower(s))
	if !ok {
		return "", model.Invalid("period", "must be daily, weekly or monthly")
	}
	return p, nil
}

func runLimitsAdd(_ *cobra.Command, args []string) error {
	domain, err := parseDomainArg(args[0])
	if err != nil {
		return err
	}
	period, err := parsePeriodArg(args[1])
	if err != nil {
		return err
	}

	return withRuntime(func(rt *runtime) error {
		l, alerts, err := rt.svc.AddLimit(ledger.LimitDraft{
			Domain:   domain,
			Category: flagLimitCategory,
			Period:   period,
			Amount:   args[2],
		})
		if err != nil {
			return err
		}
		info("  Added limit %s  %s %s", cli.ShortID(l.ID), l.Label(), cli.FormatAmount(domain.Unit(), l.Amount))
		printAlerts(alerts)
		return nil
	})
}

func runLimitsSet(cmd *cobra.Command, args []string) error {
	var p ledger.LimitPatch
	if len(args) == 2 {
		p.Amount = &args[1]
	}
	if cmd.Flags().Changed("amount") {
		p.Amount = &flagLimitAmount
	}
	if cmd.Flags().Changed("period") {
		period, err := parsePeriodArg(flagLimitPeriod)
		if err != nil {
			return err
		}
		p.Period = &period
	}
	if cmd.Flags().Changed("category") {
		p.Category = &flagLimitCategory
	}
	if p.Amount == nil && p.Period == nil && p.Category == nil {
		return fmt.Errorf("nothing to change: pass an amount, --period or --category")
	}

	return withRuntime(func(rt *runtime) error {
		id, err := rt.svc.ResolveLimit(args[0])
		if err != nil {
			return notFound(rt, "limit", args[0], err)
		}
		l, alerts, err := rt.svc.UpdateLimit(id, p)
		if err != nil {
			return notFound(rt, "limit", args[0], err)
		}
		info("  Updated limit %s  %s %s", cli.ShortID(l.ID), l.Label(), cli.FormatAmount(l.Domain.Unit(), l.Amount))
		printAlerts(alerts)
		return nil
	})
}

func runLimitsRemove(_ *cobra.Command, args []string) error {
	return withRuntime(func(rt *runtime) error {
		id, err := rt.svc.ResolveLimit(args[0])
		if err != nil {
			return notFound(rt, "limit", args[0], err)
		}
		if err := rt.svc.RemoveLimit(id); err != nil {
			return err
		}
		info("  Deleted limit %s", cli.ShortID(id))
		return nil
	})
}

func runLimitsToggle(_ *cobra.Command, args []string) error {
	return withRuntime(func(rt *runtime) error {
		id, err := rt.svc.ResolveLimit(args[0])
		if err != nil {
			return notFound(rt, "limit", args[0], err)
		}
		l, alerts, err := rt.svc.ToggleLimit(id)
		if err != nil {
			return notFound(rt, "limit", args[0], err)
		}
		state := "active"
		if !l.Active {
			state = "inactive"
		}
		info("  Limit %s (%s) is now %s", cli.ShortID(l.ID), l.Label(), state)
		printAlerts(alerts)
		return nil
	})
}
