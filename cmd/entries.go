package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/rupee/internal/cli"
	"github.com/theirongolddev/rupee/internal/ledger"
	"github.com/theirongolddev/rupee/internal/model"
	"github.com/theirongolddev/rupee/internal/pipeline"
)

var (
	flagAmount    string
	flagCategory  string
	flagKind      string
	flagDesc      string
	flagDate      string
	flagProvider  string
	flagRecurring bool

	flagListCategory string
	flagListSearch   string
	flagListKind     string
	flagListLimit    int
)

var addCmd = &cobra.Command{
	Use:   "add <expense|bill|waste> [amount] [category]",
	Short: "Add a ledger entry",
	Example: `  rupee add expense 250 Food --desc lunch
  rupee add expense 50000 Salary --type income
  rupee add bill 1500 Electricity --provider BESCOM --date 2026-10-20 --recurring
  rupee add waste 2.5 recyclable`,
	Args: cobra.RangeArgs(1, 3),
	RunE: runAdd,
}

var listCmd = &cobra.Command{
	Use:     "list <domain>",
	Aliases: []string{"ls"},
	Short:   "List entries, newest first",
	Args:    cobra.ExactArgs(1),
	RunE:    runList,
}

var updateCmd = &cobra.Command{
	Use:   "update <domain> <id>",
	Short: "Change fields of an entry",
	Args:  cobra.ExactArgs(2),
	RunE:  runUpdate,
}

var rmCmd = &cobra.Command{
	Use:     "rm <domain> <id>",
	Aliases: []string{"remove", "delete"},
	Short:   "Delete an entry",
	Args:    cobra.ExactArgs(2),
	RunE:    runRemove,
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <domain> <id>",
	Short: "Flip an entry's paid / disposed / cleared flag",
	Args:  cobra.ExactArgs(2),
	RunE:  runToggle,
}

func init() {
	addCmd.Flags().StringVar(&flagAmount, "amount", "", "Amount in rupees, or kg for waste")
	addCmd.Flags().StringVar(&flagCategory, "category", "", "Category (waste: recyclable, organic, hazardous, landfill)")
	addCmd.Flags().StringVar(&flagKind, "type", string(model.KindExpense), "expense or income")
	addCmd.Flags().StringVar(&flagDesc, "desc", "", "Description")
	addCmd.Flags().StringVar(&flagDate, "date", "", "Date as YYYY-MM-DD (bills: due date, required)")
	addCmd.Flags().StringVar(&flagProvider, "provider", "", "Bill provider")
	addCmd.Flags().BoolVar(&flagRecurring, "recurring", false, "Bill recurs monthly")

	updateCmd.Flags().StringVar(&flagAmount, "amount", "", "New amount")
	updateCmd.Flags().StringVar(&flagCategory, "category", "", "New category")
	updateCmd.Flags().StringVar(&flagDesc, "desc", "", "New description")
	updateCmd.Flags().StringVar(&flagDate, "date", "", "New date as YYYY-MM-DD")

	listCmd.Flags().StringVarP(&flagListCategory, "category", "c", "", "Only this category")
	listCmd.Flags().StringVarP(&flagListSearch, "search", "s", "", "Substring match on category, description or provider")
	listCmd.Flags().StringVar(&flagListKind, "type", "", "Only income or expense")
	listCmd.Flags().IntVarP(&flagListLimit, "limit", "l", 0, "Show at most this many rows")

	rootCmd.AddCommand(addCmd, listCmd, updateCmd, rmCmd, toggleCmd)
}

// draftFromArgs merges positional amount/category with their flag forms.
// Flags win when both are given.
func draftFromArgs(domain model.Domain, args []string) (ledger.Draft, error) {
	amount, category := flagAmount, flagCategory
	if len(args) > 0 && amount == "" {
		amount = args[0]
	}
	if len(args) > 1 && category == "" {
		category = args[1]
	}

	date, err := ledger.ParseDate(flagDate)
	if err != nil {
		return ledger.Draft{}, err
	}

	return ledger.Draft{
		Domain:      domain,
		Kind:        model.Kind(strings.ToLower(flagKind)),
		Amount:      amount,
		Category:    category,
		Description: flagDesc,
		Date:        date,
		Provider:    flagProvider,
		Recurring:   flagRecurring,
	}, nil
}

func runAdd(_ *cobra.Command, args []string) error {
	domain, err := parseDomainArg(args[0])
	if err != nil {
		return err
	}
	d, err := draftFromArgs(domain, args[1:])
	if err != nil {
		return err
	}

	return withRuntime(func(rt *runtime) error {
		e, alerts, err := rt.svc.Add(d)
		if err != nil {
			return err
		}
		info("  Added %s %s  %s %s (%s)", domain, cli.ShortID(e.ID),
			cli.FormatAmount(domain.Unit(), e.Amount), e.Category, cli.FormatDate(e.Date))
		printAlerts(alerts)
		return nil
	})
}

func runList(_ *cobra.Command, args []string) error {
	domain, err := parseDomainArg(args[0])
	if err != nil {
		return err
	}

	return withRuntime(func(rt *runtime) error {
		entries, err := rt.svc.Entries(domain)
		if err != nil {
			return err
		}
		if flagListCategory != "" {
			entries = pipeline.FilterByCategory(entries, flagListCategory)
		}
		if flagListKind != "" {
			entries = pipeline.FilterByKind(entries, model.Kind(strings.ToLower(flagListKind)))
		}
		if flagListSearch != "" {
			entries = pipeline.FilterByText(entries, flagListSearch)
		}
		if len(entries) == 0 {
			fmt.Println("\n  No entries.")
			return nil
		}

		total := len(entries)
		if flagListLimit > 0 && total > flagListLimit {
			entries = entries[:flagListLimit]
		}

		fmt.Println()
		fmt.Print(cli.RenderTable(entryTable(domain, entries)))
		if len(entries) < total {
			info("  %s", cli.Muted(fmt.Sprintf("%d of %d entries shown", len(entries), total)))
		}
		return nil
	})
}

func entryTable(domain model.Domain, entries []model.Entry) cli.Table {
	headers := []string{"ID", "Date", "Category", "Amount", strings.ToUpper(domain.FlagLabel()[:1]) + domain.FlagLabel()[1:], "Description"}
	if domain == model.DomainBill {
		headers = []string{"ID", "Due", "Bill", "Amount", "Paid", "Provider", "Recurring"}
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		amount := cli.FormatAmount(domain.Unit(), e.Amount)
		if e.IsIncome() {
			amount = "+" + amount
		}
		flag := ""
		if e.Flag {
			flag = "✓"
		}
		if domain == model.DomainBill && e.Bill != nil {
			recurring := ""
			if e.Bill.Recurring {
				recurring = "monthly"
			}
			rows = append(rows, []string{cli.ShortID(e.ID), cli.FormatDate(e.Date), e.Category, amount, flag, e.Bill.Provider, recurring})
			continue
		}
		rows = append(rows, []string{cli.ShortID(e.ID), cli.FormatDate(e.Date), e.Category, amount, flag, e.Description})
	}
	left := []int{1, 2, 5}
	if domain == model.DomainBill {
		left = []int{1, 2, 5, 6}
	}
	return cli.Table{Headers: headers, Rows: rows, Left: left}
}

// patchFromFlags builds a patch from the update flags the user actually set.
func patchFromFlags(cmd *cobra.Command) (ledger.Patch, error) {
	var p ledger.Patch
	if cmd.Flags().Changed("amount") {
		p.Amount = &flagAmount
	}
	if cmd.Flags().Changed("category") {
		p.Category = &flagCategory
	}
	if cmd.Flags().Changed("desc") {
		p.Description = &flagDesc
	}
	if cmd.Flags().Changed("date") {
		date, err := ledger.ParseDate(flagDate)
		if err != nil {
			return p, err
		}
		if date.IsZero() {
			return p, model.Missing("date")
		}
		p.Date = &date
	}
	if p.Empty() {
		return p, errors.New("nothing to update: pass --amount, --category, --desc or --date")
	}
	return p, nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	domain, err := parseDomainArg(args[0])
	if err != nil {
		return err
	}
	p, err := patchFromFlags(cmd)
	if err != nil {
		return err
	}

	return withRuntime(func(rt *runtime) error {
		id, err := rt.svc.ResolveEntry(domain, args[1])
		if err != nil {
			return notFound(rt, string(domain)+" entry", args[1], err)
		}
		e, alerts, err := rt.svc.Update(domain, id, p)
		if err != nil {
			return notFound(rt, string(domain)+" entry", args[1], err)
		}
		info("  Updated %s %s  %s %s (%s)", domain, cli.ShortID(e.ID),
			cli.FormatAmount(domain.Unit(), e.Amount), e.Category, cli.FormatDate(e.Date))
		printAlerts(alerts)
		return nil
	})
}

func runRemove(_ *cobra.Command, args []string) error {
	domain, err := parseDomainArg(args[0])
	if err != nil {
		return err
	}

	return withRuntime(func(rt *runtime) error {
		id, err := rt.svc.ResolveEntry(domain, args[1])
		if err != nil {
			return notFound(rt, string(domain)+" entry", args[1], err)
		}
		alerts, err := rt.svc.Remove(domain, id)
		if err != nil {
			return err
		}
		info("  Deleted %s %s", domain, cli.ShortID(id))
		printAlerts(alerts)
		return nil
	})
}

func runToggle(_ *cobra.Command, args []string) error {
	domain, err := parseDomainArg(args[0])
	if err != nil {
		return err
	}

	return withRuntime(func(rt *runtime) error {
		id, err := rt.svc.ResolveEntry(domain, args[1])
		if err != nil {
			return notFound(rt, string(domain)+" entry", args[1], err)
		}
		e, alerts, err := rt.svc.ToggleFlag(domain, id)
		if err != nil {
			return notFound(rt, string(domain)+" entry", args[1], err)
		}
		state := domain.FlagLabel()
		if !e.Flag {
			state = "not " + state
		}
		info("  %s %s marked %s", e.Category, cli.ShortID(e.ID), state)
		printAlerts(alerts)
		return nil
	})
}
