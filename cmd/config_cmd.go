package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/rupee/internal/cli"
	"github.com/theirongolddev/rupee/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	dbPath := flagDB
	if dbPath == "" {
		dbPath = config.DBPath(cfg)
	}
	fmt.Println("  [General]")
	fmt.Printf("    Database:     %s\n", dbPath)
	fmt.Printf("    Default days: %d\n", cfg.General.DefaultDays)
	fmt.Println()

	fmt.Println("  [Budget]  (seeds the default limits)")
	fmt.Printf("    Daily:         %s\n", cli.FormatRupee(cfg.Budget.DailyINR))
	fmt.Printf("    Monthly:       %s\n", cli.FormatRupee(cfg.Budget.MonthlyINR))
	fmt.Printf("    Bills monthly: %s\n", cli.FormatRupee(cfg.Budget.BillsMonthlyINR))
	fmt.Printf("    Waste weekly:  %s\n", cli.FormatKg(cfg.Budget.WasteWeeklyKg))
	fmt.Println()

	fmt.Println("  [Alerts]")
	fmt.Printf("    Repeat while over: %v\n", cfg.Alerts.Repeat)
	if cfg.Alerts.Keep > 0 {
		fmt.Printf("    Keep:              %d\n", cfg.Alerts.Keep)
	} else {
		fmt.Println("    Keep:              unbounded")
	}
	fmt.Printf("    Remind days:       %d\n", cfg.Alerts.RemindDays)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Addr:     %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Interval: %s\n", cfg.PollInterval())
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level: %s\n", cfg.Log.Level)
	fmt.Println()

	fmt.Println("  Run `rupee setup` to reconfigure.")
	return nil
}
