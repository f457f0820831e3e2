package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/rupee/internal/config"
	"github.com/theirongolddev/rupee/internal/ledger"
	"github.com/theirongolddev/rupee/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg, _ := config.Load()

	form, apply := tui.NewSetupForm(cfg)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			info("  Setup canceled; nothing saved.")
			return nil
		}
		return err
	}

	cfg, err := apply(cfg)
	if err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	err = withRuntime(func(rt *runtime) error {
		alerts, err := rt.svc.ApplySeed(ledger.SeedFromConfig(cfg))
		if err != nil {
			return err
		}
		printAlerts(alerts)
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	fmt.Println("  Run `rupee setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
