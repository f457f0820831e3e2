package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/rupee/internal/ledger"
)

var flagResetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset <key>",
	Short: "Overwrite one stored collection with its seed",
	Long: "Replaces a collection with its initial contents. Use it when a collection\n" +
		"fails to load. Keys: " + strings.Join(ledger.ResetKeys(), ", "),
	Args:      cobra.ExactArgs(1),
	ValidArgs: ledger.ResetKeys(),
	RunE:      runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&flagResetYes, "yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}

func runReset(_ *cobra.Command, args []string) error {
	key := args[0]
	valid := false
	for _, k := range ledger.ResetKeys() {
		if k == key {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("%w: %s (want one of %s)", ledger.ErrUnknownKey, key, strings.Join(ledger.ResetKeys(), ", "))
	}

	if !flagResetYes {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Reset %s?", key)).
			Description("Everything stored under this key is replaced.").
			Value(&confirmed).
			Run()
		if err != nil {
			return err
		}
		if !confirmed {
			info("  Nothing changed.")
			return nil
		}
	}

	return withRuntime(func(rt *runtime) error {
		if err := rt.svc.Reset(key); err != nil {
			return err
		}
		info("  Reset %s", key)
		return nil
	})
}
