package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/rupee/internal/tui"
	"github.com/theirongolddev/rupee/internal/tui/theme"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	return withRuntime(func(rt *runtime) error {
		theme.SetActive(rt.cfg.Appearance.Theme)

		// Without a forced profile lipgloss may fall back to Ascii and drop
		// every background fill.
		lipgloss.SetColorProfile(termenv.TrueColor)

		p := tea.NewProgram(tui.NewApp(rt.svc, rt.cfg), tea.WithAltScreen(), tea.WithMouseCellMotion())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("TUI error: %w", err)
		}
		return nil
	})
}
