package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/rupee/internal/cli"
	"github.com/theirongolddev/rupee/internal/model"
)

var (
	flagAlertsUnread bool
	flagAlertsKeep   int
)

var alertsCmd = &cobra.Command{
	Use:     "alerts",
	Aliases: []string{"notifications"},
	Short:   "Review threshold alerts and reminders",
	RunE:    runAlertsList,
}

var alertsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications, newest first",
	Args:  cobra.NoArgs,
	RunE:  runAlertsList,
}

var alertsReadCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "Mark one notification read",
	Args:  cobra.ExactArgs(1),
	RunE:  runAlertsRead,
}

var alertsReadAllCmd = &cobra.Command{
	Use:   "read-all",
	Short: "Mark every notification read",
	Args:  cobra.NoArgs,
	RunE:  runAlertsReadAll,
}

var alertsRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a notification",
	Args:  cobra.ExactArgs(1),
	RunE:  runAlertsRemove,
}

var alertsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop the oldest read notifications",
	Args:  cobra.NoArgs,
	RunE:  runAlertsPrune,
}

func init() {
	alertsCmd.PersistentFlags().BoolVarP(&flagAlertsUnread, "unread", "u", false, "Only unread notifications")
	alertsPruneCmd.Flags().IntVar(&flagAlertsKeep, "keep", 50, "Read notifications to keep")

	alertsCmd.AddCommand(alertsListCmd, alertsReadCmd, alertsReadAllCmd, alertsRmCmd, alertsPruneCmd)
	rootCmd.AddCommand(alertsCmd)
}

func runAlertsList(_ *cobra.Command, _ []string) error {
	return withRuntime(func(rt *runtime) error {
		notes, err := rt.svc.Notifications()
		if err != nil {
			return err
		}

		var rows [][]string
		unread := 0
		for _, n := range notes {
			if !n.IsRead {
				unread++
			} else if flagAlertsUnread {
				continue
			}
			status := cli.Muted("read")
			if !n.IsRead {
				status = "new"
			}
			rows = append(rows, []string{
				cli.ShortID(n.ID),
				n.CreatedAt.Local().Format("02 Jan 15:04"),
				kindLabel(n.Kind),
				n.Category,
				n.Message,
				status,
			})
		}
		if len(rows) == 0 {
			fmt.Println("\n  No notifications.")
			return nil
		}

		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   fmt.Sprintf("Notifications  %d unread", unread),
			Headers: []string{"ID", "When", "Kind", "Category", "Message", ""},
			Rows:    rows,
			Left:    []int{1, 2, 3, 4},
		}))
		return nil
	})
}

func kindLabel(k model.NotificationKind) string {
	switch k {
	case model.NotifyError:
		return cli.Bad(string(k))
	case model.NotifyWarning:
		return cli.Warn(string(k))
	case model.NotifySuccess:
		return cli.Good(string(k))
	default:
		return cli.Muted(string(k))
	}
}

func runAlertsRead(_ *cobra.Command, args []string) error {
	return withRuntime(func(rt *runtime) error {
		id, err := rt.svc.ResolveNotification(args[0])
		if err != nil {
			return notFound(rt, "notification", args[0], err)
		}
		if err := rt.svc.MarkRead(id); err != nil {
			return notFound(rt, "notification", args[0], err)
		}
		info("  Marked %s read", cli.ShortID(id))
		return nil
	})
}

func runAlertsReadAll(_ *cobra.Command, _ []string) error {
	return withRuntime(func(rt *runtime) error {
		n, err := rt.svc.MarkAllRead()
		if err != nil {
			return err
		}
		info("  Marked %d notifications read", n)
		return nil
	})
}

func runAlertsRemove(_ *cobra.Command, args []string) error {
	return withRuntime(func(rt *runtime) error {
		id, err := rt.svc.ResolveNotification(args[0])
		if err != nil {
			return notFound(rt, "notification", args[0], err)
		}
		if err := rt.svc.RemoveNotification(id); err != nil {
			return err
		}
		info("  Deleted %s", cli.ShortID(id))
		return nil
	})
}

func runAlertsPrune(_ *cobra.Command, _ []string) error {
	return withRuntime(func(rt *runtime) error {
		n, err := rt.svc.Prune(flagAlertsKeep)
		if err != nil {
			return err
		}
		info("  Pruned %d read notifications", n)
		return nil
	})
}
