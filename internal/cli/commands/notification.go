package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func NewNotificationCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notification",
		Short:   "Visible notification commands",
		Aliases: []string{"notifications", "n"},
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Short:   "List visible notifications",
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			toasts, err := newClient(cmd).ListNotifications()
			if err != nil {
				return fmt.Errorf("failed to list notifications: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ID\tSEVERITY\tTITLE\tDESCRIPTION\tTIME")
			for _, t := range toasts {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					t.ID, severityFormat(t.Alert.Severity), t.Alert.Title, t.Alert.Description,
					humanize.Time(t.CreatedAt))
			}
			return w.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "dismiss [id]",
		Short: "Dismiss a notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newClient(cmd).DismissNotification(args[0]); err != nil {
				return fmt.Errorf("failed to dismiss notification: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Notification %s dismissed\n", args[0])
			return nil
		},
	})

	return cmd
}
