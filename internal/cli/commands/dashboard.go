package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dashwatch/internal/monitor"
)

func NewDashboardCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dashboard",
		Short:   "Dashboard commands",
		Aliases: []string{"dashboards", "d"},
	}

	cmd.AddCommand(newDashboardListCommand())
	cmd.AddCommand(newDashboardShowCommand())
	cmd.AddCommand(newDashboardRefreshCommand())

	return cmd
}

func newDashboardListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List dashboards",
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			dashboards, err := newClient(cmd).ListDashboards()
			if err != nil {
				return fmt.Errorf("failed to list dashboards: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "NAME\tTITLE\tALERTS\tREFRESHED")
			for _, d := range dashboards {
				refreshed := "never"
				if d.RefreshedAt != nil {
					refreshed = humanize.Time(*d.RefreshedAt)
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", d.Name, d.Title, d.Alerts, refreshed)
			}
			return w.Flush()
		},
	}
}

func newDashboardShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [name]",
		Short: "Show the latest snapshot of a dashboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := newClient(cmd).GetDashboard(args[0])
			if err != nil {
				return fmt.Errorf("failed to get dashboard: %w", err)
			}
			return printSnapshot(cmd.OutOrStdout(), snap)
		},
	}
}

func newDashboardRefreshCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh [name]",
		Short: "Refresh a dashboard and evaluate its rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := newClient(cmd).RefreshDashboard(args[0])
			if err != nil {
				return fmt.Errorf("failed to refresh dashboard: %w", err)
			}
			return printSnapshot(cmd.OutOrStdout(), snap)
		},
	}
}

func printSnapshot(out io.Writer, snap *monitor.Snapshot) error {
	fmt.Fprintf(out, "%s (refreshed %s)\n\n", snap.Title, humanize.Time(snap.RefreshedAt))

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "KPI\tVALUE")
	for _, k := range snap.KPIs {
		fmt.Fprintf(w, "%s\t%s%s\n", k.Label, humanize.Commaf(k.Value), k.Unit)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if c := snap.Chart; c != nil {
		fmt.Fprintf(out, "\n%s\n", c.Title)
		w = tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		fmt.Fprintf(w, "SERIES\t%s\n", strings.Join(c.Labels, "\t"))
		for _, d := range c.Datasets {
			values := make([]string, len(d.Data))
			for i, v := range d.Data {
				values[i] = humanize.Ftoa(v)
			}
			fmt.Fprintf(w, "%s\t%s\n", d.Label, strings.Join(values, "\t"))
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	fmt.Fprintln(out)
	return printAlerts(out, snap.Alerts)
}
