package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dashwatch/internal/cli/commands"
)

var rootCmd = &cobra.Command{
	Use:   "dashwatch",
	Short: "dashwatch CLI - dashboard threshold alerts",
	Long: `dashwatch CLI inspects dashboards, manages their alert rules and
shows the notifications raised when a record breaches a threshold.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String(commands.APIURLFlag, "", "dashwatch server URL (default $DASHWATCH_API_URL or http://localhost:8080)")

	rootCmd.AddCommand(commands.NewDashboardCommand())
	rootCmd.AddCommand(commands.NewRuleCommand())
	rootCmd.AddCommand(commands.NewNotificationCommand())
	rootCmd.AddCommand(commands.NewEvaluateCommand())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
