package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dashwatch/internal/alert"
	"github.com/dashwatch/internal/models"
)

func NewRuleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rule",
		Short:   "Manage alert rules",
		Aliases: []string{"rules", "r"},
	}

	cmd.AddCommand(newRuleListCommand())
	cmd.AddCommand(newRuleGetCommand())
	cmd.AddCommand(newRuleToggleCommand("enable", true))
	cmd.AddCommand(newRuleToggleCommand("disable", false))
	cmd.AddCommand(newRuleDeleteCommand())
	cmd.AddCommand(newRuleImportCommand())
	cmd.AddCommand(newRuleExportCommand())

	return cmd
}

func newRuleListCommand() *cobra.Command {
	var enabledOnly bool

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List alert rules",
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var enabled *bool
			if enabledOnly {
				enabled = &enabledOnly
			}

			rules, err := newClient(cmd).ListRules(enabled)
			if err != nil {
				return fmt.Errorf("failed to list rules: %w", err)
			}
			return printRules(cmd.OutOrStdout(), rules)
		},
	}

	cmd.Flags().BoolVar(&enabledOnly, "enabled", false, "Only show enabled rules")
	return cmd
}

func newRuleGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get [id]",
		Short: "Get alert rule details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRuleID(args[0])
			if err != nil {
				return err
			}

			rule, err := newClient(cmd).GetRule(id)
			if err != nil {
				return fmt.Errorf("failed to get rule: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rule)
		},
	}
}

func newRuleToggleCommand(action string, enable bool) *cobra.Command {
	return &cobra.Command{
		Use:   action + " [id]",
		Short: fmt.Sprintf("%s an alert rule", action),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRuleID(args[0])
			if err != nil {
				return err
			}

			c := newClient(cmd)
			if enable {
				err = c.EnableRule(id)
			} else {
				err = c.DisableRule(id)
			}
			if err != nil {
				return fmt.Errorf("failed to %s rule: %w", action, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Rule %d %sd\n", id, action)
			return nil
		},
	}
}

func newRuleDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete [id]",
		Short:   "Delete an alert rule",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRuleID(args[0])
			if err != nil {
				return err
			}

			if err := newClient(cmd).DeleteRule(id); err != nil {
				return fmt.Errorf("failed to delete rule: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Rule %d deleted\n", id)
			return nil
		},
	}
}

func newRuleImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Import alert rules from a JSON or YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}

			rules, err := alert.UnmarshalRules(args[0], data)
			if err != nil {
				return err
			}

			if err := newClient(cmd).ImportRules(rules); err != nil {
				return fmt.Errorf("failed to import rules: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d rules\n", len(rules))
			return nil
		},
	}
}

func newRuleExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export alert rules as JSON, or YAML when --output ends in .yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := newClient(cmd).ExportRules()
			if err != nil {
				return fmt.Errorf("failed to export rules: %w", err)
			}

			data, err := alert.MarshalRules(output, rules)
			if err != nil {
				return err
			}

			if output == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			return os.WriteFile(output, data, 0644)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	return cmd
}

func parseRuleID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid rule ID: %w", err)
	}
	return uint(id), nil
}

func printRules(out io.Writer, rules []models.AlertRule) error {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDASHBOARD\tCONDITION\tENABLED\tTRIGGERED")
	for _, r := range rules {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s %s %g\t%t\t%d\n",
			r.ID, r.Name, r.Dashboard, r.Metric, r.Operator, r.Threshold, r.IsEnabled, r.TriggerCount)
	}
	return w.Flush()
}
