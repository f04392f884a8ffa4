package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dashwatch/internal/alert"
	"github.com/dashwatch/internal/models"
	"github.com/dashwatch/internal/source"
)

// NewEvaluateCommand evaluates a records file locally, without a server.
func NewEvaluateCommand() *cobra.Command {
	var (
		recordsFile string
		rule        models.AlertRule
		operator    string
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a threshold rule against a JSON records file",
		Example: `  dashwatch evaluate --records members.json --metric tasks --op '>' --threshold 40 \
    --title 'High workload for {{.Name}}'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := source.LoadRecordsFile(recordsFile)
			if err != nil {
				return err
			}

			rule.Name = "cli"
			rule.Dashboard = "cli"
			rule.Operator = models.Operator(operator)

			compiled, err := alert.RuleFromConfig(&rule)
			if err != nil {
				return err
			}

			report := alert.EvaluateWithReport(records, compiled)
			if err := printAlerts(cmd.OutOrStdout(), report.Alerts); err != nil {
				return err
			}
			for _, s := range report.Skipped {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s: %v\n", s.RecordID, s.Err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&recordsFile, "records", "", "JSON file with an array of records")
	cmd.Flags().StringVar(&rule.Metric, "metric", models.MetricValue, "Metric to compare (\"value\" or a metrics key)")
	cmd.Flags().StringVar(&operator, "op", string(models.OperatorGT), "Comparison operator: <, <=, >, >=")
	cmd.Flags().Float64Var(&rule.Threshold, "threshold", 0, "Threshold value")
	cmd.Flags().StringVar(&rule.TitleTemplate, "title", "", "Alert title template")
	cmd.Flags().StringVar(&rule.DescriptionTemplate, "description", "", "Alert description template")
	_ = cmd.MarkFlagRequired("records")
	_ = cmd.MarkFlagRequired("threshold")

	return cmd
}

var (
	warningFormat = color.New(color.FgHiYellow).SprintFunc()
	mutedFormat   = color.New(color.FgHiBlack).SprintFunc()
)

func severityFormat(level models.AlertLevel) string {
	switch level {
	case models.AlertLevelWarning:
		return warningFormat(string(level))
	default:
		return mutedFormat(string(level))
	}
}

func printAlerts(out io.Writer, alerts []models.Alert) error {
	if len(alerts) == 0 {
		_, err := fmt.Fprintln(out, "No alerts")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "SEVERITY\tRECORD\tVALUE\tTITLE\tDESCRIPTION")
	for _, a := range alerts {
		fmt.Fprintf(w, "%s\t%s\t%g\t%s\t%s\n",
			severityFormat(a.Severity), a.RecordName, a.Value, a.Title, a.Description)
	}
	return w.Flush()
}
