package alert

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/dashwatch/internal/models"
)

var ruleNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// messageData is the data available to title and description templates.
type messageData struct {
	ID        string
	Name      string
	Value     float64
	Threshold float64
	Metric    string
	Dashboard string
}

// ValidateRule checks a stored rule definition, including its templates.
func ValidateRule(rule *models.AlertRule) error {
	if rule.Name == "" {
		return fmt.Errorf("rule name is required")
	}
	if !ruleNamePattern.MatchString(rule.Name) {
		return fmt.Errorf("rule name %q must match pattern %s", rule.Name, ruleNamePattern)
	}
	if rule.Dashboard == "" {
		return fmt.Errorf("rule %q: dashboard is required", rule.Name)
	}
	if strings.TrimSpace(rule.Metric) == "" {
		return fmt.Errorf("rule %q: metric is required", rule.Name)
	}
	if !rule.Operator.IsValid() {
		return fmt.Errorf("rule %q: invalid operator %q", rule.Name, rule.Operator)
	}
	if _, err := compileMessage(rule); err != nil {
		return err
	}
	return nil
}

// RuleFromConfig compiles a stored rule definition into an evaluation rule.
func RuleFromConfig(rule *models.AlertRule) (Rule, error) {
	if err := ValidateRule(rule); err != nil {
		return Rule{}, err
	}
	message, err := compileMessage(rule)
	if err != nil {
		return Rule{}, err
	}

	return Rule{
		Name:       rule.Name,
		Accessor:   MetricByName(rule.Metric),
		Comparator: ComparatorFor(rule.Operator),
		Threshold:  rule.Threshold,
		Message:    message,
	}, nil
}

func compileMessage(rule *models.AlertRule) (MessageFunc, error) {
	titleText := rule.TitleTemplate
	if titleText == "" {
		titleText = "{{.Name}} breached " + rule.Name
	}
	descText := rule.DescriptionTemplate
	if descText == "" {
		descText = "Current value: {{.Value}} (threshold: {{.Threshold}})"
	}

	title, err := template.New("title").Parse(titleText)
	if err != nil {
		return nil, fmt.Errorf("rule %q: invalid title template: %w", rule.Name, err)
	}
	desc, err := template.New("description").Parse(descText)
	if err != nil {
		return nil, fmt.Errorf("rule %q: invalid description template: %w", rule.Name, err)
	}

	// Catch references to unknown fields before the rule is used.
	probe := messageData{Metric: rule.Metric, Dashboard: rule.Dashboard}
	if err := title.Execute(&bytes.Buffer{}, probe); err != nil {
		return nil, fmt.Errorf("rule %q: invalid title template: %w", rule.Name, err)
	}
	if err := desc.Execute(&bytes.Buffer{}, probe); err != nil {
		return nil, fmt.Errorf("rule %q: invalid description template: %w", rule.Name, err)
	}

	threshold, metric, dashboard := rule.Threshold, rule.Metric, rule.Dashboard
	return func(record models.Record, value float64) (string, string) {
		data := messageData{
			ID:        record.ID,
			Name:      record.Name,
			Value:     value,
			Threshold: threshold,
			Metric:    metric,
			Dashboard: dashboard,
		}
		return render(title, titleText, data), render(desc, descText, data)
	}, nil
}

// render falls back to the raw template text if execution fails.
func render(tmpl *template.Template, raw string, data messageData) string {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return raw
	}
	return buf.String()
}
