package alert

import (
	"errors"
	"fmt"
	"math"

	"github.com/dashwatch/internal/models"
)

// ErrMetricUnavailable is returned by accessors that cannot read a metric from a record.
var ErrMetricUnavailable = errors.New("metric unavailable")

// MetricAccessor reads the compared metric from a record.
type MetricAccessor func(models.Record) (float64, error)

// Comparator reports whether value breaches threshold.
type Comparator func(value, threshold float64) bool

// MessageFunc renders the title and description of an alert for a breaching record.
type MessageFunc func(record models.Record, value float64) (title, description string)

// Rule is the policy for one evaluation call.
type Rule struct {
	Name       string
	Accessor   MetricAccessor
	Comparator Comparator
	Threshold  float64
	Message    MessageFunc
}

// SkippedRecord describes a record whose metric could not be read.
type SkippedRecord struct {
	RecordID   string
	RecordName string
	Err        error
}

type Report struct {
	Alerts  []models.Alert
	Skipped []SkippedRecord
}

// Evaluate returns one warning per record whose metric satisfies the rule's
// comparator, in input order. Records whose metric cannot be read are skipped.
func Evaluate(records []models.Record, rule Rule) []models.Alert {
	return EvaluateWithReport(records, rule).Alerts
}

// EvaluateWithReport is Evaluate, also listing the records that were skipped.
func EvaluateWithReport(records []models.Record, rule Rule) Report {
	report := Report{Alerts: []models.Alert{}}
	if rule.Comparator == nil {
		return report
	}

	accessor := rule.Accessor
	if accessor == nil {
		accessor = ValueAccessor
	}
	message := rule.Message
	if message == nil {
		message = defaultMessage(rule.Threshold)
	}

	for _, record := range records {
		value, err := readMetric(accessor, record)
		if err != nil {
			report.Skipped = append(report.Skipped, SkippedRecord{
				RecordID:   record.ID,
				RecordName: record.Name,
				Err:        err,
			})
			continue
		}

		if !rule.Comparator(value, rule.Threshold) {
			continue
		}

		title, description := message(record, value)
		report.Alerts = append(report.Alerts, models.Alert{
			Severity:    models.AlertLevelWarning,
			Title:       title,
			Description: description,
			Rule:        rule.Name,
			RecordID:    record.ID,
			RecordName:  record.Name,
			Value:       value,
			Threshold:   rule.Threshold,
		})
	}

	return report
}

// readMetric converts accessor failures, NaN results and panics into ErrMetricUnavailable.
func readMetric(accessor MetricAccessor, record models.Record) (value float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: accessor panicked: %v", ErrMetricUnavailable, r)
		}
	}()

	value, err = accessor(record)
	if err != nil {
		if !errors.Is(err, ErrMetricUnavailable) {
			err = fmt.Errorf("%w: %v", ErrMetricUnavailable, err)
		}
		return 0, err
	}
	if math.IsNaN(value) {
		return 0, fmt.Errorf("%w: value is NaN", ErrMetricUnavailable)
	}
	return value, nil
}

// ValueAccessor reads Record.Value.
func ValueAccessor(record models.Record) (float64, error) {
	return record.Value, nil
}

// MetricByName returns an accessor for a named entry of Record.Metrics.
// models.MetricValue selects Record.Value.
func MetricByName(name string) MetricAccessor {
	if name == "" || name == models.MetricValue {
		return ValueAccessor
	}
	return func(record models.Record) (float64, error) {
		v, ok := record.Metric(name)
		if !ok {
			return 0, fmt.Errorf("%w: record %q has no metric %q", ErrMetricUnavailable, record.ID, name)
		}
		return v, nil
	}
}

// ComparatorFor maps an operator onto a comparator. Unknown operators never match.
func ComparatorFor(op models.Operator) Comparator {
	return op.Compare
}

func defaultMessage(threshold float64) MessageFunc {
	return func(record models.Record, value float64) (string, string) {
		return fmt.Sprintf("%s breached threshold", record.Name),
			fmt.Sprintf("Current value: %g (threshold: %g)", value, threshold)
	}
}
