package models

import (
	"time"

	"gorm.io/gorm"
)

type Operator string

const (
	OperatorGT  Operator = ">"
	OperatorLT  Operator = "<"
	OperatorGTE Operator = ">="
	OperatorLTE Operator = "<="
)

// Compare reports whether value is on the alerting side of threshold.
func (o Operator) Compare(value, threshold float64) bool {
	switch o {
	case OperatorGT:
		return value > threshold
	case OperatorLT:
		return value < threshold
	case OperatorGTE:
		return value >= threshold
	case OperatorLTE:
		return value <= threshold
	default:
		return false
	}
}

func (o Operator) IsValid() bool {
	switch o {
	case OperatorGT, OperatorLT, OperatorGTE, OperatorLTE:
		return true
	default:
		return false
	}
}

// MetricValue selects Record.Value instead of a named entry in Record.Metrics.
const MetricValue = "value"

type AlertRule struct {
	gorm.Model          `yaml:"-"`
	Name                string     `json:"name" yaml:"name" gorm:"uniqueIndex;not null"`
	Description         string     `json:"description" yaml:"description,omitempty"`
	Dashboard           string     `json:"dashboard" yaml:"dashboard" gorm:"index;not null"`
	Metric              string     `json:"metric" yaml:"metric" gorm:"not null"`
	Operator            Operator   `json:"operator" yaml:"operator" gorm:"not null"`
	Threshold           float64    `json:"threshold" yaml:"threshold"`
	TitleTemplate       string     `json:"title_template" yaml:"title_template,omitempty"`
	DescriptionTemplate string     `json:"description_template" yaml:"description_template,omitempty"`
	IsEnabled           bool       `json:"is_enabled" yaml:"is_enabled" gorm:"not null"`
	LastTriggered       *time.Time `json:"last_triggered" yaml:"-"`
	TriggerCount        int        `json:"trigger_count" yaml:"-" gorm:"default:0"`
}
