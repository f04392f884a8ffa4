package models

type AlertLevel string

const (
	AlertLevelWarning AlertLevel = "WARNING"
)

// Alert is a warning produced for one record that breached a rule.
// Alerts are handed to sinks as soon as they are produced and are not stored.
type Alert struct {
	Severity    AlertLevel `json:"severity"`
	Title       string     `json:"title"`
	Description string     `json:"description"`

	Rule       string  `json:"rule,omitempty"`
	RecordID   string  `json:"record_id,omitempty"`
	RecordName string  `json:"record_name,omitempty"`
	Value      float64 `json:"value"`
	Threshold  float64 `json:"threshold"`
}
