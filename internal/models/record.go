package models

// Record is one monitored entity's data point, such as a team member or a client.
type Record struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Value      float64            `json:"value"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
	Attributes map[string]string  `json:"attributes,omitempty"`
}

// Metric returns the named metric and whether the record carries it.
func (r Record) Metric(name string) (float64, bool) {
	v, ok := r.Metrics[name]
	return v, ok
}

// Attribute returns a descriptive column such as platform or status.
func (r Record) Attribute(name string) (string, bool) {
	v, ok := r.Attributes[name]
	return v, ok
}
