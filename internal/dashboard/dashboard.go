package dashboard

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dashwatch/internal/source"
)

// KPI is one tile in a dashboard header.
type KPI struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

// Dataset is one series of a chart, aligned with Chart.Labels.
type Dataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BorderColor     string    `json:"border_color,omitempty"`
	BackgroundColor string    `json:"background_color,omitempty"`
}

// Chart is the data behind a dashboard chart. Rendering is left to the client.
type Chart struct {
	Type     string    `json:"type"`
	Title    string    `json:"title"`
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Clone returns a deep copy, or nil for a nil chart.
func (c *Chart) Clone() *Chart {
	if c == nil {
		return nil
	}
	out := &Chart{
		Type:     c.Type,
		Title:    c.Title,
		Labels:   append([]string(nil), c.Labels...),
		Datasets: make([]Dataset, len(c.Datasets)),
	}
	for i, d := range c.Datasets {
		d.Data = append([]float64(nil), d.Data...)
		out.Datasets[i] = d
	}
	return out
}

type Dashboard struct {
	Name   string
	Title  string
	KPIs   []KPI
	Chart  *Chart
	Source source.Source
}

// Registry holds dashboards by name.
type Registry struct {
	mu         sync.RWMutex
	dashboards map[string]*Dashboard
}

func NewRegistry(dashboards ...*Dashboard) *Registry {
	r := &Registry{dashboards: make(map[string]*Dashboard)}
	for _, d := range dashboards {
		r.dashboards[d.Name] = d
	}
	return r
}

func (r *Registry) Register(d *Dashboard) error {
	if d.Name == "" {
		return fmt.Errorf("dashboard name is required")
	}
	if d.Source == nil {
		return fmt.Errorf("dashboard %q: source is required", d.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.dashboards[d.Name]; exists {
		return fmt.Errorf("dashboard %q already registered", d.Name)
	}
	r.dashboards[d.Name] = d
	return nil
}

func (r *Registry) Get(name string) (*Dashboard, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.dashboards[name]
	return d, ok
}

// List returns all dashboards sorted by name.
func (r *Registry) List() []*Dashboard {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Dashboard, 0, len(r.dashboards))
	for _, d := range r.dashboards {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
