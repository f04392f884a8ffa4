package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dashwatch/internal/alert"
	"github.com/dashwatch/internal/dashboard"
	"github.com/dashwatch/internal/logger"
	"github.com/dashwatch/internal/metrics"
	"github.com/dashwatch/internal/models"
	"github.com/dashwatch/internal/notify"
)

const (
	defaultInterval    = time.Minute
	defaultConcurrency = 4
)

var ErrUnknownDashboard = errors.New("unknown dashboard")

// RuleStore provides the rule definitions of a dashboard.
type RuleStore interface {
	RulesForDashboard(dashboard string) ([]models.AlertRule, error)
	RecordTrigger(id uint, alerts int, at time.Time) error
}

// Snapshot is the result of the latest refresh of one dashboard.
type Snapshot struct {
	Dashboard   string           `json:"dashboard"`
	Title       string           `json:"title"`
	KPIs        []dashboard.KPI  `json:"kpis"`
	Chart       *dashboard.Chart `json:"chart,omitempty"`
	Records     []models.Record  `json:"records"`
	Alerts      []models.Alert   `json:"alerts"`
	RefreshedAt time.Time        `json:"refreshed_at"`
}

type Config struct {
	Registry    *dashboard.Registry
	Rules       RuleStore
	Sink        notify.Sink
	Interval    time.Duration
	Concurrency int
}

// Monitor runs refresh cycles: fetch records, evaluate every enabled rule of
// the dashboard, hand each alert to the sink, keep the newest snapshot.
type Monitor struct {
	registry    *dashboard.Registry
	rules       RuleStore
	sink        notify.Sink
	interval    time.Duration
	concurrency int

	mutex     sync.RWMutex
	snapshots map[string]*Snapshot

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	now      func() time.Time
}

func New(cfg Config) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.Sink == nil {
		cfg.Sink = notify.LogSink{}
	}
	if cfg.Registry == nil {
		cfg.Registry = dashboard.NewRegistry()
	}

	return &Monitor{
		registry:    cfg.Registry,
		rules:       cfg.Rules,
		sink:        cfg.Sink,
		interval:    cfg.Interval,
		concurrency: cfg.Concurrency,
		snapshots:   make(map[string]*Snapshot),
		stopChan:    make(chan struct{}),
		now:         time.Now,
	}
}

// Start refreshes every dashboard once and then again on every interval
// until Stop is called or ctx is done.
func (m *Monitor) Start(ctx context.Context) error {
	log := logger.WithComponent("monitor")
	if err := m.RefreshAll(ctx); err != nil {
		log.Warn().Err(err).Msg("initial refresh incomplete")
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := m.RefreshAll(ctx); err != nil {
					log.Warn().Err(err).Msg("scheduled refresh incomplete")
				}
			case <-m.stopChan:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info().Dur("interval", m.interval).Msg("monitor started")
	return nil
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
	m.wg.Wait()
}

// RefreshAll refreshes every registered dashboard. A failing dashboard does
// not stop the others; all failures are returned joined.
func (m *Monitor) RefreshAll(ctx context.Context) error {
	var (
		mu   sync.Mutex
		errs []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)

	for _, d := range m.registry.List() {
		name := d.Name
		g.Go(func() error {
			if _, err := m.Refresh(gctx, name); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}

	_ = g.Wait()
	return errors.Join(errs...)
}

// Refresh runs one evaluation cycle for a dashboard and returns its new snapshot.
// On failure the previous snapshot is kept.
func (m *Monitor) Refresh(ctx context.Context, name string) (*Snapshot, error) {
	d, ok := m.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDashboard, name)
	}

	log := logger.WithDashboard("monitor", name)
	start := time.Now()
	defer func() {
		metrics.RefreshDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	records, err := d.Source.Records(ctx)
	if err != nil {
		metrics.RefreshFailuresTotal.WithLabelValues(name).Inc()
		log.Error().Err(err).Msg("failed to fetch records")
		return nil, fmt.Errorf("failed to fetch records for %s: %w", name, err)
	}

	var definitions []models.AlertRule
	if m.rules != nil {
		definitions, err = m.rules.RulesForDashboard(name)
		if err != nil {
			metrics.RefreshFailuresTotal.WithLabelValues(name).Inc()
			log.Error().Err(err).Msg("failed to load rules")
			return nil, fmt.Errorf("failed to load rules for %s: %w", name, err)
		}
	}

	alerts := make([]models.Alert, 0)
	for i := range definitions {
		def := &definitions[i]
		rule, err := alert.RuleFromConfig(def)
		if err != nil {
			log.Warn().Err(err).Str("rule", def.Name).Msg("invalid alert rule, skipping")
			continue
		}

		report := alert.EvaluateWithReport(records, rule)
		metrics.EvaluationsTotal.WithLabelValues(name, rule.Name).Inc()

		for _, skipped := range report.Skipped {
			log.Debug().
				Err(skipped.Err).
				Str("rule", rule.Name).
				Str("record_id", skipped.RecordID).
				Msg("metric unavailable, record skipped")
		}
		if n := len(report.Skipped); n > 0 {
			metrics.RecordsSkippedTotal.WithLabelValues(name, rule.Name).Add(float64(n))
		}

		for _, a := range report.Alerts {
			m.sink.Display(ctx, a)
		}

		if n := len(report.Alerts); n > 0 {
			metrics.AlertsTotal.WithLabelValues(name, rule.Name).Add(float64(n))
			if err := m.rules.RecordTrigger(def.ID, n, m.now()); err != nil {
				log.Warn().Err(err).Str("rule", rule.Name).Msg("failed to update rule statistics")
			}
		}
		alerts = append(alerts, report.Alerts...)
	}

	snapshot := &Snapshot{
		Dashboard:   d.Name,
		Title:       d.Title,
		KPIs:        d.KPIs,
		Chart:       d.Chart.Clone(),
		Records:     records,
		Alerts:      alerts,
		RefreshedAt: m.now().UTC(),
	}

	m.mutex.Lock()
	m.snapshots[name] = snapshot
	m.mutex.Unlock()

	log.Info().
		Int("records", len(records)).
		Int("rules", len(definitions)).
		Int("alerts", len(alerts)).
		Msg("dashboard refreshed")

	return snapshot.clone(), nil
}

// Snapshot returns the latest snapshot of a dashboard, if it was refreshed at least once.
func (m *Monitor) Snapshot(name string) (*Snapshot, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	s, ok := m.snapshots[name]
	if !ok {
		return nil, false
	}
	return s.clone(), true
}

// clone copies the snapshot header and chart; records and alerts are never
// modified after a refresh and stay shared.
func (s *Snapshot) clone() *Snapshot {
	out := *s
	out.Chart = s.Chart.Clone()
	return &out
}

// Dashboards returns the registered dashboards.
func (m *Monitor) Dashboards() []*dashboard.Dashboard {
	return m.registry.List()
}
