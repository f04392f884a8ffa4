package notify

import (
	"context"

	"github.com/dashwatch/internal/logger"
	"github.com/dashwatch/internal/metrics"
	"github.com/dashwatch/internal/models"
)

// Sink presents alerts to a user. Display never reports failure back to the caller.
type Sink interface {
	Display(ctx context.Context, alert models.Alert)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, alert models.Alert)

func (f SinkFunc) Display(ctx context.Context, alert models.Alert) { f(ctx, alert) }

// Notifier delivers an alert to an external channel and may fail.
type Notifier interface {
	Notify(ctx context.Context, alert models.Alert) error
}

type delivery struct {
	name     string
	notifier Notifier
}

// Deliver wraps a Notifier as a Sink. Failures are logged and counted under name.
func Deliver(name string, n Notifier) Sink {
	return &delivery{name: name, notifier: n}
}

func (d *delivery) Display(ctx context.Context, alert models.Alert) {
	if err := d.notifier.Notify(ctx, alert); err != nil {
		log := logger.WithComponent("notify")
		log.Error().
			Err(err).
			Str("sink", d.name).
			Str("rule", alert.Rule).
			Str("record_id", alert.RecordID).
			Msg("failed to deliver alert")
		metrics.NotificationsFailedTotal.WithLabelValues(d.name).Inc()
		return
	}
	metrics.NotificationsSentTotal.WithLabelValues(d.name).Inc()
}

// Multi fans every alert out to all sinks, in the order given.
type Multi []Sink

func (m Multi) Display(ctx context.Context, alert models.Alert) {
	for _, s := range m {
		s.Display(ctx, alert)
	}
}

// LogSink writes one warning line per alert.
type LogSink struct{}

func (LogSink) Display(ctx context.Context, alert models.Alert) {
	log := logger.WithComponent("notify")
	log.Warn().
		Str("severity", string(alert.Severity)).
		Str("rule", alert.Rule).
		Str("record", alert.RecordName).
		Float64("value", alert.Value).
		Float64("threshold", alert.Threshold).
		Str("description", alert.Description).
		Msg(alert.Title)
	metrics.NotificationsSentTotal.WithLabelValues("log").Inc()
}
