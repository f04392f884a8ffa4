package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dashwatch/internal/models"
)

type stubNotifier struct {
	err   error
	calls []models.Alert
}

func (s *stubNotifier) Notify(_ context.Context, alert models.Alert) error {
	s.calls = append(s.calls, alert)
	return s.err
}

func testAlert(name string) models.Alert {
	return models.Alert{
		Severity:    models.AlertLevelWarning,
		Title:       "High workload for " + name,
		Description: "Consider task redistribution",
		Rule:        "high_workload",
		RecordID:    name,
		RecordName:  name,
		Value:       45,
		Threshold:   40,
	}
}

func TestMulti_PreservesOrder(t *testing.T) {
	var seen []string
	record := func(prefix string) Sink {
		return SinkFunc(func(_ context.Context, a models.Alert) {
			seen = append(seen, prefix+":"+a.RecordName)
		})
	}

	sink := Multi{record("first"), record("second")}
	sink.Display(context.Background(), testAlert("Alice"))
	sink.Display(context.Background(), testAlert("Charlie"))

	assert.Equal(t, []string{"first:Alice", "second:Alice", "first:Charlie", "second:Charlie"}, seen)
}

func TestDeliver_SwallowsFailures(t *testing.T) {
	failing := &stubNotifier{err: errors.New("webhook down")}
	ok := &stubNotifier{}

	sink := Multi{Deliver("broken", failing), Deliver("ok", ok)}

	assert.NotPanics(t, func() {
		sink.Display(context.Background(), testAlert("Alice"))
	})
	require.Len(t, failing.calls, 1)
	require.Len(t, ok.calls, 1)
	assert.Equal(t, "Alice", ok.calls[0].RecordName)
}

func TestLogSink_Display(t *testing.T) {
	assert.NotPanics(t, func() {
		LogSink{}.Display(context.Background(), testAlert("Bob"))
	})
}
