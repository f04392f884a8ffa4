package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_FromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
monitor:
  interval: 30s
notify:
  slack:
    webhook_url: https://hooks.slack.com/services/T000/B000/XXX
    channel: "#dashwatch"
  kafka:
    brokers: ["localhost:9092"]
    topic: dashwatch-alerts
dashboards:
  magicbot:
    records_file: /var/lib/dashwatch/clients.json
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Monitor.Interval)
	assert.Equal(t, "#dashwatch", cfg.Notify.Slack.Channel)
	assert.Equal(t, "dashwatch", cfg.Notify.Slack.Username)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Notify.Kafka.Brokers)
	assert.Equal(t, "/var/lib/dashwatch/clients.json", cfg.Dashboards["magicbot"].RecordsFile)

	assert.Equal(t, "data/dashwatch.db", cfg.Database.Path)
	assert.Equal(t, 4, cfg.Monitor.Concurrency)
	assert.Equal(t, 10, cfg.Notify.Toast.Capacity)
	assert.Equal(t, 587, cfg.Notify.Email.SMTPPort)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")
	t.Setenv("DASHWATCH_SERVER_PORT", "7070")
	t.Setenv("DASHWATCH_LOG_LEVEL", "debug")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_EnvOverrideWithoutDefault(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")
	t.Setenv("DASHWATCH_NOTIFY_SLACK_WEBHOOK_URL", "https://hooks.slack.com/services/T1/B1/abc")
	t.Setenv("DASHWATCH_NOTIFY_KAFKA_TOPIC", "dashwatch-alerts")
	t.Setenv("DASHWATCH_NOTIFY_KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("DASHWATCH_NOTIFY_EMAIL_PASSWORD", "s3cret")
	t.Setenv("DASHWATCH_LOG_FILE", "/tmp/dashwatch.log")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://hooks.slack.com/services/T1/B1/abc", cfg.Notify.Slack.WebhookURL)
	assert.Equal(t, "dashwatch-alerts", cfg.Notify.Kafka.Topic)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Notify.Kafka.Brokers)
	assert.Equal(t, "s3cret", cfg.Notify.Email.Password)
	assert.Equal(t, "/tmp/dashwatch.log", cfg.Log.File)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "server:\n  port: 70000\n"))
	assert.ErrorContains(t, err, "invalid server port")

	_, err = LoadConfig(writeConfig(t, "notify:\n  kafka:\n    brokers: [\"localhost:9092\"]\n"))
	assert.ErrorContains(t, err, "kafka topic is required")
}
