package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dashwatch/internal/alert"
	"github.com/dashwatch/internal/api"
	"github.com/dashwatch/internal/config"
	"github.com/dashwatch/internal/dashboard"
	"github.com/dashwatch/internal/database"
	"github.com/dashwatch/internal/logger"
	"github.com/dashwatch/internal/monitor"
	"github.com/dashwatch/internal/notify"
	"github.com/dashwatch/internal/source"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Init("info", false, "")
		logger.Logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Init(cfg.Log.Level, cfg.Log.Pretty, cfg.Log.File)
	log := logger.WithComponent("main")

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer database.Close(db)

	ruleManager := alert.NewRuleManager(db)
	if err := ruleManager.CreateDefaultRules(); err != nil {
		log.Warn().Err(err).Msg("failed to create default rules")
	}

	toasts := notify.NewToastQueue(cfg.Notify.Toast.Capacity)
	sinks := notify.Multi{toasts, notify.LogSink{}}

	if cfg.Notify.Slack.WebhookURL != "" {
		slackNotifier := notify.NewSlackNotifier(cfg.Notify.Slack.WebhookURL, cfg.Notify.Slack.Channel, cfg.Notify.Slack.Username)
		sinks = append(sinks, notify.Deliver("slack", slackNotifier))
	}
	if cfg.Notify.Email.SMTPHost != "" {
		emailNotifier := notify.NewEmailNotifier(
			cfg.Notify.Email.SMTPHost,
			cfg.Notify.Email.SMTPPort,
			cfg.Notify.Email.From,
			cfg.Notify.Email.Password,
			cfg.Notify.Email.ToReceivers,
		)
		sinks = append(sinks, notify.Deliver("email", emailNotifier))
	}
	if len(cfg.Notify.Kafka.Brokers) > 0 {
		kafkaNotifier, err := notify.NewKafkaNotifier(cfg.Notify.Kafka.Brokers, cfg.Notify.Kafka.Topic)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create kafka notifier")
		}
		defer kafkaNotifier.Close()
		sinks = append(sinks, notify.Deliver("kafka", kafkaNotifier))
	}

	registry := dashboard.NewRegistry(
		dashboard.Elyassi(recordSource(cfg, "elyassi")),
		dashboard.MagicBot(recordSource(cfg, "magicbot")),
	)

	mon := monitor.New(monitor.Config{
		Registry:    registry,
		Rules:       ruleManager,
		Sink:        sinks,
		Interval:    cfg.Monitor.Interval,
		Concurrency: cfg.Monitor.Concurrency,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := mon.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start monitor")
	}
	defer mon.Stop()

	server := api.NewServer(mon, ruleManager, toasts)
	go func() {
		if err := server.Start(cfg.Server.Port); err != nil {
			log.Error().Err(err).Msg("HTTP server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
}

// recordSource returns the configured file source of a dashboard, or nil for the built-in data.
func recordSource(cfg *config.Config, name string) source.Source {
	if d, ok := cfg.Dashboards[name]; ok && d.RecordsFile != "" {
		return source.NewFileSource(d.RecordsFile)
	}
	return nil
}
