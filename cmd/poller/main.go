package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/noveee/SinisterBot/internal/config"
	"github.com/noveee/SinisterBot/internal/notifier"
	"github.com/noveee/SinisterBot/internal/scheduler"
	"github.com/noveee/SinisterBot/internal/service"
	"github.com/noveee/SinisterBot/internal/source/rss"
	"github.com/noveee/SinisterBot/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	sink, err := buildNotifier(cfg.Notifier, logger)
	if err != nil {
		logger.Error("failed to build notifier", "error", err)
		os.Exit(1)
	}
	defer sink.Close()

	ledgerStore := postgres.NewLedgerStore(db)
	sourceStore := postgres.NewSourceStore(db)

	fetcher := rss.New(rss.Config{
		Timeout:   cfg.Poll.FetchTimeout,
		UserAgent: "SinisterBot/1.0",
	}, logger)

	pollService := service.NewPollService(
		sourceStore,
		fetcher,
		ledgerStore,
		sink,
		logger,
		cfg.Poll,
	)

	// A cycle may never outlive the gap to the next one.
	sched := scheduler.New(pollService, cfg.Poll.Interval, cfg.Poll.Interval, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	logger.Info("starting feed poller",
		"interval", cfg.Poll.Interval,
		"retention_days", cfg.Poll.RetentionDays,
		"notifier", cfg.Notifier.Type,
	)

	if err := sched.Start(ctx); err != nil && err != context.Canceled {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}
}

// announcer is the closable notifier surface main owns; the poll service only ever
// sees service.Notifier.
type announcer interface {
	service.Notifier
	Close() error
}

func buildNotifier(cfg config.NotifierConfig, logger *slog.Logger) (announcer, error) {
	if cfg.Type == "amqp" {
		return notifier.NewAMQPNotifier(notifier.AMQPConfig{
			URL:        cfg.AMQP.URL,
			Exchange:   cfg.AMQP.Exchange,
			RoutingKey: cfg.AMQP.RoutingKey,
			QueueName:  cfg.AMQP.QueueName,
		}, logger)
	}
	return notifier.NewDiscordWebhook(cfg.WebhookURL, logger), nil
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
