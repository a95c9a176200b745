package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-storefront/internal/config"
	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/notify"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/postgres"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/ariefcatur/go-storefront/internal/refunds"
)

func main() {
	_ = godotenv.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		slog.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	var notifier notify.Notifier = notify.LogNotifier{}
	if cfg.AMQPURL != "" {
		an, err := notify.DialAMQP(cfg.AMQPURL, cfg.NotifyQueue)
		if err != nil {
			slog.Error("amqp dial", "err", err)
			os.Exit(1)
		}
		defer an.Close()
		notifier = an
	}

	svc := &refunds.Service{
		Store:    &refunds.Repo{DB: db},
		Dedup:    redisx.Dedup{RDB: rdb, Service: "refunds"},
		Notifier: notifier,
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.RefundsGroup, orders.TopicOrderSettlement, cfg.RefundsWorkers)
	go func() {
		slog.Info("refunds consumer started", "group", cfg.RefundsGroup, "topic", orders.TopicOrderSettlement, "workers", cfg.RefundsWorkers)
		if err := cons.Start(ctx, svc.HandleSettlement); err != nil {
			slog.Error("consumer exit", "err", err)
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	slog.Info("shutting down consumer...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}
