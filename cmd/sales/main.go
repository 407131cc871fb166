package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/go-storefront/internal/config"
	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/ariefcatur/go-storefront/internal/sales"
	"github.com/ariefcatur/go-storefront/pkg/logkey"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	cfg.ServiceName += "-sales"
	log := cfg.Logger()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	projector := &sales.Projector{Recorder: &sales.RedisStore{RDB: rdb, Service: "sales"}}
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.SalesGroup, orders.TopicOrderPlaced, cfg.SalesWorkers)

	log.Info("sales consumer started",
		slog.String("group", cfg.SalesGroup), slog.String(logkey.Topic, orders.TopicOrderPlaced), slog.Int("workers", cfg.SalesWorkers))
	if err := cons.Start(ctx, projector.HandleOrderPlaced); err != nil {
		log.Error("consumer exit", slog.String(logkey.ERROR, err.Error()))
		os.Exit(1)
	}
	log.Info("sales consumer stopped")
}
