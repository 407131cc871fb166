package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-storefront/internal/auth"
	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/config"
	"github.com/ariefcatur/go-storefront/internal/httpx"
	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/postgres"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/ariefcatur/go-storefront/internal/sales"
	"github.com/ariefcatur/go-storefront/internal/users"
	"github.com/ariefcatur/go-storefront/pkg/logkey"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := cfg.Logger()
	slog.SetDefault(log)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", slog.String(logkey.ERROR, err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Error("db connect", slog.String(logkey.ERROR, err.Error()))
		os.Exit(1)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Error("db migrate", slog.String(logkey.ERROR, err.Error()))
		os.Exit(1)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, 1024)
	prod.Start(ctx)

	orderRepo := &orders.Repo{DB: db}
	srv := &httpx.Server{
		Users:        &users.Repo{DB: db},
		Catalog:      &catalog.Repo{DB: db},
		Cart:         &cart.Repo{DB: db},
		Orders:       orderRepo,
		Checkout:     &orders.Service{Store: orderRepo},
		Sales:        &sales.RedisStore{RDB: rdb, Service: "sales"},
		JWT:          auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL),
		Limiter:      &redisx.Limiter{RDB: rdb, Limit: cfg.LoginRateLimit, Window: redisx.LoginWindow},
		Cache:        rdb,
		Events:       prod,
		Service:      cfg.ServiceName,
		CookieSecure: cfg.CookieSecure,
		CORSOrigins:  cfg.CORSOrigins,
		Logger:       log,
	}

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Routes(), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info("HTTP listening", slog.String("addr", cfg.HTTPAddr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("listen", slog.String(logkey.ERROR, err.Error()))
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = httpSrv.Shutdown(ctx2)
	prod.Close() // flush queued events and close the writer
	prod.WaitClosed()
}
