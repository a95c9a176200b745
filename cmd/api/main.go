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

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-storefront/internal/auth"
	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/config"
	"github.com/ariefcatur/go-storefront/internal/dashboard"
	"github.com/ariefcatur/go-storefront/internal/httpx"
	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/notify"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/postgres"
	"github.com/ariefcatur/go-storefront/internal/promo"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/ariefcatur/go-storefront/internal/users"
	"github.com/ariefcatur/go-storefront/internal/wallet"
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
	if err := postgres.Migrate(ctx, db); err != nil {
		slog.Error("db migrate", "err", err)
		os.Exit(1)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()
	cache := redisx.JSONCache{RDB: rdb}

	// Kafka producers, one per topic
	placed := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024)
	statusLog := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatus, 1024)
	settlement := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderSettlement, 1024)
	producers := []*kafkax.Producer{placed, statusLog, settlement}
	for _, p := range producers {
		p.Start()
	}

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

	// Services
	brandRepo, categoryRepo := catalog.NewBrandRepo(db), catalog.NewCategoryRepo(db)
	catalogSvc := &catalog.Service{
		Products:   &catalog.Repo{DB: db},
		Brands:     brandRepo,
		Categories: categoryRepo,
		Cache:      cache,
		CacheKey:   redisx.ProductKey,
		CacheTTL:   redisx.TTLProduct,
	}
	promoSvc := &promo.Service{Store: &promo.Repo{DB: db}}
	cartSvc := &cart.Service{Store: &cart.Repo{DB: db}, Offers: promoSvc, MaxQty: cfg.MaxQtyPerItem}
	ordersSvc := &orders.Service{
		Store:      &orders.Repo{DB: db},
		Carts:      cartSvc,
		Promotions: promoSvc,
		Notifier:   notifier,
		Placed:     placed,
		StatusLog:  statusLog,
		Settlement: settlement,
		Fees: orders.Fees{
			ShippingCents: cfg.ShippingFeeCents,
			FreeOverCents: cfg.FreeShippingOverCents,
		},
		CODMaxCents:  cfg.CODMaxCents,
		ReturnWindow: cfg.ReturnWindow,
		ServiceName:  cfg.ServiceName,
	}
	usersSvc := &users.Service{Store: &users.Repo{DB: db}, Cache: cache, Offers: promoSvc, Notifier: notifier}

	router := httpx.NewRouter(&httpx.API{
		Auth:       auth.NewMiddleware(cfg.JWTSecret, usersSvc),
		Catalog:    catalogSvc,
		Brands:     &catalog.LabelService{Store: brandRepo, Kind: catalog.KindBrand, Catalog: catalogSvc},
		Categories: &catalog.LabelService{Store: categoryRepo, Kind: catalog.KindCategory, Catalog: catalogSvc},
		Cart:       cartSvc,
		Promo:      promoSvc,
		Orders:     ordersSvc,
		Wallet:     &wallet.Service{Store: &wallet.Repo{DB: db}},
		Users:      usersSvc,
		Reports:    &dashboard.Service{Store: &dashboard.Repo{DB: db}, Cache: cache, CacheTTL: cfg.ReportCacheTTL},
		Idem:       redisx.Idempotency{RDB: rdb},
	})

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	// graceful shutdown
	go func() {
		slog.Info("HTTP listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("listen", "err", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	slog.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	for _, p := range producers {
		p.Close()
	}
	for _, p := range producers {
		p.WaitClosed()
	}
}
