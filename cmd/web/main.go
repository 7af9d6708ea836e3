package main

import (
	"context"
	"log"
	"os"

	"log/slog"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"tembeya.com/app/internal/config"
	apphttp "tembeya.com/app/internal/http"
	"tembeya.com/app/internal/mailer"
	"tembeya.com/app/internal/modules/bookings"
	"tembeya.com/app/internal/modules/checkouts"
	"tembeya.com/app/internal/modules/currency"
	"tembeya.com/app/internal/modules/listings"
	"tembeya.com/app/internal/modules/notifications"
	"tembeya.com/app/internal/modules/payments"
	"tembeya.com/app/internal/modules/receipts"
	"tembeya.com/app/internal/storage"
)

func main() {
	// Load .env file (ignore error if not found - prod uses real env vars)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := gorm.Open(mysql.Open(cfg.DBDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	ctx := context.Background()

	// currency rates: feed -> local snapshot, shared via redis when present
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}
	rateStore := currency.NewStore(rateSource(cfg), rdb, logger)
	if err := rateStore.Refresh(ctx); err != nil {
		logger.Warn("initial rate refresh failed, conversions unavailable until next refresh", "err", err)
	}
	go rateStore.Run(ctx, cfg.RatesRefresh)

	// receipt archive (local dir or S3)
	var gen *receipts.Generator
	if st, err := storage.FromEnv(ctx); err != nil {
		logger.Warn("receipt storage unavailable, receipts will not be archived", "err", err)
		gen = receipts.NewGenerator(nil, logger)
	} else {
		gen = receipts.NewGenerator(st.Storage, logger)
	}

	checkoutRepo := checkouts.NewRepo(db)
	bookingRepo := bookings.NewRepo(db)
	materializer := bookings.NewMaterializer(bookingRepo, logger)
	resolver := listings.NewResolver(db)

	smtp := mailer.NewSMTPMailer(cfg.SMTP)
	dispatcher := notifications.NewDispatcher(
		smtp, resolver, gen,
		cfg.EmailFrom, cfg.EmailFromName, cfg.BaseURL,
		cfg.NotifyTimeout, logger,
	)

	// inline dispatch unless a broker is configured
	var notifier payments.Notifier = notifications.NewInline(dispatcher)
	if cfg.RabbitURL != "" {
		pub, err := notifications.NewPublisher(cfg.RabbitURL, "", logger)
		if err != nil {
			log.Fatalf("rabbitmq: %v", err)
		}
		defer pub.Close()
		notifier = pub

		consumer := notifications.NewConsumer(cfg.RabbitURL, "", "", checkoutRepo, bookingRepo, dispatcher, logger)
		if err := consumer.Connect(); err != nil {
			log.Fatalf("rabbitmq consumer: %v", err)
		}
		defer consumer.Close()
		go func() {
			if err := consumer.Run(ctx); err != nil {
				logger.Error("notification consumer stopped", "err", err)
			}
		}()
	}

	processor := payments.NewProcessor(checkoutRepo, materializer, notifier, logger)

	r := apphttp.NewRouter(apphttp.Deps{
		Logger:       logger,
		Processor:    processor,
		CheckoutRepo: checkoutRepo,
		CheckoutSvc:  checkouts.NewService(checkoutRepo, rateStore, cfg.SettlementCurrency, logger),
		BookingRepo:  bookingRepo,
	})

	logger.Info("listening", "addr", cfg.HTTPAddr, "env", cfg.Env)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func rateSource(cfg config.App) currency.Source {
	if cfg.RatesURL != "" {
		return currency.NewHTTPSource(cfg.RatesURL)
	}
	if cfg.RatesStatic != "" {
		src, err := currency.ParseStatic(cfg.RatesStatic)
		if err != nil {
			log.Fatalf("RATES_STATIC: %v", err)
		}
		return src
	}
	// settlement-currency-only deployments still work: same-currency
	// conversions never consult the table
	return currency.StaticSource{}
}
