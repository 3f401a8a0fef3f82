package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"course-platform/internal/config"
	"course-platform/internal/domain/ports/repository"
	pg "course-platform/internal/infra/db/postgres"
	"course-platform/internal/infra/logging"
	"course-platform/internal/infra/payment"
	red "course-platform/internal/infra/redis"
	"course-platform/internal/infra/sched"
	"course-platform/internal/infra/web"
	"course-platform/internal/usecase"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, insecure cookies)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.PoolSize)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()

	// ---- Redis (cache + rate limiting; the service runs without it) ----
	var rateLimiter *red.RateLimiter
	var redisClient red.RedisClient
	if cfg.Redis.URL != "" {
		redisClient, err = red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, caching and rate limiting disabled")
		} else {
			rateLimiter = red.NewRateLimiter(redisClient)
		}
	}

	// ---- Repositories ----
	userRepo := pg.NewUserRepo(pool)
	courseRepo := pg.NewCourseRepo(pool)
	paymentRepo := pg.NewPaymentRepo(pool)
	purchaseRepo := pg.NewPurchaseRepo(pool)

	// Catalog reads may come from cache; checkout validation always hits the
	// authoritative repo.
	var catalogRepo repository.CourseRepository = courseRepo
	if redisClient != nil {
		catalogRepo = pg.NewCourseRepoCacheDecorator(courseRepo, redisClient, cfg.Redis.TTL)
	}

	// ---- Payment gateway ----
	gateway, err := payment.NewPayHereGateway(cfg.Payment.PayHere)
	if err != nil {
		logger.Fatal().Err(err).Msg("payhere gateway init failed")
	}
	logger.Info().Str("gateway", gateway.Name()).Bool("sandbox", cfg.Payment.PayHere.Sandbox).Msg("payment gateway ready")

	// ---- Use cases ----
	accessUC := usecase.NewAccessGrantUseCase(purchaseRepo, logger)
	checkoutUC := usecase.NewCheckoutUseCase(paymentRepo, courseRepo, userRepo, gateway, logger)
	notifyUC := usecase.NewNotifyUseCase(paymentRepo, accessUC, gateway, logger)
	courseUC := usecase.NewCourseUseCase(catalogRepo)
	reportUC := usecase.NewReportUseCase(paymentRepo)

	// ---- Grant reconciler ----
	reconciler := sched.NewGrantReconciler(accessUC, paymentRepo, cfg.Reconciler.Interval, cfg.Reconciler.PendingAfter, logger)
	go reconciler.Start(ctx)

	// ---- HTTP server ----
	srv := web.NewServer(cfg, checkoutUC, notifyUC, courseUC, accessUC, reportUC, rateLimiter, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
}
