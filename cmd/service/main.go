package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "cancellation-service/docs"

	"cancellation-service/config"
	"cancellation-service/internal/auth"
	"cancellation-service/internal/cache"
	"cancellation-service/internal/gateway"
	"cancellation-service/internal/pkg/database"
	"cancellation-service/internal/pkg/logger"
	"cancellation-service/internal/producer"
	"cancellation-service/internal/repository"
	"cancellation-service/internal/service"
	httptransport "cancellation-service/internal/transport/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}

	defer logger.Sync()

	log := logger.L()

	cfg := config.Load(log)
	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	repos := repository.New(db)

	var events service.EventBus
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic != "" {
		p := producer.NewCancellationProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer p.Close()
		events = p
	}

	var locker service.Locker
	if cfg.Redis.Enabled {
		rdb, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.LockTTL, log)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer rdb.Close()
		locker = rdb
	}

	pg := gateway.NewHTTPClient(gateway.HTTPClientConfig{
		BaseURL:   cfg.Gateway.BaseURL,
		SecretKey: cfg.Gateway.SecretKey,
		Timeout:   cfg.Gateway.Timeout,
	}, log)

	refunds := service.NewRefundService(repos, pg, events, log)
	coupons := service.NewCouponRecovery(repos, log)
	points := service.NewPointRecovery(repos, log)
	recovery := service.NewRecoveryService(repos, coupons, points, refunds, log)
	cancellations := service.NewCancellationService(repos, locker, recovery, events, log)

	authClient := auth.NewClient(cfg.AuthIntrospectURL)

	h := httptransport.NewHandler(cancellations, refunds, log)
	router := httptransport.Router(h, authClient, log)

	srv := &http.Server{
		Addr:    cfg.Port,
		Handler: router,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Starting Cancellation HTTP server", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-quit
	log.Info("Shutting down Cancellation HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}
	log.Info("Cancellation HTTP server stopped gracefully")
}
