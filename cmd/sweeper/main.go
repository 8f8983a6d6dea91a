package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cancellation-service/config"
	"cancellation-service/internal/gateway"
	"cancellation-service/internal/pkg/database"
	"cancellation-service/internal/pkg/logger"
	"cancellation-service/internal/producer"
	"cancellation-service/internal/repository"
	"cancellation-service/internal/service"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Свипер: автоодобрение зависших отмен и повторная проводка retryable
// возвратов. Ручные повторы через API потолком retry не ограничены —
// потолок останавливает только этот цикл.
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

	pg := gateway.NewHTTPClient(gateway.HTTPClientConfig{
		BaseURL:   cfg.Gateway.BaseURL,
		SecretKey: cfg.Gateway.SecretKey,
		Timeout:   cfg.Gateway.Timeout,
	}, log)

	refunds := service.NewRefundService(repos, pg, events, log)
	coupons := service.NewCouponRecovery(repos, log)
	points := service.NewPointRecovery(repos, log)
	recovery := service.NewRecoveryService(repos, coupons, points, refunds, log)
	cancellations := service.NewCancellationService(repos, nil, recovery, events, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(cfg.Sweeper.Interval)
	defer ticker.Stop()

	log.Info("Sweeper started",
		zap.Duration("interval", cfg.Sweeper.Interval),
		zap.Int("auto_approve_after_minutes", cfg.Sweeper.AutoApproveAfterMinutes),
		zap.Int("refund_max_retries", cfg.Sweeper.RefundMaxRetries),
	)

	for {
		select {
		case <-ctx.Done():
			log.Info("Sweeper stopped")
			return
		case <-ticker.C:
			sweep(ctx, repos, cancellations, refunds, cfg.Sweeper, log)
		}
	}
}

func sweep(ctx context.Context, repos *repository.Repository, cancellations service.CancellationService, refunds service.RefundService, cfg config.Sweeper, log *zap.Logger) {
	approved, err := cancellations.AutoApproveStale(ctx, cfg.AutoApproveAfterMinutes, 100)
	if err != nil {
		log.Error("auto-approval sweep failed", zap.Error(err))
	} else if approved > 0 {
		log.Info("auto-approved stale cancellations", zap.Int("count", approved))
	}

	// Записи, застрявшие в approved после сбоя хвоста одобрения
	resumed, err := cancellations.ResumeApproved(ctx, cfg.ResumeApprovedAfterMinutes, 100)
	if err != nil {
		log.Error("approved resume sweep failed", zap.Error(err))
	} else if resumed > 0 {
		log.Info("resumed stuck approved cancellations", zap.Int("count", resumed))
	}

	// Возвраты, застрявшие в processing после падения между claim и mark
	reclaimed, err := repos.Refunds.ReclaimStaleProcessing(ctx, cfg.ProcessingLease)
	if err != nil {
		log.Error("failed to reclaim stale processing refunds", zap.Error(err))
	} else if reclaimed > 0 {
		log.Warn("reclaimed stale processing refunds", zap.Int64("count", reclaimed))
	}

	retryable, err := repos.Refunds.ListRetryable(ctx, cfg.RefundMaxRetries, 100)
	if err != nil {
		log.Error("failed to list retryable refunds", zap.Error(err))
		return
	}
	for i := range retryable {
		if _, err := refunds.ProcessRefund(ctx, retryable[i].ID); err != nil {
			log.Warn("refund retry failed",
				zap.String("refund_id", retryable[i].ID.String()),
				zap.Error(err),
			)
		}
	}
	if len(retryable) > 0 {
		log.Info("refund retry sweep finished", zap.Int("count", len(retryable)))
	}
}
