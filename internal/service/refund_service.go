package service

import (
	"cancellation-service/internal/gateway"
	"cancellation-service/internal/models"
	"cancellation-service/internal/repository"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProcessResult carries the refund row after a drive attempt. Retryable is
// meaningful only when the refund ended up failed.
type ProcessResult struct {
	Refund    *models.Refund
	Retryable bool
}

type RefundService interface {
	RefundProcessor
	GetRefund(ctx context.Context, refundID uuid.UUID) (*models.Refund, error)
	RetryRefund(ctx context.Context, refundID uuid.UUID) (ProcessResult, error)
}

// refundService is the only writer of refund rows: the refund ledger.
// Gateway failures become observable state on the row, never errors — a
// failed settlement must not fail the parent cancellation.
type refundService struct {
	repo   *repository.Repository
	pg     gateway.Client
	events EventBus
	log    *zap.Logger
	now    func() time.Time
}

func NewRefundService(repo *repository.Repository, pg gateway.Client, events EventBus, log *zap.Logger) RefundService {
	return &refundService{
		repo:   repo,
		pg:     pg,
		events: events,
		log:    log,
		now:    time.Now,
	}
}

func (s *refundService) GetRefund(ctx context.Context, refundID uuid.UUID) (*models.Refund, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	rf, err := s.repo.Refunds.GetByID(ctx, refundID)
	if err != nil {
		return nil, err
	}
	if rf == nil {
		return nil, ErrRefundNotFound
	}
	if rf.UserID != userID && role != RoleAdmin {
		return nil, ErrForbidden
	}
	return rf, nil
}

// RetryRefund is the manual retry entry point. Allowed only from
// pending/failed; the retry ceiling does not apply here (it only stops the
// sweeper), so ops can re-drive after a gateway incident.
func (s *refundService) RetryRefund(ctx context.Context, refundID uuid.UUID) (ProcessResult, error) {
	rf, err := s.GetRefund(ctx, refundID)
	if err != nil {
		return ProcessResult{}, err
	}

	switch rf.RefundStatus {
	case models.RefundStatusCompleted:
		return ProcessResult{}, ErrRefundAlreadyCompleted
	case models.RefundStatusProcessing, models.RefundStatusCancelled:
		return ProcessResult{}, ErrRefundNotRetryable
	}

	return s.ProcessRefund(ctx, refundID)
}

func (s *refundService) ProcessRefund(ctx context.Context, refundID uuid.UUID) (ProcessResult, error) {
	rf, err := s.repo.Refunds.GetByID(ctx, refundID)
	if err != nil {
		return ProcessResult{}, err
	}
	if rf == nil {
		return ProcessResult{}, ErrRefundNotFound
	}

	// Идемпотентность: завершённый возврат не идёт в шлюз второй раз.
	if rf.RefundStatus == models.RefundStatusCompleted {
		return ProcessResult{Refund: rf}, nil
	}
	if rf.RefundStatus == models.RefundStatusCancelled {
		return ProcessResult{Refund: rf}, ErrRefundNotRetryable
	}

	claimed, err := s.repo.Refunds.ClaimProcessing(ctx, refundID)
	if err != nil {
		return ProcessResult{}, err
	}
	if !claimed {
		// Конкурирующий вызов уже ведёт этот возврат — no-op.
		s.log.Info("refund already claimed by concurrent invocation", zap.String("refund_id", refundID.String()))
		cur, err := s.repo.Refunds.GetByID(ctx, refundID)
		if err != nil {
			return ProcessResult{}, err
		}
		return ProcessResult{Refund: cur}, nil
	}

	res, err := s.pg.Refund(ctx, gateway.RefundRequest{
		PaymentKey: rf.PaymentKey,
		Amount:     rf.Amount,
		Reason:     "order cancellation refund",
	})
	if err != nil {
		// Ошибка до обращения к провайдеру (сборка запроса) — как retryable сбой.
		res = gateway.RefundResult{ErrorCode: "CLIENT_ERROR", ErrorMessage: err.Error(), Retryable: true}
	}

	if res.Success {
		if err := s.repo.Refunds.MarkCompleted(ctx, refundID, res.PgTransactionID); err != nil {
			return ProcessResult{}, fmt.Errorf("mark refund completed: %w", err)
		}
		s.log.Info("refund completed",
			zap.String("refund_id", refundID.String()),
			zap.String("order_id", rf.OrderID.String()),
			zap.Int64("amount", rf.Amount),
			zap.String("pg_transaction_id", res.PgTransactionID),
		)
		updated, err := s.repo.Refunds.GetByID(ctx, refundID)
		if err != nil {
			return ProcessResult{}, err
		}
		if s.events != nil {
			_ = s.events.PublishRefundCompleted(ctx, RefundCompletedEvent{
				RefundID:        rf.ID,
				OrderID:         rf.OrderID,
				UserID:          rf.UserID,
				Amount:          rf.Amount,
				PgTransactionID: res.PgTransactionID,
				CompletedAt:     s.now(),
			})
		}
		return ProcessResult{Refund: updated}, nil
	}

	lastError := res.ErrorCode + ": " + res.ErrorMessage
	if err := s.repo.Refunds.MarkFailed(ctx, refundID, lastError); err != nil {
		return ProcessResult{}, fmt.Errorf("mark refund failed: %w", err)
	}
	if res.Retryable {
		s.log.Warn("refund failed, retry-eligible",
			zap.String("refund_id", refundID.String()),
			zap.String("error", lastError),
		)
	} else {
		// Терминальный отказ шлюза — дальше только ручной разбор.
		s.log.Error("refund failed, non-retryable, manual review required",
			zap.String("refund_id", refundID.String()),
			zap.String("error", lastError),
		)
	}

	updated, err := s.repo.Refunds.GetByID(ctx, refundID)
	if err != nil {
		return ProcessResult{}, err
	}
	if s.events != nil {
		_ = s.events.PublishRefundFailed(ctx, RefundFailedEvent{
			RefundID:   rf.ID,
			OrderID:    rf.OrderID,
			UserID:     rf.UserID,
			Amount:     rf.Amount,
			Error:      lastError,
			Retryable:  res.Retryable,
			RetryCount: updated.RetryCount,
			FailedAt:   s.now(),
		})
	}
	return ProcessResult{Refund: updated, Retryable: res.Retryable}, nil
}
