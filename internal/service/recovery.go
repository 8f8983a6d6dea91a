package service

import (
	"cancellation-service/internal/models"
	"cancellation-service/internal/repository"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// couponRecovery reinstates the coupon consumed by an order. Recovery flips
// the usage row used→recovered; a coupon that expired since usage is gone
// for good (not cash-substitutable by policy).
type couponRecovery struct {
	repo *repository.Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewCouponRecovery(repo *repository.Repository, log *zap.Logger) Recoverer {
	return &couponRecovery{repo: repo, log: log, now: time.Now}
}

func (s *couponRecovery) Recover(ctx context.Context, orderID uuid.UUID) error {
	usage, err := s.repo.CouponUsages.GetByOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if usage == nil {
		// Заказ без купона — восстанавливать нечего.
		return nil
	}
	if usage.Status == models.CouponUsageStatusRecovered {
		return nil
	}
	if usage.ExpiresAt.Before(s.now()) {
		return fmt.Errorf("%w: coupon expired at %s", ErrCouponNotRecoverable, usage.ExpiresAt.Format(time.RFC3339))
	}

	recovered, err := s.repo.CouponUsages.MarkRecovered(ctx, usage.ID)
	if err != nil {
		return err
	}
	if !recovered {
		// Конкурирующее восстановление успело раньше — идемпотентный no-op.
		return nil
	}
	s.log.Info("coupon usage recovered",
		zap.String("order_id", orderID.String()),
		zap.String("usage_id", usage.ID.String()),
	)
	return nil
}

// pointRecovery credits back points spent on an order via a new
// refund-restore ledger entry referencing the original debit. Append-only:
// the spend entry is never touched.
type pointRecovery struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewPointRecovery(repo *repository.Repository, log *zap.Logger) Recoverer {
	return &pointRecovery{repo: repo, log: log}
}

func (s *pointRecovery) Recover(ctx context.Context, orderID uuid.UUID) error {
	spend, err := s.repo.Points.GetSpendByOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if spend == nil {
		return nil
	}

	restored, err := s.repo.Points.HasRestoreFor(ctx, spend.ID)
	if err != nil {
		return err
	}
	if restored {
		return nil
	}

	restore, err := s.repo.Points.AppendRestore(ctx, spend)
	if err != nil {
		return err
	}
	s.log.Info("points restored",
		zap.String("order_id", orderID.String()),
		zap.String("user_id", spend.UserID.String()),
		zap.Int64("amount", restore.Amount),
	)
	return nil
}

// RecoveryResult aggregates the outcome of one recovery pass.
// FullyComplete is true only when every eligible step has succeeded.
type RecoveryResult struct {
	CouponRefunded  bool
	PointsRefunded  bool
	RefundCompleted bool
	FullyComplete   bool
}

type RecoveryService interface {
	ProcessCancellationRecovery(ctx context.Context, cancellationID uuid.UUID) (*RecoveryResult, error)
}

// recoveryService runs the three compensating steps of a cancellation.
// Each step is idempotent and checks its own completion flag, so re-running
// the whole routine from any partial state is safe. A step failure is
// logged and skipped, never aborts the remaining steps.
type recoveryService struct {
	repo    *repository.Repository
	coupons Recoverer
	points  Recoverer
	refunds RefundProcessor
	log     *zap.Logger
}

func NewRecoveryService(repo *repository.Repository, coupons, points Recoverer, refunds RefundProcessor, log *zap.Logger) RecoveryService {
	return &recoveryService{
		repo:    repo,
		coupons: coupons,
		points:  points,
		refunds: refunds,
		log:     log,
	}
}

func (s *recoveryService) ProcessCancellationRecovery(ctx context.Context, cancellationID uuid.UUID) (*RecoveryResult, error) {
	c, err := s.repo.Cancellations.GetByID(ctx, cancellationID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCancellationNotFound
	}

	res := &RecoveryResult{
		CouponRefunded: c.CouponRefunded,
		PointsRefunded: c.PointsRefunded,
	}

	if c.CanRefundCoupon && !c.CouponRefunded {
		if err := s.coupons.Recover(ctx, c.OrderID); err != nil {
			s.log.Warn("coupon recovery failed",
				zap.String("cancellation_id", cancellationID.String()),
				zap.Error(err),
			)
		} else if err := s.repo.Cancellations.SetCouponRefunded(ctx, cancellationID); err != nil {
			s.log.Error("failed to persist coupon_refunded flag", zap.Error(err))
		} else {
			res.CouponRefunded = true
		}
	}

	if c.CanRefundPoints && !c.PointsRefunded {
		if err := s.points.Recover(ctx, c.OrderID); err != nil {
			s.log.Warn("point recovery failed",
				zap.String("cancellation_id", cancellationID.String()),
				zap.Error(err),
			)
		} else if err := s.repo.Cancellations.SetPointsRefunded(ctx, cancellationID); err != nil {
			s.log.Error("failed to persist points_refunded flag", zap.Error(err))
		} else {
			res.PointsRefunded = true
		}
	}

	refundDone := true
	rf, err := s.repo.Refunds.GetByCancellation(ctx, cancellationID)
	if err != nil {
		return nil, err
	}
	if rf != nil && rf.RefundStatus != models.RefundStatusCompleted {
		refundDone = false
		if rf.Retryable() {
			pr, err := s.refunds.ProcessRefund(ctx, rf.ID)
			if err != nil {
				s.log.Warn("refund processing failed during recovery",
					zap.String("refund_id", rf.ID.String()),
					zap.Error(err),
				)
			} else if pr.Refund != nil && pr.Refund.RefundStatus == models.RefundStatusCompleted {
				refundDone = true
			}
		}
	}
	res.RefundCompleted = refundDone

	couponDone := !c.CanRefundCoupon || res.CouponRefunded
	pointsDone := !c.CanRefundPoints || res.PointsRefunded
	res.FullyComplete = couponDone && pointsDone && refundDone

	return res, nil
}
