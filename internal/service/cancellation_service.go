package service

import (
	"cancellation-service/internal/models"
	"cancellation-service/internal/policy"
	"cancellation-service/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type cancellationService struct {
	repo     *repository.Repository
	locker   Locker // nil disables best-effort serialization
	recovery RecoveryService
	events   EventBus
	log      *zap.Logger
	now      func() time.Time
}

func NewCancellationService(repo *repository.Repository, locker Locker, recovery RecoveryService, events EventBus, log *zap.Logger) CancellationService {
	return &cancellationService{
		repo:     repo,
		locker:   locker,
		recovery: recovery,
		events:   events,
		log:      log,
		now:      time.Now,
	}
}

func requireAuth(ctx context.Context) (uuid.UUID, Role, error) {
	uid, ok := UserIDFromContext(ctx)
	if !ok {
		return uuid.Nil, "", ErrUnauthorized
	}
	role, _ := RoleFromContext(ctx) // если нет — считаем customer по умолчанию
	return uid, role, nil
}

func (s *cancellationService) CancelOrder(ctx context.Context, orderID uuid.UUID, in CancelOrderInput) (*CancelOrderResult, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	ord, err := s.repo.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}
	if ord.UserID != userID {
		return nil, ErrForbidden
	}

	if !reasonAllowed(role, in.ReasonCategory) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidReason, in.ReasonCategory)
	}

	// Лучшая попытка сериализации на заказ; гарантию даёт частичный
	// уникальный индекс ux_order_cancellations_open.
	if s.locker != nil {
		release, acquired, err := s.locker.AcquireOrderLock(ctx, orderID)
		if err != nil {
			s.log.Warn("order lock unavailable, relying on unique index", zap.Error(err))
		} else if !acquired {
			return nil, ErrPendingCancelExists
		} else {
			defer release()
		}
	}

	if ord.Status == models.OrderStatusCancelled {
		return nil, ErrAlreadyCancelled
	}
	open, err := s.repo.Cancellations.GetOpenByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, ErrPendingCancelExists
	}

	// Политика пересчитывается на каждый запрос: статус заказа мог
	// измениться конкурентно.
	pol := policy.GetPolicy(ord.Status)
	if !pol.CanCancel {
		return nil, fmt.Errorf("%w: %s", ErrPolicyDisallows, pol.Message)
	}

	breakdown := policy.CalculateRefundAmount(ord.TotalAmount, ord.DeliveryFee, pol.RefundRatePercent, pol.RefundDeliveryFee)

	c := &models.OrderCancellation{
		OrderID:              orderID,
		RequestedBy:          userID,
		CancelType:           pol.CancelType,
		Status:               models.CancellationStatusPending,
		ReasonCategory:       in.ReasonCategory,
		ReasonDetail:         in.ReasonDetail,
		RefundAmount:         breakdown.RefundAmount,
		RefundRate:           float64(pol.RefundRatePercent) / 100,
		MenuRefundAmount:     breakdown.MenuRefundAmount,
		DeliveryRefundAmount: breakdown.DeliveryRefundAmount,
		CanRefundCoupon:      pol.CanRefundCoupon,
		CanRefundPoints:      pol.CanRefundPoints,
	}
	if pol.CancelType == models.CancelTypeInstant {
		// Мгновенная отмена самоподтверждается в том же запросе.
		now := s.now()
		c.Status = models.CancellationStatusCompleted
		c.ApprovedBy = &userID
		c.ApprovedAt = &now
		c.CompletedAt = &now
	}

	if err := s.repo.Cancellations.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrOpenCancellationExists) {
			return nil, ErrPendingCancelExists
		}
		return nil, err
	}

	if pol.CancelType == models.CancelTypeApprovalRequired {
		s.log.Info("cancellation pending approval",
			zap.String("order_id", orderID.String()),
			zap.String("cancellation_id", c.ID.String()),
		)
		return &CancelOrderResult{Cancellation: c}, nil
	}

	// Мгновенный путь: перевод заказа в cancelled. Запись об отмене уже
	// закоммичена отдельно, поэтому при сбое здесь выполняется
	// компенсирующее удаление, а не откат транзакции.
	if ok, err := s.repo.Orders.MarkCancelled(ctx, orderID, &in.ReasonCategory); err != nil || !ok {
		if delErr := s.repo.Cancellations.Delete(ctx, c.ID); delErr != nil {
			// Заказ и запись об отмене разошлись — дальше только ручная сверка.
			s.log.Error("CRITICAL: failed to roll back cancellation after order update failure",
				zap.String("order_id", orderID.String()),
				zap.String("cancellation_id", c.ID.String()),
				zap.NamedError("update_err", err),
				zap.NamedError("delete_err", delErr),
			)
		}
		if err != nil {
			return nil, fmt.Errorf("mark order cancelled: %w", err)
		}
		return nil, ErrAlreadyCancelled
	}

	if s.events != nil {
		_ = s.events.PublishOrderCancelled(ctx, OrderCancelledEvent{
			OrderID:        orderID,
			CancellationID: c.ID,
			UserID:         ord.UserID,
			Reason:         in.ReasonCategory,
			RefundAmount:   c.RefundAmount,
			CancelledAt:    s.now(),
		})
	}

	var rf *models.Refund
	if c.RefundAmount > 0 {
		rf = &models.Refund{
			OrderID:        orderID,
			CancellationID: c.ID,
			UserID:         ord.UserID,
			Amount:         c.RefundAmount,
			OriginalAmount: ord.TotalAmount + ord.DeliveryFee,
			RefundRate:     c.RefundRate,
			PaymentMethod:  ord.PaymentMethod,
			PaymentKey:     ord.PaymentKey,
			RefundStatus:   models.RefundStatusPending,
		}
		if err := s.repo.Refunds.Create(ctx, rf); err != nil {
			// Отмена уже принята; возврат доведёт свипер или ручной retry.
			s.log.Error("failed to create refund record",
				zap.String("cancellation_id", c.ID.String()),
				zap.Error(err),
			)
			return &CancelOrderResult{Cancellation: c}, nil
		}
	}

	// Сбой восстановления не откатывает отмену: приём отмены — бизнес-
	// решение, расчёт — независимый процесс.
	if _, err := s.recovery.ProcessCancellationRecovery(ctx, c.ID); err != nil {
		s.log.Warn("recovery incomplete after instant cancellation",
			zap.String("cancellation_id", c.ID.String()),
			zap.Error(err),
		)
	}

	if rf != nil {
		if cur, err := s.repo.Refunds.GetByID(ctx, rf.ID); err == nil && cur != nil {
			rf = cur
		}
	}

	return &CancelOrderResult{Cancellation: c, Refund: rf}, nil
}

func (s *cancellationService) GetHistory(ctx context.Context, orderID uuid.UUID) (*CancellationHistory, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	ord, err := s.repo.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}
	if ord.UserID != userID && role != RoleAdmin {
		return nil, ErrForbidden
	}

	cancellations, err := s.repo.Cancellations.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	refunds := make([]models.Refund, 0, len(cancellations))
	for i := range cancellations {
		rf, err := s.repo.Refunds.GetByCancellation(ctx, cancellations[i].ID)
		if err != nil {
			return nil, err
		}
		if rf != nil {
			refunds = append(refunds, *rf)
		}
	}

	return &CancellationHistory{Cancellations: cancellations, Refunds: refunds}, nil
}

// Approve: решение контрагента (vendor/admin), никогда не исходного
// заявителя. После одобрения путь идентичен мгновенной отмене.
func (s *cancellationService) Approve(ctx context.Context, cancellationID uuid.UUID) (*CancelOrderResult, error) {
	actorID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if role != RoleVendor && role != RoleAdmin {
		return nil, ErrForbidden
	}
	return s.approve(ctx, cancellationID, actorID)
}

func (s *cancellationService) approve(ctx context.Context, cancellationID uuid.UUID, actorID uuid.UUID) (*CancelOrderResult, error) {
	c, err := s.repo.Cancellations.GetByID(ctx, cancellationID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCancellationNotFound
	}
	if actorID == c.RequestedBy {
		return nil, ErrForbidden
	}
	if c.Status != models.CancellationStatusPending {
		return nil, ErrNotPending
	}

	ord, err := s.repo.Orders.GetByID(ctx, c.OrderID)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}

	now := s.now()
	moved, err := s.repo.Cancellations.UpdateStatus(ctx, cancellationID,
		models.CancellationStatusPending, models.CancellationStatusApproved,
		map[string]any{"approved_by": actorID, "approved_at": now},
	)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, ErrNotPending
	}
	c.Status = models.CancellationStatusApproved
	c.ApprovedBy = &actorID
	c.ApprovedAt = &now

	return s.finalizeApproved(ctx, c, ord)
}

// finalizeApproved — хвост после фиксации одобрения: заказ в cancelled,
// запись возврата, approved→completed, recovery. Каждый шаг идемпотентен;
// при ошибке запись остаётся в approved и свипер доводит её повторно.
func (s *cancellationService) finalizeApproved(ctx context.Context, c *models.OrderCancellation, ord *models.Order) (*CancelOrderResult, error) {
	if _, err := s.repo.Orders.MarkCancelled(ctx, c.OrderID, &c.ReasonCategory); err != nil {
		return nil, fmt.Errorf("mark order cancelled: %w", err)
	}

	// Возврат создаётся до перевода в completed: completed-запись всегда
	// имеет строку возврата, а повторный заход находит существующую.
	var rf *models.Refund
	if c.RefundAmount > 0 {
		existing, err := s.repo.Refunds.GetByCancellation(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			rf = existing
		} else {
			rf = &models.Refund{
				OrderID:        c.OrderID,
				CancellationID: c.ID,
				UserID:         ord.UserID,
				Amount:         c.RefundAmount,
				OriginalAmount: ord.TotalAmount + ord.DeliveryFee,
				RefundRate:     c.RefundRate,
				PaymentMethod:  ord.PaymentMethod,
				PaymentKey:     ord.PaymentKey,
				RefundStatus:   models.RefundStatusPending,
			}
			if err := s.repo.Refunds.Create(ctx, rf); err != nil {
				return nil, fmt.Errorf("create refund record: %w", err)
			}
		}
	}

	completedAt := s.now()
	moved, err := s.repo.Cancellations.UpdateStatus(ctx, c.ID,
		models.CancellationStatusApproved, models.CancellationStatusCompleted,
		map[string]any{"completed_at": completedAt},
	)
	if err != nil {
		return nil, err
	}
	if moved {
		c.Status = models.CancellationStatusCompleted
		c.CompletedAt = &completedAt
		if s.events != nil {
			_ = s.events.PublishOrderCancelled(ctx, OrderCancelledEvent{
				OrderID:        c.OrderID,
				CancellationID: c.ID,
				UserID:         ord.UserID,
				Reason:         c.ReasonCategory,
				RefundAmount:   c.RefundAmount,
				CancelledAt:    completedAt,
			})
		}
	} else {
		// Конкурирующий вызов уже довёл запись — перечитываем её состояние.
		cur, err := s.repo.Cancellations.GetByID(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		if cur != nil {
			c = cur
		}
	}

	if _, err := s.recovery.ProcessCancellationRecovery(ctx, c.ID); err != nil {
		s.log.Warn("recovery incomplete after approval",
			zap.String("cancellation_id", c.ID.String()),
			zap.Error(err),
		)
	}

	if rf != nil {
		if cur, err := s.repo.Refunds.GetByID(ctx, rf.ID); err == nil && cur != nil {
			rf = cur
		}
	}

	return &CancelOrderResult{Cancellation: c, Refund: rf}, nil
}

// Reject is terminal: the order stays active and no refund is created.
func (s *cancellationService) Reject(ctx context.Context, cancellationID uuid.UUID) (*models.OrderCancellation, error) {
	actorID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if role != RoleVendor && role != RoleAdmin {
		return nil, ErrForbidden
	}

	c, err := s.repo.Cancellations.GetByID(ctx, cancellationID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCancellationNotFound
	}
	if actorID == c.RequestedBy {
		return nil, ErrForbidden
	}
	if c.Status != models.CancellationStatusPending {
		return nil, ErrNotPending
	}

	now := s.now()
	moved, err := s.repo.Cancellations.UpdateStatus(ctx, cancellationID,
		models.CancellationStatusPending, models.CancellationStatusRejected,
		map[string]any{"approved_by": actorID, "approved_at": now},
	)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, ErrNotPending
	}

	c.Status = models.CancellationStatusRejected
	c.ApprovedBy = &actorID
	c.ApprovedAt = &now
	return c, nil
}

// AutoApproveStale funnels stale pending cancellations into the same
// approval path with the system actor (uuid.Nil).
func (s *cancellationService) AutoApproveStale(ctx context.Context, olderThanMinutes int, limit int) (int, error) {
	cutoff := s.now().Add(-time.Duration(olderThanMinutes) * time.Minute)
	pending, err := s.repo.Cancellations.ListPendingBefore(ctx, cutoff, limit)
	if err != nil {
		return 0, err
	}

	approved := 0
	for i := range pending {
		if _, err := s.approve(ctx, pending[i].ID, uuid.Nil); err != nil {
			s.log.Warn("auto-approval failed",
				zap.String("cancellation_id", pending[i].ID.String()),
				zap.Error(err),
			)
			continue
		}
		approved++
	}
	return approved, nil
}

// ResumeApproved picks up cancellations stuck between the approval commit
// and completion and re-runs the idempotent finalize tail.
func (s *cancellationService) ResumeApproved(ctx context.Context, olderThanMinutes int, limit int) (int, error) {
	cutoff := s.now().Add(-time.Duration(olderThanMinutes) * time.Minute)
	stuck, err := s.repo.Cancellations.ListApprovedBefore(ctx, cutoff, limit)
	if err != nil {
		return 0, err
	}

	resumed := 0
	for i := range stuck {
		ord, err := s.repo.Orders.GetByID(ctx, stuck[i].OrderID)
		if err != nil || ord == nil {
			s.log.Warn("resume skipped, order lookup failed",
				zap.String("cancellation_id", stuck[i].ID.String()),
				zap.Error(err),
			)
			continue
		}
		if _, err := s.finalizeApproved(ctx, &stuck[i], ord); err != nil {
			s.log.Warn("resume of approved cancellation failed",
				zap.String("cancellation_id", stuck[i].ID.String()),
				zap.Error(err),
			)
			continue
		}
		resumed++
	}
	return resumed, nil
}
