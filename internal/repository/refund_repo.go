package repository

import (
	"cancellation-service/internal/models"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RefundRepo interface {
	Create(ctx context.Context, rf *models.Refund) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Refund, error)
	GetByCancellation(ctx context.Context, cancellationID uuid.UUID) (*models.Refund, error)
	// ClaimProcessing atomically moves pending|failed → processing and bumps
	// retry_count on re-drives. Returns false when another invocation holds
	// the row or the status is terminal — the caller must no-op then.
	ClaimProcessing(ctx context.Context, id uuid.UUID) (bool, error)
	MarkCompleted(ctx context.Context, id uuid.UUID, pgTransactionID string) error
	MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error
	ListRetryable(ctx context.Context, maxRetries int, limit int) ([]models.Refund, error)
	// ReclaimStaleProcessing returns processing rows whose lease expired to
	// failed: a crash between the claim and the terminal mark would otherwise
	// leave them without an exit. The next claim bumps retry_count as usual.
	ReclaimStaleProcessing(ctx context.Context, olderThan time.Duration) (int64, error)
}

type refundRepo struct{ db *gorm.DB }

func NewRefundRepo(db *gorm.DB) RefundRepo { return &refundRepo{db: db} }

func (r *refundRepo) Create(ctx context.Context, rf *models.Refund) error {
	return r.db.WithContext(ctx).Create(rf).Error
}

func (r *refundRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Refund, error) {
	var rf models.Refund
	err := r.db.WithContext(ctx).First(&rf, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &rf, err
}

func (r *refundRepo) GetByCancellation(ctx context.Context, cancellationID uuid.UUID) (*models.Refund, error) {
	var rf models.Refund
	err := r.db.WithContext(ctx).First(&rf, "cancellation_id = ?", cancellationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &rf, err
}

func (r *refundRepo) ClaimProcessing(ctx context.Context, id uuid.UUID) (bool, error) {
	// retry_count считает только повторные заходы: первый переход из
	// pending не увеличивает счётчик, переход из failed — увеличивает.
	res := r.db.WithContext(ctx).Model(&models.Refund{}).
		Where("id = ? AND refund_status IN ?", id, []models.RefundStatus{
			models.RefundStatusPending,
			models.RefundStatusFailed,
		}).
		Updates(map[string]any{
			"refund_status": models.RefundStatusProcessing,
			"retry_count": gorm.Expr(
				"CASE WHEN refund_status = ? THEN retry_count + 1 ELSE retry_count END",
				models.RefundStatusFailed,
			),
		})
	return res.RowsAffected > 0, res.Error
}

func (r *refundRepo) MarkCompleted(ctx context.Context, id uuid.UUID, pgTransactionID string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&models.Refund{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"refund_status":     models.RefundStatusCompleted,
			"pg_transaction_id": pgTransactionID,
			"last_error":        nil,
			"completed_at":      now,
		}).Error
}

func (r *refundRepo) MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error {
	return r.db.WithContext(ctx).Model(&models.Refund{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"refund_status": models.RefundStatusFailed,
			"last_error":    lastError,
		}).Error
}

func (r *refundRepo) ReclaimStaleProcessing(ctx context.Context, olderThan time.Duration) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Refund{}).
		Where("refund_status = ? AND updated_at < ?", models.RefundStatusProcessing, time.Now().Add(-olderThan)).
		Updates(map[string]any{
			"refund_status": models.RefundStatusFailed,
			"last_error":    "PROCESSING_TIMEOUT: reclaimed by sweeper",
		})
	return res.RowsAffected, res.Error
}

func (r *refundRepo) ListRetryable(ctx context.Context, maxRetries int, limit int) ([]models.Refund, error) {
	if limit <= 0 {
		limit = 100
	}
	var list []models.Refund
	err := r.db.WithContext(ctx).
		Where("refund_status = ? AND retry_count < ?", models.RefundStatusFailed, maxRetries).
		Order("updated_at ASC").
		Limit(limit).
		Find(&list).Error
	return list, err
}
