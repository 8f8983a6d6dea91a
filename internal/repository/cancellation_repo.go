package repository

import (
	"cancellation-service/internal/models"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrOpenCancellationExists maps the partial unique index
// ux_order_cancellations_open onto a typed error.
var ErrOpenCancellationExists = errors.New("open cancellation already exists for order")

type CancellationRepo interface {
	Create(ctx context.Context, c *models.OrderCancellation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.OrderCancellation, error)
	GetOpenByOrder(ctx context.Context, orderID uuid.UUID) (*models.OrderCancellation, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderCancellation, error)
	ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.OrderCancellation, error)
	// ListApprovedBefore returns rows stuck at approved: the finalize tail
	// did not reach completed. The sweeper re-drives them.
	ListApprovedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.OrderCancellation, error)
	// UpdateStatus moves pending→{approved|rejected|completed} or
	// approved→completed with an optimistic guard on the current status.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.CancellationStatus, upd map[string]any) (bool, error)
	SetCouponRefunded(ctx context.Context, id uuid.UUID) error
	SetPointsRefunded(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type cancellationRepo struct{ db *gorm.DB }

func NewCancellationRepo(db *gorm.DB) CancellationRepo { return &cancellationRepo{db: db} }

func (r *cancellationRepo) Create(ctx context.Context, c *models.OrderCancellation) error {
	err := r.db.WithContext(ctx).Create(c).Error
	if err != nil && strings.Contains(err.Error(), "ux_order_cancellations_open") {
		return ErrOpenCancellationExists
	}
	return err
}

func (r *cancellationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.OrderCancellation, error) {
	var c models.OrderCancellation
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *cancellationRepo) GetOpenByOrder(ctx context.Context, orderID uuid.UUID) (*models.OrderCancellation, error) {
	var c models.OrderCancellation
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND status IN ?", orderID, []models.CancellationStatus{
			models.CancellationStatusPending,
			models.CancellationStatusApproved,
		}).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *cancellationRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderCancellation, error) {
	var list []models.OrderCancellation
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *cancellationRepo) ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.OrderCancellation, error) {
	if limit <= 0 {
		limit = 100
	}
	var list []models.OrderCancellation
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", models.CancellationStatusPending, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *cancellationRepo) ListApprovedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.OrderCancellation, error) {
	if limit <= 0 {
		limit = 100
	}
	var list []models.OrderCancellation
	err := r.db.WithContext(ctx).
		Where("status = ? AND approved_at < ?", models.CancellationStatusApproved, cutoff).
		Order("approved_at ASC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *cancellationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.CancellationStatus, upd map[string]any) (bool, error) {
	if upd == nil {
		upd = map[string]any{}
	}
	upd["status"] = to

	res := r.db.WithContext(ctx).Model(&models.OrderCancellation{}).
		Where("id = ? AND status = ?", id, from).
		Updates(upd)
	return res.RowsAffected > 0, res.Error
}

func (r *cancellationRepo) SetCouponRefunded(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.OrderCancellation{}).
		Where("id = ?", id).
		Update("coupon_refunded", true).Error
}

func (r *cancellationRepo) SetPointsRefunded(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.OrderCancellation{}).
		Where("id = ?", id).
		Update("points_refunded", true).Error
}

func (r *cancellationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.OrderCancellation{}, "id = ?", id).Error
}
