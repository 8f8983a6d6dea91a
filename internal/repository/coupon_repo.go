package repository

import (
	"cancellation-service/internal/models"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CouponUsageRepo interface {
	Create(ctx context.Context, u *models.CouponUsage) error
	GetByOrder(ctx context.Context, orderID uuid.UUID) (*models.CouponUsage, error)
	// MarkRecovered flips used→recovered; returns false when the usage was
	// already recovered (idempotent re-run).
	MarkRecovered(ctx context.Context, id uuid.UUID) (bool, error)
}

type couponUsageRepo struct{ db *gorm.DB }

func NewCouponUsageRepo(db *gorm.DB) CouponUsageRepo { return &couponUsageRepo{db: db} }

func (r *couponUsageRepo) Create(ctx context.Context, u *models.CouponUsage) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *couponUsageRepo) GetByOrder(ctx context.Context, orderID uuid.UUID) (*models.CouponUsage, error) {
	var u models.CouponUsage
	err := r.db.WithContext(ctx).First(&u, "order_id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (r *couponUsageRepo) MarkRecovered(ctx context.Context, id uuid.UUID) (bool, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&models.CouponUsage{}).
		Where("id = ? AND status = ?", id, models.CouponUsageStatusUsed).
		Updates(map[string]any{
			"status":       models.CouponUsageStatusRecovered,
			"recovered_at": now,
		})
	return res.RowsAffected > 0, res.Error
}
