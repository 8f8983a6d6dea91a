package repository

import (
	"cancellation-service/internal/models"
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderRepo interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	// MarkCancelled flips the order to cancelled only when it is not already;
	// returns false when no row changed (already cancelled or missing).
	MarkCancelled(ctx context.Context, id uuid.UUID, reason *string) (bool, error)
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) OrderRepo { return &orderRepo{db: db} }

func (r *orderRepo) Create(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var ord models.Order
	err := r.db.WithContext(ctx).First(&ord, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ord, err
}

func (r *orderRepo) MarkCancelled(ctx context.Context, id uuid.UUID, reason *string) (bool, error) {
	upd := map[string]any{"status": models.OrderStatusCancelled}
	if reason != nil {
		upd["cancelled_reason"] = reason
	}

	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status <> ?", id, models.OrderStatusCancelled).
		Updates(upd)
	return res.RowsAffected > 0, res.Error
}
