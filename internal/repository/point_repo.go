package repository

import (
	"cancellation-service/internal/models"
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PointRepo interface {
	CreateTransaction(ctx context.Context, tx *models.PointTransaction) error
	GetSpendByOrder(ctx context.Context, orderID uuid.UUID) (*models.PointTransaction, error)
	HasRestoreFor(ctx context.Context, spendTxID uuid.UUID) (bool, error)
	GetBalance(ctx context.Context, userID uuid.UUID) (int64, error)
	// AppendRestore writes the compensating ledger entry and updates the
	// balance snapshot in one store transaction. The original spend entry is
	// never mutated.
	AppendRestore(ctx context.Context, spend *models.PointTransaction) (*models.PointTransaction, error)
}

type pointRepo struct{ db *gorm.DB }

func NewPointRepo(db *gorm.DB) PointRepo { return &pointRepo{db: db} }

func (r *pointRepo) CreateTransaction(ctx context.Context, tx *models.PointTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *pointRepo) GetSpendByOrder(ctx context.Context, orderID uuid.UUID) (*models.PointTransaction, error) {
	var tx models.PointTransaction
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND type = ?", orderID, models.PointTxSpend).
		First(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &tx, err
}

func (r *pointRepo) HasRestoreFor(ctx context.Context, spendTxID uuid.UUID) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&models.PointTransaction{}).
		Where("ref_transaction_id = ? AND type = ?", spendTxID, models.PointTxRefundRestore).
		Count(&cnt).Error
	return cnt > 0, err
}

func (r *pointRepo) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	var b models.PointBalance
	err := r.db.WithContext(ctx).First(&b, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	return b.Balance, err
}

func (r *pointRepo) AppendRestore(ctx context.Context, spend *models.PointTransaction) (*models.PointTransaction, error) {
	restoreAmount := -spend.Amount // spend is negative
	var restore *models.PointTransaction

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bal models.PointBalance
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&bal, "user_id = ?", spend.UserID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			bal = models.PointBalance{UserID: spend.UserID}
			if err := tx.Create(&bal).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		newBalance := bal.Balance + restoreAmount
		restore = &models.PointTransaction{
			UserID:           spend.UserID,
			OrderID:          spend.OrderID,
			Type:             models.PointTxRefundRestore,
			Amount:           restoreAmount,
			RefTransactionID: &spend.ID,
			BalanceAfter:     newBalance,
		}
		if err := tx.Create(restore).Error; err != nil {
			return err
		}

		return tx.Model(&models.PointBalance{}).
			Where("user_id = ?", spend.UserID).
			Update("balance", newBalance).Error
	})
	if err != nil {
		return nil, err
	}
	return restore, nil
}
