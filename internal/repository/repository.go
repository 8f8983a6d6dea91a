package repository

import (
	"gorm.io/gorm"
)

type Repository struct {
	DB            *gorm.DB
	Orders        OrderRepo
	Cancellations CancellationRepo
	Refunds       RefundRepo
	CouponUsages  CouponUsageRepo
	Points        PointRepo
}

func New(db *gorm.DB) *Repository {
	return &Repository{
		DB:            db,
		Orders:        NewOrderRepo(db),
		Cancellations: NewCancellationRepo(db),
		Refunds:       NewRefundRepo(db),
		CouponUsages:  NewCouponUsageRepo(db),
		Points:        NewPointRepo(db),
	}
}
