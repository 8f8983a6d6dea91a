package models

import (
	"time"

	"github.com/google/uuid"
)

// Статус заказа — строковый тип (жизненный цикл доставки)
type OrderStatus string

const (
	OrderStatusCreated    OrderStatus = "ORDER_STATUS_CREATED"
	OrderStatusConfirmed  OrderStatus = "ORDER_STATUS_CONFIRMED"
	OrderStatusPreparing  OrderStatus = "ORDER_STATUS_PREPARING"
	OrderStatusReady      OrderStatus = "ORDER_STATUS_READY"
	OrderStatusPickedUp   OrderStatus = "ORDER_STATUS_PICKED_UP"
	OrderStatusDelivering OrderStatus = "ORDER_STATUS_DELIVERING"
	OrderStatusDelivered  OrderStatus = "ORDER_STATUS_DELIVERED"
	OrderStatusCancelled  OrderStatus = "ORDER_STATUS_CANCELLED"
)

// Order is owned by the order-management service; this service only reads
// status/amounts and writes status=cancelled + cancelled_reason.
type Order struct {
	ID            uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID   `gorm:"type:uuid;not null;index"`
	Status        OrderStatus `gorm:"type:text;not null;default:'ORDER_STATUS_CREATED';index"`
	TotalAmount   int64       `gorm:"not null;default:0"`
	DeliveryFee   int64       `gorm:"not null;default:0"`
	PaymentMethod string      `gorm:"type:text;not null"`
	// PaymentKey — ссылка на транзакцию во внешнем платёжном шлюзе
	PaymentKey      string  `gorm:"type:text;not null"`
	CancelledReason *string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (Order) TableName() string { return "orders" }

type CancelType string

const (
	CancelTypeInstant          CancelType = "CANCEL_TYPE_INSTANT"
	CancelTypeApprovalRequired CancelType = "CANCEL_TYPE_APPROVAL_REQUIRED"
)

type CancellationStatus string

const (
	CancellationStatusPending   CancellationStatus = "CANCELLATION_STATUS_PENDING"
	CancellationStatusApproved  CancellationStatus = "CANCELLATION_STATUS_APPROVED"
	CancellationStatusRejected  CancellationStatus = "CANCELLATION_STATUS_REJECTED"
	CancellationStatusCompleted CancellationStatus = "CANCELLATION_STATUS_COMPLETED"
)

// OrderCancellation — аудируемая запись об отмене заказа.
// Invariant: at most one row per order with status in {pending, approved};
// enforced by a partial unique index (see internal/migrate).
type OrderCancellation struct {
	ID          uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID          `gorm:"type:uuid;not null;index"`
	RequestedBy uuid.UUID          `gorm:"type:uuid;not null"`
	CancelType  CancelType         `gorm:"type:text;not null"`
	Status      CancellationStatus `gorm:"type:text;not null;default:'CANCELLATION_STATUS_PENDING';index"`

	ReasonCategory string  `gorm:"type:text;not null"`
	ReasonDetail   *string `gorm:"type:text"`

	RefundAmount         int64   `gorm:"not null;default:0"`
	RefundRate           float64 `gorm:"not null;default:0"` // 0.0–1.0
	MenuRefundAmount     int64   `gorm:"not null;default:0"`
	DeliveryRefundAmount int64   `gorm:"not null;default:0"`

	CanRefundCoupon bool `gorm:"not null;default:false"`
	CanRefundPoints bool `gorm:"not null;default:false"`
	// Флаги шагов восстановления — каждый шаг выставляет свой независимо
	CouponRefunded bool `gorm:"not null;default:false"`
	PointsRefunded bool `gorm:"not null;default:false"`

	ApprovedBy  *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt  *time.Time
	CompletedAt *time.Time

	CreatedAt time.Time `gorm:"not null;default:now();index"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (OrderCancellation) TableName() string { return "order_cancellations" }

// Open reports whether the cancellation still blocks new cancel requests.
func (c *OrderCancellation) Open() bool {
	return c.Status == CancellationStatusPending || c.Status == CancellationStatusApproved
}

type RefundStatus string

const (
	RefundStatusPending    RefundStatus = "REFUND_STATUS_PENDING"
	RefundStatusProcessing RefundStatus = "REFUND_STATUS_PROCESSING"
	RefundStatusCompleted  RefundStatus = "REFUND_STATUS_COMPLETED"
	RefundStatusFailed     RefundStatus = "REFUND_STATUS_FAILED"
	RefundStatusCancelled  RefundStatus = "REFUND_STATUS_CANCELLED"
)

// Refund — запись о возврате денег через платёжный шлюз.
// Transitions: pending→processing→{completed|failed}, failed→processing;
// completed and cancelled are terminal.
type Refund struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID `gorm:"type:uuid;not null;index"`
	CancellationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"` // at most one refund per cancellation
	UserID         uuid.UUID `gorm:"type:uuid;not null;index"`

	Amount         int64   `gorm:"not null"`
	OriginalAmount int64   `gorm:"not null"`
	RefundRate     float64 `gorm:"not null"`
	PaymentMethod  string  `gorm:"type:text;not null"`
	PaymentKey     string  `gorm:"type:text;not null"`

	RefundStatus    RefundStatus `gorm:"type:text;not null;default:'REFUND_STATUS_PENDING';index"`
	PgTransactionID *string      `gorm:"type:text"`
	RetryCount      int          `gorm:"not null;default:0"`
	LastError       *string      `gorm:"type:text"`
	CompletedAt     *time.Time

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (Refund) TableName() string { return "refunds" }

// Retryable reports whether the refund may be (re)driven through the gateway.
func (r *Refund) Retryable() bool {
	return r.RefundStatus == RefundStatusPending || r.RefundStatus == RefundStatusFailed
}

type CouponUsageStatus string

const (
	CouponUsageStatusUsed      CouponUsageStatus = "COUPON_USAGE_USED"
	CouponUsageStatusRecovered CouponUsageStatus = "COUPON_USAGE_RECOVERED"
)

// CouponUsage belongs to the coupon ledger; recovery flips used→recovered,
// never deletes. ExpiresAt is a snapshot of the coupon validity at usage time.
type CouponUsage struct {
	ID             uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CouponID       uuid.UUID         `gorm:"type:uuid;not null"`
	OrderID        uuid.UUID         `gorm:"type:uuid;not null;index"`
	UserID         uuid.UUID         `gorm:"type:uuid;not null;index"`
	DiscountAmount int64             `gorm:"not null"`
	Status         CouponUsageStatus `gorm:"type:text;not null;default:'COUPON_USAGE_USED'"`
	ExpiresAt      time.Time         `gorm:"not null"`
	UsedAt         time.Time         `gorm:"not null;default:now()"`
	RecoveredAt    *time.Time
}

func (CouponUsage) TableName() string { return "coupon_usages" }

type PointTransactionType string

const (
	PointTxSpend         PointTransactionType = "POINT_TX_SPEND"
	PointTxRefundRestore PointTransactionType = "POINT_TX_REFUND_RESTORE"
)

// PointTransaction — append-only журнал баллов. Восстановление добавляет
// новую запись refund_restore со ссылкой на исходное списание.
type PointTransaction struct {
	ID      uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID  uuid.UUID            `gorm:"type:uuid;not null;index"`
	OrderID uuid.UUID            `gorm:"type:uuid;not null;index"`
	Type    PointTransactionType `gorm:"type:text;not null"`
	// Amount signed: spend < 0, refund_restore > 0
	Amount           int64      `gorm:"not null"`
	RefTransactionID *uuid.UUID `gorm:"type:uuid;uniqueIndex"` // restore → original spend, one restore per spend
	BalanceAfter     int64      `gorm:"not null"`
	CreatedAt        time.Time  `gorm:"not null;default:now()"`
}

func (PointTransaction) TableName() string { return "point_transactions" }

// PointBalance — денормализованный снимок текущего баланса.
type PointBalance struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Balance   int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (PointBalance) TableName() string { return "point_balances" }
