package service

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type OrderCancelledEvent struct {
	OrderID        uuid.UUID `json:"order_id"`
	CancellationID uuid.UUID `json:"cancellation_id"`
	UserID         uuid.UUID `json:"user_id"`
	Reason         string    `json:"reason,omitempty"`
	RefundAmount   int64     `json:"refund_amount"`
	CancelledAt    time.Time `json:"cancelled_at"`
}

type RefundCompletedEvent struct {
	RefundID        uuid.UUID `json:"refund_id"`
	OrderID         uuid.UUID `json:"order_id"`
	UserID          uuid.UUID `json:"user_id"`
	Amount          int64     `json:"amount"`
	PgTransactionID string    `json:"pg_transaction_id"`
	CompletedAt     time.Time `json:"completed_at"`
}

type RefundFailedEvent struct {
	RefundID   uuid.UUID `json:"refund_id"`
	OrderID    uuid.UUID `json:"order_id"`
	UserID     uuid.UUID `json:"user_id"`
	Amount     int64     `json:"amount"`
	Error      string    `json:"error"`
	Retryable  bool      `json:"retryable"`
	RetryCount int       `json:"retry_count"`
	FailedAt   time.Time `json:"failed_at"`
}

type EventBus interface {
	PublishOrderCancelled(ctx context.Context, e OrderCancelledEvent) error
	PublishRefundCompleted(ctx context.Context, e RefundCompletedEvent) error
	PublishRefundFailed(ctx context.Context, e RefundFailedEvent) error
}
