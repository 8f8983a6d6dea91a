package http

import (
	"cancellation-service/internal/models"
	"time"

	"github.com/google/uuid"
)

// BaseError — универсальный формат ошибки.
// Code — машинно-ориентированный код (snake_case)
// Message — краткое человеко-читаемое описание
type BaseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func NewError(code, message string) BaseError {
	return BaseError{Code: code, Message: message}
}

type CancelOrderRequest struct {
	ReasonCategory string  `json:"reason_category" binding:"required"`
	ReasonDetail   *string `json:"reason_detail"`
}

type CancellationResponse struct {
	ID                   uuid.UUID  `json:"id"`
	OrderID              uuid.UUID  `json:"order_id"`
	CancelType           string     `json:"cancel_type"`
	Status               string     `json:"status"`
	ReasonCategory       string     `json:"reason_category"`
	ReasonDetail         *string    `json:"reason_detail,omitempty"`
	RefundAmount         int64      `json:"refund_amount"`
	RefundRate           float64    `json:"refund_rate"`
	MenuRefundAmount     int64      `json:"menu_refund_amount"`
	DeliveryRefundAmount int64      `json:"delivery_refund_amount"`
	CouponRefunded       bool       `json:"coupon_refunded"`
	PointsRefunded       bool       `json:"points_refunded"`
	ApprovedAt           *time.Time `json:"approved_at,omitempty"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

type RefundResponse struct {
	ID              uuid.UUID  `json:"id"`
	OrderID         uuid.UUID  `json:"order_id"`
	CancellationID  uuid.UUID  `json:"cancellation_id"`
	Amount          int64      `json:"amount"`
	OriginalAmount  int64      `json:"original_amount"`
	RefundRate      float64    `json:"refund_rate"`
	RefundStatus    string     `json:"refund_status"`
	PgTransactionID *string    `json:"pg_transaction_id,omitempty"`
	RetryCount      int        `json:"retry_count"`
	LastError       *string    `json:"last_error,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type CancelOrderResponse struct {
	Cancellation CancellationResponse `json:"cancellation"`
	Refund       *RefundResponse      `json:"refund"`
}

type HistoryResponse struct {
	Cancellations []CancellationResponse `json:"cancellations"`
	Refunds       []RefundResponse       `json:"refunds"`
}

type RetryRefundResponse struct {
	Refund    RefundResponse `json:"refund"`
	Retryable bool           `json:"retryable"`
}

func toCancellationResponse(c *models.OrderCancellation) CancellationResponse {
	return CancellationResponse{
		ID:                   c.ID,
		OrderID:              c.OrderID,
		CancelType:           string(c.CancelType),
		Status:               string(c.Status),
		ReasonCategory:       c.ReasonCategory,
		ReasonDetail:         c.ReasonDetail,
		RefundAmount:         c.RefundAmount,
		RefundRate:           c.RefundRate,
		MenuRefundAmount:     c.MenuRefundAmount,
		DeliveryRefundAmount: c.DeliveryRefundAmount,
		CouponRefunded:       c.CouponRefunded,
		PointsRefunded:       c.PointsRefunded,
		ApprovedAt:           c.ApprovedAt,
		CompletedAt:          c.CompletedAt,
		CreatedAt:            c.CreatedAt,
	}
}

func toRefundResponse(r *models.Refund) RefundResponse {
	return RefundResponse{
		ID:              r.ID,
		OrderID:         r.OrderID,
		CancellationID:  r.CancellationID,
		Amount:          r.Amount,
		OriginalAmount:  r.OriginalAmount,
		RefundRate:      r.RefundRate,
		RefundStatus:    string(r.RefundStatus),
		PgTransactionID: r.PgTransactionID,
		RetryCount:      r.RetryCount,
		LastError:       r.LastError,
		CompletedAt:     r.CompletedAt,
		CreatedAt:       r.CreatedAt,
	}
}
