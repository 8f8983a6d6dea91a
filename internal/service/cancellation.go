package service

import (
	"cancellation-service/internal/models"
	"context"

	"github.com/google/uuid"
)

type CancelOrderInput struct {
	ReasonCategory string
	ReasonDetail   *string
}

// CancelOrderResult: refund is nil when the policy grants no money back or
// the cancellation still waits for approval.
type CancelOrderResult struct {
	Cancellation *models.OrderCancellation
	Refund       *models.Refund
}

type CancellationHistory struct {
	Cancellations []models.OrderCancellation
	Refunds       []models.Refund
}

type CancellationService interface {
	CancelOrder(ctx context.Context, orderID uuid.UUID, in CancelOrderInput) (*CancelOrderResult, error)
	GetHistory(ctx context.Context, orderID uuid.UUID) (*CancellationHistory, error)
	Approve(ctx context.Context, cancellationID uuid.UUID) (*CancelOrderResult, error)
	Reject(ctx context.Context, cancellationID uuid.UUID) (*models.OrderCancellation, error)
	// AutoApproveStale approves pending cancellations older than the cutoff
	// with the system actor; used by the sweeper, funnels into the same
	// recovery path as manual approval.
	AutoApproveStale(ctx context.Context, olderThanMinutes int, limit int) (int, error)
	// ResumeApproved re-drives cancellations stuck at approved: the tail
	// after the approval commit (order update, refund, completion, recovery)
	// is idempotent, so a crash or DB error mid-way leaves a row the sweeper
	// can pick up and finish.
	ResumeApproved(ctx context.Context, olderThanMinutes int, limit int) (int, error)
}

// Категории причин отмены по ролям заявителя
var customerReasons = map[string]bool{
	"CHANGE_OF_MIND":     true,
	"ORDERED_BY_MISTAKE": true,
	"DELIVERY_TOO_SLOW":  true,
	"OTHER":              true,
}

var vendorReasons = map[string]bool{
	"OUT_OF_STOCK":     true,
	"STORE_CLOSED":     true,
	"CANNOT_FULFILL":   true,
	"CUSTOMER_REQUEST": true,
	"OTHER":            true,
}

func reasonAllowed(role Role, category string) bool {
	switch role {
	case RoleVendor, RoleAdmin:
		return vendorReasons[category]
	default:
		return customerReasons[category]
	}
}
