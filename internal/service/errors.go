package service

import "errors"

var (
	ErrUnauthorized           = errors.New("unauthorized")
	ErrForbidden              = errors.New("forbidden")
	ErrOrderNotFound          = errors.New("order not found")
	ErrCancellationNotFound   = errors.New("cancellation not found")
	ErrRefundNotFound         = errors.New("refund not found")
	ErrAlreadyCancelled       = errors.New("order already cancelled")
	ErrPendingCancelExists    = errors.New("pending cancellation already exists")
	ErrInvalidReason          = errors.New("invalid cancellation reason")
	ErrPolicyDisallows        = errors.New("cancellation not allowed by policy")
	ErrNotPending             = errors.New("cancellation is not pending")
	ErrRefundAlreadyCompleted = errors.New("refund already completed")
	ErrRefundNotRetryable     = errors.New("refund is not retryable")
	ErrCouponNotRecoverable   = errors.New("coupon is not recoverable")
)
