package gateway

import "context"

// RefundRequest is the provider-agnostic refund order. PaymentKey is the
// provider's transaction reference captured at payment time.
type RefundRequest struct {
	PaymentKey string
	Amount     int64
	Reason     string
}

// RefundResult reports the provider outcome. A refund the provider has
// already settled comes back as Success=true (idempotent settlement).
type RefundResult struct {
	Success         bool
	PgTransactionID string
	ErrorCode       string
	ErrorMessage    string
	Retryable       bool
}

// Client is the single seam to the external payment provider. Failures are
// classified, never raw: validation errors are non-retryable, transport and
// 5xx errors are retryable, already-refunded is success.
type Client interface {
	Refund(ctx context.Context, req RefundRequest) (RefundResult, error)
}
