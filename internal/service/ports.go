package service

import (
	"context"

	"github.com/google/uuid"
)

// Locker narrows the read-then-insert race window in CancelOrder by
// serializing requests per order. Best effort: the partial unique index on
// order_cancellations is the actual guarantee, the lock only turns a
// constraint violation into a clean conflict response.
type Locker interface {
	AcquireOrderLock(ctx context.Context, orderID uuid.UUID) (release func(), acquired bool, err error)
}

// RefundProcessor drives a persisted refund through the payment gateway.
type RefundProcessor interface {
	ProcessRefund(ctx context.Context, refundID uuid.UUID) (ProcessResult, error)
}

// Recoverer reinstates one ancillary ledger for a cancelled order.
type Recoverer interface {
	Recover(ctx context.Context, orderID uuid.UUID) error
}
