package service_test

import (
	"cancellation-service/internal/gateway"
	"cancellation-service/internal/models"
	"cancellation-service/internal/service"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MockGateway
type MockGateway struct {
	RefundFunc func(ctx context.Context, req gateway.RefundRequest) (gateway.RefundResult, error)
	Calls      int
}

func (m *MockGateway) Refund(ctx context.Context, req gateway.RefundRequest) (gateway.RefundResult, error) {
	m.Calls++
	if m.RefundFunc != nil {
		return m.RefundFunc(ctx, req)
	}
	return gateway.RefundResult{Success: true, PgTransactionID: "pg_tx_001"}, nil
}

func newRefund(userID uuid.UUID, status models.RefundStatus) *models.Refund {
	return &models.Refund{
		ID:             uuid.New(),
		CancellationID: uuid.New(),
		OrderID:        uuid.New(),
		UserID:         userID,
		Amount:         23000,
		PaymentKey:     "pay_abc123",
		RefundStatus:   status,
	}
}

// refundStore держит одну строку возврата и ведёт её через мок-репозиторий,
// имитируя переходы статусов как в Postgres.
func refundStore(rf *models.Refund) *MockRefundRepo {
	return &MockRefundRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Refund, error) {
			if id != rf.ID {
				return nil, nil
			}
			cp := *rf
			return &cp, nil
		},
		ClaimProcessingFunc: func(ctx context.Context, id uuid.UUID) (bool, error) {
			if rf.RefundStatus != models.RefundStatusPending && rf.RefundStatus != models.RefundStatusFailed {
				return false, nil
			}
			if rf.RefundStatus == models.RefundStatusFailed {
				rf.RetryCount++
			}
			rf.RefundStatus = models.RefundStatusProcessing
			return true, nil
		},
		MarkCompletedFunc: func(ctx context.Context, id uuid.UUID, pgTransactionID string) error {
			rf.RefundStatus = models.RefundStatusCompleted
			rf.PgTransactionID = &pgTransactionID
			rf.LastError = nil
			return nil
		},
		MarkFailedFunc: func(ctx context.Context, id uuid.UUID, lastError string) error {
			rf.RefundStatus = models.RefundStatusFailed
			rf.LastError = &lastError
			return nil
		},
	}
}

func TestProcessRefund_SuccessMarksCompleted(t *testing.T) {
	rf := newRefund(uuid.New(), models.RefundStatusPending)
	pg := &MockGateway{}
	repo := newTestRepo(nil, nil, refundStore(rf), nil, nil)
	svc := service.NewRefundService(repo, pg, nil, zap.NewNop())

	res, err := svc.ProcessRefund(context.Background(), rf.ID)
	if err != nil {
		t.Fatalf("ProcessRefund: %v", err)
	}
	if pg.Calls != 1 {
		t.Fatalf("gateway expected exactly 1 call, got %d", pg.Calls)
	}
	if res.Refund.RefundStatus != models.RefundStatusCompleted {
		t.Fatalf("status expected completed got %s", res.Refund.RefundStatus)
	}
	if res.Refund.PgTransactionID == nil || *res.Refund.PgTransactionID != "pg_tx_001" {
		t.Fatalf("pg transaction id not persisted: %+v", res.Refund)
	}
	if res.Refund.RetryCount != 0 {
		t.Fatalf("first attempt must not count as retry, got %d", res.Refund.RetryCount)
	}
}

func TestProcessRefund_CompletedIsIdempotent(t *testing.T) {
	rf := newRefund(uuid.New(), models.RefundStatusCompleted)
	done := "pg_tx_done"
	rf.PgTransactionID = &done
	pg := &MockGateway{}
	repo := newTestRepo(nil, nil, refundStore(rf), nil, nil)
	svc := service.NewRefundService(repo, pg, nil, zap.NewNop())

	res, err := svc.ProcessRefund(context.Background(), rf.ID)
	if err != nil {
		t.Fatalf("ProcessRefund: %v", err)
	}
	if pg.Calls != 0 {
		t.Fatalf("completed refund must not hit the gateway again, calls=%d", pg.Calls)
	}
	if res.Refund.PgTransactionID == nil || *res.Refund.PgTransactionID != "pg_tx_done" {
		t.Fatalf("existing settlement must be returned as is: %+v", res.Refund)
	}
}

func TestProcessRefund_RetryAfterFailureIncrementsCount(t *testing.T) {
	rf := newRefund(uuid.New(), models.RefundStatusFailed)
	rf.RetryCount = 2
	prev := "NETWORK_ERROR: connection refused"
	rf.LastError = &prev
	pg := &MockGateway{}
	repo := newTestRepo(nil, nil, refundStore(rf), nil, nil)
	svc := service.NewRefundService(repo, pg, nil, zap.NewNop())

	res, err := svc.ProcessRefund(context.Background(), rf.ID)
	if err != nil {
		t.Fatalf("ProcessRefund: %v", err)
	}
	if res.Refund.RefundStatus != models.RefundStatusCompleted {
		t.Fatalf("status expected completed got %s", res.Refund.RefundStatus)
	}
	if res.Refund.RetryCount != 3 {
		t.Fatalf("retry count expected 3 got %d", res.Refund.RetryCount)
	}
	if res.Refund.LastError != nil {
		t.Fatalf("last_error must be cleared on success, got %q", *res.Refund.LastError)
	}
}

func TestProcessRefund_NonRetryableFailure(t *testing.T) {
	rf := newRefund(uuid.New(), models.RefundStatusPending)
	pg := &MockGateway{
		RefundFunc: func(ctx context.Context, req gateway.RefundRequest) (gateway.RefundResult, error) {
			return gateway.RefundResult{
				ErrorCode:    "INVALID_PAYMENT_KEY",
				ErrorMessage: "payment not found",
				Retryable:    false,
			}, nil
		},
	}
	repo := newTestRepo(nil, nil, refundStore(rf), nil, nil)
	svc := service.NewRefundService(repo, pg, nil, zap.NewNop())

	res, err := svc.ProcessRefund(context.Background(), rf.ID)
	if err != nil {
		t.Fatalf("gateway failure must not surface as error: %v", err)
	}
	if res.Refund.RefundStatus != models.RefundStatusFailed {
		t.Fatalf("status expected failed got %s", res.Refund.RefundStatus)
	}
	if res.Retryable {
		t.Fatalf("validation failure must be terminal")
	}
	if res.Refund.LastError == nil || *res.Refund.LastError != "INVALID_PAYMENT_KEY: payment not found" {
		t.Fatalf("last_error mismatch: %v", res.Refund.LastError)
	}
}

func TestProcessRefund_NetworkFailureRetryable(t *testing.T) {
	rf := newRefund(uuid.New(), models.RefundStatusPending)
	pg := &MockGateway{
		RefundFunc: func(ctx context.Context, req gateway.RefundRequest) (gateway.RefundResult, error) {
			return gateway.RefundResult{
				ErrorCode:    "NETWORK_ERROR",
				ErrorMessage: "dial tcp: i/o timeout",
				Retryable:    true,
			}, nil
		},
	}
	repo := newTestRepo(nil, nil, refundStore(rf), nil, nil)
	svc := service.NewRefundService(repo, pg, nil, zap.NewNop())

	res, err := svc.ProcessRefund(context.Background(), rf.ID)
	if err != nil {
		t.Fatalf("ProcessRefund: %v", err)
	}
	if !res.Retryable {
		t.Fatalf("network failure must stay retry-eligible")
	}
	if res.Refund.RefundStatus != models.RefundStatusFailed {
		t.Fatalf("status expected failed got %s", res.Refund.RefundStatus)
	}
}

func TestProcessRefund_ConcurrentClaimNoOp(t *testing.T) {
	rf := newRefund(uuid.New(), models.RefundStatusPending)
	pg := &MockGateway{}
	refunds := refundStore(rf)
	refunds.ClaimProcessingFunc = func(ctx context.Context, id uuid.UUID) (bool, error) {
		// другой воркер уже захватил строку
		rf.RefundStatus = models.RefundStatusProcessing
		return false, nil
	}
	repo := newTestRepo(nil, nil, refunds, nil, nil)
	svc := service.NewRefundService(repo, pg, nil, zap.NewNop())

	res, err := svc.ProcessRefund(context.Background(), rf.ID)
	if err != nil {
		t.Fatalf("ProcessRefund: %v", err)
	}
	if pg.Calls != 0 {
		t.Fatalf("losing the claim must not call the gateway, calls=%d", pg.Calls)
	}
	if res.Refund.RefundStatus != models.RefundStatusProcessing {
		t.Fatalf("expected current processing row back, got %s", res.Refund.RefundStatus)
	}
}

func TestProcessRefund_CancelledNotRetryable(t *testing.T) {
	rf := newRefund(uuid.New(), models.RefundStatusCancelled)
	repo := newTestRepo(nil, nil, refundStore(rf), nil, nil)
	svc := service.NewRefundService(repo, &MockGateway{}, nil, zap.NewNop())

	if _, err := svc.ProcessRefund(context.Background(), rf.ID); !errors.Is(err, service.ErrRefundNotRetryable) {
		t.Fatalf("expected ErrRefundNotRetryable got %v", err)
	}
}

func TestRetryRefund_Guards(t *testing.T) {
	owner := uuid.New()

	completed := newRefund(owner, models.RefundStatusCompleted)
	repo := newTestRepo(nil, nil, refundStore(completed), nil, nil)
	svc := service.NewRefundService(repo, &MockGateway{}, nil, zap.NewNop())
	if _, err := svc.RetryRefund(authCtx(owner, service.RoleCustomer), completed.ID); !errors.Is(err, service.ErrRefundAlreadyCompleted) {
		t.Fatalf("expected ErrRefundAlreadyCompleted got %v", err)
	}

	processing := newRefund(owner, models.RefundStatusProcessing)
	repo = newTestRepo(nil, nil, refundStore(processing), nil, nil)
	svc = service.NewRefundService(repo, &MockGateway{}, nil, zap.NewNop())
	if _, err := svc.RetryRefund(authCtx(owner, service.RoleCustomer), processing.ID); !errors.Is(err, service.ErrRefundNotRetryable) {
		t.Fatalf("expected ErrRefundNotRetryable got %v", err)
	}

	// чужой возврат недоступен не-админу
	failed := newRefund(owner, models.RefundStatusFailed)
	repo = newTestRepo(nil, nil, refundStore(failed), nil, nil)
	svc = service.NewRefundService(repo, &MockGateway{}, nil, zap.NewNop())
	if _, err := svc.RetryRefund(authCtx(uuid.New(), service.RoleCustomer), failed.ID); !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("expected ErrForbidden got %v", err)
	}
}

func TestRetryRefund_ManualRetryIgnoresCeiling(t *testing.T) {
	owner := uuid.New()
	rf := newRefund(owner, models.RefundStatusFailed)
	rf.RetryCount = 9 // далеко за порогом свипера
	pg := &MockGateway{}
	repo := newTestRepo(nil, nil, refundStore(rf), nil, nil)
	svc := service.NewRefundService(repo, pg, nil, zap.NewNop())

	res, err := svc.RetryRefund(authCtx(owner, service.RoleAdmin), rf.ID)
	if err != nil {
		t.Fatalf("RetryRefund: %v", err)
	}
	if pg.Calls != 1 {
		t.Fatalf("manual retry must reach the gateway, calls=%d", pg.Calls)
	}
	if res.Refund.RefundStatus != models.RefundStatusCompleted {
		t.Fatalf("status expected completed got %s", res.Refund.RefundStatus)
	}
}

func TestGetRefund_NotFound(t *testing.T) {
	repo := newTestRepo(nil, nil, &MockRefundRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Refund, error) { return nil, nil },
	}, nil, nil)
	svc := service.NewRefundService(repo, &MockGateway{}, nil, zap.NewNop())

	if _, err := svc.GetRefund(authCtx(uuid.New(), service.RoleCustomer), uuid.New()); !errors.Is(err, service.ErrRefundNotFound) {
		t.Fatalf("expected ErrRefundNotFound got %v", err)
	}
}
