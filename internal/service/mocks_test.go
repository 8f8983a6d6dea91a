package service_test

import (
	"cancellation-service/internal/models"
	"cancellation-service/internal/repository"
	"cancellation-service/internal/service"
	"context"
	"time"

	"github.com/google/uuid"
)

// Моки для всех зависимостей сервисов отмен и возвратов

// MockOrderRepo
type MockOrderRepo struct {
	CreateFunc        func(ctx context.Context, o *models.Order) error
	GetByIDFunc       func(ctx context.Context, id uuid.UUID) (*models.Order, error)
	MarkCancelledFunc func(ctx context.Context, id uuid.UUID, reason *string) (bool, error)
}

func (m *MockOrderRepo) Create(ctx context.Context, o *models.Order) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, o)
	}
	return nil
}

func (m *MockOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockOrderRepo) MarkCancelled(ctx context.Context, id uuid.UUID, reason *string) (bool, error) {
	if m.MarkCancelledFunc != nil {
		return m.MarkCancelledFunc(ctx, id, reason)
	}
	return true, nil
}

// MockCancellationRepo
type MockCancellationRepo struct {
	CreateFunc            func(ctx context.Context, c *models.OrderCancellation) error
	GetByIDFunc           func(ctx context.Context, id uuid.UUID) (*models.OrderCancellation, error)
	GetOpenByOrderFunc    func(ctx context.Context, orderID uuid.UUID) (*models.OrderCancellation, error)
	ListByOrderFunc       func(ctx context.Context, orderID uuid.UUID) ([]models.OrderCancellation, error)
	ListPendingBeforeFunc  func(ctx context.Context, cutoff time.Time, limit int) ([]models.OrderCancellation, error)
	ListApprovedBeforeFunc func(ctx context.Context, cutoff time.Time, limit int) ([]models.OrderCancellation, error)
	UpdateStatusFunc       func(ctx context.Context, id uuid.UUID, from, to models.CancellationStatus, upd map[string]any) (bool, error)
	SetCouponRefundedFunc func(ctx context.Context, id uuid.UUID) error
	SetPointsRefundedFunc func(ctx context.Context, id uuid.UUID) error
	DeleteFunc            func(ctx context.Context, id uuid.UUID) error
}

func (m *MockCancellationRepo) Create(ctx context.Context, c *models.OrderCancellation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, c)
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (m *MockCancellationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.OrderCancellation, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockCancellationRepo) GetOpenByOrder(ctx context.Context, orderID uuid.UUID) (*models.OrderCancellation, error) {
	if m.GetOpenByOrderFunc != nil {
		return m.GetOpenByOrderFunc(ctx, orderID)
	}
	return nil, nil
}

func (m *MockCancellationRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderCancellation, error) {
	if m.ListByOrderFunc != nil {
		return m.ListByOrderFunc(ctx, orderID)
	}
	return nil, nil
}

func (m *MockCancellationRepo) ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.OrderCancellation, error) {
	if m.ListPendingBeforeFunc != nil {
		return m.ListPendingBeforeFunc(ctx, cutoff, limit)
	}
	return nil, nil
}

func (m *MockCancellationRepo) ListApprovedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.OrderCancellation, error) {
	if m.ListApprovedBeforeFunc != nil {
		return m.ListApprovedBeforeFunc(ctx, cutoff, limit)
	}
	return nil, nil
}

func (m *MockCancellationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.CancellationStatus, upd map[string]any) (bool, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, from, to, upd)
	}
	return true, nil
}

func (m *MockCancellationRepo) SetCouponRefunded(ctx context.Context, id uuid.UUID) error {
	if m.SetCouponRefundedFunc != nil {
		return m.SetCouponRefundedFunc(ctx, id)
	}
	return nil
}

func (m *MockCancellationRepo) SetPointsRefunded(ctx context.Context, id uuid.UUID) error {
	if m.SetPointsRefundedFunc != nil {
		return m.SetPointsRefundedFunc(ctx, id)
	}
	return nil
}

func (m *MockCancellationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockRefundRepo
type MockRefundRepo struct {
	CreateFunc            func(ctx context.Context, rf *models.Refund) error
	GetByIDFunc           func(ctx context.Context, id uuid.UUID) (*models.Refund, error)
	GetByCancellationFunc func(ctx context.Context, cancellationID uuid.UUID) (*models.Refund, error)
	ClaimProcessingFunc   func(ctx context.Context, id uuid.UUID) (bool, error)
	MarkCompletedFunc     func(ctx context.Context, id uuid.UUID, pgTransactionID string) error
	MarkFailedFunc        func(ctx context.Context, id uuid.UUID, lastError string) error
	ListRetryableFunc     func(ctx context.Context, maxRetries int, limit int) ([]models.Refund, error)

	ReclaimStaleProcessingFunc func(ctx context.Context, olderThan time.Duration) (int64, error)
}

func (m *MockRefundRepo) Create(ctx context.Context, rf *models.Refund) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, rf)
	}
	if rf.ID == uuid.Nil {
		rf.ID = uuid.New()
	}
	return nil
}

func (m *MockRefundRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Refund, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockRefundRepo) GetByCancellation(ctx context.Context, cancellationID uuid.UUID) (*models.Refund, error) {
	if m.GetByCancellationFunc != nil {
		return m.GetByCancellationFunc(ctx, cancellationID)
	}
	return nil, nil
}

func (m *MockRefundRepo) ClaimProcessing(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.ClaimProcessingFunc != nil {
		return m.ClaimProcessingFunc(ctx, id)
	}
	return true, nil
}

func (m *MockRefundRepo) MarkCompleted(ctx context.Context, id uuid.UUID, pgTransactionID string) error {
	if m.MarkCompletedFunc != nil {
		return m.MarkCompletedFunc(ctx, id, pgTransactionID)
	}
	return nil
}

func (m *MockRefundRepo) MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error {
	if m.MarkFailedFunc != nil {
		return m.MarkFailedFunc(ctx, id, lastError)
	}
	return nil
}

func (m *MockRefundRepo) ListRetryable(ctx context.Context, maxRetries int, limit int) ([]models.Refund, error) {
	if m.ListRetryableFunc != nil {
		return m.ListRetryableFunc(ctx, maxRetries, limit)
	}
	return nil, nil
}

func (m *MockRefundRepo) ReclaimStaleProcessing(ctx context.Context, olderThan time.Duration) (int64, error) {
	if m.ReclaimStaleProcessingFunc != nil {
		return m.ReclaimStaleProcessingFunc(ctx, olderThan)
	}
	return 0, nil
}

// MockCouponUsageRepo
type MockCouponUsageRepo struct {
	CreateFunc        func(ctx context.Context, u *models.CouponUsage) error
	GetByOrderFunc    func(ctx context.Context, orderID uuid.UUID) (*models.CouponUsage, error)
	MarkRecoveredFunc func(ctx context.Context, id uuid.UUID) (bool, error)
}

func (m *MockCouponUsageRepo) Create(ctx context.Context, u *models.CouponUsage) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, u)
	}
	return nil
}

func (m *MockCouponUsageRepo) GetByOrder(ctx context.Context, orderID uuid.UUID) (*models.CouponUsage, error) {
	if m.GetByOrderFunc != nil {
		return m.GetByOrderFunc(ctx, orderID)
	}
	return nil, nil
}

func (m *MockCouponUsageRepo) MarkRecovered(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.MarkRecoveredFunc != nil {
		return m.MarkRecoveredFunc(ctx, id)
	}
	return true, nil
}

// MockPointRepo
type MockPointRepo struct {
	CreateTransactionFunc func(ctx context.Context, tx *models.PointTransaction) error
	GetSpendByOrderFunc   func(ctx context.Context, orderID uuid.UUID) (*models.PointTransaction, error)
	HasRestoreForFunc     func(ctx context.Context, spendTxID uuid.UUID) (bool, error)
	GetBalanceFunc        func(ctx context.Context, userID uuid.UUID) (int64, error)
	AppendRestoreFunc     func(ctx context.Context, spend *models.PointTransaction) (*models.PointTransaction, error)
}

func (m *MockPointRepo) CreateTransaction(ctx context.Context, tx *models.PointTransaction) error {
	if m.CreateTransactionFunc != nil {
		return m.CreateTransactionFunc(ctx, tx)
	}
	return nil
}

func (m *MockPointRepo) GetSpendByOrder(ctx context.Context, orderID uuid.UUID) (*models.PointTransaction, error) {
	if m.GetSpendByOrderFunc != nil {
		return m.GetSpendByOrderFunc(ctx, orderID)
	}
	return nil, nil
}

func (m *MockPointRepo) HasRestoreFor(ctx context.Context, spendTxID uuid.UUID) (bool, error) {
	if m.HasRestoreForFunc != nil {
		return m.HasRestoreForFunc(ctx, spendTxID)
	}
	return false, nil
}

func (m *MockPointRepo) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	if m.GetBalanceFunc != nil {
		return m.GetBalanceFunc(ctx, userID)
	}
	return 0, nil
}

func (m *MockPointRepo) AppendRestore(ctx context.Context, spend *models.PointTransaction) (*models.PointTransaction, error) {
	if m.AppendRestoreFunc != nil {
		return m.AppendRestoreFunc(ctx, spend)
	}
	return &models.PointTransaction{}, nil
}

// MockRecoveryService
type MockRecoveryService struct {
	ProcessFunc func(ctx context.Context, cancellationID uuid.UUID) (*service.RecoveryResult, error)
}

func (m *MockRecoveryService) ProcessCancellationRecovery(ctx context.Context, cancellationID uuid.UUID) (*service.RecoveryResult, error) {
	if m.ProcessFunc != nil {
		return m.ProcessFunc(ctx, cancellationID)
	}
	return &service.RecoveryResult{FullyComplete: true}, nil
}

// MockRecoverer
type MockRecoverer struct {
	RecoverFunc func(ctx context.Context, orderID uuid.UUID) error
	Calls       int
}

func (m *MockRecoverer) Recover(ctx context.Context, orderID uuid.UUID) error {
	m.Calls++
	if m.RecoverFunc != nil {
		return m.RecoverFunc(ctx, orderID)
	}
	return nil
}

// MockRefundProcessor
type MockRefundProcessor struct {
	ProcessRefundFunc func(ctx context.Context, refundID uuid.UUID) (service.ProcessResult, error)
	Calls             int
}

func (m *MockRefundProcessor) ProcessRefund(ctx context.Context, refundID uuid.UUID) (service.ProcessResult, error) {
	m.Calls++
	if m.ProcessRefundFunc != nil {
		return m.ProcessRefundFunc(ctx, refundID)
	}
	return service.ProcessResult{}, nil
}

func newTestRepo(orders *MockOrderRepo, cancellations *MockCancellationRepo, refunds *MockRefundRepo, coupons *MockCouponUsageRepo, points *MockPointRepo) *repository.Repository {
	if orders == nil {
		orders = &MockOrderRepo{}
	}
	if cancellations == nil {
		cancellations = &MockCancellationRepo{}
	}
	if refunds == nil {
		refunds = &MockRefundRepo{}
	}
	if coupons == nil {
		coupons = &MockCouponUsageRepo{}
	}
	if points == nil {
		points = &MockPointRepo{}
	}
	return &repository.Repository{
		Orders:        orders,
		Cancellations: cancellations,
		Refunds:       refunds,
		CouponUsages:  coupons,
		Points:        points,
	}
}

func authCtx(userID uuid.UUID, role service.Role) context.Context {
	ctx := service.WithUserID(context.Background(), userID)
	return service.WithRole(ctx, role)
}
