package handlers_test

import (
	"context"

	"github.com/Beliver-cell/Fantasy-luxe-store/internal/models"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/service"

	"github.com/google/uuid"
)

type MockOrderService struct {
	CreateOrderFunc     func(ctx context.Context, in service.CreateOrderInput) (*service.CheckoutResult, error)
	ContinuePaymentFunc func(ctx context.Context, id uuid.UUID) (*service.CheckoutResult, error)
	VerifyPaymentFunc   func(ctx context.Context, in service.VerifyPaymentInput) (*service.VerifyResult, error)
	CancelFunc          func(ctx context.Context, id *uuid.UUID) (*service.CancelResult, error)
	UpdateStatusFunc    func(ctx context.Context, id uuid.UUID, st models.OrderStatus) (*models.Order, error)
	GetOrderFunc        func(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrdersFunc      func(ctx context.Context, f service.ListFilter) ([]models.Order, int64, error)
}

func (m *MockOrderService) CreateOrder(ctx context.Context, in service.CreateOrderInput) (*service.CheckoutResult, error) {
	return m.CreateOrderFunc(ctx, in)
}

func (m *MockOrderService) ContinuePayment(ctx context.Context, id uuid.UUID) (*service.CheckoutResult, error) {
	return m.ContinuePaymentFunc(ctx, id)
}

func (m *MockOrderService) VerifyPayment(ctx context.Context, in service.VerifyPaymentInput) (*service.VerifyResult, error) {
	return m.VerifyPaymentFunc(ctx, in)
}

func (m *MockOrderService) CancelPendingOrder(ctx context.Context, id *uuid.UUID) (*service.CancelResult, error) {
	return m.CancelFunc(ctx, id)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, st models.OrderStatus) (*models.Order, error) {
	return m.UpdateStatusFunc(ctx, id, st)
}

func (m *MockOrderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return m.GetOrderFunc(ctx, id)
}

func (m *MockOrderService) ListOrders(ctx context.Context, f service.ListFilter) ([]models.Order, int64, error) {
	return m.ListOrdersFunc(ctx, f)
}
