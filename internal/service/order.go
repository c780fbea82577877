package service

import (
	"context"

	"github.com/Beliver-cell/Fantasy-luxe-store/internal/models"

	"github.com/google/uuid"
)

type CreateOrderItem struct {
	ProductID  string
	Name       string
	PriceCents int64
	Quantity   int
	Size       string
	Color      string
	Image      string
}

type CreateOrderInput struct {
	Items       []CreateOrderItem
	AmountCents int64
	Address     models.Address
}

type VerifyPaymentInput struct {
	TransactionID string
	OrderID       uuid.UUID
}

type CheckoutResult struct {
	Order *models.Order
	Link  string
}

type VerifyResult struct {
	Order *models.Order
	// AlreadyVerified: заказ был оплачен раньше, ничего не изменилось.
	AlreadyVerified bool
	Message         string
}

type CancelResult struct {
	Cancelled bool
	OrderID   uuid.UUID
	Message   string
}

type ListFilter struct {
	UserID *string
	Status *models.OrderStatus
	Paid   *bool
	Limit  int
	Offset int
}

type OrderService interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (*CheckoutResult, error)
	ContinuePayment(ctx context.Context, orderID uuid.UUID) (*CheckoutResult, error)
	VerifyPayment(ctx context.Context, in VerifyPaymentInput) (*VerifyResult, error)
	CancelPendingOrder(ctx context.Context, orderID *uuid.UUID) (*CancelResult, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) (*models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, f ListFilter) ([]models.Order, int64, error)
}

const (
	MsgPaymentSuccessful = "Payment Successful"
	MsgAlreadyVerified   = "Payment already verified"
	MsgOrderCancelled    = "Order cancelled successfully"
	MsgNoPendingOrder    = "No pending order found"
	MsgStatusUpdated     = "Status Updated"
)
