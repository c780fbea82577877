package service

import (
	"context"
	"time"

	"github.com/Beliver-cell/Fantasy-luxe-store/internal/models"

	"github.com/google/uuid"
)

type OrderItemEvent struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	PriceCents int64  `json:"price_cents"`
	LineTotal  int64  `json:"line_total_cents"`
}

type OrderPlacedEvent struct {
	OrderID      uuid.UUID        `json:"order_id"`
	UserID       string           `json:"user_id"`
	Email        string           `json:"email"`
	CustomerName string           `json:"customer_name"`
	Items        []OrderItemEvent `json:"items"`
	AmountCents  int64            `json:"amount_cents"`
	Currency     string           `json:"currency"`
	GatewayRef   string           `json:"gateway_ref"`
	PaidAt       time.Time        `json:"paid_at"`
}

type OrderCancelledEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	UserID      string    `json:"user_id"`
	Reason      string    `json:"reason,omitempty"`
	CancelledAt time.Time `json:"cancelled_at"`
}

type OrderStatusChangedEvent struct {
	OrderID      uuid.UUID          `json:"order_id"`
	UserID       string             `json:"user_id"`
	Email        string             `json:"email"`
	CustomerName string             `json:"customer_name"`
	From         models.OrderStatus `json:"from"`
	To           models.OrderStatus `json:"to"`
	ChangedAt    time.Time          `json:"changed_at"`
}

type EventBus interface {
	PublishOrderPlaced(ctx context.Context, e OrderPlacedEvent) error
	PublishOrderCancelled(ctx context.Context, e OrderCancelledEvent) error
	PublishOrderStatusChanged(ctx context.Context, e OrderStatusChangedEvent) error
}

// Cancellation reasons.
const (
	CancelReasonUser          = "cancelled by customer"
	CancelReasonPaymentFailed = "payment not successful"
)

func placedEvent(o *models.Order) OrderPlacedEvent {
	items := make([]OrderItemEvent, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemEvent{
			ProductID:  it.ProductID,
			Name:       it.Name,
			Quantity:   it.Quantity,
			PriceCents: it.PriceCents,
			LineTotal:  it.LineTotalCents(),
		})
	}
	ev := OrderPlacedEvent{
		OrderID:      o.ID,
		UserID:       o.UserID,
		Email:        o.Address.Email,
		CustomerName: o.Address.FullName(),
		Items:        items,
		AmountCents:  o.AmountCents,
		Currency:     o.CurrencyCode,
	}
	if o.GatewayRef != nil {
		ev.GatewayRef = *o.GatewayRef
	}
	if o.PaidAt != nil {
		ev.PaidAt = *o.PaidAt
	}
	return ev
}
