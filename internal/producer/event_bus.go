package producer

import (
	"context"
	"errors"
	"fmt"

	"github.com/Beliver-cell/Fantasy-luxe-store/internal/models"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/service"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	EventOrderPlaced        = "order.placed"
	EventOrderCancelled     = "order.cancelled"
	EventOrderStatusChanged = "order.status_changed"

	TemplateOrderPlaced = "order_placed"
	TemplateOrderStatus = "order_status"

	eventTypeHeader = "event_type"
)

// KafkaEventBus публикует события заказов (ключ: id заказа, чтобы
// события одного заказа шли в одну партицию) и письма покупателю.
type KafkaEventBus struct {
	orders messageWriter
	emails *EmailProducer
	log    *zap.Logger
}

func NewKafkaEventBus(brokers []string, ordersTopic, emailTopic string, log *zap.Logger) *KafkaEventBus {
	return &KafkaEventBus{
		orders: newWriter(brokers, ordersTopic),
		emails: NewEmailProducer(brokers, emailTopic),
		log:    log,
	}
}

func (b *KafkaEventBus) publish(ctx context.Context, eventType, key string, payload any) error {
	return writeJSON(ctx, b.orders, key, payload, []kafka.Header{
		{Key: eventTypeHeader, Value: []byte(eventType)},
	})
}

func (b *KafkaEventBus) PublishOrderPlaced(ctx context.Context, e service.OrderPlacedEvent) error {
	if err := b.publish(ctx, EventOrderPlaced, e.OrderID.String(), e); err != nil {
		return fmt.Errorf("publish %s: %w", EventOrderPlaced, err)
	}
	if e.Email == "" {
		return nil
	}
	items := make([]map[string]any, 0, len(e.Items))
	for _, it := range e.Items {
		items = append(items, map[string]any{
			"name":      it.Name,
			"quantity":  it.Quantity,
			"lineTotal": formatMoney(it.LineTotal, e.Currency),
		})
	}
	return b.emails.SendEmail(ctx, e.OrderID.String(), EmailMessage{
		To:       e.Email,
		Subject:  "Your order is confirmed",
		Template: TemplateOrderPlaced,
		Data: map[string]any{
			"name":    e.CustomerName,
			"orderId": e.OrderID.String(),
			"items":   items,
			"amount":  formatMoney(e.AmountCents, e.Currency),
		},
	})
}

func (b *KafkaEventBus) PublishOrderCancelled(ctx context.Context, e service.OrderCancelledEvent) error {
	if err := b.publish(ctx, EventOrderCancelled, e.OrderID.String(), e); err != nil {
		return fmt.Errorf("publish %s: %w", EventOrderCancelled, err)
	}
	return nil
}

func (b *KafkaEventBus) PublishOrderStatusChanged(ctx context.Context, e service.OrderStatusChangedEvent) error {
	if err := b.publish(ctx, EventOrderStatusChanged, e.OrderID.String(), e); err != nil {
		return fmt.Errorf("publish %s: %w", EventOrderStatusChanged, err)
	}
	if e.Email == "" {
		return nil
	}
	return b.emails.SendEmail(ctx, e.OrderID.String(), EmailMessage{
		To:       e.Email,
		Subject:  "Order update: " + string(e.To),
		Template: TemplateOrderStatus,
		Data: map[string]any{
			"name":    e.CustomerName,
			"orderId": e.OrderID.String(),
			"status":  string(e.To),
		},
	})
}

func (b *KafkaEventBus) Close() error {
	return errors.Join(b.orders.Close(), b.emails.Close())
}

func formatMoney(cents int64, currency string) string {
	return fmt.Sprintf("%s %.2f", currency, models.FromCents(cents))
}

var _ service.EventBus = (*KafkaEventBus)(nil)
