package service

import (
	"context"

	"github.com/Beliver-cell/Fantasy-luxe-store/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UpdateStatus: административная смена статуса оплаченного заказа.
// По умолчанию любой статус может сменить любой другой; в строгом
// режиме действует allowedTransitions.
func (s *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if role != RoleAdmin {
		return nil, ErrUnauthorized
	}
	if !status.Valid() {
		return nil, validationErr("unknown status %q", status)
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !order.Payment {
		return nil, ErrOrderNotPaid
	}
	if order.Status == status {
		return order, nil
	}

	var from *models.OrderStatus
	if s.opts.StrictTransitions {
		if !canTransition(order.Status, status) {
			return nil, ErrInvalidStatusTransition
		}
		prev := order.Status
		from = &prev
	}

	applied, err := s.orders.UpdateStatus(ctx, orderID, from, status)
	if err != nil {
		return nil, err
	}
	if !applied {
		current, err := s.orders.GetByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, ErrOrderNotFound
		}
		// статус успели поменять параллельно
		return nil, ErrInvalidStatusTransition
	}

	prev := order.Status
	order.Status = status

	s.log.Info("Статус заказа изменён",
		zap.String("order_id", orderID.String()),
		zap.String("admin_id", userID),
		zap.String("from", string(prev)),
		zap.String("to", string(status)))

	if s.events != nil {
		if err := s.events.PublishOrderStatusChanged(ctx, OrderStatusChangedEvent{
			OrderID:      order.ID,
			UserID:       order.UserID,
			Email:        order.Address.Email,
			CustomerName: order.Address.FullName(),
			From:         prev,
			To:           status,
			ChangedAt:    s.now(),
		}); err != nil {
			s.log.Warn("Не удалось опубликовать событие смены статуса",
				zap.String("order_id", orderID.String()), zap.Error(err))
		}
	}

	return order, nil
}
