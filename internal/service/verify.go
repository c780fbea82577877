package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Beliver-cell/Fantasy-luxe-store/internal/models"

	"go.uber.org/zap"
)

// VerifyPayment перепроверяет транзакцию у провайдера и финализирует заказ.
//
// Заказ и владелец проверяются до обращения к провайдеру: чужой запрос не
// может ни удалить, ни оплатить заказ. Несовпадение ссылки или суммы заказ
// не трогает; удаление только при явном отказе провайдера.
func (s *orderService) VerifyPayment(ctx context.Context, in VerifyPaymentInput) (*VerifyResult, error) {
	userID, _, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	txID := strings.TrimSpace(in.TransactionID)
	if txID == "" {
		return nil, validationErr("transaction id is required")
	}
	if s.gateway == nil || !s.gateway.Configured() {
		return nil, ErrGatewayNotConfigured
	}

	order, err := s.orders.GetByID(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.UserID != userID {
		s.auditor.Record(ctx, SecurityEvent{
			Kind:          SecurityOwnershipMismatch,
			UserID:        userID,
			OrderID:       order.ID,
			TransactionID: txID,
			Fields:        []zap.Field{zap.String("op", "verify_payment"), zap.String("owner_id", order.UserID)},
		})
		return nil, ErrUnauthorized
	}
	if order.Payment {
		return s.alreadyPaid(order, txID)
	}

	tx, err := s.gateway.VerifyTransaction(ctx, txID)
	if err != nil {
		s.log.Warn("Провайдер не дал окончательного ответа по транзакции",
			zap.String("order_id", order.ID.String()), zap.String("transaction_id", txID), zap.Error(err))
		return nil, newGatewayError("verify transaction", err)
	}

	if !tx.Successful() {
		if _, derr := s.orders.DeleteUnpaid(ctx, order.ID); derr != nil {
			s.log.Error("Не удалось удалить заказ после неуспешной оплаты",
				zap.String("order_id", order.ID.String()), zap.Error(derr))
			return nil, derr
		}
		s.publishCancelled(ctx, order, CancelReasonPaymentFailed)
		s.log.Info("Оплата не прошла, заказ удалён",
			zap.String("order_id", order.ID.String()),
			zap.String("transaction_id", txID),
			zap.String("gateway_status", tx.Status),
			zap.String("gateway_message", tx.Message))
		return nil, ErrVerificationFailed
	}

	if tx.TxRef != order.TxRef() {
		s.auditor.Record(ctx, SecurityEvent{
			Kind:          SecurityReferenceMismatch,
			UserID:        userID,
			OrderID:       order.ID,
			TransactionID: txID,
			Fields:        []zap.Field{zap.String("gateway_tx_ref", tx.TxRef)},
		})
		return nil, ErrReferenceMismatch
	}

	if !amountCovers(tx, order) {
		s.auditor.Record(ctx, SecurityEvent{
			Kind:          SecurityAmountMismatch,
			UserID:        userID,
			OrderID:       order.ID,
			TransactionID: txID,
			Fields: []zap.Field{
				zap.Int64("expected_amount_cents", order.AmountCents),
				zap.String("expected_currency", order.CurrencyCode),
				zap.Float64("paid_amount", tx.Amount),
				zap.String("paid_currency", tx.Currency),
			},
		})
		return nil, ErrAmountMismatch
	}

	gatewayRef := tx.ID
	if gatewayRef == "" {
		gatewayRef = txID
	}
	paidAt := s.now()
	applied, err := s.orders.MarkPaid(ctx, order.ID, gatewayRef, paidAt)
	if err != nil {
		return nil, err
	}
	if !applied {
		return s.afterLostFinalization(ctx, order, userID, gatewayRef, tx)
	}

	order.Payment = true
	order.Status = models.OrderStatusPlaced
	order.GatewayRef = &gatewayRef
	order.PaidAt = &paidAt

	// оплата зафиксирована: отключение клиента не должно прерывать побочные эффекты
	post := context.WithoutCancel(ctx)
	if s.carts != nil {
		if err := s.carts.ResetCart(post, userID); err != nil {
			// оплата уже зафиксирована, корзину можно очистить позже
			s.log.Error("Не удалось очистить корзину после оплаты",
				zap.String("user_id", userID), zap.String("order_id", order.ID.String()), zap.Error(err))
		}
	}
	if s.events != nil {
		if err := s.events.PublishOrderPlaced(post, placedEvent(order)); err != nil {
			s.log.Warn("Не удалось опубликовать событие оплаты заказа",
				zap.String("order_id", order.ID.String()), zap.Error(err))
		}
	}

	s.log.Info("Оплата подтверждена",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID),
		zap.String("gateway_ref", gatewayRef))

	return &VerifyResult{Order: order, Message: MsgPaymentSuccessful}, nil
}

// alreadyPaid: повтор с той же транзакцией: no-op успех; другая транзакция
// для оплаченного заказа означает возможное двойное списание.
func (s *orderService) alreadyPaid(order *models.Order, txID string) (*VerifyResult, error) {
	if order.GatewayRef != nil && *order.GatewayRef == txID {
		return &VerifyResult{Order: order, AlreadyVerified: true, Message: MsgAlreadyVerified}, nil
	}
	s.log.Warn("Проверка другой транзакции для уже оплаченного заказа",
		zap.String("order_id", order.ID.String()), zap.String("transaction_id", txID))
	return nil, ErrAlreadyPaid
}

// afterLostFinalization разбирает случай, когда условное обновление не сработало.
func (s *orderService) afterLostFinalization(ctx context.Context, order *models.Order, userID, gatewayRef string, tx *GatewayTransaction) (*VerifyResult, error) {
	current, err := s.orders.GetByID(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		// заказ удалили (отмена или чистка), а деньги списаны: нужна ручная сверка
		s.auditor.Record(ctx, SecurityEvent{
			Kind:          SecurityPaidAfterRemoval,
			UserID:        userID,
			OrderID:       order.ID,
			TransactionID: gatewayRef,
			Fields: []zap.Field{
				zap.Float64("paid_amount", tx.Amount),
				zap.String("paid_currency", tx.Currency),
			},
		})
		return nil, ErrOrderNotFound
	}
	if current.Payment {
		return s.alreadyPaid(current, gatewayRef)
	}
	return nil, fmt.Errorf("finalize order %s: conditional update not applied", order.ID)
}

// amountCovers проверяет инвариант: оплачено не меньше суммы заказа и в той же валюте.
func amountCovers(tx *GatewayTransaction, order *models.Order) bool {
	if tx.Currency != order.CurrencyCode {
		return false
	}
	paid, err := models.ToCents(tx.Amount)
	if err != nil {
		return false
	}
	return paid >= order.AmountCents
}

func formatCents(c int64) string {
	return fmt.Sprintf("%.2f", models.FromCents(c))
}
