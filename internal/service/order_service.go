package service

import (
	"context"
	"errors"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/Beliver-cell/Fantasy-luxe-store/internal/models"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxItemsPerOrder = 100
	maxItemQuantity  = 1000
)

type Options struct {
	Currency          string
	DeliveryFeeCents  int64
	FrontendURL       string
	StoreTitle        string
	LogoURL           string
	StrictTransitions bool
}

type Deps struct {
	Orders  OrderRepo
	Gateway Gateway
	// Необязательные зависимости: nil отключает соответствующий шаг.
	Catalog CatalogReader
	Carts   CartResetter
	Events  EventBus
	Auditor SecurityAuditor
}

type orderService struct {
	orders  OrderRepo
	gateway Gateway
	catalog CatalogReader
	carts   CartResetter
	events  EventBus
	auditor SecurityAuditor
	opts    Options
	log     *zap.Logger
	now     func() time.Time
}

func NewOrderService(d Deps, opts Options, log *zap.Logger) OrderService {
	if opts.Currency == "" {
		opts.Currency = "NGN"
	}
	opts.Currency = strings.ToUpper(opts.Currency)
	auditor := d.Auditor
	if auditor == nil {
		auditor = NewLogAuditor(log)
	}
	return &orderService{
		orders:  d.Orders,
		gateway: d.Gateway,
		catalog: d.Catalog,
		carts:   d.Carts,
		events:  d.Events,
		auditor: auditor,
		opts:    opts,
		log:     log,
		now:     time.Now,
	}
}

func requireAuth(ctx context.Context) (string, Role, error) {
	uid, ok := UserIDFromContext(ctx)
	if !ok {
		return "", "", ErrUnauthenticated
	}
	role, ok := RoleFromContext(ctx)
	if !ok {
		role = RoleCustomer
	}
	return uid, role, nil
}

func (s *orderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*CheckoutResult, error) {
	userID, _, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	items, err := normalizeItems(in.Items)
	if err != nil {
		return nil, err
	}
	if in.AmountCents <= 0 {
		return nil, validationErr("amount must be greater than zero")
	}
	if err := validateAddress(in.Address); err != nil {
		return nil, err
	}

	if s.gateway == nil || !s.gateway.Configured() {
		return nil, ErrGatewayNotConfigured
	}

	if s.catalog != nil {
		items, err = s.repriceFromCatalog(ctx, items)
		if err != nil {
			return nil, err
		}
		var subtotal int64
		for _, it := range items {
			subtotal += it.LineTotalCents()
		}
		if due := subtotal + s.opts.DeliveryFeeCents; in.AmountCents < due {
			return nil, validationErr("amount %s is less than order total %s",
				formatCents(in.AmountCents), formatCents(due))
		}
	}

	// Быстрый отказ; окончательно единственность гарантирует уникальный индекс при вставке.
	existing, err := s.orders.FindUnpaidByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrConflictPendingOrder
	}

	order := &models.Order{
		ID:            uuid.New(),
		UserID:        userID,
		Items:         items,
		AmountCents:   in.AmountCents,
		CurrencyCode:  s.opts.Currency,
		Address:       in.Address,
		PaymentMethod: models.PaymentMethodFlutterwave,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		if errors.Is(err, repository.ErrDuplicatePending) {
			return nil, ErrConflictPendingOrder
		}
		return nil, err
	}

	link, err := s.checkout(ctx, order)
	if err != nil {
		// заказ без платёжной сессии не должен блокировать пользователя
		if _, derr := s.orders.DeleteUnpaid(context.WithoutCancel(ctx), order.ID); derr != nil {
			s.log.Error("Не удалось удалить заказ после ошибки платёжного шлюза",
				zap.String("order_id", order.ID.String()), zap.Error(derr))
		}
		s.log.Warn("Не удалось создать платёжную сессию",
			zap.String("order_id", order.ID.String()), zap.Error(err))
		return nil, err
	}

	s.log.Info("Заказ создан, ожидает оплаты",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID),
		zap.Int64("amount_cents", order.AmountCents),
		zap.String("currency", order.CurrencyCode))

	return &CheckoutResult{Order: order, Link: link}, nil
}

func (s *orderService) ContinuePayment(ctx context.Context, orderID uuid.UUID) (*CheckoutResult, error) {
	userID, _, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.UserID != userID {
		s.auditor.Record(ctx, SecurityEvent{
			Kind:    SecurityOwnershipMismatch,
			UserID:  userID,
			OrderID: orderID,
			Fields:  []zap.Field{zap.String("op", "continue_payment")},
		})
		return nil, ErrUnauthorized
	}
	if order.Payment {
		return nil, ErrAlreadyPaid
	}
	if s.gateway == nil || !s.gateway.Configured() {
		return nil, ErrGatewayNotConfigured
	}

	link, err := s.checkout(ctx, order)
	if err != nil {
		return nil, err
	}
	return &CheckoutResult{Order: order, Link: link}, nil
}

func (s *orderService) CancelPendingOrder(ctx context.Context, orderID *uuid.UUID) (*CancelResult, error) {
	userID, _, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	var cancelled *models.Order
	if orderID != nil {
		order, err := s.orders.GetByID(ctx, *orderID)
		if err != nil {
			return nil, err
		}
		if order == nil {
			return &CancelResult{Message: MsgNoPendingOrder}, nil
		}
		if order.UserID != userID {
			s.auditor.Record(ctx, SecurityEvent{
				Kind:    SecurityOwnershipMismatch,
				UserID:  userID,
				OrderID: order.ID,
				Fields:  []zap.Field{zap.String("op", "cancel_pending")},
			})
			return nil, ErrUnauthorized
		}
		if order.Payment {
			return nil, ErrCannotCancelPaid
		}
		deleted, err := s.orders.DeleteUnpaid(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		if !deleted {
			// между чтением и удалением заказ успели оплатить или удалить
			current, err := s.orders.GetByID(ctx, order.ID)
			if err != nil {
				return nil, err
			}
			if current != nil && current.Payment {
				return nil, ErrCannotCancelPaid
			}
			return &CancelResult{Message: MsgNoPendingOrder}, nil
		}
		cancelled = order
	} else {
		cancelled, err = s.orders.DeleteUnpaidByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		if cancelled == nil {
			return &CancelResult{Message: MsgNoPendingOrder}, nil
		}
	}

	s.publishCancelled(ctx, cancelled, CancelReasonUser)
	s.log.Info("Неоплаченный заказ отменён пользователем",
		zap.String("order_id", cancelled.ID.String()), zap.String("user_id", userID))

	return &CancelResult{Cancelled: true, OrderID: cancelled.ID, Message: MsgOrderCancelled}, nil
}

func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	ord, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}
	// чужой заказ для клиента неотличим от несуществующего
	if role != RoleAdmin && ord.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return ord, nil
}

func (s *orderService) ListOrders(ctx context.Context, f ListFilter) ([]models.Order, int64, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, 0, err
	}
	if role != RoleAdmin {
		f.UserID = &userID
	}

	ordersPtr, total, err := s.orders.List(ctx, repository.OrderListFilter{
		UserID: f.UserID,
		Status: f.Status,
		Paid:   f.Paid,
		Limit:  f.Limit,
		Offset: f.Offset,
	})
	if err != nil {
		return nil, 0, err
	}

	orders := make([]models.Order, len(ordersPtr))
	for i, o := range ordersPtr {
		orders[i] = *o
	}
	return orders, total, nil
}

func (s *orderService) checkout(ctx context.Context, o *models.Order) (string, error) {
	link, err := s.gateway.CreateCheckout(ctx, CheckoutRequest{
		TxRef:       o.TxRef(),
		AmountCents: o.AmountCents,
		Currency:    o.CurrencyCode,
		RedirectURL: s.redirectURL(o),
		Customer: CheckoutCustomer{
			Email: o.Address.Email,
			Name:  o.Address.FullName(),
			Phone: o.Address.Phone,
		},
		Title:   s.opts.StoreTitle,
		LogoURL: s.opts.LogoURL,
	})
	if err != nil {
		return "", newGatewayError("create checkout", err)
	}
	if link == "" {
		return "", &GatewayError{Op: "create checkout", Message: "payment link missing from gateway response"}
	}
	return link, nil
}

func (s *orderService) redirectURL(o *models.Order) string {
	base := strings.TrimRight(s.opts.FrontendURL, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	q := url.Values{}
	q.Set("orderId", o.ID.String())
	q.Set("method", o.PaymentMethod.Tag())
	return base + "/verify?" + q.Encode()
}

func (s *orderService) repriceFromCatalog(ctx context.Context, items []models.OrderItem) ([]models.OrderItem, error) {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.catalog.GetProducts(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.OrderItem, len(items))
	for i, it := range items {
		p, ok := products[it.ProductID]
		if !ok {
			return nil, validationErr("unknown product %q", it.ProductID)
		}
		it.Name = p.Name
		it.PriceCents = p.PriceCents
		if it.Image == "" {
			it.Image = p.Image
		}
		out[i] = it
	}
	return out, nil
}

func (s *orderService) publishCancelled(ctx context.Context, o *models.Order, reason string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishOrderCancelled(ctx, OrderCancelledEvent{
		OrderID:     o.ID,
		UserID:      o.UserID,
		Reason:      reason,
		CancelledAt: s.now(),
	}); err != nil {
		s.log.Warn("Не удалось опубликовать событие отмены заказа",
			zap.String("order_id", o.ID.String()), zap.Error(err))
	}
}

func normalizeItems(in []CreateOrderItem) ([]models.OrderItem, error) {
	if len(in) == 0 {
		return nil, validationErr("order must contain at least one item")
	}
	if len(in) > maxItemsPerOrder {
		return nil, validationErr("order cannot contain more than %d items", maxItemsPerOrder)
	}
	out := make([]models.OrderItem, 0, len(in))
	for i, it := range in {
		pid := strings.TrimSpace(it.ProductID)
		if pid == "" {
			return nil, validationErr("item %d: product id is required", i)
		}
		if it.Quantity <= 0 || it.Quantity > maxItemQuantity {
			return nil, validationErr("item %d: quantity must be between 1 and %d", i, maxItemQuantity)
		}
		if it.PriceCents < 0 {
			return nil, validationErr("item %d: price must not be negative", i)
		}
		out = append(out, models.OrderItem{
			ProductID:  pid,
			Name:       strings.TrimSpace(it.Name),
			PriceCents: it.PriceCents,
			Quantity:   it.Quantity,
			Size:       strings.TrimSpace(it.Size),
			Color:      strings.TrimSpace(it.Color),
			Image:      strings.TrimSpace(it.Image),
		})
	}
	return out, nil
}

func validateAddress(a models.Address) error {
	if strings.TrimSpace(a.FirstName) == "" || strings.TrimSpace(a.LastName) == "" {
		return validationErr("first and last name are required")
	}
	if strings.TrimSpace(a.Email) == "" {
		return validationErr("email is required")
	}
	if _, err := mail.ParseAddress(a.Email); err != nil {
		return validationErr("email is invalid")
	}
	return nil
}
