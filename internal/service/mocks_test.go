package service_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Beliver-cell/Fantasy-luxe-store/internal/models"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/repository"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/service"

	"github.com/google/uuid"
)

// memOrderRepo повторяет семантику postgres-репозитория в памяти,
// включая уникальность неоплаченного заказа и условные обновления.
type memOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]models.Order

	CreateErr  error
	GetByIDErr error
	// AfterMarkPaid вызывается после успешного условного обновления
	AfterMarkPaid func()

	creates int
	deletes int
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: map[uuid.UUID]models.Order{}}
}

func (r *memOrderRepo) put(o models.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o
}

func (r *memOrderRepo) get(id uuid.UUID) (models.Order, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	return o, ok
}

func (r *memOrderRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

func (r *memOrderRepo) Create(_ context.Context, o *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CreateErr != nil {
		return r.CreateErr
	}
	for _, ex := range r.orders {
		if ex.UserID == o.UserID && !ex.Payment {
			return repository.ErrDuplicatePending
		}
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	r.orders[o.ID] = *o
	r.creates++
	return nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.GetByIDErr != nil {
		return nil, r.GetByIDErr
	}
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r *memOrderRepo) FindUnpaidByUser(_ context.Context, userID string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.UserID == userID && !o.Payment {
			return &o, nil
		}
	}
	return nil, nil
}

func (r *memOrderRepo) MarkPaid(_ context.Context, id uuid.UUID, ref string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.Payment {
		return false, nil
	}
	o.Payment = true
	o.Status = models.OrderStatusPlaced
	o.GatewayRef = &ref
	o.PaidAt = &at
	r.orders[id] = o
	if r.AfterMarkPaid != nil {
		r.AfterMarkPaid()
	}
	return true, nil
}

func (r *memOrderRepo) DeleteUnpaid(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.Payment {
		return false, nil
	}
	delete(r.orders, id)
	r.deletes++
	return true, nil
}

func (r *memOrderRepo) DeleteUnpaidByUser(_ context.Context, userID string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, o := range r.orders {
		if o.UserID == userID && !o.Payment {
			delete(r.orders, id)
			r.deletes++
			return &o, nil
		}
	}
	return nil, nil
}

func (r *memOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, from *models.OrderStatus, to models.OrderStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || !o.Payment || (from != nil && o.Status != *from) {
		return false, nil
	}
	o.Status = to
	r.orders[id] = o
	return true, nil
}

func (r *memOrderRepo) List(_ context.Context, f repository.OrderListFilter) ([]*models.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Order
	for _, o := range r.orders {
		if f.UserID != nil && o.UserID != *f.UserID {
			continue
		}
		if f.Status != nil && o.Status != *f.Status {
			continue
		}
		if f.Paid != nil && o.Payment != *f.Paid {
			continue
		}
		o := o
		out = append(out, &o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

func (r *memOrderRepo) DeleteStaleUnpaid(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, o := range r.orders {
		if !o.Payment && o.CreatedAt.Before(cutoff) {
			delete(r.orders, id)
			n++
		}
	}
	return n, nil
}

// MockGateway
type MockGateway struct {
	ConfiguredFunc        func() bool
	CreateCheckoutFunc    func(ctx context.Context, req service.CheckoutRequest) (string, error)
	VerifyTransactionFunc func(ctx context.Context, id string) (*service.GatewayTransaction, error)

	mu            sync.Mutex
	checkouts     []service.CheckoutRequest
	verifications int
}

func (m *MockGateway) Configured() bool {
	if m.ConfiguredFunc != nil {
		return m.ConfiguredFunc()
	}
	return true
}

func (m *MockGateway) CreateCheckout(ctx context.Context, req service.CheckoutRequest) (string, error) {
	m.mu.Lock()
	m.checkouts = append(m.checkouts, req)
	m.mu.Unlock()
	if m.CreateCheckoutFunc != nil {
		return m.CreateCheckoutFunc(ctx, req)
	}
	return "https://checkout.flutterwave.com/v3/hosted/pay/" + req.TxRef, nil
}

func (m *MockGateway) VerifyTransaction(ctx context.Context, id string) (*service.GatewayTransaction, error) {
	m.mu.Lock()
	m.verifications++
	m.mu.Unlock()
	if m.VerifyTransactionFunc != nil {
		return m.VerifyTransactionFunc(ctx, id)
	}
	return nil, nil
}

// MockCatalog
type MockCatalog struct {
	GetProductsFunc func(ctx context.Context, ids []string) (map[string]service.CatalogProduct, error)
}

func (m *MockCatalog) GetProducts(ctx context.Context, ids []string) (map[string]service.CatalogProduct, error) {
	if m.GetProductsFunc != nil {
		return m.GetProductsFunc(ctx, ids)
	}
	return map[string]service.CatalogProduct{}, nil
}

// MockCarts
type MockCarts struct {
	ResetCartFunc func(ctx context.Context, userID string) error

	mu     sync.Mutex
	resets []string
}

func (m *MockCarts) ResetCart(ctx context.Context, userID string) error {
	m.mu.Lock()
	m.resets = append(m.resets, userID)
	m.mu.Unlock()
	if m.ResetCartFunc != nil {
		return m.ResetCartFunc(ctx, userID)
	}
	return nil
}

func (m *MockCarts) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.resets)
}

// MockEventBus
type MockEventBus struct {
	mu        sync.Mutex
	ctxErrs   []error
	placed    []service.OrderPlacedEvent
	cancelled []service.OrderCancelledEvent
	changed   []service.OrderStatusChangedEvent
}

func (m *MockEventBus) PublishOrderPlaced(ctx context.Context, e service.OrderPlacedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		m.ctxErrs = append(m.ctxErrs, err)
		return err
	}
	m.placed = append(m.placed, e)
	return nil
}

func (m *MockEventBus) PublishOrderCancelled(_ context.Context, e service.OrderCancelledEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelled = append(m.cancelled, e)
	return nil
}

func (m *MockEventBus) PublishOrderStatusChanged(_ context.Context, e service.OrderStatusChangedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changed = append(m.changed, e)
	return nil
}

// MockAuditor
type MockAuditor struct {
	mu     sync.Mutex
	events []service.SecurityEvent
}

func (m *MockAuditor) Record(_ context.Context, ev service.SecurityEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

func (m *MockAuditor) kinds() []service.SecurityEventKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]service.SecurityEventKind, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.Kind)
	}
	return out
}
