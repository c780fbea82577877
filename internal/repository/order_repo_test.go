package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Beliver-cell/Fantasy-luxe-store/internal/migrate"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/models"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/repository"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/testutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := testutil.SetupTestPostgres(t)
	if err := migrate.MigrateOrderDB(context.Background(), db, zap.NewNop(), migrate.DefaultMigrateOptions()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newOrder(userID string, amountCents int64) *models.Order {
	return &models.Order{
		UserID: userID,
		Items: []models.OrderItem{
			{ProductID: "64b7f0c2a1b2c3d4e5f60718", Name: "Silk Scarf", PriceCents: amountCents, Quantity: 1},
		},
		AmountCents:   amountCents,
		CurrencyCode:  "NGN",
		Address:       models.Address{FirstName: "Ada", LastName: "Obi", Email: "ada@example.com"},
		PaymentMethod: models.PaymentMethodFlutterwave,
	}
}

func TestOrderRepo_CreateGetAndSnapshot(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewOrderRepo(db)
	ctx := context.Background()

	ord := newOrder("user-1", 500000)
	if err := repo.Create(ctx, ord); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ord.ID == uuid.Nil {
		t.Fatalf("expected generated id")
	}

	got, err := repo.GetByID(ctx, ord.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: %v %v", got, err)
	}
	if got.Payment || got.Status != models.OrderStatusUnset {
		t.Fatalf("new order must be unpaid without status: %+v", got)
	}
	if len(got.Items) != 1 || got.Items[0].Name != "Silk Scarf" || got.Address.Email != "ada@example.com" {
		t.Fatalf("snapshot not round-tripped: %+v", got)
	}

	missing, err := repo.GetByID(ctx, uuid.New())
	if err != nil || missing != nil {
		t.Fatalf("GetByID missing: %v %v", missing, err)
	}
}

func TestOrderRepo_OneUnpaidOrderPerUser(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewOrderRepo(db)
	ctx := context.Background()

	if err := repo.Create(ctx, newOrder("user-1", 1000)); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	err := repo.Create(ctx, newOrder("user-1", 2000))
	if !errors.Is(err, repository.ErrDuplicatePending) {
		t.Fatalf("expected ErrDuplicatePending, got %v", err)
	}

	// другой пользователь не затронут
	if err := repo.Create(ctx, newOrder("user-2", 1000)); err != nil {
		t.Fatalf("Create for other user: %v", err)
	}

	var cnt int64
	db.Model(&models.Order{}).Where("user_id = ?", "user-1").Count(&cnt)
	if cnt != 1 {
		t.Fatalf("expected exactly one order for user-1, got %d", cnt)
	}
}

func TestOrderRepo_ConcurrentCreateAdmitsOne(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewOrderRepo(db)
	ctx := context.Background()

	const n = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, dups int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Create(ctx, newOrder("racer", 1000))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, repository.ErrDuplicatePending):
				dups++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	if ok != 1 || dups != n-1 {
		t.Fatalf("expected 1 success and %d duplicates, got %d/%d", n-1, ok, dups)
	}
}

func TestOrderRepo_MarkPaidIsCompareAndSet(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewOrderRepo(db)
	ctx := context.Background()

	ord := newOrder("user-1", 1000)
	if err := repo.Create(ctx, ord); err != nil {
		t.Fatalf("Create: %v", err)
	}

	applied, err := repo.MarkPaid(ctx, ord.ID, "flw-1", time.Now())
	if err != nil || !applied {
		t.Fatalf("MarkPaid first: applied=%v err=%v", applied, err)
	}

	// админ продвинул статус; повторная финализация не должна его затереть
	if ok, err := repo.UpdateStatus(ctx, ord.ID, nil, models.OrderStatusShipped); err != nil || !ok {
		t.Fatalf("UpdateStatus: ok=%v err=%v", ok, err)
	}
	applied, err = repo.MarkPaid(ctx, ord.ID, "flw-2", time.Now())
	if err != nil || applied {
		t.Fatalf("MarkPaid second: applied=%v err=%v", applied, err)
	}

	got, _ := repo.GetByID(ctx, ord.ID)
	if !got.Payment || got.Status != models.OrderStatusShipped || got.GatewayRef == nil || *got.GatewayRef != "flw-1" {
		t.Fatalf("paid order mutated: %+v", got)
	}

	// после оплаты пользователь может создать новый заказ
	if err := repo.Create(ctx, newOrder("user-1", 2000)); err != nil {
		t.Fatalf("Create after payment: %v", err)
	}
}

func TestOrderRepo_PaymentFlagCannotRevert(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewOrderRepo(db)
	ctx := context.Background()

	ord := newOrder("user-1", 1000)
	_ = repo.Create(ctx, ord)
	if _, err := repo.MarkPaid(ctx, ord.ID, "flw-1", time.Now()); err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}

	err := db.Model(&models.Order{}).Where("id = ?", ord.ID).
		Updates(map[string]any{"payment": false, "status": ""}).Error
	if err == nil {
		t.Fatalf("expected payment revert to be rejected")
	}

	deleted, err := repo.DeleteUnpaid(ctx, ord.ID)
	if err != nil || deleted {
		t.Fatalf("DeleteUnpaid on paid order: deleted=%v err=%v", deleted, err)
	}
}

func TestOrderRepo_DeleteUnpaidByUser(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewOrderRepo(db)
	ctx := context.Background()

	ord := newOrder("user-1", 1000)
	_ = repo.Create(ctx, ord)

	deleted, err := repo.DeleteUnpaidByUser(ctx, "user-1")
	if err != nil || deleted == nil || deleted.ID != ord.ID {
		t.Fatalf("DeleteUnpaidByUser: %+v %v", deleted, err)
	}

	deleted, err = repo.DeleteUnpaidByUser(ctx, "user-1")
	if err != nil || deleted != nil {
		t.Fatalf("second DeleteUnpaidByUser: %+v %v", deleted, err)
	}
}

func TestOrderRepo_UpdateStatusRequiresPaidAndExpected(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewOrderRepo(db)
	ctx := context.Background()

	ord := newOrder("user-1", 1000)
	_ = repo.Create(ctx, ord)

	ok, err := repo.UpdateStatus(ctx, ord.ID, nil, models.OrderStatusShipped)
	if err != nil || ok {
		t.Fatalf("status on unpaid order: ok=%v err=%v", ok, err)
	}

	_, _ = repo.MarkPaid(ctx, ord.ID, "flw-1", time.Now())

	wrong := models.OrderStatusShipped
	ok, err = repo.UpdateStatus(ctx, ord.ID, &wrong, models.OrderStatusDelivered)
	if err != nil || ok {
		t.Fatalf("status with stale expectation: ok=%v err=%v", ok, err)
	}

	placed := models.OrderStatusPlaced
	ok, err = repo.UpdateStatus(ctx, ord.ID, &placed, models.OrderStatusShipped)
	if err != nil || !ok {
		t.Fatalf("status with matching expectation: ok=%v err=%v", ok, err)
	}
}

func TestOrderRepo_ListAndStaleSweep(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewOrderRepo(db)
	ctx := context.Background()

	paidIDs := []uuid.UUID{}
	for i := 0; i < 3; i++ {
		o := newOrder("user-1", int64(1000*(i+1)))
		if err := repo.Create(ctx, o); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if _, err := repo.MarkPaid(ctx, o.ID, "flw", time.Now()); err != nil {
			t.Fatalf("MarkPaid: %v", err)
		}
		paidIDs = append(paidIDs, o.ID)
	}
	stale := newOrder("user-2", 1000)
	_ = repo.Create(ctx, stale)
	db.Exec("UPDATE orders SET created_at = now() - interval '3 days' WHERE id = ?", stale.ID)
	fresh := newOrder("user-3", 1000)
	_ = repo.Create(ctx, fresh)

	uid := "user-1"
	list, total, err := repo.List(ctx, repository.OrderListFilter{UserID: &uid, Limit: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 || len(list) != 2 {
		t.Fatalf("List pagination: total=%d len=%d", total, len(list))
	}

	unpaid := false
	_, total, _ = repo.List(ctx, repository.OrderListFilter{Paid: &unpaid})
	if total != 2 {
		t.Fatalf("expected 2 unpaid orders, got %d", total)
	}

	n, err := repo.DeleteStaleUnpaid(ctx, time.Now().Add(-48*time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("DeleteStaleUnpaid: n=%d err=%v", n, err)
	}
	if got, _ := repo.GetByID(ctx, stale.ID); got != nil {
		t.Fatalf("stale order survived")
	}
	if got, _ := repo.GetByID(ctx, fresh.ID); got == nil {
		t.Fatalf("fresh order swept")
	}
	for _, id := range paidIDs {
		if got, _ := repo.GetByID(ctx, id); got == nil {
			t.Fatalf("paid order swept")
		}
	}
}
