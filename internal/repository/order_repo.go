package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Beliver-cell/Fantasy-luxe-store/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrDuplicatePending возвращается, когда частичный уникальный индекс
// ux_orders_user_unpaid отклоняет второй неоплаченный заказ пользователя.
var ErrDuplicatePending = errors.New("user already has an unpaid order")

const (
	DefaultListLimit = 100
	MaxListLimit     = 500
)

type OrderListFilter struct {
	UserID *string
	Status *models.OrderStatus
	Paid   *bool
	Limit  int
	Offset int
}

type OrderRepo interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindUnpaidByUser(ctx context.Context, userID string) (*models.Order, error)
	MarkPaid(ctx context.Context, id uuid.UUID, gatewayRef string, paidAt time.Time) (bool, error)
	DeleteUnpaid(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteUnpaidByUser(ctx context.Context, userID string) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from *models.OrderStatus, to models.OrderStatus) (bool, error)
	List(ctx context.Context, f OrderListFilter) ([]*models.Order, int64, error)
	DeleteStaleUnpaid(ctx context.Context, cutoff time.Time) (int64, error)
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) OrderRepo { return &orderRepo{db: db} }

func (r *orderRepo) Create(ctx context.Context, o *models.Order) error {
	err := r.db.WithContext(ctx).Create(o).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicatePending
	}
	return err
}

// GetByID возвращает (nil, nil), если заказа нет.
func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var ord models.Order
	err := r.db.WithContext(ctx).First(&ord, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ord, nil
}

func (r *orderRepo) FindUnpaidByUser(ctx context.Context, userID string) (*models.Order, error) {
	var ord models.Order
	err := r.db.WithContext(ctx).First(&ord, "user_id = ? AND payment = false", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ord, nil
}

// MarkPaid: compare-and-set: срабатывает только для payment = false.
// Уже оплаченный заказ (и его статус, выставленный админом) не трогается.
func (r *orderRepo) MarkPaid(ctx context.Context, id uuid.UUID, gatewayRef string, paidAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND payment = false", id).
		Updates(map[string]any{
			"payment":     true,
			"status":      models.OrderStatusPlaced,
			"gateway_ref": gatewayRef,
			"paid_at":     paidAt,
		})
	return res.RowsAffected == 1, res.Error
}

func (r *orderRepo) DeleteUnpaid(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND payment = false", id).
		Delete(&models.Order{})
	return res.RowsAffected > 0, res.Error
}

// DeleteUnpaidByUser удаляет неоплаченный заказ пользователя и возвращает его, либо nil.
func (r *orderRepo) DeleteUnpaidByUser(ctx context.Context, userID string) (*models.Order, error) {
	var deleted []models.Order
	res := r.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("user_id = ? AND payment = false", userID).
		Delete(&deleted)
	if res.Error != nil {
		return nil, res.Error
	}
	if len(deleted) == 0 {
		return nil, nil
	}
	return &deleted[0], nil
}

// UpdateStatus меняет статус только оплаченного заказа. Если from задан,
// запись применяется лишь при совпадении текущего статуса.
func (r *orderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from *models.OrderStatus, to models.OrderStatus) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ? AND payment = true", id)
	if from != nil {
		q = q.Where("status = ?", *from)
	}
	res := q.Update("status", to)
	return res.RowsAffected == 1, res.Error
}

func (r *orderRepo) List(ctx context.Context, f OrderListFilter) ([]*models.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})

	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.Paid != nil {
		q = q.Where("payment = ?", *f.Paid)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	var list []*models.Order
	err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Find(&list).Error
	return list, total, err
}

func (r *orderRepo) DeleteStaleUnpaid(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("payment = false AND created_at < ?", cutoff).
		Delete(&models.Order{})
	return res.RowsAffected, res.Error
}
