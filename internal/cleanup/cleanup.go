package cleanup

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type staleOrderDeleter interface {
	DeleteStaleUnpaid(ctx context.Context, cutoff time.Time) (int64, error)
}

type CleanupService struct {
	orders staleOrderDeleter
	ttl    time.Duration
	now    func() time.Time
	log    *zap.Logger
}

func NewCleanupService(orders staleOrderDeleter, ttl time.Duration, log *zap.Logger) *CleanupService {
	return &CleanupService{
		orders: orders,
		ttl:    ttl,
		now:    time.Now,
		log:    log,
	}
}

// SweepStaleOrders удаляет неоплаченные заказы старше ttl.
// Оплаченные заказы не трогаются никогда.
func (c *CleanupService) SweepStaleOrders(ctx context.Context) (int64, error) {
	if c.ttl <= 0 {
		return 0, nil
	}
	cutoff := c.now().Add(-c.ttl)

	n, err := c.orders.DeleteStaleUnpaid(ctx, cutoff)
	if err != nil {
		c.log.Error("failed to cleanup stale pending orders", zap.Error(err))
		return 0, err
	}
	if n > 0 {
		c.log.Info("cleaned up stale pending orders", zap.Int64("count", n), zap.Time("cutoff", cutoff))
	}
	return n, nil
}

// RunFullCleanup выполняет все задачи очистки
func (c *CleanupService) RunFullCleanup(ctx context.Context) error {
	c.log.Info("starting full cleanup")
	if _, err := c.SweepStaleOrders(ctx); err != nil {
		return err
	}
	c.log.Info("full cleanup completed")
	return nil
}
