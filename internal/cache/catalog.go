package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Beliver-cell/Fantasy-luxe-store/internal/service"

	"go.uber.org/zap"
)

const productKeyPrefix = "catalog:product:"

type Store interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// CachedCatalog: read-through кэш поверх каталога. Ошибки кэша не
// ломают оформление заказа: запрос просто уходит в каталог.
type CachedCatalog struct {
	inner service.CatalogReader
	store Store
	ttl   time.Duration
	log   *zap.Logger
}

func NewCachedCatalog(inner service.CatalogReader, store Store, ttl time.Duration, log *zap.Logger) *CachedCatalog {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedCatalog{inner: inner, store: store, ttl: ttl, log: log}
}

func (c *CachedCatalog) GetProducts(ctx context.Context, ids []string) (map[string]service.CatalogProduct, error) {
	out := make(map[string]service.CatalogProduct, len(ids))
	var misses []string

	for _, id := range ids {
		if _, done := out[id]; done {
			continue
		}
		raw, err := c.store.Get(ctx, productKeyPrefix+id)
		if err != nil {
			if !errors.Is(err, ErrCacheMiss) {
				c.log.Warn("Ошибка чтения кэша каталога", zap.String("product_id", id), zap.Error(err))
			}
			misses = append(misses, id)
			continue
		}
		var p service.CatalogProduct
		if err := json.Unmarshal(raw, &p); err != nil {
			misses = append(misses, id)
			continue
		}
		out[id] = p
	}

	if len(misses) == 0 {
		return out, nil
	}

	fetched, err := c.inner.GetProducts(ctx, misses)
	if err != nil {
		return nil, err
	}
	for id, p := range fetched {
		out[id] = p
		raw, err := json.Marshal(p)
		if err != nil {
			continue
		}
		if err := c.store.Set(ctx, productKeyPrefix+id, raw, c.ttl); err != nil {
			c.log.Warn("Ошибка записи кэша каталога", zap.String("product_id", id), zap.Error(err))
		}
	}
	return out, nil
}

var (
	_ Store                 = (*RedisClient)(nil)
	_ service.CatalogReader = (*CachedCatalog)(nil)
)
