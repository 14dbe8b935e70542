package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DRSN-tech/scrape-ingest/internal/cfg"
	"github.com/DRSN-tech/scrape-ingest/internal/domain"
	"github.com/DRSN-tech/scrape-ingest/pkg/clients"
	"github.com/DRSN-tech/scrape-ingest/pkg/e"
	"github.com/DRSN-tech/scrape-ingest/pkg/logger"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

// CacheRepo кэширует записи товаров после слияния по ключу дедупликации.
type CacheRepo struct {
	client *clients.RedisClient
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, cfg *cfg.RedisCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// GetProduct возвращает nil, nil при промахе. Записи, которые не декодируются или
// несут другой ключ, удаляются и считаются промахом.
func (c *CacheRepo) GetProduct(ctx context.Context, key domain.DedupKey) (*domain.Product, error) {
	cacheKey := productKey(key)

	data, err := c.client.Client.Get(ctx, cacheKey).Bytes()
	if errors.Is(err, r.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var product domain.Product
	if err := json.Unmarshal(data, &product); err != nil {
		c.logger.Warnf("Redis unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))
		c.evict(ctx, cacheKey)
		return nil, nil
	}

	if product.Key() != key {
		c.logger.Warnf("Cache key mismatch: key: %s, product: %s", key, product.Key())
		c.evict(ctx, cacheKey)
		return nil, nil
	}

	return &product, nil
}

func (c *CacheRepo) SetProduct(ctx context.Context, product *domain.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := c.client.Client.Set(ctx, productKey(product.Key()), data, c.cfg.ProductTTL).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (c *CacheRepo) DeleteProducts(ctx context.Context, keys []domain.DedupKey) error {
	if len(keys) == 0 {
		return nil
	}

	cacheKeys := make([]string, len(keys))
	for i, k := range keys {
		cacheKeys[i] = productKey(k)
	}

	if err := c.client.Client.Del(ctx, cacheKeys...).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (c *CacheRepo) evict(ctx context.Context, cacheKey string) {
	if err := c.client.Client.Del(context.WithoutCancel(ctx), cacheKey).Err(); err != nil {
		c.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}
}

func productKey(key domain.DedupKey) string {
	return fmt.Sprintf("product:%s:%s", key.Source, key.ProductID)
}
