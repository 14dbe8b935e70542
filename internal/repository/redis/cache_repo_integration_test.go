//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/DRSN-tech/scrape-ingest/internal/cfg"
	"github.com/DRSN-tech/scrape-ingest/internal/domain"
	"github.com/DRSN-tech/scrape-ingest/pkg/clients"
	"github.com/DRSN-tech/scrape-ingest/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	rediscontainer "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestCacheRepo(t *testing.T) {
	ctx := context.Background()

	container, err := rediscontainer.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	redisCfg := &cfg.RedisCfg{Addr: endpoint, Timeout: time.Second, DialTimeout: time.Second, ProductTTL: time.Minute}
	client := clients.NewRedisClient(redisCfg)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx))

	repo := NewCacheRepo(client, redisCfg, logger.NewNop())

	p := domain.NewProduct("amazon")
	p.ProductID = domain.StrPtr("B0X")
	p.Name = domain.StrPtr("Phone")
	p.Colors = domain.ColorImages(map[string]string{"Noir": "https://img/noir.jpg"})

	miss, err := repo.GetProduct(ctx, p.Key())
	require.NoError(t, err)
	assert.Nil(t, miss)

	require.NoError(t, repo.SetProduct(ctx, p))

	hit, err := repo.GetProduct(ctx, p.Key())
	require.NoError(t, err)
	assert.Equal(t, p, hit)

	ttl, err := client.Client.TTL(ctx, "product:amazon:B0X").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, repo.DeleteProducts(ctx, []domain.DedupKey{p.Key()}))
	miss, err = repo.GetProduct(ctx, p.Key())
	require.NoError(t, err)
	assert.Nil(t, miss)

	require.NoError(t, client.Client.Set(ctx, "product:amazon:B0Y", "{not json", time.Minute).Err())
	miss, err = repo.GetProduct(ctx, domain.NewDedupKey("amazon", "B0Y"))
	require.NoError(t, err)
	assert.Nil(t, miss)
}
