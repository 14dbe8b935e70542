package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DRSN-tech/scrape-ingest/internal/cfg"
	"github.com/DRSN-tech/scrape-ingest/internal/domain"
	"github.com/DRSN-tech/scrape-ingest/pkg/e"
	"github.com/DRSN-tech/scrape-ingest/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scraperCfg() *cfg.ScraperCfg {
	return &cfg.ScraperCfg{
		MaxParallel:     4,
		DefaultLimit:    100,
		BreakerFailures: 2,
		BreakerTimeout:  time.Minute,
	}
}

func listing(source string, ids ...string) []domain.Product {
	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		out = append(out, *product(source, id, "item "+id, "10 €"))
	}
	return out
}

func TestFanOutSearch_IsolatesFailures(t *testing.T) {
	amazon := &stubAdapter{name: "amazon", search: func(context.Context, string, int) ([]domain.Product, error) {
		return listing("amazon", "a1", "a2"), nil
	}}
	vinted := &stubAdapter{name: "vinted", search: func(context.Context, string, int) ([]domain.Product, error) {
		return nil, errors.New("connection reset")
	}}
	uc := NewAggregatorUC(stubRegistry{"amazon": amazon, "vinted": vinted}, scraperCfg(), logger.NewNop())

	res := uc.FanOutSearch(context.Background(), NewSearchReq("phone", 0, nil))

	assert.Len(t, res.Results["amazon"], 2)
	require.Contains(t, res.Results, "vinted")
	assert.Empty(t, res.Results["vinted"])
	assert.Equal(t, "connection reset", res.Errors["vinted"])
	assert.NotContains(t, res.Errors, "amazon")
}

func TestFanOutSearch_RecoversPanics(t *testing.T) {
	bad := &stubAdapter{name: "vinted", search: func(context.Context, string, int) ([]domain.Product, error) {
		panic("nil selection")
	}}
	good := &stubAdapter{name: "amazon", search: func(context.Context, string, int) ([]domain.Product, error) {
		return listing("amazon", "a1"), nil
	}}
	uc := NewAggregatorUC(stubRegistry{"amazon": good, "vinted": bad}, scraperCfg(), logger.NewNop())

	res := uc.FanOutSearch(context.Background(), NewSearchReq("bag", 10, []string{AllPlatforms}))

	assert.Len(t, res.Results["amazon"], 1)
	assert.Contains(t, res.Errors["vinted"], "nil selection")
}

func TestFanOutSearch_UnknownPlatform(t *testing.T) {
	amazon := &stubAdapter{name: "amazon", search: func(_ context.Context, _ string, limit int) ([]domain.Product, error) {
		assert.Equal(t, 5, limit)
		return listing("amazon", "a1"), nil
	}}
	uc := NewAggregatorUC(stubRegistry{"amazon": amazon}, scraperCfg(), logger.NewNop())

	res := uc.FanOutSearch(context.Background(), NewSearchReq("tv", 5, []string{"Amazon", "ebay"}))

	assert.Len(t, res.Results["amazon"], 1)
	assert.Equal(t, e.ErrUnknownPlatform.Error(), res.Errors["ebay"])
}

func TestFanOutSearch_BreakerOpens(t *testing.T) {
	failing := &stubAdapter{name: "vinted", search: func(context.Context, string, int) ([]domain.Product, error) {
		return nil, errors.New("blocked")
	}}
	uc := NewAggregatorUC(stubRegistry{"vinted": failing}, scraperCfg(), logger.NewNop())

	for range 2 {
		uc.FanOutSearch(context.Background(), NewSearchReq("q", 1, nil))
	}
	res := uc.FanOutSearch(context.Background(), NewSearchReq("q", 1, nil))

	assert.Equal(t, e.ErrCircuitOpen.Error(), res.Errors["vinted"])
	assert.EqualValues(t, 2, failing.calls.Load())
}

func TestFanOutSearch_StoreOutageKeepsBreakerClosed(t *testing.T) {
	adapter := &stubAdapter{name: "amazon", search: func(context.Context, string, int) ([]domain.Product, error) {
		return nil, e.Wrap("amazon.Adapter.Search", e.ErrStoreUnavailable)
	}}
	uc := NewAggregatorUC(stubRegistry{"amazon": adapter}, scraperCfg(), logger.NewNop())

	for range 3 {
		res := uc.FanOutSearch(context.Background(), NewSearchReq("q", 1, nil))
		assert.NotEqual(t, e.ErrCircuitOpen.Error(), res.Errors["amazon"])
	}
	assert.EqualValues(t, 3, adapter.calls.Load())
}

func TestBatchSearch_UnionsAndDedups(t *testing.T) {
	amazon := &stubAdapter{name: "amazon", search: func(_ context.Context, query string, _ int) ([]domain.Product, error) {
		if query == "phone" {
			return listing("amazon", "a1", "a2"), nil
		}
		return listing("amazon", "a2", "a3"), nil
	}}
	vinted := &stubAdapter{name: "vinted", search: func(_ context.Context, query string, _ int) ([]domain.Product, error) {
		return nil, errors.New("timeout on " + query)
	}}
	uc := NewAggregatorUC(stubRegistry{"amazon": amazon, "vinted": vinted}, scraperCfg(), logger.NewNop())

	res := uc.BatchSearch(context.Background(), NewBatchSearchReq([]string{"phone", "case"}, 10, nil))

	ids := make([]string, 0)
	for _, p := range res.Results["amazon"] {
		ids = append(ids, domain.Deref(p.ProductID))
	}
	assert.Equal(t, []string{"a1", "a2", "a3"}, ids)
	assert.Equal(t, "timeout on phone; timeout on case", res.Errors["vinted"])
}

func TestDetail(t *testing.T) {
	amazon := &stubAdapter{name: "amazon", detail: func(_ context.Context, url string) (*domain.Product, error) {
		if url == "" {
			return nil, nil
		}
		return product("amazon", "a1", "Phone", "1 €"), nil
	}}
	uc := NewAggregatorUC(stubRegistry{"amazon": amazon}, scraperCfg(), logger.NewNop())

	p, err := uc.Detail(context.Background(), "amazon", "https://www.amazon.fr/dp/a1")
	require.NoError(t, err)
	assert.Equal(t, "a1", domain.Deref(p.ProductID))

	p, err = uc.Detail(context.Background(), "amazon", "")
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = uc.Detail(context.Background(), "ebay", "x")
	assert.ErrorIs(t, err, e.ErrUnknownPlatform)
}
