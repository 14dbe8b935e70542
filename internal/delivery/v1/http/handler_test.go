package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DRSN-tech/scrape-ingest/internal/domain"
	"github.com/DRSN-tech/scrape-ingest/internal/usecase"
	"github.com/DRSN-tech/scrape-ingest/pkg/e"
	"github.com/DRSN-tech/scrape-ingest/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAggregator struct {
	lastSearch *usecase.SearchReq
	lastBatch  *usecase.BatchSearchReq
	detail     *domain.Product
	detailErr  error
}

func (f *fakeAggregator) Platforms() []string { return []string{"amazon", "vinted"} }

func (f *fakeAggregator) FanOutSearch(_ context.Context, req *usecase.SearchReq) *usecase.FanOutResult {
	f.lastSearch = req
	res := usecase.NewFanOutResult()
	res.Results["amazon"] = []domain.Product{*testProduct("amazon", "1")}
	res.Errors["vinted"] = "page not ready"
	return res
}

func (f *fakeAggregator) BatchSearch(_ context.Context, req *usecase.BatchSearchReq) *usecase.FanOutResult {
	f.lastBatch = req
	return usecase.NewFanOutResult()
}

func (f *fakeAggregator) Detail(context.Context, string, string) (*domain.Product, error) {
	return f.detail, f.detailErr
}

type fakeBackfill struct {
	err error
}

func (f *fakeBackfill) Run(context.Context) (*usecase.BackfillReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	report := usecase.NewBackfillReport()
	report.Completed = 3
	return report, nil
}

type fakeQuery struct {
	usecase.QueryUC
	err        error
	lastPage   [2]int
	categories []string
	threshold  int
}

func (f *fakeQuery) ListPage(_ context.Context, page, pageSize int) ([]*domain.Product, error) {
	f.lastPage = [2]int{page, pageSize}
	if page < 1 || pageSize < 1 {
		return nil, e.Wrap("QueryUseCase.ListPage", e.ErrInvalidPagination)
	}
	return []*domain.Product{testProduct("vinted", "11")}, f.err
}

func (f *fakeQuery) ListProducts(context.Context, string) ([]*domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return nil, nil
}

func (f *fakeQuery) GetProduct(_ context.Context, key domain.DedupKey) (*domain.Product, error) {
	if key.ProductID == "missing" {
		return nil, e.Wrap("QueryUseCase.GetProduct", e.ErrProductNotFound)
	}
	return testProduct(key.Source, key.ProductID), nil
}

func (f *fakeQuery) SearchCategories(_ context.Context, _ string, threshold int) ([]*domain.Product, error) {
	f.threshold = threshold
	return nil, nil
}

func (f *fakeQuery) SearchByCategories(_ context.Context, categories []string) ([]*domain.Product, error) {
	f.categories = categories
	return nil, nil
}

func (f *fakeQuery) SearchByName(_ context.Context, name string) ([]*domain.Product, error) {
	return []*domain.Product{testProduct("amazon", name)}, nil
}

func testProduct(source, id string) *domain.Product {
	p := domain.NewProduct(source)
	p.ProductID = domain.StrPtr(id)
	p.Name = domain.StrPtr("item " + id)
	p.Price = domain.StrPtr("10 €")
	p.URL = domain.StrPtr("https://example.com/" + id)
	return p
}

type env struct {
	srv        *httptest.Server
	aggregator *fakeAggregator
	backfill   *fakeBackfill
	query      *fakeQuery
}

func newEnv(t *testing.T) *env {
	t.Helper()
	en := &env{
		aggregator: &fakeAggregator{},
		backfill:   &fakeBackfill{},
		query:      &fakeQuery{},
	}
	mux := chi.NewRouter()
	NewRouter(mux, logger.NewNop()).Init(Deps{
		Aggregator:   en.aggregator,
		Backfill:     en.backfill,
		Query:        en.query,
		DefaultLimit: 100,
		SwaggerURL:   "/swagger/doc.json",
	})
	en.srv = httptest.NewServer(mux)
	t.Cleanup(en.srv.Close)
	return en
}

func (en *env) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, en.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var raw json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	return resp, raw
}

func TestPlatforms(t *testing.T) {
	en := newEnv(t)
	resp, body := en.do(t, http.MethodGet, "/api/v1/platforms", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"platforms":["amazon","vinted"]}`, string(body))
}

func TestSearch(t *testing.T) {
	en := newEnv(t)

	resp, body := en.do(t, http.MethodGet, "/api/v1/search/all/robe%20%C3%A9t%C3%A9?limit=5", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "robe été", en.aggregator.lastSearch.Query)
	assert.Equal(t, 5, en.aggregator.lastSearch.Limit)
	assert.Equal(t, []string{"all"}, en.aggregator.lastSearch.Platforms)

	var res usecase.FanOutResult
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Len(t, res.Results["amazon"], 1)
	assert.Equal(t, "page not ready", res.Errors["vinted"])

	en.do(t, http.MethodGet, "/api/v1/search/amazon,vinted/iphone", "")
	assert.Equal(t, 100, en.aggregator.lastSearch.Limit)
	assert.Equal(t, []string{"amazon", "vinted"}, en.aggregator.lastSearch.Platforms)

	resp, _ = en.do(t, http.MethodGet, "/api/v1/search/all/iphone?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBatchSearch(t *testing.T) {
	en := newEnv(t)

	resp, _ := en.do(t, http.MethodPost, "/api/v1/search/batch", `{"queries":["robe"," ","jean"],"platforms":["vinted"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"robe", "jean"}, en.aggregator.lastBatch.Queries)
	assert.Equal(t, 100, en.aggregator.lastBatch.Limit)

	resp, _ = en.do(t, http.MethodPost, "/api/v1/search/batch", `{"queries":[]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = en.do(t, http.MethodPost, "/api/v1/search/batch", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDetail(t *testing.T) {
	en := newEnv(t)

	resp, _ := en.do(t, http.MethodGet, "/api/v1/detail/amazon", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = en.do(t, http.MethodGet, "/api/v1/detail/amazon?url=https://www.amazon.fr/dp/1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	en.aggregator.detail = testProduct("amazon", "1")
	resp, body := en.do(t, http.MethodGet, "/api/v1/detail/amazon?url=https://www.amazon.fr/dp/1", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"product_id":"1"`)

	en.aggregator.detailErr = fmt.Errorf("AggregatorUseCase.Detail: %w: ebay", e.ErrUnknownPlatform)
	resp, _ = en.do(t, http.MethodGet, "/api/v1/detail/ebay?url=x", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	en.aggregator.detailErr = e.Wrap("AggregatorUseCase.Detail", e.ErrCircuitOpen)
	resp, _ = en.do(t, http.MethodGet, "/api/v1/detail/amazon?url=x", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestBackfill(t *testing.T) {
	en := newEnv(t)

	resp, body := en.do(t, http.MethodPost, "/api/v1/backfill", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"completed":3,"errors":[]}`, string(body))

	en.backfill.err = e.Wrap("BackfillUseCase.Run", e.ErrBackfillRunning)
	resp, _ = en.do(t, http.MethodPost, "/api/v1/backfill", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestProducts(t *testing.T) {
	en := newEnv(t)

	resp, body := en.do(t, http.MethodGet, "/api/v1/products", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))

	en.query.err = e.Wrap("ProductStore.Find", e.ErrStoreUnavailable)
	resp, body = en.do(t, http.MethodGet, "/api/v1/products", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.JSONEq(t, `{"code":503,"message":"store unavailable"}`, string(body))
	en.query.err = nil

	resp, _ = en.do(t, http.MethodGet, "/api/v1/products/page?page=2&page_size=10", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, [2]int{2, 10}, en.query.lastPage)

	resp, _ = en.do(t, http.MethodGet, "/api/v1/products/page?page=0", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	en.do(t, http.MethodGet, "/api/v1/products/categories/robes", "")
	assert.Equal(t, usecase.DefaultSimilarityThreshold, en.query.threshold)
	en.do(t, http.MethodGet, "/api/v1/products/categories/robes?similarity_threshold=60", "")
	assert.Equal(t, 60, en.query.threshold)

	en.do(t, http.MethodGet, "/api/v1/products/categories?category=Femmes&category=Robes", "")
	assert.Equal(t, []string{"Femmes", "Robes"}, en.query.categories)

	resp, body = en.do(t, http.MethodGet, "/api/v1/products/name/iphone", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"product_id":"iphone"`)

	resp, body = en.do(t, http.MethodGet, "/api/v1/products/vinted/42", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"source":"vinted"`)

	resp, _ = en.do(t, http.MethodGet, "/api/v1/products/vinted/missing", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
