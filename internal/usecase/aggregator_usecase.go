package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/DRSN-tech/scrape-ingest/internal/cfg"
	"github.com/DRSN-tech/scrape-ingest/internal/domain"
	"github.com/DRSN-tech/scrape-ingest/internal/metrics"
	"github.com/DRSN-tech/scrape-ingest/pkg/breaker"
	"github.com/DRSN-tech/scrape-ingest/pkg/e"
	"github.com/DRSN-tech/scrape-ingest/pkg/logger"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// AggregatorUseCase рассылает поиск по адаптерам площадок и изолирует
// их сбои друг от друга.
type AggregatorUseCase struct {
	registry     AdapterRegistry
	breakers     map[string]*gobreaker.CircuitBreaker
	maxParallel  int
	defaultLimit int
	logger       logger.Logger
	tracer       trace.Tracer
}

func NewAggregatorUC(registry AdapterRegistry, cfg *cfg.ScraperCfg, logger logger.Logger) *AggregatorUseCase {
	breakers := make(map[string]*gobreaker.CircuitBreaker)
	for _, name := range registry.Names() {
		breakers[name] = breaker.New(name, cfg.BreakerFailures, cfg.BreakerTimeout)
	}

	return &AggregatorUseCase{
		registry:     registry,
		breakers:     breakers,
		maxParallel:  cfg.MaxParallel,
		defaultLimit: cfg.DefaultLimit,
		logger:       logger,
		tracer:       otel.Tracer("usecase/aggregator"),
	}
}

func (a *AggregatorUseCase) Platforms() []string {
	return a.registry.Names()
}

// FanOutSearch опрашивает запрошенные площадки параллельно. У каждой площадки
// есть запись в Results; у упавших ещё и в Errors.
func (a *AggregatorUseCase) FanOutSearch(ctx context.Context, req *SearchReq) *FanOutResult {
	const op = "AggregatorUseCase.FanOutSearch"

	ctx, span := a.tracer.Start(ctx, op, trace.WithAttributes(attribute.String("search.query", req.Query)))
	defer span.End()

	res := NewFanOutResult()
	names, unknown := a.resolve(req.Platforms)
	for _, name := range unknown {
		res.Errors[name] = e.ErrUnknownPlatform.Error()
	}

	limit := req.Limit
	if limit <= 0 {
		limit = a.defaultLimit
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	if a.maxParallel > 0 {
		g.SetLimit(a.maxParallel)
	}

	for _, name := range names {
		adapter, _ := a.registry.Get(name)
		g.Go(func() error {
			products, err := a.searchOne(ctx, adapter, req.Query, limit)

			mu.Lock()
			defer mu.Unlock()

			res.Results[name] = products
			if err != nil {
				metrics.RecordAdapterFailure(name)
				a.logger.WithContext(ctx).Warnf("%s: search %q on %s failed: %v", op, req.Query, name, err)
				res.Errors[name] = err.Error()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(res.Errors) > 0 {
		span.SetStatus(codes.Error, "some platforms failed")
	}

	return res
}

// BatchSearch выполняет fan-out на каждый запрос и объединяет результаты по площадкам.
// Запись, найденная несколькими запросами, остаётся один раз на первой позиции.
func (a *AggregatorUseCase) BatchSearch(ctx context.Context, req *BatchSearchReq) *FanOutResult {
	merged := NewFanOutResult()
	seen := make(map[string]map[domain.DedupKey]struct{})

	for _, query := range req.Queries {
		if ctx.Err() != nil {
			break
		}

		res := a.FanOutSearch(ctx, NewSearchReq(query, req.Limit, req.Platforms))

		for platform, products := range res.Results {
			if _, ok := seen[platform]; !ok {
				seen[platform] = make(map[domain.DedupKey]struct{})
				merged.Results[platform] = make([]domain.Product, 0, len(products))
			}
			for _, p := range products {
				key := p.Key()
				if _, dup := seen[platform][key]; dup {
					continue
				}
				seen[platform][key] = struct{}{}
				merged.Results[platform] = append(merged.Results[platform], p)
			}
		}

		for platform, msg := range res.Errors {
			if prev, ok := merged.Errors[platform]; ok && prev != msg {
				msg = prev + "; " + msg
			}
			merged.Errors[platform] = msg
		}
	}

	return merged
}

// Detail загружает страницу товара через указанный адаптер. Возвращает nil,
// nil, если со страницы ничего пригодного не получено.
func (a *AggregatorUseCase) Detail(ctx context.Context, platform, url string) (*domain.Product, error) {
	const op = "AggregatorUseCase.Detail"

	name := strings.ToLower(strings.TrimSpace(platform))
	adapter, ok := a.registry.Get(name)
	if !ok {
		return nil, e.Wrap(op, fmt.Errorf("%w: %s", e.ErrUnknownPlatform, platform))
	}

	product, err := breaker.Execute(a.breakers[name], func() (*domain.Product, error) {
		return adapter.GetDetail(ctx, url)
	})
	if err != nil {
		return nil, e.Wrap(op, circuitErr(err))
	}

	return product, nil
}

func (a *AggregatorUseCase) searchOne(
	ctx context.Context,
	adapter PlatformAdapter,
	query string,
	limit int,
) (products []domain.Product, err error) {
	defer func() {
		if r := recover(); r != nil {
			products, err = []domain.Product{}, fmt.Errorf("adapter panic: %v", r)
		}
	}()

	ctx, span := a.tracer.Start(ctx, "adapter.Search", trace.WithAttributes(attribute.String("platform", adapter.Name())))
	defer span.End()

	products, err = breaker.Execute(a.breakers[adapter.Name()], func() ([]domain.Product, error) {
		return adapter.Search(ctx, query, limit)
	})
	if err != nil {
		span.RecordError(err)
		return []domain.Product{}, circuitErr(err)
	}
	if products == nil {
		products = []domain.Product{}
	}

	return products, nil
}

// resolve раскрывает "all" и делит запрошенные имена на зарегистрированные
// и неизвестные, без повторов.
func (a *AggregatorUseCase) resolve(platforms []string) (names, unknown []string) {
	if len(platforms) == 0 {
		return a.registry.Names(), nil
	}

	known := make(map[string]struct{})
	missing := make(map[string]struct{})
	for _, p := range platforms {
		name := strings.ToLower(strings.TrimSpace(p))
		if name == AllPlatforms {
			return a.registry.Names(), nil
		}
		if _, ok := a.registry.Get(name); ok {
			known[name] = struct{}{}
		} else {
			missing[p] = struct{}{}
		}
	}

	return sortedKeys(known), sortedKeys(missing)
}

func circuitErr(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return e.ErrCircuitOpen
	}
	return err
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
