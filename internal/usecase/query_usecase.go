package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/DRSN-tech/scrape-ingest/internal/domain"
	"github.com/DRSN-tech/scrape-ingest/pkg/e"
	"github.com/DRSN-tech/scrape-ingest/pkg/logger"
	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"github.com/shopspring/decimal"
)

// DefaultSimilarityThreshold — порог совпадения категорий, если вызывающий
// его не задал.
const DefaultSimilarityThreshold = 80

// QueryUseCase отвечает на запросы чтения к хранилищу товаров.
type QueryUseCase struct {
	store  ProductStore
	cache  CacheRepository
	logger logger.Logger
}

// NewQueryUC создаёт сервис запросов. cache может быть nil.
func NewQueryUC(store ProductStore, cache CacheRepository, logger logger.Logger) *QueryUseCase {
	return &QueryUseCase{store: store, cache: cache, logger: logger}
}

func (q *QueryUseCase) ListProducts(ctx context.Context, source string) ([]*domain.Product, error) {
	return q.find(ctx, "QueryUseCase.ListProducts", ProductFilter{Source: source}, Page{})
}

// ListPage возвращает страницу записей (нумерация с 1) в порядке хранилища.
func (q *QueryUseCase) ListPage(ctx context.Context, page, pageSize int) ([]*domain.Product, error) {
	const op = "QueryUseCase.ListPage"

	if page < 1 || pageSize < 1 {
		return nil, e.Wrap(op, e.ErrInvalidPagination)
	}
	// смещение (page-1)*pageSize не должно переполнять int
	if page-1 > math.MaxInt/pageSize {
		return nil, e.Wrap(op, fmt.Errorf("%w: page %d is out of range", e.ErrInvalidPagination, page))
	}

	return q.find(ctx, op, ProductFilter{}, NewPage(page, pageSize))
}

// GetProduct читает через кэш, если он настроен.
func (q *QueryUseCase) GetProduct(ctx context.Context, key domain.DedupKey) (*domain.Product, error) {
	const op = "QueryUseCase.GetProduct"

	if q.cache != nil {
		cached, err := q.cache.GetProduct(ctx, key)
		if err != nil {
			q.logger.Warnf("%s: cache read for %s failed: %v", op, key, err)
		} else if cached != nil {
			return cached, nil
		}
	}

	doc, err := q.store.FindOne(ctx, key)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	product, err := doc.Fields.Product()
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if q.cache != nil {
		if err := q.cache.SetProduct(ctx, product); err != nil {
			q.logger.Warnf("%s: cache write for %s failed: %v", op, key, err)
		}
	}

	return product, nil
}

// SearchCategories возвращает записи, у которых хотя бы одна категория по partial
// ratio строго выше threshold. Сравнение без учёта регистра.
func (q *QueryUseCase) SearchCategories(ctx context.Context, query string, threshold int) ([]*domain.Product, error) {
	const op = "QueryUseCase.SearchCategories"

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, e.Wrap(op, e.ErrEmptyQuery)
	}
	if threshold < 0 || threshold > 100 {
		return nil, e.Wrap(op, e.ErrInvalidThreshold)
	}

	return q.filter(ctx, op, func(p *domain.Product) bool {
		return matchesCategory(query, p.Categories, threshold)
	})
}

// matchesCategory сравнивает запрос в нижнем регистре с каждой категорией по
// partial ratio и требует оценку строго выше порога.
func matchesCategory(query string, categories []string, threshold int) bool {
	for _, c := range categories {
		if c == "" {
			continue
		}
		if fuzzy.PartialRatio(query, strings.ToLower(c)) > threshold {
			return true
		}
	}
	return false
}

// SearchByCategories возвращает записи со всеми указанными категориями.
func (q *QueryUseCase) SearchByCategories(ctx context.Context, categories []string) ([]*domain.Product, error) {
	const op = "QueryUseCase.SearchByCategories"

	wanted := make([]string, 0, len(categories))
	for _, c := range categories {
		if c = strings.TrimSpace(c); c != "" {
			wanted = append(wanted, strings.ToLower(c))
		}
	}
	if len(wanted) == 0 {
		return nil, e.Wrap(op, e.ErrEmptyQuery)
	}

	return q.filter(ctx, op, func(p *domain.Product) bool {
		have := make(map[string]struct{}, len(p.Categories))
		for _, c := range p.Categories {
			have[strings.ToLower(c)] = struct{}{}
		}
		for _, w := range wanted {
			if _, ok := have[w]; !ok {
				return false
			}
		}
		return true
	})
}

func (q *QueryUseCase) SearchByName(ctx context.Context, name string) ([]*domain.Product, error) {
	const op = "QueryUseCase.SearchByName"
	if strings.TrimSpace(name) == "" {
		return nil, e.Wrap(op, e.ErrEmptyQuery)
	}
	return q.find(ctx, op, ProductFilter{NameContains: name}, Page{})
}

func (q *QueryUseCase) SearchByDescription(ctx context.Context, keywords string) ([]*domain.Product, error) {
	const op = "QueryUseCase.SearchByDescription"
	if strings.TrimSpace(keywords) == "" {
		return nil, e.Wrap(op, e.ErrEmptyQuery)
	}
	return q.find(ctx, op, ProductFilter{DescriptionContains: keywords}, Page{})
}

func (q *QueryUseCase) SearchByBrand(ctx context.Context, brand string) ([]*domain.Product, error) {
	const op = "QueryUseCase.SearchByBrand"
	if brand == "" {
		return nil, e.Wrap(op, e.ErrEmptyQuery)
	}
	return q.find(ctx, op, ProductFilter{Brand: brand}, Page{})
}

func (q *QueryUseCase) SearchByCondition(ctx context.Context, condition string) ([]*domain.Product, error) {
	const op = "QueryUseCase.SearchByCondition"
	if condition == "" {
		return nil, e.Wrap(op, e.ErrEmptyQuery)
	}
	return q.find(ctx, op, ProductFilter{Condition: condition}, Page{})
}

// SearchByPriceRange возвращает записи с ценой в [min, max].
// Пустая граница открыта. Записи с неразборной ценой не подходят.
func (q *QueryUseCase) SearchByPriceRange(ctx context.Context, min, max string) ([]*domain.Product, error) {
	const op = "QueryUseCase.SearchByPriceRange"

	lo, hasLo, err := parseBound(min)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	hi, hasHi, err := parseBound(max)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if hasLo && hasHi && lo.GreaterThan(hi) {
		return nil, e.Wrap(op, fmt.Errorf("%w: min %s is above max %s", e.ErrInvalidPrice, lo, hi))
	}

	return q.filter(ctx, op, func(p *domain.Product) bool {
		price, ok := domain.ParsePrice(domain.Deref(p.Price))
		if !ok {
			return false
		}
		if hasLo && price.LessThan(lo) {
			return false
		}
		if hasHi && price.GreaterThan(hi) {
			return false
		}
		return true
	})
}

func parseBound(s string) (decimal.Decimal, bool, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, false, nil
	}
	d, ok := domain.ParsePrice(s)
	if !ok || d.IsNegative() {
		return decimal.Zero, false, fmt.Errorf("%w: %q", e.ErrInvalidPrice, s)
	}
	return d, true, nil
}

func (q *QueryUseCase) find(ctx context.Context, op string, filter ProductFilter, page Page) ([]*domain.Product, error) {
	docs, err := q.store.Find(ctx, filter, page)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	return q.decode(op, docs), nil
}

// filter просматривает всё хранилище и оставляет записи, принятые match.
func (q *QueryUseCase) filter(ctx context.Context, op string, match func(*domain.Product) bool) ([]*domain.Product, error) {
	all, err := q.find(ctx, op, ProductFilter{}, Page{})
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Product, 0)
	for _, p := range all {
		if match(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (q *QueryUseCase) decode(op string, docs []*domain.Document) []*domain.Product {
	out := make([]*domain.Product, 0, len(docs))
	for _, doc := range docs {
		p, err := doc.Fields.Product()
		if err != nil {
			q.logger.Warnf("%s: skipping undecodable document %s: %v", op, doc.Key, err)
			continue
		}
		out = append(out, p)
	}
	return out
}
