package usecase

import (
	"context"

	"github.com/DRSN-tech/scrape-ingest/internal/domain"
)

// Upserter — путь записи, через который адаптеры сохраняют извлечённые товары.
type Upserter interface {
	UpsertMany(ctx context.Context, products []*domain.Product) ([]*domain.UpsertResult, error)
}

type AggregatorUC interface {
	Platforms() []string
	FanOutSearch(ctx context.Context, req *SearchReq) *FanOutResult
	BatchSearch(ctx context.Context, req *BatchSearchReq) *FanOutResult
	Detail(ctx context.Context, platform, url string) (*domain.Product, error)
}

type BackfillUC interface {
	Run(ctx context.Context) (*BackfillReport, error)
}

type QueryUC interface {
	ListProducts(ctx context.Context, source string) ([]*domain.Product, error)
	ListPage(ctx context.Context, page, pageSize int) ([]*domain.Product, error)
	GetProduct(ctx context.Context, key domain.DedupKey) (*domain.Product, error)
	SearchCategories(ctx context.Context, query string, threshold int) ([]*domain.Product, error)
	SearchByCategories(ctx context.Context, categories []string) ([]*domain.Product, error)
	SearchByName(ctx context.Context, name string) ([]*domain.Product, error)
	SearchByDescription(ctx context.Context, keywords string) ([]*domain.Product, error)
	SearchByBrand(ctx context.Context, brand string) ([]*domain.Product, error)
	SearchByCondition(ctx context.Context, condition string) ([]*domain.Product, error)
	SearchByPriceRange(ctx context.Context, min, max string) ([]*domain.Product, error)
}
