package usecase

import (
	"context"

	"github.com/DRSN-tech/scrape-ingest/internal/domain"
)

// ProductStore — коллекция документов с ключом (source, product_id).
type ProductStore interface {
	// FindOne возвращает e.ErrProductNotFound, если документа с ключом нет.
	FindOne(ctx context.Context, key domain.DedupKey) (*domain.Document, error)
	// Find возвращает подходящие документы в порядке вставки.
	Find(ctx context.Context, filter ProductFilter, page Page) ([]*domain.Document, error)
	Insert(ctx context.Context, doc *domain.Document) (*domain.Document, error)
	// UpdateFields сливает diff с сохранённым документом.
	UpdateFields(ctx context.Context, key domain.DedupKey, diff domain.Fields) error
}

// KeyLocker выполняет fn, удерживая блокировку ключа.
// Вызовы хранилища с ctx из fn идут в транзакции блокировки.
type KeyLocker interface {
	WithKeyLock(ctx context.Context, key domain.DedupKey, fn func(ctx context.Context) error) error
}

type CacheRepository interface {
	// GetProduct возвращает nil, nil при промахе кэша.
	GetProduct(ctx context.Context, key domain.DedupKey) (*domain.Product, error)
	SetProduct(ctx context.Context, product *domain.Product) error
	DeleteProducts(ctx context.Context, keys []domain.DedupKey) error
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	MarkAsPending(ctx context.Context, id int64) error
}

type PageRepository interface {
	Upload(ctx context.Context, objectKey string, page *domain.RawPage) (string, error)
}
