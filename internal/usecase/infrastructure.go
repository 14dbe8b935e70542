package usecase

import (
	"context"

	"github.com/DRSN-tech/scrape-ingest/internal/domain"
)

// PlatformAdapter собирает товары с одной площадки.
type PlatformAdapter interface {
	Name() string
	// Search возвращает валидные записи страницы выдачи по query в порядке страницы.
	Search(ctx context.Context, query string, limit int) ([]domain.Product, error)
	// GetDetail возвращает запись после слияния или nil, если ничего пригодного не получено.
	GetDetail(ctx context.Context, url string) (*domain.Product, error)
	Close() error
}

// AdapterRegistry находит адаптеры по имени площадки.
type AdapterRegistry interface {
	Get(name string) (PlatformAdapter, bool)
	Names() []string
}

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}

// PageArchive сохраняет страницы для повторного извлечения офлайн. Archive не должен блокировать.
type PageArchive interface {
	Archive(page *domain.RawPage)
}
