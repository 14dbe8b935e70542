package scraper

import (
	"context"
	"time"

	"github.com/DRSN-tech/scrape-ingest/internal/domain"
	"github.com/DRSN-tech/scrape-ingest/internal/metrics"
	"github.com/DRSN-tech/scrape-ingest/internal/usecase"
	"github.com/DRSN-tech/scrape-ingest/pkg/e"
	"github.com/DRSN-tech/scrape-ingest/pkg/logger"
)

// Site описывает площадку: адрес поиска, маркеры готовности страниц и чистые
// функции разбора HTML.
type Site struct {
	Name         string
	SearchURL    func(query string) string
	ListingReady string
	DetailReady  string
	ParseListing func(html string, limit int) ([]*domain.Product, int)
	ParseDetail  func(html string, now time.Time) *domain.Product
}

// Adapter реализует общий для всех площадок сценарий поиска и загрузки
// карточки товара поверх Site.
type Adapter struct {
	site     Site
	fetcher  *Fetcher
	upserter usecase.Upserter
	logger   logger.Logger
	now      func() time.Time
}

func NewAdapter(site Site, session Session, upserter usecase.Upserter, archive usecase.PageArchive, logger logger.Logger) *Adapter {
	return &Adapter{
		site:     site,
		fetcher:  NewFetcher(site.Name, session, archive, logger),
		upserter: upserter,
		logger:   logger,
		now:      time.Now,
	}
}

func (a *Adapter) Name() string { return a.site.Name }

// Search загружает страницу выдачи, разбирает до limit карточек и сохраняет
// валидные. Неготовая страница даёт пустой результат без ошибки.
func (a *Adapter) Search(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	op := a.site.Name + ".Adapter.Search"

	html, err := a.fetcher.Get(ctx, domain.PageSearch, a.site.SearchURL(query), a.site.ListingReady)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if html == "" {
		return []domain.Product{}, nil
	}

	candidates, failed := a.site.ParseListing(html, limit)
	if failed > 0 {
		metrics.RecordDropped(a.site.Name, metrics.DropParse)
		a.logger.Warnf("%s: %d result nodes could not be parsed for %q", op, failed, query)
	}
	a.logger.Infof("%s: %d results for %q", op, len(candidates), query)

	products, err := Ingest(ctx, a.site.Name, a.upserter, candidates, a.logger)
	if err != nil {
		return products, e.Wrap(op, err)
	}

	return products, nil
}

// GetDetail возвращает сохранённую запись после слияния или nil, если
// страница недоступна либо запись не прошла валидацию.
func (a *Adapter) GetDetail(ctx context.Context, url string) (*domain.Product, error) {
	op := a.site.Name + ".Adapter.GetDetail"

	html, err := a.fetcher.Get(ctx, domain.PageDetail, url, a.site.DetailReady)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if html == "" {
		return nil, nil
	}

	products, err := Ingest(ctx, a.site.Name, a.upserter, []*domain.Product{a.site.ParseDetail(html, a.now())}, a.logger)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if len(products) == 0 {
		return nil, nil
	}

	return &products[0], nil
}

func (a *Adapter) Close() error {
	return a.fetcher.Close()
}
