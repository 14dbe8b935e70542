package scraper

import (
	"context"
	"errors"
	"time"

	"github.com/DRSN-tech/scrape-ingest/internal/domain"
	"github.com/DRSN-tech/scrape-ingest/internal/metrics"
	"github.com/DRSN-tech/scrape-ingest/internal/usecase"
	"github.com/DRSN-tech/scrape-ingest/pkg/logger"
)

const (
	FetchOK      = "ok"
	FetchTimeout = "timeout"
	FetchError   = "error"
)

// Fetcher загружает страницы одной площадки. Незагруженная страница возвращается
// как "" без ошибки; ошибками считаются только отмена и закрытая сессия.
type Fetcher struct {
	platform string
	session  Session
	archive  usecase.PageArchive
	logger   logger.Logger
	now      func() time.Time
}

// NewFetcher создаёт загрузчик. archive может быть nil.
func NewFetcher(platform string, session Session, archive usecase.PageArchive, logger logger.Logger) *Fetcher {
	return &Fetcher{
		platform: platform,
		session:  session,
		archive:  archive,
		logger:   logger,
		now:      time.Now,
	}
}

func (f *Fetcher) Get(ctx context.Context, kind domain.PageKind, url, readySelector string) (string, error) {
	html, err := f.session.Fetch(ctx, url, readySelector)
	switch {
	case errors.Is(err, ErrPageTimeout):
		metrics.RecordFetch(f.platform, FetchTimeout)
		f.logger.WithContext(ctx).Warnf("%s: %s page not ready: %v", f.platform, kind, err)
		return "", nil
	case errors.Is(err, ErrFetchFailed):
		metrics.RecordFetch(f.platform, FetchError)
		f.logger.WithContext(ctx).Warnf("%s: %s page failed: %v", f.platform, kind, err)
		return "", nil
	case err != nil:
		return "", err
	}

	metrics.RecordFetch(f.platform, FetchOK)
	if f.archive != nil {
		f.archive.Archive(domain.NewRawPage(f.platform, kind, url, html, f.now()))
	}

	return html, nil
}

func (f *Fetcher) Close() error {
	return f.session.Close()
}

// Ingest валидирует кандидатов и передаёт валидных в upserter по порядку,
// возвращая записи после слияния. Недоступность хранилища прерывает приём и
// возвращается вместе с уже сохранёнными записями.
func Ingest(
	ctx context.Context,
	platform string,
	upserter usecase.Upserter,
	candidates []*domain.Product,
	logger logger.Logger,
) ([]domain.Product, error) {
	valid := make([]*domain.Product, 0, len(candidates))
	for _, p := range candidates {
		if p == nil {
			continue
		}
		if !p.IsValid() {
			metrics.RecordDropped(platform, metrics.DropInvalid)
			logger.Debugf("%s: dropping record %s, missing %v", platform, p, p.MissingFields())
			continue
		}
		valid = append(valid, p)
	}
	if len(valid) == 0 {
		return []domain.Product{}, nil
	}

	results, err := upserter.UpsertMany(ctx, valid)

	out := make([]domain.Product, 0, len(results))
	for _, res := range results {
		out = append(out, *res.Product)
	}

	return out, err
}
