package usecase

import (
	"context"
	"sync/atomic"

	"github.com/DRSN-tech/scrape-ingest/internal/cfg"
	"github.com/DRSN-tech/scrape-ingest/internal/domain"
	"github.com/DRSN-tech/scrape-ingest/internal/metrics"
	"github.com/DRSN-tech/scrape-ingest/pkg/e"
	"github.com/DRSN-tech/scrape-ingest/pkg/jitter"
	"github.com/DRSN-tech/scrape-ingest/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	reasonMissingURL      = "missing source or url"
	reasonUnknownPlatform = "no adapter for source"
	reasonNoDetail        = "detail page could not be fetched or failed validation"
)

// BackfillUseCase повторно загружает карточку каждой сохранённой записи, чтобы
// движок upsert дополнил её.
type BackfillUseCase struct {
	store    ProductStore
	registry AdapterRegistry
	cfg      *cfg.BackfillCfg
	running  atomic.Bool
	logger   logger.Logger
	tracer   trace.Tracer
}

func NewBackfillUC(store ProductStore, registry AdapterRegistry, cfg *cfg.BackfillCfg, logger logger.Logger) *BackfillUseCase {
	return &BackfillUseCase{
		store:    store,
		registry: registry,
		cfg:      cfg,
		logger:   logger,
		tracer:   otel.Tracer("usecase/backfill"),
	}
}

// Run обходит хранилище в порядке вставки, по одной загрузке за раз. Ошибки
// отдельных записей попадают в отчёт; возвращается только ошибка чтения хранилища.
// Отмена ctx останавливает обход и возвращает сделанное к этому моменту.
func (b *BackfillUseCase) Run(ctx context.Context) (*BackfillReport, error) {
	const op = "BackfillUseCase.Run"

	if !b.running.CompareAndSwap(false, true) {
		return nil, e.Wrap(op, e.ErrBackfillRunning)
	}
	defer b.running.Store(false)

	ctx, span := b.tracer.Start(ctx, op)
	defer span.End()

	docs, err := b.store.Find(ctx, ProductFilter{}, Page{})
	if err != nil {
		span.RecordError(err)
		return nil, e.Wrap(op, err)
	}

	log := b.logger.WithContext(ctx)
	log.Infof("backfill started for %d records", len(docs))

	report := NewBackfillReport()
	fetched := false
	for _, doc := range docs {
		if ctx.Err() != nil {
			log.Warnf("backfill interrupted: %v", ctx.Err())
			break
		}

		product, err := doc.Fields.Product()
		if err != nil {
			report.fail(doc.Key, "", err.Error())
			continue
		}

		url := domain.Deref(product.URL)
		if doc.Key.Source == "" || url == "" {
			report.fail(doc.Key, url, reasonMissingURL)
			continue
		}

		adapter, ok := b.registry.Get(doc.Key.Source)
		if !ok {
			report.fail(doc.Key, url, reasonUnknownPlatform)
			continue
		}

		if fetched {
			if err := jitter.Sleep(ctx, b.cfg.Delay, b.cfg.Jitter); err != nil {
				log.Warnf("backfill interrupted: %v", err)
				break
			}
		}
		fetched = true

		detail, err := adapter.GetDetail(ctx, url)
		if err != nil {
			report.fail(doc.Key, url, err.Error())
			continue
		}
		if detail == nil {
			report.fail(doc.Key, url, reasonNoDetail)
			continue
		}

		report.Completed++
	}

	metrics.RecordBackfill(report.Completed, len(report.Errors))
	span.SetAttributes(
		attribute.Int("backfill.completed", report.Completed),
		attribute.Int("backfill.failed", len(report.Errors)),
	)
	log.Infof("backfill finished: %d completed, %d failed", report.Completed, len(report.Errors))

	return report, nil
}
