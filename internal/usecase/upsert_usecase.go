package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/DRSN-tech/scrape-ingest/internal/domain"
	"github.com/DRSN-tech/scrape-ingest/internal/metrics"
	"github.com/DRSN-tech/scrape-ingest/pkg/e"
	"github.com/DRSN-tech/scrape-ingest/pkg/logger"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// UpsertUseCase — единственный путь записи в хранилище товаров.
type UpsertUseCase struct {
	store  ProductStore
	locker KeyLocker
	outbox OutboxRepository
	cache  CacheRepository
	logger logger.Logger
	tracer trace.Tracer
}

// NewUpsertUC создаёт движок. outbox и cache могут быть nil.
func NewUpsertUC(
	store ProductStore,
	locker KeyLocker,
	outbox OutboxRepository,
	cache CacheRepository,
	logger logger.Logger,
) *UpsertUseCase {
	return &UpsertUseCase{
		store:  store,
		locker: locker,
		outbox: outbox,
		cache:  cache,
		logger: logger,
		tracer: otel.Tracer("usecase/upsert"),
	}
}

// Upsert вставляет запись с новым ключом, иначе применяет
// непустые поля, отличающиеся от сохранённого документа. Вызовы с одним
// ключом сериализуются через KeyLocker.
func (u *UpsertUseCase) Upsert(ctx context.Context, product *domain.Product) (*domain.UpsertResult, error) {
	const op = "UpsertUseCase.Upsert"

	if product == nil || product.Source == "" {
		return nil, e.Wrap(op, e.ErrMissingSource)
	}
	if err := product.Validate(); err != nil {
		return nil, e.Wrap(op, fmt.Errorf("%w: missing %v", e.ErrInvalidProduct, product.MissingFields()))
	}

	key := product.Key()
	ctx, span := u.tracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("product.source", key.Source),
		attribute.String("product.id", key.ProductID),
	))
	defer span.End()

	incoming, err := domain.FieldsOf(product)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	var res *domain.UpsertResult
	err = u.locker.WithKeyLock(ctx, key, func(ctx context.Context) error {
		r, err := u.apply(ctx, key, incoming)
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, e.Wrap(op, err)
	}

	metrics.RecordUpsert(key.Source, string(res.Outcome))
	span.SetAttributes(attribute.String("upsert.outcome", string(res.Outcome)))

	if res.Outcome != domain.OutcomeUnchanged && u.cache != nil {
		if err := u.cache.DeleteProducts(ctx, []domain.DedupKey{key}); err != nil {
			u.logger.Warnf("failed to invalidate cached product %s: %v", key, e.Wrap(op, err))
		}
	}

	u.logger.WithContext(ctx).Debugf("product %s %s (%d fields changed)", key, res.Outcome, len(res.Changed))
	return res, nil
}

// UpsertMany применяет записи по порядку. Недоступность хранилища прерывает пачку;
// прочие ошибки отдельных записей учитываются в метриках, логируются и пропускаются.
func (u *UpsertUseCase) UpsertMany(ctx context.Context, products []*domain.Product) ([]*domain.UpsertResult, error) {
	const op = "UpsertUseCase.UpsertMany"

	results := make([]*domain.UpsertResult, 0, len(products))
	for _, p := range products {
		if p == nil {
			continue
		}

		res, err := u.Upsert(ctx, p)
		if err != nil {
			if errors.Is(err, e.ErrStoreUnavailable) || ctx.Err() != nil {
				return results, e.Wrap(op, err)
			}
			metrics.RecordDropped(p.Source, metrics.DropUpsert)
			u.logger.Warnf("skipping product %s: %v", p.Key(), err)
			continue
		}
		results = append(results, res)
	}

	return results, nil
}

func (u *UpsertUseCase) apply(ctx context.Context, key domain.DedupKey, incoming domain.Fields) (*domain.UpsertResult, error) {
	stored, err := u.store.FindOne(ctx, key)
	if errors.Is(err, e.ErrProductNotFound) {
		if _, err := u.store.Insert(ctx, domain.NewDocument(key, incoming)); err != nil {
			return nil, err
		}
		return u.finish(ctx, domain.OutcomeInserted, key, incoming, incoming.Names())
	}
	if err != nil {
		return nil, err
	}

	diff := stored.Fields.Diff(incoming)
	if len(diff) == 0 {
		product, err := stored.Fields.Product()
		if err != nil {
			return nil, err
		}
		return domain.NewUpsertResult(domain.OutcomeUnchanged, product, nil), nil
	}

	if err := u.store.UpdateFields(ctx, key, diff); err != nil {
		return nil, err
	}

	return u.finish(ctx, domain.OutcomeUpdated, key, stored.Fields.Merge(diff), diff.Names())
}

func (u *UpsertUseCase) finish(
	ctx context.Context,
	outcome domain.UpsertOutcome,
	key domain.DedupKey,
	merged domain.Fields,
	changed []string,
) (*domain.UpsertResult, error) {
	product, err := merged.Product()
	if err != nil {
		return nil, err
	}

	if u.outbox != nil {
		if err := u.enqueueChange(ctx, outcome, key, product, changed); err != nil {
			return nil, err
		}
	}

	return domain.NewUpsertResult(outcome, product, changed), nil
}

// enqueueChange пишет событие изменения в той же транзакции, что и upsert.
func (u *UpsertUseCase) enqueueChange(
	ctx context.Context,
	outcome domain.UpsertOutcome,
	key domain.DedupKey,
	product *domain.Product,
	changed []string,
) error {
	eventType := EventProductUpdated
	if outcome == domain.OutcomeInserted {
		eventType = EventProductInserted
	}

	event := ProductChangeEvent{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		Key:        key,
		Changed:    changed,
		Product:    product,
		OccurredAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, err = u.outbox.Create(ctx, NewOutboxEvent(event.EventID, eventType, key, payload))
	return err
}
