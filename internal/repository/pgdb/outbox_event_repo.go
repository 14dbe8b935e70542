package pgdb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/DRSN-tech/scrape-ingest/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/scrape-ingest/internal/usecase"
	"github.com/DRSN-tech/scrape-ingest/pkg/e"
	"github.com/DRSN-tech/scrape-ingest/pkg/tr"
	"github.com/jimlawless/whereami"
)

// OutboxChannel получает NOTIFY при каждой записи ожидающего события.
const OutboxChannel = "outbox_pending"

type OutboxEventRepo struct {
	db   PoolProvider
	conv converter.OutboxEventConverter
}

func NewOutboxEventRepo(db PoolProvider) *OutboxEventRepo {
	return &OutboxEventRepo{db: db}
}

// Create вызывается внутри транзакции описываемого изменения.
func (o *OutboxEventRepo) Create(ctx context.Context, event *usecase.OutboxEvent) (*usecase.OutboxEvent, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model := o.conv.ToModel(event)
	query := `
		INSERT INTO outbox_events (
			event_id,
			event_type,
			source,
			product_id,
			payload,
			status,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at;
	`

	if err := tx.QueryRow(ctx, query,
		model.EventID,
		model.EventType,
		model.Source,
		model.ProductID,
		model.Payload,
		model.Status,
		model.CreatedAt,
	).Scan(&model.ID, &model.CreatedAt); err != nil {
		if postgresDuplicate(err) {
			return nil, fmt.Errorf("%s: event with id %s already exists", whereami.WhereAmI(), event.EventID)
		}

		return nil, fmt.Errorf("%s: failed to insert event: %w", whereami.WhereAmI(), storeErr(err))
	}

	if _, err = tx.Exec(ctx, "NOTIFY "+OutboxChannel); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), storeErr(err))
	}

	return o.conv.ToEntity(model), nil
}

// GetAndMarkAsProcessing захватывает до limit ожидающих событий, начиная со старых.
// Строки, захваченные другим worker'ом, пропускаются.
func (o *OutboxEventRepo) GetAndMarkAsProcessing(ctx context.Context, limit int) (_ []*usecase.OutboxEvent, err error) {
	pool, err := o.db.Pool(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", whereami.WhereAmI(), storeErr(err))
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}
	}()

	query := `
		UPDATE outbox_events
		SET status = $1, processing_started_at = NOW()
		WHERE id IN (
			SELECT id FROM outbox_events
			WHERE status = $2
			ORDER BY created_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, event_id, event_type, source, product_id, payload, status, created_at, processed_at
	`

	rows, err := tx.Query(ctx, query, usecase.Processing, usecase.Pending, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to query pending events: %w", whereami.WhereAmI(), storeErr(err))
	}
	defer rows.Close()

	var models []*converter.OutboxEventModel
	for rows.Next() {
		var model converter.OutboxEventModel
		var processedAt sql.NullTime

		err = rows.Scan(
			&model.ID,
			&model.EventID,
			&model.EventType,
			&model.Source,
			&model.ProductID,
			&model.Payload,
			&model.Status,
			&model.CreatedAt,
			&processedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to scan event: %w", whereami.WhereAmI(), err)
		}

		if processedAt.Valid {
			model.ProcessedAt = &processedAt.Time
		}

		models = append(models, &model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iterator error: %w", whereami.WhereAmI(), err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", whereami.WhereAmI(), storeErr(err))
	}

	return o.conv.ToArrEntity(models), nil
}

func (o *OutboxEventRepo) MarkAsProcessed(ctx context.Context, id int64) error {
	return o.setStatus(ctx, id, usecase.Processing, usecase.Processed)
}

// MarkAsPending возвращает событие в очередь после неудачной публикации.
func (o *OutboxEventRepo) MarkAsPending(ctx context.Context, id int64) error {
	return o.setStatus(ctx, id, usecase.Processing, usecase.Pending)
}

func (o *OutboxEventRepo) setStatus(ctx context.Context, id int64, from, to usecase.OutboxStatus) error {
	pool, err := o.db.Pool(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		UPDATE outbox_events
		SET status = $1,
			processed_at = CASE WHEN $1 = 'processed' THEN NOW() ELSE processed_at END,
			processing_started_at = CASE WHEN $1 = 'pending' THEN NULL ELSE processing_started_at END
		WHERE id = $2 AND status = $3
	`

	// событие уже перевёл в другой статус другой worker
	if _, err := pool.Exec(ctx, query, to, id, from); err != nil {
		return fmt.Errorf("%s: failed to mark event %d as %s: %w", whereami.WhereAmI(), id, to, storeErr(err))
	}

	return nil
}
