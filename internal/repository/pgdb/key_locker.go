package pgdb

import (
	"context"

	"github.com/DRSN-tech/scrape-ingest/internal/domain"
	"github.com/DRSN-tech/scrape-ingest/pkg/e"
	"github.com/DRSN-tech/scrape-ingest/pkg/tr"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
)

// KeyLocker сериализует работу по ключу дедупликации advisory-блокировкой
// уровня транзакции. Блокировка снимается по завершении транзакции.
type KeyLocker struct {
	db PoolProvider
}

func NewKeyLocker(db PoolProvider) *KeyLocker {
	return &KeyLocker{db: db}
}

func (l *KeyLocker) WithKeyLock(ctx context.Context, key domain.DedupKey, fn func(ctx context.Context) error) (err error) {
	const op = "KeyLocker.WithKeyLock"

	pool, err := l.db.Pool(ctx)
	if err != nil {
		return e.Wrap(op, err)
	}

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, pool)
	if err != nil {
		return e.Wrap(op, storeErr(err))
	}
	defer func() {
		if err != nil && tx.IsActive() {
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}
	}()

	pgxTx, ok := tx.Transaction().(pgx.Tx)
	if !ok {
		return e.Wrap(op, e.ErrTransactionNotFound)
	}
	ctx = tr.WithTx(ctx, pgxTx)

	if _, err = pgxTx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key.String()); err != nil {
		return e.Wrap(op, storeErr(err))
	}

	if err = fn(ctx); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return e.Wrap(op, storeErr(err))
	}

	return nil
}
