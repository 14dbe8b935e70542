package pgdb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/DRSN-tech/scrape-ingest/pkg/e"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// PoolProvider выдаёт пул соединений, подключаясь при первом обращении.
type PoolProvider interface {
	Pool(ctx context.Context) (*pgxpool.Pool, error)
}

func postgresDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// storeErr помечает ошибки недоступности базы данных.
// Ошибки, которые вернул сам сервер, возвращаются как есть.
func storeErr(err error) error {
	if err == nil || errors.Is(err, e.ErrStoreUnavailable) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// класс 08: ошибка соединения, 57P: вмешательство оператора
		if strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "57P") {
			return fmt.Errorf("%w: %w", e.ErrStoreUnavailable, err)
		}
		return err
	}

	return fmt.Errorf("%w: %w", e.ErrStoreUnavailable, err)
}
