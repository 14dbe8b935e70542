package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/DRSN-tech/scrape-ingest/internal/cfg"
	"github.com/DRSN-tech/scrape-ingest/pkg/e"
	"github.com/DRSN-tech/scrape-ingest/pkg/logger"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Connector владеет пулом PostgreSQL. Создаётся один раз при старте, передаётся
// в репозитории и подключается лениво при первом обращении.
type Connector struct {
	cfg    *cfg.PGDBCfg
	logger logger.Logger

	mu    sync.Mutex
	ready atomic.Bool
	pool  *pgxpool.Pool
}

func NewConnector(cfg *cfg.PGDBCfg, logger logger.Logger) *Connector {
	return &Connector{cfg: cfg, logger: logger}
}

// DSN возвращает строку подключения из конфига.
func (c *Connector) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.cfg.Host,
		c.cfg.Port,
		c.cfg.User,
		c.cfg.Password,
		c.cfg.DBName,
		c.cfg.SSLMode,
	)
}

// Initialize подключается, пингует и применяет миграции. Конкурентные вызовы ждут
// первую попытку; после успеха вызовы возвращаются сразу. Неудачная
// попытка оставляет коннектор неинициализированным, следующий вызов повторит её.
func (c *Connector) Initialize(ctx context.Context) error {
	const op = "Connector.Initialize"

	if c.ready.Load() {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ready.Load() {
		return nil
	}

	pool, err := c.connect(ctx)
	if err != nil {
		return e.Wrap(op, fmt.Errorf("%w: %w", e.ErrStoreUnavailable, err))
	}

	if c.cfg.MigrationsPath != "" {
		if err := c.runMigrations(); err != nil {
			pool.Close()
			return e.Wrap(op, fmt.Errorf("%w: %w", e.ErrStoreUnavailable, err))
		}
	}

	c.pool = pool
	c.ready.Store(true)
	c.logger.Infof("postgres connection initialized (%s:%s/%s)", c.cfg.Host, c.cfg.Port, c.cfg.DBName)

	return nil
}

// IsInitialized сообщает, что Initialize прошёл успешно и Close с тех пор не вызывался.
func (c *Connector) IsInitialized() bool {
	return c.ready.Load()
}

// Client возвращает пул или nil до успешного Initialize.
func (c *Connector) Client() *pgxpool.Pool {
	if !c.ready.Load() {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pool
}

// Pool при необходимости инициализирует коннектор и возвращает пул.
func (c *Connector) Pool(ctx context.Context) (*pgxpool.Pool, error) {
	if err := c.Initialize(ctx); err != nil {
		return nil, err
	}

	pool := c.Client()
	if pool == nil {
		return nil, e.ErrStoreUnavailable
	}

	return pool, nil
}

// Ping проверяет доступность хранилища.
func (c *Connector) Ping(ctx context.Context) error {
	const op = "Connector.Ping"

	pool, err := c.Pool(ctx)
	if err != nil {
		return e.Wrap(op, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.ConnectTimeout)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		return e.Wrap(op, fmt.Errorf("%w: %w", e.ErrStoreUnavailable, err))
	}

	return nil
}

// Close освобождает пул. После этого коннектор можно инициализировать снова.
func (c *Connector) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pool != nil {
		c.pool.Close()
		c.pool = nil
		c.logger.Infof("postgres connection closed")
	}
	c.ready.Store(false)
}

func (c *Connector) connect(ctx context.Context) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(c.DSN())
	if err != nil {
		return nil, err
	}
	if c.cfg.MaxConns > 0 {
		poolCfg.MaxConns = c.cfg.MaxConns
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.ConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

// runMigrations применяет новые миграции из cfg.MigrationsPath.
func (c *Connector) runMigrations() error {
	const (
		op                 = "Connector.runMigrations"
		driverName         = "pgx"
		databaseDriverName = "postgres"
	)

	sqlDB, err := sql.Open(driverName, c.DSN())
	if err != nil {
		return e.Wrap(op, err)
	}
	defer sqlDB.Close()

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return e.Wrap(op, err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+c.cfg.MigrationsPath, databaseDriverName, driver)
	if err != nil {
		return e.Wrap(op, err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return e.Wrap(op, err)
	}

	c.logger.Infof("migrations applied successfully")
	return nil
}
