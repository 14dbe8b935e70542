package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/scrape-ingest/internal/cfg"
	v1Grpc "github.com/DRSN-tech/scrape-ingest/internal/delivery/v1/grpc"
	v1Http "github.com/DRSN-tech/scrape-ingest/internal/delivery/v1/http"
	"github.com/DRSN-tech/scrape-ingest/internal/infrastructure/kafka"
	minioInfra "github.com/DRSN-tech/scrape-ingest/internal/infrastructure/minio"
	"github.com/DRSN-tech/scrape-ingest/internal/infrastructure/scraper"
	"github.com/DRSN-tech/scrape-ingest/internal/infrastructure/scraper/amazon"
	"github.com/DRSN-tech/scrape-ingest/internal/infrastructure/scraper/vinted"
	s3Repo "github.com/DRSN-tech/scrape-ingest/internal/repository/minio"
	"github.com/DRSN-tech/scrape-ingest/internal/repository/pgdb"
	"github.com/DRSN-tech/scrape-ingest/internal/repository/redis"
	"github.com/DRSN-tech/scrape-ingest/internal/usecase"
	"github.com/DRSN-tech/scrape-ingest/pkg/clients"
	"github.com/DRSN-tech/scrape-ingest/pkg/closer"
	"github.com/DRSN-tech/scrape-ingest/pkg/e"
	"github.com/DRSN-tech/scrape-ingest/pkg/logger"
	"github.com/DRSN-tech/scrape-ingest/pkg/postgres"
	"github.com/DRSN-tech/scrape-ingest/pkg/tracing"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const healthInterval = 10 * time.Second

type App struct {
	cfg    *config.Config
	logger logger.Logger
	closer *closer.Closer

	ctx    context.Context
	cancel context.CancelFunc

	db      *postgres.Connector
	httpSrv *v1Http.Server
	grpcSrv *v1Grpc.GRPCServer
	worker  *kafka.OutboxWorker
}

// NewApp собирает все компоненты. Недоступные опциональные бэкенды (Redis, MinIO, Kafka)
// логируются и отключаются; хранилище подключается лениво.
func NewApp(cfg *config.Config, logger logger.Logger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		cfg:    cfg,
		logger: logger,
		closer: closer.NewCloser(cfg.App.ShutdownTimeout / 3),
		ctx:    ctx,
		cancel: cancel,
	}
	a.closer.AddSimple("app context", cancel)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(ctx, cfg.App.Name, cfg.Tracing.Endpoint, cfg.App.Env)
		if err != nil {
			logger.Warnf("tracing disabled: %v", err)
		} else {
			a.closer.Add("tracer provider", tp.Shutdown)
		}
	}

	a.db = postgres.NewConnector(cfg.Db, logger)
	a.closer.AddSimple("postgres", a.db.Close)
	initCtx, initCancel := context.WithTimeout(ctx, cfg.Db.ConnectTimeout)
	if err := a.db.Initialize(initCtx); err != nil {
		logger.Warnf("postgres not reachable at startup, will retry on first use: %v", err)
	}
	initCancel()

	store := pgdb.NewProductStore(a.db)
	locker := pgdb.NewKeyLocker(a.db)

	var outbox usecase.OutboxRepository
	if cfg.Kafka.Enabled {
		outboxRepo := pgdb.NewOutboxEventRepo(a.db)
		outbox = outboxRepo
		a.initKafka(outboxRepo)
	}

	cache := a.initRedis()
	archive := a.initMinio()

	upsertUC := usecase.NewUpsertUC(store, locker, outbox, cache, logger)

	registry, err := a.initRegistry(upsertUC, archive)
	if err != nil {
		a.closer.Close(context.Background())
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	a.closer.Add("scraper sessions", func(context.Context) error { return registry.Close() })

	aggregatorUC := usecase.NewAggregatorUC(registry, cfg.Scraper, logger)
	backfillUC := usecase.NewBackfillUC(store, registry, cfg.Backfill, logger)
	queryUC := usecase.NewQueryUC(store, cache, logger)

	a.grpcSrv = v1Grpc.NewGRPCServer(cfg.Grpc, logger)
	a.closer.Add("grpc server", a.grpcSrv.Stop)

	r := chi.NewRouter()
	v1Http.NewRouter(r, logger).Init(v1Http.Deps{
		Aggregator:   aggregatorUC,
		Backfill:     backfillUC,
		Query:        queryUC,
		DefaultLimit: cfg.Scraper.DefaultLimit,
		SwaggerURL:   cfg.Http.SwaggerURL,
	})
	a.httpSrv = v1Http.NewServer(r, cfg.Http, logger)
	a.closer.Add("http server", a.httpSrv.Stop)

	return a, nil
}

// Run обслуживает запросы до SIGINT/SIGTERM или падения сервера, затем завершает работу.
func (a *App) Run() error {
	grpcErrCh := make(chan error, 1)
	go func() {
		a.logger.Infof("gRPC server starting on %s:%s", a.cfg.Grpc.NetworkMode, a.cfg.Grpc.Port)
		if err := a.grpcSrv.Start(); err != nil {
			grpcErrCh <- err
		}
	}()
	go a.grpcSrv.WatchStore(a.ctx, a.db.Ping, healthInterval)

	errCh := make(chan error, 1)
	go func() {
		if err := a.httpSrv.Run(); err != nil {
			errCh <- err
		}
	}()

	if a.worker != nil {
		a.worker.Start(a.ctx)
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "HTTP server fatal error")
	case appErr = <-grpcErrCh:
		a.logger.Errorf(appErr, "gRPC server fatal error")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.App.ShutdownTimeout)
	defer cancel()

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Errorf(err, "shutdown finished with errors")
	}

	a.logger.Infof("Application shutdown complete")
	return appErr
}

func (a *App) initRedis() usecase.CacheRepository {
	if !a.cfg.Redis.Enabled {
		return nil
	}

	client := clients.NewRedisClient(a.cfg.Redis)
	ctx, cancel := context.WithTimeout(a.ctx, a.cfg.Redis.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		a.logger.Warnf("redis not reachable, running without product cache: %v", err)
		client.Close()
		return nil
	}

	a.closer.Add("redis", func(context.Context) error { return client.Close() })
	return redis.NewCacheRepo(client, a.cfg.Redis, a.logger)
}

func (a *App) initMinio() usecase.PageArchive {
	if !a.cfg.Minio.Enabled {
		return nil
	}

	client, err := clients.NewMinIOClient(a.cfg.Minio)
	if err != nil {
		a.logger.Warnf("minio client: %v, page archive disabled", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(a.ctx, a.cfg.Minio.UploadTimeout)
	defer cancel()
	if err := clients.EnsureBucket(ctx, client, a.cfg.Minio.BucketName); err != nil {
		a.logger.Warnf("minio bucket %s: %v, page archive disabled", a.cfg.Minio.BucketName, err)
		return nil
	}

	archive := minioInfra.NewPageArchive(s3Repo.NewPageRepo(client, a.cfg.Minio), a.cfg.Minio, a.logger, a.ctx)
	a.closer.Add("page archive", archive.Wait)
	return archive
}

func (a *App) initKafka(repo usecase.OutboxRepository) {
	producer := kafka.NewProducer(a.logger, a.cfg.Kafka)
	if err := producer.EnsureTopic(10 * time.Second); err != nil {
		a.logger.Warnf("kafka topic %s not ensured: %v", a.cfg.Kafka.Topic, err)
	}
	a.closer.Add("kafka producer", func(context.Context) error { return producer.Close() })

	a.worker = kafka.NewOutboxWorker(repo, a.logger, producer, a.cfg.Kafka.BatchSize, a.db.DSN())
	a.closer.AddSimple("outbox worker", a.worker.Stop)
}

// initRegistry открывает по одной сессии с ограничением частоты на каждую площадку.
func (a *App) initRegistry(upserter usecase.Upserter, archive usecase.PageArchive) (*scraper.Registry, error) {
	registry := scraper.NewRegistry()

	for _, name := range a.cfg.Scraper.Platforms {
		session, err := a.newSession()
		if err != nil {
			registry.Close()
			return nil, e.Wrap(name, err)
		}
		paced := scraper.NewThrottledSession(session, a.cfg.Scraper.RequestsPerMinute)

		switch name {
		case amazon.Platform:
			registry.Register(amazon.NewAdapter(paced, upserter, archive, a.logger))
		case vinted.Platform:
			registry.Register(vinted.NewAdapter(paced, upserter, archive, a.logger))
		default:
			session.Close()
			registry.Close()
			return nil, fmt.Errorf("%w: %s", e.ErrUnknownPlatform, name)
		}
		a.logger.Infof("platform %s registered with %s driver", name, a.cfg.Scraper.Driver)
	}

	return registry, nil
}

func (a *App) newSession() (scraper.Session, error) {
	switch a.cfg.Scraper.Driver {
	case config.DriverHTTP:
		return scraper.NewHTTPSession(a.cfg.Scraper), nil
	default:
		return scraper.NewChromeSession(a.cfg.Scraper)
	}
}
