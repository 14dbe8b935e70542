package cfg

import (
	"fmt"
	"time"

	"github.com/DRSN-tech/scrape-ingest/pkg/e"
	"github.com/DRSN-tech/scrape-ingest/pkg/logger"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jimlawless/whereami"
)

const (
	DriverChrome = "chrome"
	DriverHTTP   = "http"
)

type Config struct {
	App      *AppCfg
	Http     *HTTPConfig
	Grpc     *GRPCConfig
	Db       *PGDBCfg
	Redis    *RedisCfg
	Minio    *MinIOCfg
	Kafka    *KafkaCfg
	Scraper  *ScraperCfg
	Backfill *BackfillCfg
	Tracing  *TracingCfg
}

type AppCfg struct {
	Name            string        `env:"APP_NAME" env-default:"scrape-ingest"`
	Env             string        `env:"APP_ENV" env-default:"dev"`
	LogLevel        string        `env:"LOG_LEVEL" env-default:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"15s"`
}

type HTTPConfig struct {
	Port         string        `env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"5s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"5m"` // скрапинг и backfill работают долго
	IdleTimeout  time.Duration `env:"KEEP_ALIVE" env-default:"60s"`
	SwaggerURL   string        `env:"SWAGGER_URL" env-default:"http://localhost:8080/swagger/doc.json"`
}

type GRPCConfig struct {
	Port        string `env:"GRPC_PORT" env-default:"8091"`
	NetworkMode string `env:"GRPC_NETWORK_MODE" env-default:"tcp"`
}

type PGDBCfg struct {
	Host           string        `env:"POSTGRES_HOST" env-default:"localhost"`
	Port           string        `env:"POSTGRES_PORT" env-default:"5432"`
	User           string        `env:"POSTGRES_USER" env-required:"true"`
	Password       string        `env:"POSTGRES_PASSWORD" env-required:"true"`
	DBName         string        `env:"POSTGRES_DB" env-required:"true"`
	SSLMode        string        `env:"SSL_MODE" env-default:"disable"`
	MigrationsPath string        `env:"MIGRATIONS_PATH" env-default:"db/migrations"`
	ConnectTimeout time.Duration `env:"POSTGRES_CONNECT_TIMEOUT" env-default:"5s"`
	MaxConns       int32         `env:"POSTGRES_MAX_CONNS" env-default:"10"`
}

type RedisCfg struct {
	Enabled      bool          `env:"REDIS_ENABLED" env-default:"true"`
	Addr         string        `env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password     string        `env:"REDIS_PASSWORD"`
	User         string        `env:"REDIS_USER"`
	DB           int           `env:"REDIS_DB_ID" env-default:"0"`
	MaxRetries   int           `env:"REDIS_MAX_RETRIES" env-default:"3"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" env-default:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" env-default:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" env-default:"3s"`
	ProductTTL   time.Duration `env:"PRODUCT_TTL" env-default:"10m"`
	// Timeout — большее из таймаутов чтения и записи.
	Timeout time.Duration
}

type MinIOCfg struct {
	Enabled       bool          `env:"MINIO_ENABLED" env-default:"false"`
	Endpoint      string        `env:"MINIO_ENDPOINT" env-default:"minio:9000"`
	BucketName    string        `env:"BUCKET_NAME" env-default:"page-archive"`
	RootUser      string        `env:"MINIO_ROOT_USER"`
	RootPassword  string        `env:"MINIO_ROOT_PASSWORD"`
	UseSSL        bool          `env:"MINIO_USE_SSL" env-default:"false"`
	UploadTimeout time.Duration `env:"MINIO_UPLOAD_TIMEOUT" env-default:"10s"`
}

type KafkaCfg struct {
	Enabled           bool     `env:"KAFKA_ENABLED" env-default:"false"`
	Brokers           []string `env:"KAFKA_BROKERS" env-separator:","`
	Topic             string   `env:"KAFKA_TOPIC" env-default:"product-changes"`
	NetworkMode       string   `env:"KAFKA_NETWORK_MODE" env-default:"tcp"`
	Partitions        int      `env:"KAFKA_PARTITIONS" env-default:"3"`
	ReplicationFactor int      `env:"REPLICATION_FACTOR" env-default:"1"`
	BatchSize         int      `env:"OUTBOX_BATCH_SIZE" env-default:"10"`
}

type ScraperCfg struct {
	Driver            string        `env:"SCRAPER_DRIVER" env-default:"chrome"`
	Headless          bool          `env:"SCRAPER_HEADLESS" env-default:"true"`
	UserAgent         string        `env:"SCRAPER_USER_AGENT" env-default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"`
	PageTimeout       time.Duration `env:"SCRAPER_PAGE_TIMEOUT" env-default:"10s"`
	RequestsPerMinute int           `env:"SCRAPER_REQUESTS_PER_MINUTE" env-default:"30"`
	MaxParallel       int           `env:"SCRAPER_MAX_PARALLEL" env-default:"4"`
	DefaultLimit      int           `env:"SCRAPER_DEFAULT_LIMIT" env-default:"100"`
	BreakerFailures   uint32        `env:"SCRAPER_BREAKER_FAILURES" env-default:"5"`
	BreakerTimeout    time.Duration `env:"SCRAPER_BREAKER_TIMEOUT" env-default:"1m"`
	Platforms         []string      `env:"SCRAPER_PLATFORMS" env-separator:"," env-default:"amazon,vinted"`
}

type BackfillCfg struct {
	Delay  time.Duration `env:"BACKFILL_DELAY" env-default:"2s"`
	Jitter float64       `env:"BACKFILL_JITTER" env-default:"0.5"`
}

type TracingCfg struct {
	Enabled  bool   `env:"TRACING_ENABLED" env-default:"false"`
	Endpoint string `env:"OTEL_EXPORTER_ENDPOINT" env-default:"localhost:4318"`
}

// Load читает все секции из окружения и валидирует их.
func Load(log logger.Logger) (*Config, error) {
	app, err := loadSection[AppCfg](log, "app")
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	http, err := loadSection[HTTPConfig](log, "http")
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	grpc, err := loadSection[GRPCConfig](log, "grpc")
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	db, err := loadSection[PGDBCfg](log, "postgres")
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minio, err := loadMinIOCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	scraper, err := loadScraperCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	backfill, err := loadSection[BackfillCfg](log, "backfill")
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	tracing, err := loadSection[TracingCfg](log, "tracing")
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Config{
		App:      app,
		Http:     http,
		Grpc:     grpc,
		Db:       db,
		Redis:    redis,
		Minio:    minio,
		Kafka:    kafka,
		Scraper:  scraper,
		Backfill: backfill,
		Tracing:  tracing,
	}, nil
}

// loadSection заполняет одну структуру конфига по env-тегам.
func loadSection[T any](log logger.Logger, name string) (*T, error) {
	var c T
	if err := cleanenv.ReadEnv(&c); err != nil {
		log.Errorf(err, "invalid %s config", name)
		return nil, e.Wrap(name, err)
	}
	return &c, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	c, err := loadSection[RedisCfg](log, "redis")
	if err != nil {
		return nil, err
	}

	c.Timeout = c.ReadTimeout
	if c.WriteTimeout > c.Timeout {
		c.Timeout = c.WriteTimeout
	}

	return c, nil
}

func loadMinIOCfg(log logger.Logger) (*MinIOCfg, error) {
	c, err := loadSection[MinIOCfg](log, "minio")
	if err != nil {
		return nil, err
	}

	if c.Enabled && (c.RootUser == "" || c.RootPassword == "") {
		err := fmt.Errorf("MINIO_ROOT_USER and MINIO_ROOT_PASSWORD are required when MINIO_ENABLED=true")
		log.Errorf(err, "missing minio credentials")
		return nil, err
	}

	return c, nil
}

func loadKafkaCfg(log logger.Logger) (*KafkaCfg, error) {
	c, err := loadSection[KafkaCfg](log, "kafka")
	if err != nil {
		return nil, err
	}

	if c.Enabled && len(c.Brokers) == 0 {
		err := fmt.Errorf("KAFKA_BROKERS environment variable is required when KAFKA_ENABLED=true")
		log.Errorf(err, "missing KAFKA_BROKERS")
		return nil, err
	}

	if c.BatchSize <= 0 {
		return nil, e.Wrap("OUTBOX_BATCH_SIZE", e.ErrIncorrectEnvVariable)
	}

	return c, nil
}

func loadScraperCfg(log logger.Logger) (*ScraperCfg, error) {
	c, err := loadSection[ScraperCfg](log, "scraper")
	if err != nil {
		return nil, err
	}

	switch c.Driver {
	case DriverChrome, DriverHTTP:
	default:
		err := e.Wrap("SCRAPER_DRIVER="+c.Driver, e.ErrIncorrectEnvVariable)
		log.Errorf(err, "unsupported scraper driver")
		return nil, err
	}

	if c.PageTimeout <= 0 {
		return nil, e.Wrap("SCRAPER_PAGE_TIMEOUT", e.ErrIncorrectEnvVariable)
	}

	if c.MaxParallel <= 0 {
		return nil, e.Wrap("SCRAPER_MAX_PARALLEL", e.ErrIncorrectEnvVariable)
	}

	if c.DefaultLimit <= 0 {
		return nil, e.Wrap("SCRAPER_DEFAULT_LIMIT", e.ErrIncorrectEnvVariable)
	}

	return c, nil
}
