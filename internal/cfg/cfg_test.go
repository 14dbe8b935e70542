package cfg

import (
	"testing"
	"time"

	"github.com/DRSN-tech/scrape-ingest/pkg/e"
	"github.com/DRSN-tech/scrape-ingest/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("POSTGRES_USER", "scraper")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "scraping")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	c, err := Load(logger.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "8080", c.Http.Port)
	assert.Equal(t, DriverChrome, c.Scraper.Driver)
	assert.Equal(t, 10*time.Second, c.Scraper.PageTimeout)
	assert.Equal(t, 100, c.Scraper.DefaultLimit)
	assert.Equal(t, []string{"amazon", "vinted"}, c.Scraper.Platforms)
	assert.Equal(t, 2*time.Second, c.Backfill.Delay)
	assert.Equal(t, 3*time.Second, c.Redis.Timeout)
	assert.False(t, c.Kafka.Enabled)
	assert.False(t, c.Minio.Enabled)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SCRAPER_DRIVER", "http")
	t.Setenv("SCRAPER_PLATFORMS", "vinted")
	t.Setenv("SCRAPER_PAGE_TIMEOUT", "3s")
	t.Setenv("REDIS_READ_TIMEOUT", "7s")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")

	c, err := Load(logger.NewNop())
	require.NoError(t, err)

	assert.Equal(t, DriverHTTP, c.Scraper.Driver)
	assert.Equal(t, []string{"vinted"}, c.Scraper.Platforms)
	assert.Equal(t, 3*time.Second, c.Scraper.PageTimeout)
	assert.Equal(t, 7*time.Second, c.Redis.Timeout)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, c.Kafka.Brokers)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("unknown driver", func(t *testing.T) {
		setRequired(t)
		t.Setenv("SCRAPER_DRIVER", "selenium")

		_, err := Load(logger.NewNop())
		assert.ErrorIs(t, err, e.ErrIncorrectEnvVariable)
	})

	t.Run("kafka without brokers", func(t *testing.T) {
		setRequired(t)
		t.Setenv("KAFKA_ENABLED", "true")

		_, err := Load(logger.NewNop())
		assert.Error(t, err)
	})

	t.Run("minio without credentials", func(t *testing.T) {
		setRequired(t)
		t.Setenv("MINIO_ENABLED", "true")

		_, err := Load(logger.NewNop())
		assert.Error(t, err)
	})

	t.Run("zero parallelism", func(t *testing.T) {
		setRequired(t)
		t.Setenv("SCRAPER_MAX_PARALLEL", "0")

		_, err := Load(logger.NewNop())
		assert.ErrorIs(t, err, e.ErrIncorrectEnvVariable)
	})
}
