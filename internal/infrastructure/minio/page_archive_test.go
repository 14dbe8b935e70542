package minio

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DRSN-tech/scrape-ingest/internal/cfg"
	"github.com/DRSN-tech/scrape-ingest/internal/domain"
	"github.com/DRSN-tech/scrape-ingest/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRepo struct {
	mu    sync.Mutex
	keys  []string
	fails int
}

func (r *recordingRepo) Upload(_ context.Context, key string, _ *domain.RawPage) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fails > 0 {
		r.fails--
		return "", errors.New("connection refused")
	}
	r.keys = append(r.keys, key)
	return key, nil
}

func TestPageArchive_UploadsInBackground(t *testing.T) {
	repo := &recordingRepo{}
	archive := NewPageArchive(repo, &cfg.MinIOCfg{UploadTimeout: time.Second}, logger.NewNop(), context.Background())

	fetched := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	archive.Archive(domain.NewRawPage("vinted", domain.PageDetail, "https://www.vinted.fr/items/1", "<html></html>", fetched))
	archive.Archive(domain.NewRawPage("vinted", domain.PageDetail, "https://www.vinted.fr/items/2", "", fetched))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, archive.Wait(ctx))

	require.Len(t, repo.keys, 1)
	assert.True(t, strings.HasPrefix(repo.keys[0], "vinted/detail/2024-05-01/"))
	assert.True(t, strings.HasSuffix(repo.keys[0], ".html"))
}

func TestPageArchive_StopsRetryingOnShutdown(t *testing.T) {
	repo := &recordingRepo{fails: 10}
	shutdown, cancel := context.WithCancel(context.Background())
	archive := NewPageArchive(repo, &cfg.MinIOCfg{UploadTimeout: time.Second}, logger.NewNop(), shutdown)

	archive.Archive(domain.NewRawPage("amazon", domain.PageSearch, "https://www.amazon.fr/s?k=tv", "<html></html>", time.Now()))
	cancel()

	ctx, stop := context.WithTimeout(context.Background(), 2*time.Second)
	defer stop()
	require.NoError(t, archive.Wait(ctx))
	assert.Empty(t, repo.keys)
}
