package minio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/DRSN-tech/scrape-ingest/internal/cfg"
	"github.com/DRSN-tech/scrape-ingest/internal/domain"
	"github.com/DRSN-tech/scrape-ingest/internal/usecase"
	"github.com/DRSN-tech/scrape-ingest/pkg/jitter"
	"github.com/DRSN-tech/scrape-ingest/pkg/logger"
	"github.com/google/uuid"
)

const (
	maxConcurrentUploads = 4
	uploadAttempts       = 3
)

// PageArchive загружает полученные страницы в фоне. Архивация никогда не
// блокирует и не ломает скрапинг; при переполнении очереди загрузок страница отбрасывается.
type PageArchive struct {
	pageRepo    usecase.PageRepository
	cfg         *cfg.MinIOCfg
	logger      logger.Logger
	shutdownCtx context.Context
	sem         chan struct{}
	wg          sync.WaitGroup
}

func NewPageArchive(pageRepo usecase.PageRepository, cfg *cfg.MinIOCfg, logger logger.Logger, shutdownCtx context.Context) *PageArchive {
	return &PageArchive{
		pageRepo:    pageRepo,
		cfg:         cfg,
		logger:      logger,
		shutdownCtx: shutdownCtx,
		sem:         make(chan struct{}, maxConcurrentUploads),
	}
}

func (a *PageArchive) Archive(page *domain.RawPage) {
	if page == nil || page.HTML == "" {
		return
	}

	select {
	case a.sem <- struct{}{}:
	default:
		a.logger.Debugf("page archive busy, dropping %s page %s", page.Source, page.URL)
		return
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer func() { <-a.sem }()
		a.upload(page)
	}()
}

// ObjectKey раскладывает страницы как source/kind/date/uuid.html.
func ObjectKey(page *domain.RawPage) string {
	return fmt.Sprintf("%s/%s/%s/%s.html",
		page.Source, page.Kind, page.FetchedAt.UTC().Format(time.DateOnly), uuid.NewString())
}

func (a *PageArchive) upload(page *domain.RawPage) {
	const op = "PageArchive.upload"

	key := ObjectKey(page)
	for attempt := 0; attempt < uploadAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(a.shutdownCtx, a.cfg.UploadTimeout)
		_, err := a.pageRepo.Upload(ctx, key, page)
		cancel()
		if err == nil {
			return
		}

		a.logger.Warnf("%s: attempt %d for %s failed: %v", op, attempt+1, key, err)
		if attempt == uploadAttempts-1 {
			break
		}
		if err := jitter.Sleep(a.shutdownCtx, jitter.ExponentialBackoff(time.Second, 10*time.Second, attempt, 0), jitter.DefaultJitter); err != nil {
			a.logger.Warnf("%s: interrupted by shutdown, key=%s", op, key)
			return
		}
	}
}

// Wait ожидает завершения текущих загрузок или истечения ctx.
func (a *PageArchive) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("page archive timeout during shutdown: %w", ctx.Err())
	}
}
