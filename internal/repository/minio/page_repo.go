package minio

import (
	"context"
	"strings"

	"github.com/DRSN-tech/scrape-ingest/internal/cfg"
	"github.com/DRSN-tech/scrape-ingest/internal/domain"
	"github.com/DRSN-tech/scrape-ingest/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
)

// PageRepo хранит сырые страницы в бакете MinIO.
type PageRepo struct {
	mc  *minio.Client
	cfg *cfg.MinIOCfg
}

func NewPageRepo(mc *minio.Client, cfg *cfg.MinIOCfg) *PageRepo {
	return &PageRepo{
		mc:  mc,
		cfg: cfg,
	}
}

// Upload записывает HTML страницы под objectKey и возвращает ключ объекта.
func (p *PageRepo) Upload(ctx context.Context, objectKey string, page *domain.RawPage) (string, error) {
	reader := strings.NewReader(page.HTML)

	info, err := p.mc.PutObject(ctx, p.cfg.BucketName, objectKey, reader, int64(len(page.HTML)), minio.PutObjectOptions{
		ContentType: "text/html; charset=utf-8",
		UserMetadata: map[string]string{
			"source": page.Source,
			"kind":   string(page.Kind),
			"url":    page.URL,
		},
	})
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return info.Key, nil
}
