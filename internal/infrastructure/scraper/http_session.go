package scraper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/DRSN-tech/scrape-ingest/internal/cfg"
	"github.com/DRSN-tech/scrape-ingest/pkg/e"
	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

// HTTPSession загружает страницы без рендеринга. Подходит только для страниц,
// маркер готовности которых есть в ответе сервера.
type HTTPSession struct {
	mu     sync.Mutex
	base   *colly.Collector
	closed bool
}

func NewHTTPSession(cfg *cfg.ScraperCfg) *HTTPSession {
	c := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(cfg.PageTimeout)

	return &HTTPSession{base: c}
}

func (s *HTTPSession) Fetch(ctx context.Context, url, readySelector string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", e.ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// клоны делят транспорт, но не колбэки
	c := s.base.Clone()
	c.Context = ctx

	var (
		body     []byte
		fetchErr error
	)
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "fr-FR,fr;q=0.9,en-US;q=0.8,en;q=0.7")
	})
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	c.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	if err := c.Visit(url); err != nil && fetchErr == nil {
		fetchErr = err
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	if fetchErr != nil {
		if isTimeout(fetchErr) {
			return "", fmt.Errorf("%w: %s", ErrPageTimeout, url)
		}
		return "", fmt.Errorf("%w: %w", ErrFetchFailed, fetchErr)
	}

	html := string(body)
	if readySelector != "" {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil || doc.Find(readySelector).Length() == 0 {
			return "", fmt.Errorf("%w: %q missing on %s", ErrPageTimeout, readySelector, url)
		}
	}

	return html, nil
}

func (s *HTTPSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
