// Package scraper содержит общее для адаптеров площадок: браузерные сессии,
// ограничение частоты запросов, загрузку страниц и хелперы извлечения на goquery.
package scraper

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"
)

var (
	// ErrPageTimeout маркер готовности не появился вовремя.
	ErrPageTimeout = errors.New("page not ready before timeout")
	// ErrFetchFailed страницу не удалось загрузить.
	ErrFetchFailed = errors.New("page fetch failed")
)

// Session загружает страницу и возвращает HTML, когда совпал readySelector.
// Реализации безопасны для конкурентного вызова, но грузят по одной странице.
type Session interface {
	Fetch(ctx context.Context, url, readySelector string) (string, error)
	Close() error
}

// ThrottledSession ограничивает частоту загрузок обёрнутой сессии.
type ThrottledSession struct {
	Session
	limiter *rate.Limiter
}

// NewThrottledSession разрешает perMinute загрузок в минуту без всплесков.
// perMinute <= 0 отключает ограничение.
func NewThrottledSession(inner Session, perMinute int) *ThrottledSession {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(perMinute))
	}

	return &ThrottledSession{
		Session: inner,
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (s *ThrottledSession) Fetch(ctx context.Context, url, readySelector string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", err
	}
	return s.Session.Fetch(ctx, url, readySelector)
}
