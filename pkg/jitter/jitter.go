// Package jitter разбрасывает интервалы повторов и пауз, чтобы воркеры,
// обращающиеся к одному сервису, не синхронизировались.
package jitter

import (
	"context"
	"math/rand/v2"
	"time"
)

// DefaultJitter — коэффициент разброса по умолчанию (50%).
const DefaultJitter = 0.5

// Duration возвращает случайную длительность в [d, d*(1+factor)].
func Duration(d time.Duration, factor float64) time.Duration {
	if d <= 0 || factor <= 0 {
		return d
	}
	return d + time.Duration(rand.Float64()*factor*float64(d))
}

// ExponentialBackoff удваивает base на каждой попытке (с нуля), ограничивает
// max и добавляет jitter.
func ExponentialBackoff(base, max time.Duration, attempt int, factor float64) time.Duration {
	backoff := base
	for i := 0; i < attempt; i++ {
		backoff *= 2
		if backoff > max {
			backoff = max
			break
		}
	}
	return Duration(backoff, factor)
}

// Sleep ждёт d с jitter или завершения ctx.
func Sleep(ctx context.Context, d time.Duration, factor float64) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(Duration(d, factor))
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
