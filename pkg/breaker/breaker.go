package breaker

import (
	"context"
	"errors"
	"time"

	"github.com/DRSN-tech/scrape-ingest/pkg/e"
	"github.com/sony/gobreaker"
)

// New возвращает breaker, который размыкается после maxFailures сбоев подряд и
// пробует снова через openTimeout.
func New(name string, maxFailures uint32, openTimeout time.Duration) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return maxFailures > 0 && counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: isSuccessful,
	})
}

// isSuccessful не считает сбоем площадки отмену запроса вызывающим и
// недоступность собственного хранилища.
func isSuccessful(err error) bool {
	return err == nil ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, e.ErrStoreUnavailable)
}

// Execute выполняет fn через cb, сохраняя тип результата.
func Execute[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	res, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return *new(T), err
	}

	return res.(T), nil
}
