package closer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// allClosed возвращает gracefulClose, когда все ресурсы закрылись вовремя.
const allClosed = -1

// Func освобождает один ресурс.
type Func func(ctx context.Context) error

type entry struct {
	name string
	fn   Func
}

// Closer освобождает зарегистрированные ресурсы в порядке LIFO ровно один раз.
type Closer struct {
	entries       []entry
	mu            sync.Mutex
	once          sync.Once
	forcedTimeout time.Duration
}

// NewCloser создаёт Closer. forcedTimeout ограничивает параллельное принудительное
// закрытие, если контекст Close истёк раньше.
func NewCloser(forcedTimeout time.Duration) *Closer {
	const defaultForcedTimeout = 2 * time.Second

	if forcedTimeout <= 0 {
		forcedTimeout = defaultForcedTimeout
	}

	return &Closer{forcedTimeout: forcedTimeout}
}

// Add регистрирует именованный ресурс.
func (c *Closer) Add(name string, f Func) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, entry{name: name, fn: f})
}

// AddSimple регистрирует ресурс, функция закрытия которого не принимает контекст и не возвращает ошибку.
func (c *Closer) AddSimple(name string, f func()) {
	c.Add(name, func(context.Context) error {
		f()
		return nil
	})
}

// Close вызывает зарегистрированные функции в порядке LIFO. Если ctx истёк,
// оставшиеся закрываются параллельно с принудительным таймаутом.
func (c *Closer) Close(ctx context.Context) error {
	var err error
	c.once.Do(func() {
		c.mu.Lock()
		entries := c.entries
		c.mu.Unlock()

		stopIdx, errs := c.gracefulClose(ctx, entries)
		if stopIdx == allClosed {
			if len(errs) > 0 {
				err = fmt.Errorf("shutdown finished with error(s):\n%s", strings.Join(errs, "\n"))
			}
			return
		}

		errs = append(errs, c.forcedClose(entries[:stopIdx+1])...)
		err = fmt.Errorf(
			"shutdown interrupted after %d/%d resources:\n%s",
			len(entries)-1-stopIdx,
			len(entries),
			strings.Join(errs, "\n"),
		)
	})

	return err
}

func (c *Closer) gracefulClose(ctx context.Context, entries []entry) (int, []string) {
	var errs []string
	for i := len(entries) - 1; i >= 0; i-- {
		ent := entries[i]
		done := make(chan error, 1)

		go func() {
			done <- ent.fn(ctx)
		}()

		select {
		case err := <-done:
			if err != nil {
				errs = append(errs, fmt.Sprintf("[!] %s: %v", ent.name, err))
			}
		case <-ctx.Done():
			return i, errs
		}
	}

	return allClosed, errs
}

func (c *Closer) forcedClose(entries []entry) []string {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []string
	)

	ctx, cancel := context.WithTimeout(context.Background(), c.forcedTimeout)
	defer cancel()

	for _, ent := range entries {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ent.fn(ctx); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Sprintf("[FORCED] %s: %v", ent.name, err))
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	return errs
}
