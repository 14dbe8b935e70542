package scraper

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/DRSN-tech/scrape-ingest/internal/domain"
	"github.com/DRSN-tech/scrape-ingest/pkg/e"
)

type fakeSession struct {
	html   string
	err    error
	calls  atomic.Int32
	closed atomic.Bool
}

func (s *fakeSession) Fetch(ctx context.Context, _, _ string) (string, error) {
	s.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.html, s.err
}

func (s *fakeSession) Close() error {
	s.closed.Store(true)
	return nil
}

type fakeArchive struct {
	mu    sync.Mutex
	pages []*domain.RawPage
}

func (a *fakeArchive) Archive(page *domain.RawPage) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pages = append(a.pages, page)
}

// fakeUpserter сохраняет все товары, кроме перечисленных в errFor. Недоступность
// хранилища обрывает пачку, как и в настоящем движке.
type fakeUpserter struct {
	errFor map[string]error
	seen   []string
}

func (u *fakeUpserter) UpsertMany(_ context.Context, products []*domain.Product) ([]*domain.UpsertResult, error) {
	out := make([]*domain.UpsertResult, 0, len(products))
	for _, p := range products {
		id := domain.Deref(p.ProductID)
		u.seen = append(u.seen, id)
		if err := u.errFor[id]; err != nil {
			if errors.Is(err, e.ErrStoreUnavailable) {
				return out, err
			}
			continue
		}
		out = append(out, domain.NewUpsertResult(domain.OutcomeInserted, p, nil))
	}
	return out, nil
}

type namedAdapter struct {
	name     string
	closeErr error
	closed   bool
}

func (a *namedAdapter) Name() string { return a.name }

func (a *namedAdapter) Search(context.Context, string, int) ([]domain.Product, error) {
	return nil, nil
}

func (a *namedAdapter) GetDetail(context.Context, string) (*domain.Product, error) {
	return nil, nil
}

func (a *namedAdapter) Close() error {
	a.closed = true
	return a.closeErr
}
