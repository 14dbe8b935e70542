package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/DRSN-tech/scrape-ingest/internal/domain"
	"github.com/DRSN-tech/scrape-ingest/pkg/e"
)

// memStore — ProductStore и KeyLocker в памяти.
type memStore struct {
	mu      sync.Mutex
	docs    []*domain.Document
	locks   sync.Map
	down    bool
	inserts atomic.Int32
}

func newMemStore() *memStore { return &memStore{} }

func (s *memStore) seed(products ...*domain.Product) {
	for _, p := range products {
		f, err := domain.FieldsOf(p)
		if err != nil {
			panic(err)
		}
		s.docs = append(s.docs, &domain.Document{ID: int64(len(s.docs) + 1), Key: p.Key(), Fields: f})
	}
}

func (s *memStore) WithKeyLock(ctx context.Context, key domain.DedupKey, fn func(ctx context.Context) error) error {
	m, _ := s.locks.LoadOrStore(key, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()
	return fn(ctx)
}

func (s *memStore) FindOne(_ context.Context, key domain.DedupKey) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return nil, e.ErrStoreUnavailable
	}
	for _, d := range s.docs {
		if d.Key == key {
			cp := *d
			cp.Fields = d.Fields.Merge(nil)
			return &cp, nil
		}
	}
	return nil, e.ErrProductNotFound
}

func (s *memStore) Find(_ context.Context, filter ProductFilter, page Page) ([]*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return nil, e.ErrStoreUnavailable
	}

	var out []*domain.Document
	for _, d := range s.docs {
		p, _ := d.Fields.Product()
		if filter.Source != "" && p.Source != filter.Source {
			continue
		}
		if filter.Brand != "" && domain.Deref(p.Brand) != filter.Brand {
			continue
		}
		if filter.Condition != "" && domain.Deref(p.Condition) != filter.Condition {
			continue
		}
		if filter.NameContains != "" &&
			!strings.Contains(strings.ToLower(domain.Deref(p.Name)), strings.ToLower(filter.NameContains)) {
			continue
		}
		if filter.DescriptionContains != "" &&
			!strings.Contains(strings.ToLower(domain.Deref(p.Description)), strings.ToLower(filter.DescriptionContains)) {
			continue
		}
		out = append(out, d)
	}

	if page.Offset >= len(out) {
		return []*domain.Document{}, nil
	}
	out = out[page.Offset:]
	if page.Limit > 0 && page.Limit < len(out) {
		out = out[:page.Limit]
	}
	return out, nil
}

func (s *memStore) Insert(_ context.Context, doc *domain.Document) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return nil, e.ErrStoreUnavailable
	}
	for _, d := range s.docs {
		if d.Key == doc.Key {
			return nil, fmt.Errorf("duplicate key %s", doc.Key)
		}
	}
	doc.ID = int64(len(s.docs) + 1)
	doc.CreatedAt = time.Now()
	s.docs = append(s.docs, doc)
	s.inserts.Add(1)
	return doc, nil
}

func (s *memStore) UpdateFields(_ context.Context, key domain.DedupKey, diff domain.Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return e.ErrStoreUnavailable
	}
	for _, d := range s.docs {
		if d.Key == key {
			d.Fields = d.Fields.Merge(diff)
			now := time.Now()
			d.UpdatedAt = &now
			return nil
		}
	}
	return e.ErrProductNotFound
}

func (s *memStore) product(key domain.DedupKey) *domain.Product {
	doc, err := s.FindOne(context.Background(), key)
	if err != nil {
		return nil
	}
	p, _ := doc.Fields.Product()
	return p
}

type memOutbox struct {
	mu     sync.Mutex
	events []*OutboxEvent
}

func (o *memOutbox) Create(_ context.Context, event *OutboxEvent) (*OutboxEvent, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	event.ID = int64(len(o.events) + 1)
	o.events = append(o.events, event)
	return event, nil
}

func (o *memOutbox) GetAndMarkAsProcessing(context.Context, int) ([]*OutboxEvent, error) {
	return nil, nil
}
func (o *memOutbox) MarkAsProcessed(context.Context, int64) error { return nil }
func (o *memOutbox) MarkAsPending(context.Context, int64) error   { return nil }

type memCache struct {
	mu      sync.Mutex
	items   map[domain.DedupKey]*domain.Product
	deleted []domain.DedupKey
}

func newMemCache() *memCache {
	return &memCache{items: make(map[domain.DedupKey]*domain.Product)}
}

func (c *memCache) GetProduct(_ context.Context, key domain.DedupKey) (*domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items[key], nil
}

func (c *memCache) SetProduct(_ context.Context, p *domain.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[p.Key()] = p
	return nil
}

func (c *memCache) DeleteProducts(_ context.Context, keys []domain.DedupKey) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.items, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

type stubAdapter struct {
	name   string
	search func(ctx context.Context, query string, limit int) ([]domain.Product, error)
	detail func(ctx context.Context, url string) (*domain.Product, error)
	calls  atomic.Int32
}

func (a *stubAdapter) Name() string { return a.name }

func (a *stubAdapter) Search(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	a.calls.Add(1)
	return a.search(ctx, query, limit)
}

func (a *stubAdapter) GetDetail(ctx context.Context, url string) (*domain.Product, error) {
	a.calls.Add(1)
	return a.detail(ctx, url)
}

func (a *stubAdapter) Close() error { return nil }

type stubRegistry map[string]PlatformAdapter

func (r stubRegistry) Get(name string) (PlatformAdapter, bool) {
	a, ok := r[name]
	return a, ok
}

func (r stubRegistry) Names() []string {
	return sortedKeys(func() map[string]struct{} {
		m := make(map[string]struct{}, len(r))
		for k := range r {
			m[k] = struct{}{}
		}
		return m
	}())
}

func product(source, id, name, price string) *domain.Product {
	p := domain.NewProduct(source)
	p.ProductID = domain.StrPtr(id)
	p.Name = domain.StrPtr(name)
	p.Price = domain.StrPtr(price)
	p.URL = domain.StrPtr("https://" + source + ".example/" + id)
	return p
}
