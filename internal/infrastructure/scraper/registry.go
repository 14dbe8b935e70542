package scraper

import (
	"errors"

	"github.com/DRSN-tech/scrape-ingest/internal/usecase"
)

// Registry сопоставляет имена площадок адаптерам и сохраняет порядок регистрации.
type Registry struct {
	names    []string
	adapters map[string]usecase.PlatformAdapter
}

func NewRegistry(adapters ...usecase.PlatformAdapter) *Registry {
	r := &Registry{adapters: make(map[string]usecase.PlatformAdapter)}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// Register добавляет адаптер, заменяя зарегистрированный под тем же именем.
func (r *Registry) Register(a usecase.PlatformAdapter) {
	name := a.Name()
	if _, ok := r.adapters[name]; !ok {
		r.names = append(r.names, name)
	}
	r.adapters[name] = a
}

func (r *Registry) Get(name string) (usecase.PlatformAdapter, bool) {
	a, ok := r.adapters[name]
	return a, ok
}

func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Close освобождает сессии всех адаптеров.
func (r *Registry) Close() error {
	var errs []error
	for _, name := range r.names {
		if err := r.adapters[name].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
