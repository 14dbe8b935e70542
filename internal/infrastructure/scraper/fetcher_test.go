package scraper

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DRSN-tech/scrape-ingest/internal/domain"
	"github.com/DRSN-tech/scrape-ingest/pkg/e"
	"github.com/DRSN-tech/scrape-ingest/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Get(t *testing.T) {
	session := &fakeSession{html: "<html></html>"}
	archive := &fakeArchive{}
	f := NewFetcher("amazon", session, archive, logger.NewNop())

	html, err := f.Get(context.Background(), domain.PageSearch, "https://x/s?k=a", "body")
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", html)

	require.Len(t, archive.pages, 1)
	page := archive.pages[0]
	assert.Equal(t, "amazon", page.Source)
	assert.Equal(t, domain.PageSearch, page.Kind)
	assert.Equal(t, "https://x/s?k=a", page.URL)
}

func TestFetcher_GetSoftFailures(t *testing.T) {
	for _, err := range []error{
		fmt.Errorf("%w: #navFooter", ErrPageTimeout),
		fmt.Errorf("%w: 503", ErrFetchFailed),
	} {
		archive := &fakeArchive{}
		f := NewFetcher("vinted", &fakeSession{err: err}, archive, logger.NewNop())

		html, getErr := f.Get(context.Background(), domain.PageDetail, "https://x/items/1", "aside")
		require.NoError(t, getErr)
		assert.Empty(t, html)
		assert.Empty(t, archive.pages)
	}
}

func TestFetcher_GetHardFailures(t *testing.T) {
	f := NewFetcher("vinted", &fakeSession{err: e.ErrSessionClosed}, nil, logger.NewNop())
	_, err := f.Get(context.Background(), domain.PageDetail, "https://x", "")
	assert.ErrorIs(t, err, e.ErrSessionClosed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f = NewFetcher("vinted", &fakeSession{}, nil, logger.NewNop())
	_, err = f.Get(ctx, domain.PageDetail, "https://x", "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetcher_Close(t *testing.T) {
	session := &fakeSession{}
	require.NoError(t, NewFetcher("amazon", session, nil, logger.NewNop()).Close())
	assert.True(t, session.closed.Load())
}

func candidate(id string, valid bool) *domain.Product {
	p := domain.NewProduct("amazon")
	p.ProductID = domain.StrPtr(id)
	p.Name = domain.StrPtr("name " + id)
	p.URL = domain.StrPtr("https://x/" + id)
	if valid {
		p.Price = domain.StrPtr("1 €")
	}
	return p
}

func TestIngest(t *testing.T) {
	upserter := &fakeUpserter{errFor: map[string]error{"3": errors.New("constraint violated")}}
	candidates := []*domain.Product{
		candidate("1", true),
		nil,
		candidate("2", false),
		candidate("3", true),
		candidate("4", true),
	}

	out, err := Ingest(context.Background(), "amazon", upserter, candidates, logger.NewNop())
	require.NoError(t, err)
	// невалидные и nil кандидаты не доходят до хранилища
	assert.Equal(t, []string{"1", "3", "4"}, upserter.seen)
	require.Len(t, out, 2)
	assert.Equal(t, "1", domain.Deref(out[0].ProductID))
	assert.Equal(t, "4", domain.Deref(out[1].ProductID))
}

func TestIngest_StoreUnavailable(t *testing.T) {
	upserter := &fakeUpserter{errFor: map[string]error{"2": e.ErrStoreUnavailable}}
	candidates := []*domain.Product{candidate("1", true), candidate("2", true), candidate("3", true)}

	out, err := Ingest(context.Background(), "amazon", upserter, candidates, logger.NewNop())
	assert.ErrorIs(t, err, e.ErrStoreUnavailable)
	assert.Len(t, out, 1)
	assert.Equal(t, []string{"1", "2"}, upserter.seen)
}

func TestIngest_NothingValid(t *testing.T) {
	upserter := &fakeUpserter{}

	out, err := Ingest(context.Background(), "amazon", upserter, []*domain.Product{candidate("1", false)}, logger.NewNop())
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Empty(t, upserter.seen)
}

func TestThrottledSession(t *testing.T) {
	inner := &fakeSession{html: "ok"}
	s := NewThrottledSession(inner, 60)

	html, err := s.Fetch(context.Background(), "u", "")
	require.NoError(t, err)
	assert.Equal(t, "ok", html)

	// единственный токен израсходован, следующий появится через секунду
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = s.Fetch(ctx, "u", "")
	assert.Error(t, err)
	assert.Equal(t, int32(1), inner.calls.Load())

	require.NoError(t, s.Close())
	assert.True(t, inner.closed.Load())
}

func TestThrottledSession_Unlimited(t *testing.T) {
	inner := &fakeSession{html: "ok"}
	s := NewThrottledSession(inner, 0)
	for i := 0; i < 20; i++ {
		_, err := s.Fetch(context.Background(), "u", "")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(20), inner.calls.Load())
}
