package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/DRSN-tech/scrape-ingest/internal/cfg"
	"github.com/DRSN-tech/scrape-ingest/internal/domain"
	"github.com/DRSN-tech/scrape-ingest/pkg/e"
	"github.com/DRSN-tech/scrape-ingest/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackfill_PartialFailure(t *testing.T) {
	store := newMemStore()
	noURL := product("vinted", "2", "b", "1 €")
	noURL.URL = nil
	store.seed(
		product("vinted", "1", "a", "1 €"),
		noURL,
		product("vinted", "3", "c", "1 €"),
	)

	var fetched []string
	vinted := &stubAdapter{name: "vinted", detail: func(_ context.Context, url string) (*domain.Product, error) {
		fetched = append(fetched, url)
		return product("vinted", "x", "x", "1 €"), nil
	}}

	uc := NewBackfillUC(store, stubRegistry{"vinted": vinted}, &cfg.BackfillCfg{}, logger.NewNop())

	report, err := uc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Completed)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, domain.NewDedupKey("vinted", "2"), report.Errors[0].Key)
	assert.Equal(t, reasonMissingURL, report.Errors[0].Reason)
	assert.Equal(t, []string{"https://vinted.example/1", "https://vinted.example/3"}, fetched)
}

func TestBackfill_Reasons(t *testing.T) {
	store := newMemStore()
	store.seed(
		product("ebay", "1", "a", "1 €"),
		product("vinted", "2", "b", "1 €"),
		product("vinted", "3", "c", "1 €"),
	)

	vinted := &stubAdapter{name: "vinted", detail: func(_ context.Context, url string) (*domain.Product, error) {
		if url == "https://vinted.example/2" {
			return nil, nil
		}
		return nil, errors.New("session closed")
	}}

	uc := NewBackfillUC(store, stubRegistry{"vinted": vinted}, &cfg.BackfillCfg{}, logger.NewNop())

	report, err := uc.Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, report.Completed)
	require.Len(t, report.Errors, 3)
	assert.Equal(t, reasonUnknownPlatform, report.Errors[0].Reason)
	assert.Equal(t, reasonNoDetail, report.Errors[1].Reason)
	assert.Equal(t, "session closed", report.Errors[2].Reason)
}

func TestBackfill_StoreDown(t *testing.T) {
	store := newMemStore()
	store.down = true

	uc := NewBackfillUC(store, stubRegistry{}, &cfg.BackfillCfg{}, logger.NewNop())

	_, err := uc.Run(context.Background())
	assert.ErrorIs(t, err, e.ErrStoreUnavailable)
}

func TestBackfill_CancelledReturnsPartialReport(t *testing.T) {
	store := newMemStore()
	store.seed(product("vinted", "1", "a", "1 €"), product("vinted", "2", "b", "1 €"))

	ctx, cancel := context.WithCancel(context.Background())
	vinted := &stubAdapter{name: "vinted", detail: func(context.Context, string) (*domain.Product, error) {
		cancel()
		return product("vinted", "1", "a", "1 €"), nil
	}}

	uc := NewBackfillUC(store, stubRegistry{"vinted": vinted}, &cfg.BackfillCfg{}, logger.NewNop())

	report, err := uc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Completed)
	assert.EqualValues(t, 1, vinted.calls.Load())
}
