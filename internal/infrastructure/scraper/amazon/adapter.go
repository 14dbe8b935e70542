// Package amazon извлекает выдачу и карточки товаров amazon.fr.
package amazon

import (
	"github.com/DRSN-tech/scrape-ingest/internal/infrastructure/scraper"
	"github.com/DRSN-tech/scrape-ingest/internal/usecase"
	"github.com/DRSN-tech/scrape-ingest/pkg/logger"
)

var Site = scraper.Site{
	Name:         Platform,
	SearchURL:    SearchURL,
	ListingReady: listingItem,
	DetailReady:  detailReady,
	ParseListing: ParseListing,
	ParseDetail:  ParseDetail,
}

func NewAdapter(session scraper.Session, upserter usecase.Upserter, archive usecase.PageArchive, logger logger.Logger) *scraper.Adapter {
	return scraper.NewAdapter(Site, session, upserter, archive, logger)
}
