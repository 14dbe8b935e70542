package http

import (
	_ "github.com/DRSN-tech/scrape-ingest/docs"
	"github.com/DRSN-tech/scrape-ingest/internal/metrics"
	"github.com/DRSN-tech/scrape-ingest/internal/usecase"
	"github.com/DRSN-tech/scrape-ingest/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

type Deps struct {
	Aggregator   usecase.AggregatorUC
	Backfill     usecase.BackfillUC
	Query        usecase.QueryUC
	DefaultLimit int
	SwaggerURL   string
}

func (r *Router) Init(deps Deps) {
	r.router.Use(middleware.RequestID, middleware.Recoverer, Metrics)

	r.router.Handle("/metrics", metrics.Handler())
	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(deps.SwaggerURL),
	))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		registerScrapeRoutes(v1, NewScrapeHandler(deps.Aggregator, deps.Backfill, deps.DefaultLimit, r.logger))
		registerProductRoutes(v1, NewProductHandler(deps.Query, r.logger))
	})
}

func registerScrapeRoutes(router chi.Router, h *ScrapeHandler) {
	router.Get("/platforms", h.platforms)
	router.Post("/search/batch", h.batchSearch)
	router.Get("/search/{platform}/{query}", h.search)
	router.Get("/detail/{platform}", h.detail)
	router.Post("/backfill", h.runBackfill)
}

func registerProductRoutes(router chi.Router, h *ProductHandler) {
	router.Route("/products", func(pr chi.Router) {
		pr.Get("/", h.listProducts)
		pr.Get("/page", h.listPage)
		pr.Get("/price", h.searchByPrice)
		pr.Get("/categories", h.searchByCategories)
		pr.Get("/categories/{query}", h.searchCategories)
		pr.Get("/name/{name}", h.searchByName)
		pr.Get("/description/{keywords}", h.searchByDescription)
		pr.Get("/brand/{brand}", h.searchByBrand)
		pr.Get("/condition/{condition}", h.searchByCondition)
		pr.Get("/{source}/{productID}", h.getProduct)
	})
}
