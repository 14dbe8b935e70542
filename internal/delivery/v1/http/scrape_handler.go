package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/DRSN-tech/scrape-ingest/internal/usecase"
	"github.com/DRSN-tech/scrape-ingest/pkg/e"
	"github.com/DRSN-tech/scrape-ingest/pkg/logger"
)

const maxBatchBody = 1 << 20

type ScrapeHandler struct {
	aggregator   usecase.AggregatorUC
	backfill     usecase.BackfillUC
	defaultLimit int
	logger       logger.Logger
}

func NewScrapeHandler(aggregator usecase.AggregatorUC, backfill usecase.BackfillUC, defaultLimit int, logger logger.Logger) *ScrapeHandler {
	return &ScrapeHandler{
		aggregator:   aggregator,
		backfill:     backfill,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

type PlatformsResponse struct {
	Platforms []string `json:"platforms"`
}

type BatchSearchRequest struct {
	Queries   []string `json:"queries"`
	Platforms []string `json:"platforms"`
	Limit     int      `json:"limit"`
}

// platforms
//
//	@Summary	Зарегистрированные площадки
//	@Tags		scraping
//	@Produce	json
//	@Success	200	{object}	PlatformsResponse
//	@Router		/platforms [get]
func (h *ScrapeHandler) platforms(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, http.StatusOK, PlatformsResponse{Platforms: h.aggregator.Platforms()})
}

// search
//
//	@Summary		Поиск на одной или всех площадках
//	@Description	Загружает выдачу каждой выбранной площадки, сохраняет валидные записи и возвращает их. Сбои площадок возвращаются в errors.
//	@Tags			scraping
//	@Produce		json
//	@Param			platform	path		string	true	"имя площадки, список через запятую или all"
//	@Param			query		path		string	true	"текст поиска"
//	@Param			limit		query		int		false	"максимум записей с площадки"
//	@Success		200			{object}	usecase.FanOutResult
//	@Failure		400			{object}	ErrorResponse
//	@Router			/search/{platform}/{query} [get]
func (h *ScrapeHandler) search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(pathParam(r, "query"))
	if query == "" {
		WriteError(w, e.ErrEmptyQuery)
		return
	}

	limit, err := h.limit(r)
	if err != nil {
		h.logger.Warnf("%d %s: %v", http.StatusBadRequest, r.URL.Path, err)
		WriteError(w, err)
		return
	}

	res := h.aggregator.FanOutSearch(r.Context(), usecase.NewSearchReq(query, limit, splitPlatforms(pathParam(r, "platform"))))
	WriteSuccess(w, http.StatusOK, res)
}

// batchSearch
//
//	@Summary	Поиск по нескольким запросам сразу
//	@Tags		scraping
//	@Accept		json
//	@Produce	json
//	@Param		request	body		BatchSearchRequest	true	"запросы, площадки и лимит"
//	@Success	200		{object}	usecase.FanOutResult
//	@Failure	400		{object}	ErrorResponse
//	@Router		/search/batch [post]
func (h *ScrapeHandler) batchSearch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBatchBody)

	var req BatchSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warnf("%d %s: %v", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err)
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	queries := make([]string, 0, len(req.Queries))
	for _, q := range req.Queries {
		if q = strings.TrimSpace(q); q != "" {
			queries = append(queries, q)
		}
	}
	if len(queries) == 0 {
		WriteError(w, e.ErrEmptyQuery)
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = h.defaultLimit
	}

	res := h.aggregator.BatchSearch(r.Context(), usecase.NewBatchSearchReq(queries, limit, req.Platforms))
	WriteSuccess(w, http.StatusOK, res)
}

// detail
//
//	@Summary		Загрузка страницы товара
//	@Description	Загружает карточку товара, сливает её с сохранённой записью и возвращает результат.
//	@Tags			scraping
//	@Produce		json
//	@Param			platform	path		string	true	"имя площадки"
//	@Param			url			query		string	true	"url страницы товара"
//	@Success		200			{object}	domain.Product
//	@Failure		400			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		503			{object}	ErrorResponse
//	@Router			/detail/{platform} [get]
func (h *ScrapeHandler) detail(w http.ResponseWriter, r *http.Request) {
	url := strings.TrimSpace(r.URL.Query().Get("url"))
	if url == "" {
		WriteError(w, e.Wrap("url", e.ErrStatusBadRequest))
		return
	}

	product, err := h.aggregator.Detail(r.Context(), pathParam(r, "platform"), url)
	if err != nil {
		h.logger.Warnf("%s: %v", r.URL.Path, err)
		WriteError(w, err)
		return
	}
	if product == nil {
		WriteError(w, e.ErrProductNotFound)
		return
	}

	WriteSuccess(w, http.StatusOK, product)
}

// runBackfill
//
//	@Summary		Повторная загрузка карточек всех сохранённых записей
//	@Description	Выполняется последовательно, одновременно не больше одного запуска.
//	@Tags			scraping
//	@Produce		json
//	@Success		200	{object}	usecase.BackfillReport
//	@Failure		409	{object}	ErrorResponse
//	@Failure		503	{object}	ErrorResponse
//	@Router			/backfill [post]
func (h *ScrapeHandler) runBackfill(w http.ResponseWriter, r *http.Request) {
	report, err := h.backfill.Run(r.Context())
	if err != nil {
		h.logger.Errorf(err, "backfill failed")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, report)
}

func (h *ScrapeHandler) limit(r *http.Request) (int, error) {
	limit, err := queryInt(r, "limit", h.defaultLimit)
	if err != nil {
		return 0, err
	}
	if limit <= 0 {
		limit = h.defaultLimit
	}
	return limit, nil
}
