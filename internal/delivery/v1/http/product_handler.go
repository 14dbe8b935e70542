package http

import (
	"net/http"
	"strings"

	"github.com/DRSN-tech/scrape-ingest/internal/domain"
	"github.com/DRSN-tech/scrape-ingest/internal/usecase"
	"github.com/DRSN-tech/scrape-ingest/pkg/logger"
)

type ProductHandler struct {
	query  usecase.QueryUC
	logger logger.Logger
}

func NewProductHandler(query usecase.QueryUC, logger logger.Logger) *ProductHandler {
	return &ProductHandler{query: query, logger: logger}
}

// listProducts
//
//	@Summary	Список сохранённых товаров
//	@Tags		products
//	@Produce	json
//	@Param		source	query		string	false	"фильтр по площадке"
//	@Success	200		{array}		domain.Product
//	@Failure	503		{object}	ErrorResponse
//	@Router		/products [get]
func (h *ProductHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.query.ListProducts(r.Context(), strings.TrimSpace(r.URL.Query().Get("source")))
	h.respond(w, r, products, err)
}

// listPage
//
//	@Summary	Постраничный вывод товаров
//	@Tags		products
//	@Produce	json
//	@Param		page		query		int	false	"номер страницы с 1"	default(1)
//	@Param		page_size	query		int	false	"размер страницы"		default(10)
//	@Success	200			{array}		domain.Product
//	@Failure	400			{object}	ErrorResponse
//	@Router		/products/page [get]
func (h *ProductHandler) listPage(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	pageSize, err := queryInt(r, "page_size", 10)
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}

	products, err := h.query.ListPage(r.Context(), page, pageSize)
	h.respond(w, r, products, err)
}

// getProduct
//
//	@Summary	Товар по площадке и её идентификатору
//	@Tags		products
//	@Produce	json
//	@Param		source		path		string	true	"площадка"
//	@Param		productID	path		string	true	"идентификатор товара на площадке"
//	@Success	200			{object}	domain.Product
//	@Failure	404			{object}	ErrorResponse
//	@Router		/products/{source}/{productID} [get]
func (h *ProductHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	key := domain.NewDedupKey(pathParam(r, "source"), pathParam(r, "productID"))

	product, err := h.query.GetProduct(r.Context(), key)
	if err != nil {
		h.logger.Warnf("%s: %v", r.URL.Path, err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, product)
}

// searchCategories
//
//	@Summary		Нечёткий поиск по категории
//	@Description	Возвращает записи с категорией, чьё частичное сходство с запросом выше порога.
//	@Tags			products
//	@Produce		json
//	@Param			query					path		string	true	"текст категории"
//	@Param			similarity_threshold	query		int		false	"0..100"	default(80)
//	@Success		200						{array}		domain.Product
//	@Failure		400						{object}	ErrorResponse
//	@Router			/products/categories/{query} [get]
func (h *ProductHandler) searchCategories(w http.ResponseWriter, r *http.Request) {
	threshold, err := queryInt(r, "similarity_threshold", usecase.DefaultSimilarityThreshold)
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}

	products, err := h.query.SearchCategories(r.Context(), pathParam(r, "query"), threshold)
	h.respond(w, r, products, err)
}

// searchByCategories
//
//	@Summary	Записи со всеми указанными категориями
//	@Tags		products
//	@Produce	json
//	@Param		category	query		[]string	true	"категория, можно повторять"	collectionFormat(multi)
//	@Success	200			{array}		domain.Product
//	@Failure	400			{object}	ErrorResponse
//	@Router		/products/categories [get]
func (h *ProductHandler) searchByCategories(w http.ResponseWriter, r *http.Request) {
	products, err := h.query.SearchByCategories(r.Context(), r.URL.Query()["category"])
	h.respond(w, r, products, err)
}

// searchByName
//
//	@Summary	Поиск по названию без учёта регистра
//	@Tags		products
//	@Produce	json
//	@Param		name	path	string	true	"подстрока"
//	@Success	200		{array}	domain.Product
//	@Router		/products/name/{name} [get]
func (h *ProductHandler) searchByName(w http.ResponseWriter, r *http.Request) {
	products, err := h.query.SearchByName(r.Context(), pathParam(r, "name"))
	h.respond(w, r, products, err)
}

// searchByDescription
//
//	@Summary	Поиск по описанию без учёта регистра
//	@Tags		products
//	@Produce	json
//	@Param		keywords	path	string	true	"подстрока"
//	@Success	200			{array}	domain.Product
//	@Router		/products/description/{keywords} [get]
func (h *ProductHandler) searchByDescription(w http.ResponseWriter, r *http.Request) {
	products, err := h.query.SearchByDescription(r.Context(), pathParam(r, "keywords"))
	h.respond(w, r, products, err)
}

// searchByBrand
//
//	@Summary	Точное совпадение бренда
//	@Tags		products
//	@Produce	json
//	@Param		brand	path	string	true	"бренд"
//	@Success	200		{array}	domain.Product
//	@Router		/products/brand/{brand} [get]
func (h *ProductHandler) searchByBrand(w http.ResponseWriter, r *http.Request) {
	products, err := h.query.SearchByBrand(r.Context(), pathParam(r, "brand"))
	h.respond(w, r, products, err)
}

// searchByCondition
//
//	@Summary	Точное совпадение состояния
//	@Tags		products
//	@Produce	json
//	@Param		condition	path	string	true	"состояние"
//	@Success	200			{array}	domain.Product
//	@Router		/products/condition/{condition} [get]
func (h *ProductHandler) searchByCondition(w http.ResponseWriter, r *http.Request) {
	products, err := h.query.SearchByCondition(r.Context(), pathParam(r, "condition"))
	h.respond(w, r, products, err)
}

// searchByPrice
//
//	@Summary		Поиск по диапазону цен
//	@Description	Границы включительные и необязательные. Записи с неразборной ценой пропускаются.
//	@Tags			products
//	@Produce		json
//	@Param			min	query		string	false	"нижняя граница"
//	@Param			max	query		string	false	"верхняя граница"
//	@Success		200	{array}		domain.Product
//	@Failure		400	{object}	ErrorResponse
//	@Router			/products/price [get]
func (h *ProductHandler) searchByPrice(w http.ResponseWriter, r *http.Request) {
	products, err := h.query.SearchByPriceRange(r.Context(), r.URL.Query().Get("min"), r.URL.Query().Get("max"))
	h.respond(w, r, products, err)
}

func (h *ProductHandler) respond(w http.ResponseWriter, r *http.Request, products []*domain.Product, err error) {
	if err != nil {
		h.logger.Warnf("%s: %v", r.URL.Path, err)
		WriteError(w, err)
		return
	}
	if products == nil {
		products = []*domain.Product{}
	}
	WriteSuccess(w, http.StatusOK, products)
}
