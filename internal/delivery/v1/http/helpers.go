package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/DRSN-tech/scrape-ingest/pkg/e"
	"github.com/go-chi/chi/v5"
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

func ToHTTPResponse(err error) (int, string) {
	switch {
	case errors.Is(err, e.ErrStatusBadRequest):
		return http.StatusBadRequest, e.ErrStatusBadRequest.Error()
	case errors.Is(err, e.ErrInvalidPagination):
		return http.StatusBadRequest, e.ErrInvalidPagination.Error()
	case errors.Is(err, e.ErrInvalidPrice):
		return http.StatusBadRequest, e.ErrInvalidPrice.Error()
	case errors.Is(err, e.ErrInvalidThreshold):
		return http.StatusBadRequest, e.ErrInvalidThreshold.Error()
	case errors.Is(err, e.ErrEmptyQuery):
		return http.StatusBadRequest, e.ErrEmptyQuery.Error()
	case errors.Is(err, e.ErrUnknownPlatform):
		return http.StatusBadRequest, e.ErrUnknownPlatform.Error()
	case errors.Is(err, e.ErrInvalidProduct):
		return http.StatusBadRequest, e.ErrInvalidProduct.Error()
	case errors.Is(err, e.ErrMissingSource):
		return http.StatusBadRequest, e.ErrMissingSource.Error()
	case errors.Is(err, e.ErrProductNotFound):
		return http.StatusNotFound, e.ErrProductNotFound.Error()
	case errors.Is(err, e.ErrBackfillRunning):
		return http.StatusConflict, e.ErrBackfillRunning.Error()
	case errors.Is(err, e.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, e.ErrStoreUnavailable.Error()
	case errors.Is(err, e.ErrCircuitOpen):
		return http.StatusServiceUnavailable, e.ErrCircuitOpen.Error()
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// pathParam возвращает раскодированный параметр маршрута.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// queryInt читает целочисленный query-параметр, def если его нет.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, e.Wrap(name, e.ErrStatusBadRequest)
	}
	return v, nil
}

// splitPlatforms превращает "all", "amazon" или "amazon,vinted" в список площадок.
func splitPlatforms(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
