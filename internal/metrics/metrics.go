package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "scrape_ingest"

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "endpoint", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Histogram of HTTP request durations.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint", "status"},
	)
	pageFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_fetches_total",
			Help:      "Page fetches by platform and result (ok, timeout, error).",
		},
		[]string{"platform", "result"},
	)
	itemsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_dropped_total",
			Help:      "Listing items dropped by platform and reason (invalid, parse_error).",
		},
		[]string{"platform", "reason"},
	)
	upserts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upserts_total",
			Help:      "Upsert engine outcomes by platform.",
		},
		[]string{"platform", "outcome"},
	)
	adapterFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "adapter_failures_total",
			Help:      "Search calls that ended in an error entry of the fan-out result.",
		},
		[]string{"platform"},
	)
	backfillRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backfill_records_total",
			Help:      "Backfilled records by result (completed, failed).",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		pageFetches,
		itemsDropped,
		upserts,
		adapterFailures,
		backfillRecords,
	)
}

// RecordRequest учитывает один HTTP-запрос.
func RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	status := classifyStatus(statusCode)
	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

func RecordFetch(platform, result string) {
	pageFetches.WithLabelValues(platform, result).Inc()
}

// Причины отбрасывания записей для RecordDropped.
const (
	DropInvalid = "invalid"
	DropParse   = "parse_error"
	DropUpsert  = "upsert_error"
)

func RecordDropped(platform, reason string) {
	itemsDropped.WithLabelValues(platform, reason).Inc()
}

func RecordUpsert(platform, outcome string) {
	upserts.WithLabelValues(platform, outcome).Inc()
}

func RecordAdapterFailure(platform string) {
	adapterFailures.WithLabelValues(platform).Inc()
}

func RecordBackfill(completed, failed int) {
	backfillRecords.WithLabelValues("completed").Add(float64(completed))
	backfillRecords.WithLabelValues("failed").Add(float64(failed))
}

func classifyStatus(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "2xx"
	case statusCode >= 300 && statusCode < 400:
		return "3xx"
	case statusCode >= 400 && statusCode < 500:
		return "4xx"
	case statusCode >= 500 && statusCode < 600:
		return "5xx"
	}
	return "unknown"
}

// Handler отдаёт реестр по умолчанию.
func Handler() http.Handler {
	return promhttp.Handler()
}
