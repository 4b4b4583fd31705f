package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the service.
type Metrics struct {
	// Registry owns every collector below; /metrics serves it.
	Registry *prometheus.Registry

	requestDuration   *prometheus.HistogramVec
	importsTotal      *prometheus.CounterVec
	importedRows      prometheus.Counter
	skippedRows       prometheus.Counter
	categoriesCreated prometheus.Counter
	insertBatches     *prometheus.CounterVec
	externalErrors    *prometheus.CounterVec
	uploadsPurged     prometheus.Counter
}

// NewMetrics registers the collectors in a private registry, so it can be
// called more than once (tests build several routers).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "casa_http_request_duration_seconds",
				Help:    "Duration of HTTP requests by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		importsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "casa_imports_total",
				Help: "Spreadsheet imports by outcome.",
			},
			[]string{"status"},
		),
		importedRows: factory.NewCounter(prometheus.CounterOpts{
			Name: "casa_import_rows_imported_total",
			Help: "Transactions stored by imports.",
		}),
		skippedRows: factory.NewCounter(prometheus.CounterOpts{
			Name: "casa_import_rows_skipped_total",
			Help: "Sheet rows dropped for missing description or amount.",
		}),
		categoriesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "casa_import_categories_created_total",
			Help: "Categories created while reconciling imports.",
		}),
		insertBatches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "casa_insert_batches_total",
				Help: "Transaction insert batches by outcome.",
			},
			[]string{"status"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "casa_external_errors_total",
				Help: "Errors returned by the data store.",
			},
			[]string{"service"},
		),
		uploadsPurged: factory.NewCounter(prometheus.CounterOpts{
			Name: "casa_uploads_purged_total",
			Help: "Expired uploads removed by the sweeper.",
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// RecordImport counts a finished import.
func (m *Metrics) RecordImport(status string, imported, skipped, categoriesCreated int) {
	m.importsTotal.WithLabelValues(status).Inc()
	m.importedRows.Add(float64(imported))
	m.skippedRows.Add(float64(skipped))
	m.categoriesCreated.Add(float64(categoriesCreated))
}

// RecordBatch counts one insert batch.
func (m *Metrics) RecordBatch(ok bool) {
	if ok {
		m.insertBatches.WithLabelValues("ok").Inc()
		return
	}
	m.insertBatches.WithLabelValues("failed").Inc()
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// AddUploadsPurged counts uploads removed by the sweeper.
func (m *Metrics) AddUploadsPurged(n int) {
	m.uploadsPurged.Add(float64(n))
}

// Middleware records request durations labelled by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		m.requestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).
			Observe(time.Since(start).Seconds())
	})
}
