package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "propapi_requests_total",
		Help: "Total API requests by route and status code",
	}, []string{"route", "status"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "propapi_request_duration_ms",
		Help:    "API request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 2000},
	}, []string{"route"})
	QueryErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "propapi_query_errors_total",
		Help: "Query failures by error kind",
	}, []string{"kind"})
	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "propapi_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	})
	ImportRowsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "propapi_import_rows_total",
		Help: "CSV rows handled by the bulk importer by outcome",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(QueryErrorsTotal)
	prometheus.MustRegister(RateLimitedTotal)
	prometheus.MustRegister(ImportRowsTotal)
}

// Handler: Prometheus exposition for the default registry
func Handler() http.Handler { return promhttp.Handler() }
