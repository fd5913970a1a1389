// Package api: HTTP routes over the report service; mounted by the entry point under API_BASE
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"property-api/internal/logger"
	"property-api/internal/metrics"
	"property-api/internal/report"
	"property-api/internal/store"
)

// Pinger: store health check used by /healthz
type Pinger interface {
	Ping(ctx context.Context) error
}

type handler struct {
	svc *report.Service
	db  Pinger
}

// BuildRoutes: API mux with paths relative to the mount point
func BuildRoutes(svc *report.Service, db Pinger) *http.ServeMux {
	h := &handler{svc: svc, db: db}
	mux := http.NewServeMux()
	route := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, instrument(pattern, fn))
	}
	route("GET /healthz", h.healthz)
	route("GET /properties", h.listProperties)
	route("GET /properties/{id}", h.propertyDetail)
	route("GET /properties/neighborhood/{name}", h.propertiesByNeighborhood)
	route("GET /properties/valued_above/{value}", h.propertiesValuedAbove)
	route("GET /properties/type/{type}", h.propertiesByType)
	route("GET /neighborhoods/stats", h.neighborhoodStats)
	route("GET /neighborhoods/total_values", h.neighborhoodTotals)
	route("GET /neighborhoods/max_total_values", h.neighborhoodTotalsRanked(report.Descending))
	route("GET /neighborhoods/min_total_values", h.neighborhoodTotalsRanked(report.Ascending))
	route("GET /wards/total_values", h.wardTotals)
	return mux
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// instrument: request count and latency per route pattern
func instrument(pattern string, next http.HandlerFunc) http.Handler {
	route := pattern
	if i := strings.IndexByte(pattern, ' '); i >= 0 {
		route = pattern[i+1:]
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(sw, r)
		metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(sw.status)).Inc()
		metrics.RequestDurationMs.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError: NotFound → 404, InvalidArgument → 400, anything else → 500 with a generic message
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind, msg := http.StatusInternalServerError, "internal", "internal error"
	switch {
	case errors.Is(err, report.ErrNotFound):
		status, kind, msg = http.StatusNotFound, "not_found", err.Error()
	case errors.Is(err, report.ErrInvalidArgument):
		status, kind, msg = http.StatusBadRequest, "invalid_argument", err.Error()
	default:
		logger.L().Error("api_query_error", "path", r.URL.Path, "err", err)
	}
	metrics.QueryErrorsTotal.WithLabelValues(kind).Inc()
	writeJSON(w, status, errorJSON{Error: msg, Kind: kind})
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		logger.L().Error("healthz_ping_error", "err", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) listProperties(w http.ResponseWriter, r *http.Request) {
	ps, err := h.svc.ListProperties(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPropertyList(ps))
}

func (h *handler) propertiesByNeighborhood(w http.ResponseWriter, r *http.Request) {
	ps, err := h.svc.ListByNeighborhood(r.Context(), r.PathValue("name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPropertyList(ps))
}

func (h *handler) propertyDetail(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, r, invalidArg("property id", raw))
		return
	}
	d, err := h.svc.PropertyDetail(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDetailJSON(d))
}

func (h *handler) propertiesValuedAbove(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("value")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		writeError(w, r, invalidArg("value", raw))
		return
	}
	recs, err := h.svc.ValuedAbove(r.Context(), v)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssessmentList(recs))
}

func (h *handler) propertiesByType(w http.ResponseWriter, r *http.Request) {
	recs, err := h.svc.ByType(r.Context(), r.PathValue("type"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssessmentList(recs))
}

func (h *handler) neighborhoodStats(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.NeighborhoodStats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatsList(rows))
}

func (h *handler) neighborhoodTotals(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.NeighborhoodTotals(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTotalsList(rows))
}

func (h *handler) neighborhoodTotalsRanked(order report.Order) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := h.svc.RankedTotals(r.Context(), store.ByNeighborhood, order)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toRankedList(rows, store.ByNeighborhood))
	}
}

func (h *handler) wardTotals(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.WardTotals(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRankedList(rows, store.ByWard))
}
