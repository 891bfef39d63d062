package web

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
	"strconv"
	"time"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "snapindex_requests_total",
		Help: "Total number of HTTP requests by route and status code",
	}, []string{"route", "status"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "snapindex_request_duration_ms",
		Help:    "HTTP request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"route"})
	ProbesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "snapindex_probes_total",
		Help: "Total number of executed probes by kind",
	}, []string{"kind"})
	MatchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "snapindex_matches_total",
		Help: "Total number of matches returned by probes",
	})
	IndexBuildsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "snapindex_index_builds_total",
		Help: "Total number of explicit index builds by result",
	}, []string{"result"})
	FeatureEditsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "snapindex_feature_edits_total",
		Help: "Total number of successful feature edits by operation",
	}, []string{"operation"})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(ProbesTotal)
	prometheus.MustRegister(MatchesTotal)
	prometheus.MustRegister(IndexBuildsTotal)
	prometheus.MustRegister(FeatureEditsTotal)
}

func metricsHandler() http.Handler { return promhttp.Handler() }

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument counts requests and measures their duration per route template, so that feature IDs in the path don't
// create new label values.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		route := "unknown"
		if currentRoute := mux.CurrentRoute(request); currentRoute != nil {
			if template, err := currentRoute.GetPathTemplate(); err == nil {
				route = template
			}
		}

		recorder := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}
		startTime := time.Now()

		next.ServeHTTP(recorder, request)

		RequestDurationMs.WithLabelValues(route).Observe(float64(time.Since(startTime).Milliseconds()))
		RequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
	})
}
