package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "lottery_analyst",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lottery_analyst",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lottery_analyst",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	statisticsComputations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lottery_analyst",
			Subsystem: "stats",
			Name:      "computations_total",
			Help:      "Total number of frequency statistics computations.",
		},
		[]string{"game"},
	)

	analysisRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lottery_analyst",
			Subsystem: "analysis",
			Name:      "runs_total",
			Help:      "Total number of finished analysis runs.",
		},
		[]string{"game", "outcome"},
	)

	analysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lottery_analyst",
			Subsystem: "analysis",
			Name:      "run_duration_seconds",
			Help:      "Duration of analysis runs including the prediction call.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10), // 250ms to ~2m
		},
		[]string{"game"},
	)

	historyImports = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lottery_analyst",
			Subsystem: "history",
			Name:      "imported_records_total",
			Help:      "Total number of draw records imported.",
		},
		[]string{"game"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		statisticsComputations,
		analysisRuns,
		analysisDuration,
		historyImports,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request count and duration per route template.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		path := routePath(r)
		method := strings.ToUpper(r.Method)
		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	})
}

// RecordStatistics counts one frequency statistics computation.
func RecordStatistics(game string) {
	statisticsComputations.WithLabelValues(game).Inc()
}

// RecordAnalysisRun records a finished analysis run.
func RecordAnalysisRun(game, outcome string, duration time.Duration) {
	if duration <= 0 {
		duration = time.Millisecond
	}
	analysisRuns.WithLabelValues(game, outcome).Inc()
	analysisDuration.WithLabelValues(game).Observe(duration.Seconds())
}

// RecordImport counts imported draw records.
func RecordImport(game string, records int) {
	historyImports.WithLabelValues(game).Add(float64(records))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// routePath keeps label cardinality bounded by using the mux route
// template; unmatched paths collapse to their first segment.
func routePath(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	trimmed := strings.Trim(r.URL.Path, "/")
	if trimmed == "" {
		return "/"
	}
	return "/" + strings.SplitN(trimmed, "/", 2)[0]
}
