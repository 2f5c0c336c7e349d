package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "renta",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "renta",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	webhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "renta",
			Subsystem: "payments",
			Name:      "webhook_events_total",
			Help:      "Payment gateway callbacks by gateway status and outcome.",
		},
		[]string{"status", "outcome"},
	)

	contractTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "renta",
			Subsystem: "contracts",
			Name:      "transitions_total",
			Help:      "Contract lifecycle moves by action and result.",
		},
		[]string{"action", "result"},
	)

	workerRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "renta",
			Subsystem: "workers",
			Name:      "rows_processed_total",
			Help:      "Rows changed by background workers.",
		},
		[]string{"worker"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		webhookEvents,
		contractTransitions,
		workerRuns,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler records request count and latency per first path segment.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)
		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	})
}

func RecordWebhook(status, outcome string) {
	if status == "" {
		status = "unknown"
	}
	webhookEvents.WithLabelValues(status, outcome).Inc()
}

func RecordTransition(action string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	contractTransitions.WithLabelValues(action, result).Inc()
}

func RecordWorker(worker string, n int) {
	workerRuns.WithLabelValues(worker).Add(float64(n))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// canonicalPath keeps label cardinality bounded: /contracts/42/approve becomes /contracts.
func canonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	if parts[0] == "webhooks" && len(parts) > 1 {
		return "/webhooks/" + parts[1]
	}
	return "/" + parts[0]
}
