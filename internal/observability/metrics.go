package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	ChatRequests      *prometheus.CounterVec
	CompletionLatency prometheus.Histogram
	SanitizerHits     prometheus.Counter
	AffectAppended    prometheus.Counter
	StoreSaveFailures prometheus.Counter
	WatchConnections  prometheus.Gauge
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ChatRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_requests_total",
			Help:      "Chat requests by outcome.",
		}, []string{"outcome"}),
		CompletionLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "completion_latency_seconds",
			Help:      "Latency of upstream completion calls in seconds.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 30},
		}),
		SanitizerHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sanitizer_hits_total",
			Help:      "Banned phrases removed from completions.",
		}),
		AffectAppended: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "affect_appended_total",
			Help:      "Replies that needed an expressive glyph appended.",
		}),
		StoreSaveFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_save_failures_total",
			Help:      "Record saves that failed after a successful reply.",
		}),
		WatchConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "watch_connections",
			Help:      "Open transcript watch websocket connections.",
		}),
	}
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
