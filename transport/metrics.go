package transport

import (
	"context"
	"strconv"

	"github.com/Abraxas-365/wacloud/errx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsHooks records request counts, latency and failures in Prometheus
type MetricsHooks struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	failures *prometheus.CounterVec
}

// NewMetricsHooks registers the collectors on reg. Pass a dedicated registry in tests;
// prometheus.DefaultRegisterer otherwise.
func NewMetricsHooks(reg prometheus.Registerer, namespace string) *MetricsHooks {
	factory := promauto.With(reg)
	return &MetricsHooks{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "requests_total",
			Help:      "Graph API responses by method and HTTP status.",
		}, []string{"method", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "request_duration_seconds",
			Help:      "Graph API round trip latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "failures_total",
			Help:      "Failed Graph API calls by error kind.",
		}, []string{"method", "kind"}),
	}
}

func (m *MetricsHooks) BeforeRequest(context.Context, *RequestInfo) {}

func (m *MetricsHooks) AfterResponse(_ context.Context, req *RequestInfo, resp *ResponseInfo) {
	m.requests.WithLabelValues(req.Method, strconv.Itoa(resp.StatusCode)).Inc()
	m.duration.WithLabelValues(req.Method).Observe(resp.Duration.Seconds())
}

func (m *MetricsHooks) OnError(_ context.Context, req *RequestInfo, err error) {
	kind, ok := errx.KindOf(err)
	if !ok {
		kind = "UNKNOWN"
	}
	m.failures.WithLabelValues(req.Method, string(kind)).Inc()
}
