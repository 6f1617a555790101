package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	LayerTransient = "transient"
	LayerThrottle  = "throttle"
)

type Registry struct {
	reg *prometheus.Registry

	// Upstream client
	UpstreamRequests    *prometheus.CounterVec
	UpstreamLatencySec  *prometheus.HistogramVec
	UpstreamRetries     *prometheus.CounterVec
	RateLimitRejections prometheus.Counter

	// Exposed API
	HTTPRequests   *prometheus.CounterVec
	HTTPLatencySec *prometheus.HistogramVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	upstreamRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_requests_total",
		Help: "HTTP requests sent to the upstream, by method and status code.",
	}, []string{"method", "code"})
	upstreamLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Latency of single upstream HTTP attempts.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
	upstreamRetries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_retries_total",
		Help: "Retries scheduled by the upstream client, by retry layer.",
	}, []string{"layer"})
	rejections := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "upstream_rate_limit_rejections_total",
		Help: "Calls rejected by the local rate-limit governor.",
	})
	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Requests served by the API, by route and status.",
	}, []string{"method", "route", "status"})
	httpLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Latency of requests served by the API.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	r.MustRegister(
		upstreamRequests, upstreamLatency, upstreamRetries, rejections,
		httpRequests, httpLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Registry{
		reg:                 r,
		UpstreamRequests:    upstreamRequests,
		UpstreamLatencySec:  upstreamLatency,
		UpstreamRetries:     upstreamRetries,
		RateLimitRejections: rejections,
		HTTPRequests:        httpRequests,
		HTTPLatencySec:      httpLatency,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
