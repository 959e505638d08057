package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "mondrian"

// Prometheus implements every hook interface with Prometheus collectors.
type Prometheus struct {
	compositions    *prometheus.CounterVec
	composeDuration prometheus.Histogram
	leaves          prometheus.Histogram
	encodeDuration  *prometheus.HistogramVec
	encodedBytes    *prometheus.CounterVec
	cacheEvents     *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	inflight        prometheus.Gauge
}

// NewPrometheus creates the collectors and registers them with registry.
func NewPrometheus(registry prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		compositions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "pipeline",
			Name:      "compositions_total",
			Help:      "Number of compositions generated, by result.",
		}, []string{"result"}),
		composeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "pipeline",
			Name:      "compose_duration_seconds",
			Help:      "Time spent partitioning and painting.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		leaves: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "pipeline",
			Name:      "leaves",
			Help:      "Leaf rectangles per composition.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		encodeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "pipeline",
			Name:      "encode_duration_seconds",
			Help:      "Time spent encoding an artifact.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"format"}),
		encodedBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "pipeline",
			Name:      "encoded_bytes_total",
			Help:      "Bytes produced by encoders.",
		}, []string{"format"}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "events_total",
			Help:      "Cache hits, misses, writes and errors.",
		}, []string{"key_type", "event"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests served, by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Requests currently being served.",
		}),
	}
	registry.MustRegister(
		p.compositions,
		p.composeDuration,
		p.leaves,
		p.encodeDuration,
		p.encodedBytes,
		p.cacheEvents,
		p.httpRequests,
		p.httpDuration,
		p.inflight,
	)
	return p
}

// Register installs p as the pipeline, cache and HTTP hooks.
func (p *Prometheus) Register() {
	SetPipelineHooks(p)
	SetCacheHooks(p)
	SetHTTPHooks(p)
}

func (p *Prometheus) OnComposeStart(context.Context, uint32, uint32, int) {}

func (p *Prometheus) OnComposeComplete(_ context.Context, leaves int, d time.Duration, err error) {
	if err != nil {
		p.compositions.WithLabelValues("error").Inc()
		return
	}
	p.compositions.WithLabelValues("ok").Inc()
	p.composeDuration.Observe(d.Seconds())
	p.leaves.Observe(float64(leaves))
}

func (p *Prometheus) OnEncodeStart(context.Context, string) {}

func (p *Prometheus) OnEncodeComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	if err != nil {
		return
	}
	p.encodeDuration.WithLabelValues(format).Observe(d.Seconds())
	p.encodedBytes.WithLabelValues(format).Add(float64(size))
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, _ int) {
	p.cacheEvents.WithLabelValues(keyType, "set").Inc()
}

func (p *Prometheus) OnCacheError(_ context.Context, keyType string, _ error) {
	p.cacheEvents.WithLabelValues(keyType, "error").Inc()
}

func (p *Prometheus) OnRequest(context.Context, string, string) {
	p.inflight.Inc()
}

func (p *Prometheus) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	p.inflight.Dec()
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ PipelineHooks = (*Prometheus)(nil)
	_ CacheHooks    = (*Prometheus)(nil)
	_ HTTPHooks     = (*Prometheus)(nil)
)
