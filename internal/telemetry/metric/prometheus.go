package metric

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "snapbrowse"

// Registry holds all application metrics.
type Registry struct {
	reg *prometheus.Registry

	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RateLimited     prometheus.Counter

	// Browse metrics
	Resolutions    *prometheus.CounterVec
	ListingEntries prometheus.Histogram
	BytesServed    *prometheus.CounterVec
	Errors         *prometheus.CounterVec

	// Set to 1 once the config file changed on disk and a restart is pending.
	ConfigStale prometheus.Gauge
}

// NewRegistry creates a registry with the Go runtime and process collectors
// plus all SnapBrowse metrics registered.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "resolutions_total",
			Help:      "Latest-snapshot resolutions by root and outcome (found, none, error).",
		}, []string{"root", "outcome"}),
		ListingEntries: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "browse",
			Name:      "listing_entries",
			Help:      "Number of entries returned per directory listing.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		BytesServed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "browse",
			Name:      "file_bytes_served_total",
			Help:      "Bytes of file content served by root.",
		}, []string{"root"}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "browse",
			Name:      "errors_total",
			Help:      "Browse failures by error kind.",
		}, []string{"kind"}),
		ConfigStale: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "config_stale",
			Help:      "1 when the config file changed since startup and a restart is required.",
		}),
	}

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.RequestsTotal,
		r.RequestDuration,
		r.RateLimited,
		r.Resolutions,
		r.ListingEntries,
		r.BytesServed,
		r.Errors,
		r.ConfigStale,
	)
	return r
}

// MustRegister registers additional collectors.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	if r == nil {
		return
	}
	r.reg.MustRegister(cs...)
}

// Gatherer exposes the underlying registry for tests and custom exporters.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// RegisterBuildInfo publishes a constant snapbrowse_build_info gauge.
func (r *Registry) RegisterBuildInfo(version, commit string) {
	if r == nil {
		return
	}
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "build_info",
		Help:        "Build information; the value is always 1.",
		ConstLabels: prometheus.Labels{"version": version, "commit": commit},
	})
	g.Set(1)
	r.reg.MustRegister(g)
}

// ObserveRequest records one completed HTTP request.
func (r *Registry) ObserveRequest(route, method string, code int, d time.Duration) {
	if r == nil {
		return
	}
	r.RequestsTotal.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	r.RequestDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// ObserveRateLimited counts a request rejected by the rate limiter.
func (r *Registry) ObserveRateLimited() {
	if r == nil {
		return
	}
	r.RateLimited.Inc()
}

// ObserveResolution records the outcome of a latest-snapshot resolution.
func (r *Registry) ObserveResolution(root, outcome string) {
	if r == nil {
		return
	}
	r.Resolutions.WithLabelValues(root, outcome).Inc()
}

// ObserveListing records the size of a served directory listing.
func (r *Registry) ObserveListing(entries int) {
	if r == nil {
		return
	}
	r.ListingEntries.Observe(float64(entries))
}

// AddBytesServed adds n bytes of file content served from root.
func (r *Registry) AddBytesServed(root string, n int64) {
	if r == nil || n <= 0 {
		return
	}
	r.BytesServed.WithLabelValues(root).Add(float64(n))
}

// ObserveError counts a browse failure of the given kind.
func (r *Registry) ObserveError(kind string) {
	if r == nil {
		return
	}
	r.Errors.WithLabelValues(kind).Inc()
}

// MarkConfigStale flags that the on-disk config no longer matches the
// running one.
func (r *Registry) MarkConfigStale() {
	if r == nil {
		return
	}
	r.ConfigStale.Set(1)
}
