package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "webserve"

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	RequestsTotal     *prometheus.CounterVec
	ResponseBytes     prometheus.Counter
	HandshakeFailures prometheus.Counter
	ConnectionsActive prometheus.Gauge
}

// NewRegistry creates a registry with the server collectors, build
// information and the Go runtime and process collectors.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests served, by method and status code.",
		}, []string{"method", "code"}),
		ResponseBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "response_bytes_total",
			Help:      "Response body bytes written.",
		}),
		HandshakeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "tls",
			Name:      "handshake_failures_total",
			Help:      "Connections closed because the TLS handshake failed.",
		}),
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "connections_active",
			Help:      "Client connections currently open past the TLS handshake.",
		}),
	}

	r.registry.MustRegister(
		r.RequestsTotal,
		r.ResponseBytes,
		r.HandshakeFailures,
		r.ConnectionsActive,
		NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// Prometheus returns the underlying registry, e.g. for tests.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.registry
}

// Handler returns the HTTP handler exposing the registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		Registry: r.registry,
	})
}
