// Package metric provides Prometheus metrics for webserve.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: Registry with the server's collectors and HTTP handler
//   - collector.go: Build information collector
//
// Metrics include:
//
//   - Requests by method and status code
//   - Response bytes written
//   - TLS handshake failures
//   - Active connections
//   - Go runtime and process statistics
//
// Metrics are exposed at /metrics on the optional metrics listener.
package metric
