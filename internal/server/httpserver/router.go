package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/yndnr/webserve/internal/server/httpserver/handler"
	"github.com/yndnr/webserve/internal/telemetry/metric"
)

// RouterConfig holds configuration for the static file router.
type RouterConfig struct {
	Root    string
	Logger  *slog.Logger
	Metrics *metric.Registry
}

// NewRouter creates the handler served on the HTTPS listener.
func NewRouter(cfg *RouterConfig) http.Handler {
	middlewares := []Middleware{Recover(cfg.Logger)}
	if cfg.Metrics != nil {
		middlewares = append(middlewares, Instrument(cfg.Metrics))
	}
	middlewares = append(middlewares, AllowMethods(http.MethodGet, http.MethodHead))

	return Chain(handler.NewStatic(cfg.Root), middlewares...)
}

// NewMetricsRouter creates the handler for the plain-HTTP metrics listener.
// ready backs GET /ready.
func NewMetricsRouter(metrics *metric.Registry, ready func() bool, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /health", handler.Health)
	mux.HandleFunc("GET /ready", handler.Ready(ready))

	return Chain(mux, Recover(logger))
}
