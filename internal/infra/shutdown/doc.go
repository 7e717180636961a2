// Package shutdown provides graceful shutdown for webserve.
//
// This package handles process termination:
//
//   - Signal handling (SIGINT, SIGTERM)
//   - Programmatic trigger when a listener fails
//   - Timeout-bounded cleanup hooks, run in reverse registration order
//
// Usage:
//
//	h := shutdown.NewHandler(30 * time.Second)
//	h.OnShutdown(srv.Shutdown)
//	if err := h.WaitContext(ctx); err != nil { ... }
package shutdown
