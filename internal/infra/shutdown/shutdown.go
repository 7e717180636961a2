// Package shutdown provides graceful shutdown handling.
package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// Handler runs registered hooks once a termination signal arrives.
type Handler struct {
	timeout time.Duration
	hooks   []func(context.Context) error
	mu      sync.Mutex

	trigger     chan error
	triggerOnce sync.Once
}

// NewHandler creates a new shutdown handler.
// The timeout bounds the total time all hooks may take.
func NewHandler(timeout time.Duration) *Handler {
	return &Handler{
		timeout: timeout,
		hooks:   make([]func(context.Context) error, 0),
		trigger: make(chan error, 1),
	}
}

// OnShutdown registers a shutdown hook.
// Hooks are called in reverse order of registration.
func (h *Handler) OnShutdown(hook func(context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook)
}

// Trigger starts shutdown without a signal, e.g. when a listener fails.
// The cause, if non-nil, is returned from WaitContext joined with any hook errors.
// Only the first call has an effect.
func (h *Handler) Trigger(cause error) {
	h.triggerOnce.Do(func() {
		h.trigger <- cause
	})
}

// WaitContext blocks until SIGINT or SIGTERM, Trigger, or ctx is done, and
// then executes hooks.
func (h *Handler) WaitContext(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var cause error
	select {
	case <-sigCh:
	case <-ctx.Done():
	case cause = <-h.trigger:
	}

	hookCtx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	h.mu.Lock()
	hooks := make([]func(context.Context) error, len(h.hooks))
	copy(hooks, h.hooks)
	h.mu.Unlock()

	errs := []error{cause}
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i](hookCtx); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
