package httpserver

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yndnr/webserve/internal/telemetry/metric"
)

var (
	// ErrServerStarted is returned by Listen when the server already holds a
	// listening socket.
	ErrServerStarted = errors.New("httpserver: server already started")

	// ErrNotListening is returned by Serve when Listen has not succeeded.
	ErrNotListening = errors.New("httpserver: server is not listening")
)

// State is the lifecycle state of a Server.
type State int32

const (
	// StateStarting covers construction and binding.
	StateStarting State = iota
	// StateServing means the accept loop is running.
	StateServing
	// StateStopped is reached only after Serve returns.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateServing:
		return "serving"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Options configures a Server.
type Options struct {
	// Addr is the TCP address to bind, host:port. Port 0 picks a free port.
	Addr string

	// TLSConfig enables HTTPS. A nil config serves plain HTTP, which is
	// only used for the metrics listener.
	TLSConfig *tls.Config

	// ReadHeaderTimeout and HandshakeTimeout are disabled when zero.
	ReadHeaderTimeout time.Duration
	HandshakeTimeout  time.Duration

	Logger  *slog.Logger
	Metrics *metric.Registry
}

// Server represents the HTTP(S) server.
type Server struct {
	httpServer *http.Server
	opts       Options
	logger     *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	state    atomic.Int32
}

// New creates a server. It does not touch the network.
func New(opts Options, handler http.Handler) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		opts:   opts,
		logger: logger,
	}

	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		ConnState:         s.trackConnState,
	}
	if opts.TLSConfig != nil {
		// Requests only arrive on connections that finished the handshake,
		// so net/http must not attempt HTTP/2 negotiation on its own.
		s.httpServer.TLSNextProto = map[string]func(*http.Server, *tls.Conn, http.Handler){}
	}

	return s
}

// State returns the current lifecycle state.
func (s *Server) State() State {
	return State(s.state.Load())
}

// Listen binds the TCP socket.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return ErrServerStarted
	}

	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("httpserver: listen on %s: %w", s.opts.Addr, err)
	}

	if s.opts.TLSConfig != nil {
		ln = newTLSListener(ln, s.opts.TLSConfig, s.opts.HandshakeTimeout, s.handshakeFailed)
	}
	s.listener = ln
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve runs the accept loop until Shutdown. It returns nil after a
// graceful shutdown.
func (s *Server) Serve() error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()

	if ln == nil {
		return ErrNotListening
	}

	s.state.Store(int32(StateServing))
	err := s.httpServer.Serve(ln)
	s.state.Store(int32(StateStopped))

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// ListenAndServe binds the socket and serves.
func (s *Server) ListenAndServe() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// Shutdown gracefully shuts down the server, waiting for in-flight
// requests until ctx expires. A socket bound by Listen is released even if
// Serve never ran.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)

	s.mu.Lock()
	if s.listener != nil {
		// Already closed by net/http when Serve ran.
		_ = s.listener.Close()
	}
	s.mu.Unlock()

	return err
}

func (s *Server) handshakeFailed(remote net.Addr, err error) {
	s.logger.Debug("tls handshake failed", "remote", remote.String(), "error", err)
	if s.opts.Metrics != nil {
		s.opts.Metrics.HandshakeFailures.Inc()
	}
}

func (s *Server) trackConnState(_ net.Conn, state http.ConnState) {
	if s.opts.Metrics == nil {
		return
	}
	switch state {
	case http.StateNew:
		s.opts.Metrics.ConnectionsActive.Inc()
	case http.StateClosed, http.StateHijacked:
		s.opts.Metrics.ConnectionsActive.Dec()
	}
}
