package httpserver

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"sync"
	"time"
)

// tlsListener accepts TCP connections and hands out *tls.Conn values whose
// server handshake has already completed. Each handshake runs on its own
// goroutine so a stalled client cannot hold up Accept.
type tlsListener struct {
	net.Listener

	config  *tls.Config
	timeout time.Duration

	// onFailure is called for every failed handshake, except those caused
	// by the listener closing.
	onFailure func(remote net.Addr, err error)

	conns chan net.Conn
	errs  chan error
	done  chan struct{}

	closeOnce sync.Once
	closeErr  error

	mu      sync.Mutex
	pending map[net.Conn]struct{}
}

func newTLSListener(inner net.Listener, config *tls.Config, timeout time.Duration, onFailure func(net.Addr, error)) *tlsListener {
	if onFailure == nil {
		onFailure = func(net.Addr, error) {}
	}

	l := &tlsListener{
		Listener:  inner,
		config:    config,
		timeout:   timeout,
		onFailure: onFailure,
		conns:     make(chan net.Conn),
		errs:      make(chan error),
		done:      make(chan struct{}),
		pending:   make(map[net.Conn]struct{}),
	}

	go l.acceptLoop()
	return l
}

// Accept returns the next connection that completed its TLS handshake.
func (l *tlsListener) Accept() (net.Conn, error) {
	select {
	case c := <-l.conns:
		return c, nil
	case err := <-l.errs:
		return nil, err
	case <-l.done:
		return nil, net.ErrClosed
	}
}

// Close stops accepting and aborts handshakes still in progress.
func (l *tlsListener) Close() error {
	l.closeOnce.Do(func() {
		close(l.done)
		l.closeErr = l.Listener.Close()

		l.mu.Lock()
		for c := range l.pending {
			c.Close()
		}
		l.pending = map[net.Conn]struct{}{}
		l.mu.Unlock()
	})
	return l.closeErr
}

func (l *tlsListener) acceptLoop() {
	for {
		raw, err := l.Listener.Accept()
		if err != nil {
			// net/http decides whether to retry; the send blocks until
			// it calls Accept again or the listener closes.
			select {
			case l.errs <- err:
			case <-l.done:
				return
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}

		if !l.track(raw) {
			raw.Close()
			return
		}
		go l.handshake(raw)
	}
}

func (l *tlsListener) handshake(raw net.Conn) {
	conn := tls.Server(raw, l.config)

	ctx := context.Background()
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	err := conn.HandshakeContext(ctx)
	l.untrack(raw)

	if err != nil {
		raw.Close()
		select {
		case <-l.done:
		default:
			l.onFailure(raw.RemoteAddr(), err)
		}
		return
	}

	select {
	case l.conns <- conn:
	case <-l.done:
		conn.Close()
	}
}

func (l *tlsListener) track(c net.Conn) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	select {
	case <-l.done:
		return false
	default:
	}
	l.pending[c] = struct{}{}
	return true
}

func (l *tlsListener) untrack(c net.Conn) {
	l.mu.Lock()
	delete(l.pending, c)
	l.mu.Unlock()
}
