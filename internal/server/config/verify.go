package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/yndnr/webserve/internal/telemetry/logger"
)

var (
	// ErrInvalidPort is returned for ports outside 1..65535.
	ErrInvalidPort = errors.New("config: server.port must be between 1 and 65535")

	// ErrInvalidAddr is returned for a bind address that is not an IP or hostname.
	ErrInvalidAddr = errors.New("config: invalid server.addr")

	// ErrRootRequired is returned when server.root is empty.
	ErrRootRequired = errors.New("config: server.root is required")

	// ErrRootNotDir is returned when server.root is not an existing directory.
	ErrRootNotDir = errors.New("config: server.root is not a directory")

	// ErrCertRequired is returned when server.cert_file is empty.
	ErrCertRequired = errors.New("config: server.cert_file is required")

	// ErrNegativeTimeout is returned for negative durations.
	ErrNegativeTimeout = errors.New("config: timeouts must not be negative")

	// ErrInvalidMetricsAddr is returned for a malformed metrics.addr.
	ErrInvalidMetricsAddr = errors.New("config: invalid metrics.addr")
)

// Verify validates the configuration.
//
// It checks that the serving root exists but does not read the certificate;
// that happens when the TLS listener is prepared.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyMetrics(&cfg.Metrics, &cfg.Server); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyServer(s *ServerSection) error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, s.Port)
	}

	if s.Addr != "" && net.ParseIP(s.Addr) == nil && !validHostname(s.Addr) {
		return fmt.Errorf("%w: %q", ErrInvalidAddr, s.Addr)
	}

	if s.Root == "" {
		return ErrRootRequired
	}
	info, err := os.Stat(s.Root)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRootNotDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrRootNotDir, s.Root)
	}

	if s.CertFile == "" {
		return ErrCertRequired
	}

	if s.ReadHeaderTimeout < 0 || s.HandshakeTimeout < 0 || s.ShutdownTimeout < 0 {
		return ErrNegativeTimeout
	}

	return nil
}

func verifyMetrics(m *MetricsSection, s *ServerSection) error {
	if !m.Enabled() {
		return nil
	}

	host, portStr, err := net.SplitHostPort(m.Addr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMetricsAddr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return fmt.Errorf("%w: bad port %q", ErrInvalidMetricsAddr, portStr)
	}
	if port != 0 && port == s.Port && sameHost(host, s.Addr) {
		return fmt.Errorf("%w: %s collides with the HTTPS listener", ErrInvalidMetricsAddr, m.Addr)
	}

	return nil
}

func verifyLog(l *LogSection) error {
	if _, err := logger.ParseLevel(l.Level); err != nil {
		return fmt.Errorf("config: log.level: %w", err)
	}

	switch strings.ToLower(l.Format) {
	case "", "json", "text", "console":
		return nil
	default:
		return fmt.Errorf("config: log.format: unknown format %q", l.Format)
	}
}

// sameHost reports whether two bind hosts overlap. Wildcards overlap
// with everything.
func sameHost(a, b string) bool {
	wild := func(h string) bool { return h == "" || h == "0.0.0.0" || h == "::" }
	return wild(a) || wild(b) || a == b
}

func validHostname(h string) bool {
	if len(h) > 253 {
		return false
	}
	for _, label := range strings.Split(h, ".") {
		if label == "" || len(label) > 63 {
			return false
		}
		for i, c := range label {
			switch {
			case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			case c == '-' && i != 0 && i != len(label)-1:
			default:
				return false
			}
		}
	}
	return true
}
