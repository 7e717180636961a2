package config

import (
	"net"
	"strconv"
	"time"
)

// ServerConfig is the root configuration for webserve.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server" json:"server" yaml:"server"`
	Metrics MetricsSection `koanf:"metrics" json:"metrics" yaml:"metrics"`
	Log     LogSection     `koanf:"log" json:"log" yaml:"log"`
}

// ServerSection configures the HTTPS file server.
type ServerSection struct {
	// Addr is the bind address; empty or 0.0.0.0 binds all interfaces.
	Addr string `koanf:"addr" json:"addr" yaml:"addr"`

	// Port is the bind port.
	Port int `koanf:"port" json:"port" yaml:"port"`

	// Root is the directory whose files are served.
	Root string `koanf:"root" json:"root" yaml:"root"`

	// CertFile holds the certificate chain. When KeyFile is empty it must
	// also hold the private key.
	CertFile string `koanf:"cert_file" json:"cert_file" yaml:"cert_file"`

	// KeyFile is an optional separate private key file.
	KeyFile string `koanf:"key_file" json:"key_file" yaml:"key_file"`

	// ReadHeaderTimeout bounds reading request headers. Zero means none.
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout" json:"read_header_timeout" yaml:"read_header_timeout"`

	// HandshakeTimeout bounds the TLS handshake. Zero means none.
	HandshakeTimeout time.Duration `koanf:"handshake_timeout" json:"handshake_timeout" yaml:"handshake_timeout"`

	// ShutdownTimeout bounds the graceful drain after SIGINT/SIGTERM.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// ListenAddr returns the host:port to bind.
func (s ServerSection) ListenAddr() string {
	return net.JoinHostPort(s.Addr, strconv.Itoa(s.Port))
}

// URL returns the https URL announced at startup.
func (s ServerSection) URL() string {
	host := s.Addr
	if host == "" {
		host = "0.0.0.0"
	}
	return "https://" + net.JoinHostPort(host, strconv.Itoa(s.Port)) + "/"
}

// MetricsSection configures the optional metrics listener.
type MetricsSection struct {
	// Addr is the plain-HTTP host:port for /metrics. Empty disables it.
	Addr string `koanf:"addr" json:"addr" yaml:"addr"`
}

// Enabled reports whether the metrics listener should run.
func (m MetricsSection) Enabled() bool {
	return m.Addr != ""
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level" json:"level" yaml:"level"`
	Format string `koanf:"format" json:"format" yaml:"format"`
}
