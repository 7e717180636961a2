package config

import "time"

// Default configuration values.
const (
	DefaultAddr            = "0.0.0.0"
	DefaultPort            = 8443
	DefaultRoot            = "web"
	DefaultCertFile        = "server.pem"
	DefaultShutdownTimeout = 30 * time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Addr:            DefaultAddr,
			Port:            DefaultPort,
			Root:            DefaultRoot,
			CertFile:        DefaultCertFile,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
