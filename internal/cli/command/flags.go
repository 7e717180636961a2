package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/webserve/internal/infra/confloader"
	"github.com/yndnr/webserve/internal/server/config"
)

// configFlags are the flags that feed the configuration. They carry no
// defaults of their own: an unset flag leaves the value from the defaults,
// the config file or the environment untouched.
func configFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to YAML configuration file",
		},
		&cli.StringFlag{
			Name:  "addr",
			Usage: fmt.Sprintf("Bind address (default %q)", config.DefaultAddr),
		},
		&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Usage:   fmt.Sprintf("Bind port (default %d)", config.DefaultPort),
		},
		&cli.StringFlag{
			Name:    "root",
			Aliases: []string{"d"},
			Usage:   fmt.Sprintf("Directory to serve (default %q)", config.DefaultRoot),
		},
		&cli.StringFlag{
			Name:  "cert",
			Usage: fmt.Sprintf("PEM certificate chain, with the private key unless --key is given (default %q)", config.DefaultCertFile),
		},
		&cli.StringFlag{
			Name:  "key",
			Usage: "PEM private key, when not bundled with --cert",
		},
		&cli.DurationFlag{
			Name:  "read-header-timeout",
			Usage: "Time allowed to read request headers (0 disables)",
		},
		&cli.DurationFlag{
			Name:  "handshake-timeout",
			Usage: "Time allowed for a TLS handshake (0 disables)",
		},
		&cli.DurationFlag{
			Name:  "shutdown-timeout",
			Usage: fmt.Sprintf("Graceful shutdown drain limit (default %s)", config.DefaultShutdownTimeout),
		},
		&cli.StringFlag{
			Name:  "metrics-addr",
			Usage: "Plain-HTTP host:port for /metrics, /health and /ready (disabled when empty)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: fmt.Sprintf("Log level: debug, info, warn, error (default %q)", config.DefaultLogLevel),
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: fmt.Sprintf("Log format: json, text (default %q)", config.DefaultLogFormat),
		},
	}
}

// overrideKeys maps configuration flags to koanf keys.
var overrideKeys = []struct {
	flag string
	key  string
}{
	{"addr", "server.addr"},
	{"port", "server.port"},
	{"root", "server.root"},
	{"cert", "server.cert_file"},
	{"key", "server.key_file"},
	{"read-header-timeout", "server.read_header_timeout"},
	{"handshake-timeout", "server.handshake_timeout"},
	{"shutdown-timeout", "server.shutdown_timeout"},
	{"metrics-addr", "metrics.addr"},
	{"log-level", "log.level"},
	{"log-format", "log.format"},
}

// configSource remembers where the configuration came from so it can be
// loaded again on file change.
type configSource struct {
	file      string
	overrides map[string]any
}

func sourceFromFlags(c *cli.Context) configSource {
	src := configSource{
		file:      c.String("config"),
		overrides: make(map[string]any),
	}

	for _, o := range overrideKeys {
		if !c.IsSet(o.flag) {
			continue
		}
		src.overrides[o.key] = c.Value(o.flag)
	}

	return src
}

// load returns defaults overlaid with the file, the environment and the
// flags, in that order. The result is not verified.
func (s configSource) load() (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{confloader.WithOverrides(s.overrides)}
	if s.file != "" {
		opts = append(opts, confloader.WithConfigFile(s.file))
	}

	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadVerified loads the configuration and verifies it.
func (s configSource) loadVerified() (*config.ServerConfig, error) {
	cfg, err := s.load()
	if err != nil {
		return nil, err
	}
	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
