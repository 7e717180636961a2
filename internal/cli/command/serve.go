package command

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/oklog/ulid/v2"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/webserve/internal/infra/confloader"
	"github.com/yndnr/webserve/internal/infra/shutdown"
	"github.com/yndnr/webserve/internal/infra/tlscert"
	"github.com/yndnr/webserve/internal/server/config"
	"github.com/yndnr/webserve/internal/server/httpserver"
	"github.com/yndnr/webserve/internal/telemetry/logger"
	"github.com/yndnr/webserve/internal/telemetry/metric"
)

// ServeCommand returns the serve subcommand.
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Serve the root directory over HTTPS (default command)",
		Flags:  serveFlags(),
		Action: runServe,
	}
}

func serveFlags() []cli.Flag {
	return append(configFlags(),
		&cli.BoolFlag{
			Name:  "watch-config",
			Usage: "Apply log level changes from the config file without restarting",
			Value: true,
		},
	)
}

func runServe(c *cli.Context) error {
	if c.Args().Present() {
		return fmt.Errorf("unexpected argument %q", c.Args().First())
	}

	src := sourceFromFlags(c)
	cfg, err := src.loadVerified()
	if err != nil {
		return err
	}

	return serve(c.Context, cfg, serveOptions{
		source: src,
		watch:  c.Bool("watch-config") && src.file != "",
		stdout: c.App.Writer,
		stderr: c.App.ErrWriter,
	})
}

type serveOptions struct {
	source configSource
	watch  bool
	stdout io.Writer
	stderr io.Writer

	// ready, if set, receives the bound HTTPS address once serving.
	ready chan<- net.Addr
}

// serve runs the server until ctx is done, a termination signal arrives or
// a listener fails.
func serve(ctx context.Context, cfg *config.ServerConfig, opts serveOptions) error {
	if opts.stdout == nil {
		opts.stdout = os.Stdout
	}
	if opts.stderr == nil {
		opts.stderr = os.Stderr
	}

	base, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: opts.stderr,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	log := base.With("instance", ulid.Make().String())
	logger.SetDefault(log)

	// The certificate is loaded before any socket is bound.
	cert, err := tlscert.LoadKeyPair(cfg.Server.CertFile, cfg.Server.KeyFile)
	if err != nil {
		return fmt.Errorf("load certificate: %w", err)
	}

	metrics := metric.NewRegistry()

	srv := httpserver.New(httpserver.Options{
		Addr:              cfg.Server.ListenAddr(),
		TLSConfig:         tlscert.ServerConfig(cert),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		HandshakeTimeout:  cfg.Server.HandshakeTimeout,
		Logger:            log.Slog(),
		Metrics:           metrics,
	}, httpserver.NewRouter(&httpserver.RouterConfig{
		Root:    cfg.Server.Root,
		Logger:  log.Slog(),
		Metrics: metrics,
	}))

	if err := srv.Listen(); err != nil {
		return err
	}

	var metricsSrv *httpserver.Server
	if cfg.Metrics.Enabled() {
		ready := func() bool { return srv.State() == httpserver.StateServing }
		metricsSrv = httpserver.New(httpserver.Options{
			Addr:   cfg.Metrics.Addr,
			Logger: log.Slog(),
		}, httpserver.NewMetricsRouter(metrics, ready, log.Slog()))

		if err := metricsSrv.Listen(); err != nil {
			_ = srv.Shutdown(context.Background())
			return err
		}
	}

	// Hooks run in reverse order: watcher, metrics listener, HTTPS listener.
	// Both listeners get their hooks before either starts serving.
	handler := shutdown.NewHandler(cfg.Server.ShutdownTimeout)
	handler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down https server")
		return srv.Shutdown(ctx)
	})
	if metricsSrv != nil {
		handler.OnShutdown(func(ctx context.Context) error {
			log.Info("shutting down metrics server")
			return metricsSrv.Shutdown(ctx)
		})
	}

	go func() {
		if err := srv.Serve(); err != nil {
			handler.Trigger(fmt.Errorf("https server: %w", err))
		}
	}()
	if metricsSrv != nil {
		go func() {
			if err := metricsSrv.Serve(); err != nil {
				handler.Trigger(fmt.Errorf("metrics server: %w", err))
			}
		}()
		log.Info("metrics listening", "addr", metricsSrv.Addr().String())
	}

	// Port 0 binds a free port; announce the one actually bound.
	bound := cfg.Server
	bound.Port = srv.Addr().(*net.TCPAddr).Port
	if err := httpserver.WriteBanner(opts.stdout, bound.URL(), bound.Port); err != nil {
		log.Warn("failed to write startup banner", "error", err)
	}
	log.Info("server started",
		"addr", srv.Addr().String(),
		"root", cfg.Server.Root,
		"cert", cfg.Server.CertFile,
		"log_level", log.Level(),
	)

	if opts.watch {
		watcher, err := watchConfig(opts.source, cfg, log)
		if err != nil {
			log.Warn("config watcher disabled", "error", err)
		} else {
			handler.OnShutdown(func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	if opts.ready != nil {
		opts.ready <- srv.Addr()
	}

	if err := handler.WaitContext(ctx); err != nil {
		log.Error("shutdown finished with errors", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// watchConfig reloads the configuration when its file changes and applies
// the log level. Other changed sections are reported but need a restart.
func watchConfig(src configSource, current *config.ServerConfig, log logger.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log.Slog()))
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(src.file); err != nil {
		watcher.Stop()
		return nil, err
	}

	watcher.OnChange(func(string) {
		reloadConfig(src, current, log)
	})
	watcher.StartAsync()

	log.Debug("watching config file", "file", src.file)
	return watcher, nil
}

func reloadConfig(src configSource, current *config.ServerConfig, log logger.Logger) {
	next, err := src.loadVerified()
	if err != nil {
		log.Warn("config reload failed, keeping current settings", "file", src.file, "error", err)
		return
	}

	old := log.Level()
	if err := log.SetLevel(next.Log.Level); err != nil {
		log.Warn("config reload: invalid log level", "level", next.Log.Level, "error", err)
	} else if now := log.Level(); now != old {
		log.Info("log level changed", "from", old, "to", now)
	}

	var pending []string
	if next.Server != current.Server {
		pending = append(pending, "server")
	}
	if next.Metrics != current.Metrics {
		pending = append(pending, "metrics")
	}
	if next.Log.Format != current.Log.Format {
		pending = append(pending, "log.format")
	}
	if len(pending) > 0 {
		log.Warn("config changes require a restart", "sections", pending)
	}
}
