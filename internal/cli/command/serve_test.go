package command

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/webserve/internal/infra/tlscert"
	"github.com/yndnr/webserve/internal/server/config"
	"github.com/yndnr/webserve/internal/telemetry/logger"
)

// startServe runs serve in the background and waits until it is serving.
func startServe(t *testing.T, cfg *config.ServerConfig, opts serveOptions) (net.Addr, context.CancelFunc, <-chan error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan net.Addr, 1)
	opts.ready = ready

	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg, opts) }()

	select {
	case addr := <-ready:
		return addr, cancel, done
	case err := <-done:
		cancel()
		t.Fatalf("serve exited early: %v", err)
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("timed out waiting for server")
	}
	return nil, nil, nil
}

func TestServe_EndToEnd(t *testing.T) {
	site := newTestSite(t, map[string]string{"index.html": "<h1>hi</h1>"})

	var stdout, stderr bytes.Buffer
	addr, cancel, done := startServe(t, site.config(), serveOptions{stdout: &stdout, stderr: &stderr})

	client := site.client()
	base := "https://" + addr.String()

	for _, path := range []string{"/", "/index.html"} {
		resp, err := client.Get(base + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK || string(body) != "<h1>hi</h1>" {
			t.Errorf("GET %s = %d %q, want 200 <h1>hi</h1>", path, resp.StatusCode, body)
		}
	}

	resp, err := client.Get(base + "/missing.txt")
	if err != nil {
		t.Fatalf("GET /missing.txt: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET /missing.txt = %d, want 404", resp.StatusCode)
	}

	client.CloseIdleConnections()
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("serve returned %v after graceful shutdown", err)
	}

	lines := strings.Split(strings.TrimRight(stdout.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("stdout has %d lines, want 2:\n%s", len(lines), stdout.String())
	}
	port := strconv.Itoa(addr.(*net.TCPAddr).Port)
	if !strings.Contains(lines[0], "https://127.0.0.1:"+port+"/") {
		t.Errorf("banner line 1 = %q, want the serving URL", lines[0])
	}

	logs := stderr.String()
	for _, want := range []string{"server started", `"instance"`, "server stopped gracefully"} {
		if !strings.Contains(logs, want) {
			t.Errorf("logs missing %q:\n%s", want, logs)
		}
	}
}

func TestServe_ShutdownStopsBothListeners(t *testing.T) {
	site := newTestSite(t, nil)

	cfg := site.config()
	cfg.Metrics.Addr = "127.0.0.1:0"

	var stderr bytes.Buffer
	_, cancel, done := startServe(t, cfg, serveOptions{stdout: io.Discard, stderr: &stderr})

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("serve returned %v after graceful shutdown", err)
	}

	logs := stderr.String()
	metricsAt := strings.Index(logs, "shutting down metrics server")
	httpsAt := strings.Index(logs, "shutting down https server")
	if metricsAt < 0 || httpsAt < 0 {
		t.Fatalf("logs missing a listener shutdown:\n%s", logs)
	}
	if metricsAt > httpsAt {
		t.Errorf("https listener stopped before the metrics listener:\n%s", logs)
	}
}

func TestServe_CertificateErrorsBindNothing(t *testing.T) {
	site := newTestSite(t, nil)

	garbage := filepath.Join(site.dir, "garbage.pem")
	if err := os.WriteFile(garbage, []byte("not a certificate"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	tests := []struct {
		name     string
		certFile string
		wantErr  error
	}{
		{name: "missing", certFile: filepath.Join(site.dir, "absent.pem"), wantErr: fs.ErrNotExist},
		{name: "malformed", certFile: garbage, wantErr: tlscert.ErrNoCertificate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := site.config()
			cfg.Server.CertFile = tt.certFile
			cfg.Server.Port = freePort(t)

			err := serve(context.Background(), cfg, serveOptions{stdout: io.Discard, stderr: io.Discard})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if !portFree(cfg.Server.Port) {
				t.Errorf("port %d left bound after certificate error", cfg.Server.Port)
			}
		})
	}
}

func TestServe_PortInUse(t *testing.T) {
	site := newTestSite(t, nil)

	taken, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer taken.Close()

	cfg := site.config()
	cfg.Server.Port = taken.Addr().(*net.TCPAddr).Port

	var stdout bytes.Buffer
	if err := serve(context.Background(), cfg, serveOptions{stdout: &stdout, stderr: io.Discard}); err == nil {
		t.Fatal("serve succeeded on a port in use")
	}
	if stdout.Len() != 0 {
		t.Errorf("banner printed despite startup failure: %q", stdout.String())
	}
}

func TestServe_MetricsAddrInUse(t *testing.T) {
	site := newTestSite(t, nil)

	taken, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer taken.Close()

	cfg := site.config()
	cfg.Server.Port = freePort(t)
	cfg.Metrics.Addr = taken.Addr().String()

	if err := serve(context.Background(), cfg, serveOptions{stdout: io.Discard, stderr: io.Discard}); err == nil {
		t.Fatal("serve succeeded with metrics address in use")
	}
	if !portFree(cfg.Server.Port) {
		t.Errorf("https port %d left bound after metrics listener failed", cfg.Server.Port)
	}
}

func TestRunServe_InvalidConfig(t *testing.T) {
	site := newTestSite(t, nil)

	_, _, err := runApp(t, "--root", filepath.Join(site.dir, "absent"), "--cert", site.certFile)
	if !errors.Is(err, config.ErrRootNotDir) && !errors.Is(err, config.ErrRootRequired) {
		t.Fatalf("err = %v, want a serving root error", err)
	}

	_, _, err = runApp(t, "serve", "--port", "70000", "--root", site.root, "--cert", site.certFile)
	if !errors.Is(err, config.ErrInvalidPort) {
		t.Fatalf("err = %v, want ErrInvalidPort", err)
	}
}

func TestReloadConfig(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "webserve.yaml")
	root := filepath.Join(dir, "web")
	if err := os.Mkdir(root, 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	write := func(level string, port int) {
		t.Helper()
		content := "server:\n  root: " + root + "\n  port: " + strconv.Itoa(port) + "\nlog:\n  level: " + level + "\n"
		if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	write("info", 9443)
	src := configSource{file: file, overrides: map[string]any{}}
	current, err := src.loadVerified()
	if err != nil {
		t.Fatalf("loadVerified: %v", err)
	}

	var buf bytes.Buffer
	log, err := logger.New(logger.Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}

	write("debug", 9443)
	reloadConfig(src, current, log)
	if log.Level() != "debug" {
		t.Fatalf("level = %q after reload, want debug", log.Level())
	}
	if strings.Contains(buf.String(), "require a restart") {
		t.Errorf("unexpected restart warning for a log level change:\n%s", buf.String())
	}

	buf.Reset()
	write("debug", 9444)
	reloadConfig(src, current, log)
	if !strings.Contains(buf.String(), "require a restart") {
		t.Errorf("port change not reported:\n%s", buf.String())
	}

	buf.Reset()
	if err := os.WriteFile(file, []byte("log: [unclosed"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	reloadConfig(src, current, log)
	if log.Level() != "debug" {
		t.Errorf("level = %q after broken reload, want unchanged debug", log.Level())
	}
	if !strings.Contains(buf.String(), "config reload failed") {
		t.Errorf("broken reload not logged:\n%s", buf.String())
	}
}
