package command

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/webserve/internal/infra/tlscert"
	"github.com/yndnr/webserve/internal/server/config"
)

// runApp runs the CLI with args and captures its output.
func runApp(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer
	app := App()
	app.Writer = &out
	app.ErrWriter = &errOut
	app.ExitErrHandler = func(*cli.Context, error) {}

	err = app.Run(append([]string{"webserve"}, args...))
	return out.String(), errOut.String(), err
}

// testSite holds a serving root and a certificate bundle in a temp dir.
type testSite struct {
	dir      string
	root     string
	certFile string
	pool     *x509.CertPool
}

func newTestSite(t *testing.T, files map[string]string) *testSite {
	t.Helper()

	dir := t.TempDir()
	site := &testSite{
		dir:      dir,
		root:     filepath.Join(dir, "web"),
		certFile: filepath.Join(dir, "server.pem"),
	}

	if err := os.MkdirAll(site.root, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(site.root, name), []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	bundle, err := tlscert.GenerateSelfSigned(tlscert.GenerateOptions{Hosts: []string{"127.0.0.1"}})
	if err != nil {
		t.Fatalf("GenerateSelfSigned: %v", err)
	}
	if err := tlscert.WriteBundle(site.certFile, bundle, false); err != nil {
		t.Fatalf("WriteBundle: %v", err)
	}

	site.pool = x509.NewCertPool()
	site.pool.AppendCertsFromPEM(bundle.CertPEM)
	return site
}

// config returns a configuration serving the site on a random local port.
func (s *testSite) config() *config.ServerConfig {
	cfg := config.Default()
	cfg.Server.Addr = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Server.Root = s.root
	cfg.Server.CertFile = s.certFile
	cfg.Server.ShutdownTimeout = 5 * time.Second
	return cfg
}

func (s *testSite) client() *http.Client {
	return &http.Client{
		Timeout: 5 * time.Second,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{RootCAs: s.pool},
		},
	}
}

// freePort returns a port that was free a moment ago.
func freePort(t *testing.T) int {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func portFree(port int) bool {
	ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	if err != nil {
		return false
	}
	ln.Close()
	return true
}
