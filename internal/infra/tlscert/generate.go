package tlscert

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"
)

// DefaultHosts are used when no hosts are given to GenerateSelfSigned.
var DefaultHosts = []string{"localhost", "127.0.0.1"}

// DefaultValidity is the lifetime of a generated certificate.
const DefaultValidity = 365 * 24 * time.Hour

// GenerateOptions configures self-signed certificate generation.
type GenerateOptions struct {
	// Hosts are DNS names and IP addresses the certificate is valid for.
	// The first one is used as the subject common name.
	Hosts []string

	// Validity is the certificate lifetime. Zero means DefaultValidity.
	Validity time.Duration

	// Organization is the subject organization.
	Organization string
}

// Bundle is a PEM-encoded certificate and private key.
type Bundle struct {
	CertPEM []byte
	KeyPEM  []byte
}

// Bytes returns the combined bundle: certificate first, then key.
func (b *Bundle) Bytes() []byte {
	out := make([]byte, 0, len(b.CertPEM)+len(b.KeyPEM))
	out = append(out, b.CertPEM...)
	return append(out, b.KeyPEM...)
}

// GenerateSelfSigned creates a self-signed ECDSA P-256 server certificate.
func GenerateSelfSigned(opts GenerateOptions) (*Bundle, error) {
	hosts := opts.Hosts
	if len(hosts) == 0 {
		hosts = DefaultHosts
	}
	validity := opts.Validity
	if validity <= 0 {
		validity = DefaultValidity
	}
	org := opts.Organization
	if org == "" {
		org = "webserve self-signed"
	}

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("tlscert: generate key: %w", err)
	}

	// Serial numbers must be unique per issuer; 128 random bits is plenty.
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("tlscert: generate serial: %w", err)
	}

	notBefore := time.Now().Add(-5 * time.Minute).UTC()
	template := x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			Organization: []string{org},
			CommonName:   hosts[0],
		},
		NotBefore:             notBefore,
		NotAfter:              notBefore.Add(validity),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}

	for _, h := range hosts {
		if ip := net.ParseIP(h); ip != nil {
			template.IPAddresses = append(template.IPAddresses, ip)
		} else {
			template.DNSNames = append(template.DNSNames, h)
		}
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	if err != nil {
		return nil, fmt.Errorf("tlscert: create certificate: %w", err)
	}

	keyDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("tlscert: marshal key: %w", err)
	}

	return &Bundle{
		CertPEM: pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}),
		KeyPEM:  pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER}),
	}, nil
}

// ErrBundleExists is returned by WriteBundle when the target exists and
// overwrite was not requested.
var ErrBundleExists = errors.New("tlscert: bundle file already exists")

// WriteBundle writes the combined bundle to path with mode 0600.
func WriteBundle(path string, b *Bundle, overwrite bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("tlscert: create dir %s: %w", dir, err)
		}
	}

	f, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrBundleExists, path)
		}
		return fmt.Errorf("tlscert: open %s: %w", path, err)
	}

	if _, err := f.Write(b.Bytes()); err != nil {
		f.Close()
		return fmt.Errorf("tlscert: write %s: %w", path, err)
	}
	return f.Close()
}
