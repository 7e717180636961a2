package tlscert

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	// ErrNoCertificate is returned when the PEM data holds no CERTIFICATE block.
	ErrNoCertificate = errors.New("tlscert: no certificate found in PEM data")

	// ErrNoPrivateKey is returned when the PEM data holds no private key block.
	ErrNoPrivateKey = errors.New("tlscert: no private key found in PEM data")
)

// LoadKeyPair loads a certificate chain and its private key.
//
// If keyFile is empty, certFile must be a combined bundle containing both
// the chain and the key, in any order.
func LoadKeyPair(certFile, keyFile string) (*tls.Certificate, error) {
	certPEM, err := os.ReadFile(certFile)
	if err != nil {
		return nil, fmt.Errorf("tlscert: read cert file %s: %w", certFile, err)
	}

	keyPEM := certPEM
	if keyFile != "" {
		keyPEM, err = os.ReadFile(keyFile)
		if err != nil {
			return nil, fmt.Errorf("tlscert: read key file %s: %w", keyFile, err)
		}
	}

	cert, err := ParseKeyPair(certPEM, keyPEM)
	if err != nil {
		if keyFile == "" {
			return nil, fmt.Errorf("%s: %w", certFile, err)
		}
		return nil, fmt.Errorf("%s, %s: %w", certFile, keyFile, err)
	}
	return cert, nil
}

// ParseKeyPair parses a PEM certificate chain and private key.
// certPEM and keyPEM may be the same combined bundle.
func ParseKeyPair(certPEM, keyPEM []byte) (*tls.Certificate, error) {
	if !hasBlock(certPEM, func(t string) bool { return t == "CERTIFICATE" }) {
		return nil, ErrNoCertificate
	}
	if !hasBlock(keyPEM, func(t string) bool {
		return t == "PRIVATE KEY" || strings.HasSuffix(t, " PRIVATE KEY")
	}) {
		return nil, ErrNoPrivateKey
	}

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, fmt.Errorf("tlscert: load key pair: %w", err)
	}

	if cert.Leaf == nil {
		leaf, err := x509.ParseCertificate(cert.Certificate[0])
		if err != nil {
			return nil, fmt.Errorf("tlscert: parse leaf: %w", err)
		}
		cert.Leaf = leaf
	}

	return &cert, nil
}

func hasBlock(data []byte, match func(blockType string) bool) bool {
	rest := bytes.TrimSpace(data)
	for len(rest) > 0 {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			return false
		}
		if match(block.Type) {
			return true
		}
	}
	return false
}
