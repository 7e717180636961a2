package tlscert

import "crypto/tls"

// ServerConfig creates the server-side TLS config for the HTTPS listener.
//
// Only HTTP/1.1 is offered through ALPN.
func ServerConfig(cert *tls.Certificate) *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{*cert},
		MinVersion:   tls.VersionTLS12,
		NextProtos:   []string{"http/1.1"},
	}
}
