// Package tlscert provides TLS server certificate handling for webserve.
//
// This package covers the credential side of the HTTPS listener:
//
//   - keypair.go: Load a certificate chain and private key, either from one
//     combined PEM bundle or from separate files
//   - config.go: Server tls.Config construction
//   - generate.go: Self-signed bundle generation for local-network use
//
// Certificates are loaded once at startup and never reloaded.
package tlscert
