// Package config provides server configuration for webserve.
//
// This package defines the server configuration structure and validation:
//
//   - spec.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Validation (address, port, serving root, log settings)
//
// Configuration is loaded via internal/infra/confloader from an optional
// YAML file, environment variables and command-line flags. The defaults
// alone reproduce the classic setup: https://0.0.0.0:8443 serving ./web
// with the server.pem bundle.
package config
