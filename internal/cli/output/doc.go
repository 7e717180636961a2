// Package output provides output formatting for the webserve CLI.
//
//   - formatter.go: Formatter interface and factory
//   - text.go: aligned "label: value" lines for humans
//   - json.go: JSON output formatting
//   - yaml.go: YAML output formatting
package output
