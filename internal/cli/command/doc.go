// Package command provides the CLI command definitions for webserve.
//
// It uses urfave/cli/v2 for command parsing. Running webserve without a
// subcommand is the same as "webserve serve".
//
// Commands:
//
//	serve     Serve the root directory over HTTPS (default)
//	gencert   Write a self-signed certificate bundle
//	config    Verify and print the effective configuration
//	version   Print build information
package command
