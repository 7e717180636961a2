// Package confloader provides the configuration loading mechanism.
//
// It uses koanf as the underlying library and merges sources in order
// (later sources override earlier ones):
//
//  1. Defaults (whatever the target struct already holds)
//  2. Configuration file (YAML, optional)
//  3. Environment variables (WEBSERVE_<SECTION>_<KEY>)
//  4. Overrides (explicitly set command-line flags)
//
// Environment keys map the first underscore after the prefix to a section
// separator, so WEBSERVE_SERVER_CERT_FILE becomes server.cert_file.
//
// The Watcher notifies callbacks when the configuration file changes.
package confloader
