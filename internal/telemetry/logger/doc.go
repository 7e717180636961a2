// Package logger provides structured logging for webserve.
//
// It wraps the standard library log/slog:
//
//   - JSON (default) or text output
//   - Log level filtering, adjustable at runtime
//   - A process-wide default that also becomes slog's default, so
//     components taking a *slog.Logger share the same handler
//
// Logs describe the server lifecycle only; requests are never logged.
package logger
