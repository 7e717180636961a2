// Package httpserver provides the HTTPS static file server for webserve.
//
// This package wires the standard library net/http server to a TLS
// listener and the static file handler:
//
//   - server.go: Server lifecycle (Starting -> Serving -> Stopped)
//   - listener.go: TLS listener that completes each handshake on its own
//     goroutine before the connection reaches net/http
//   - middleware.go: Recover, Instrument, AllowMethods
//   - router.go: Static file router and the optional metrics router
//
// A failed handshake, including plaintext HTTP sent to the TLS port,
// closes that connection without writing a response and never affects
// other connections.
package httpserver
