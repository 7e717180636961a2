// Package main provides the entry point for webserve.
//
// webserve serves a directory over HTTPS so that files on one machine can
// be opened from a browser on another device in the same network.
//
// Usage:
//
//	webserve [flags]
//	webserve --root ./site --cert server.pem --port 8443
//	webserve gencert --out server.pem
//
// Without flags it serves ./web on 0.0.0.0:8443 using the certificate and
// private key bundled in ./server.pem.
package main
