// Package handler provides the HTTP request handlers for webserve: the
// static file handler and the health endpoints of the metrics listener.
package handler
