// Package httpserver provides the HTTP/HTTPS server for SnapBrowse.
//
// It uses the Go standard library net/http and wires the browse handlers
// behind a middleware chain:
//
//	Recover -> RequestID -> RateLimit -> Audit -> CORS -> handler
//
// Health and metrics endpoints skip rate limiting, auditing and CORS.
package httpserver
