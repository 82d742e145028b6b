// Package handler provides the HTTP request handlers for SnapBrowse.
//
// Endpoints:
//
//   - GET /info: service name and version
//   - GET /roots: configured snapshot root names
//   - GET /roots/{name}/path/{path...}?hidden=<bool>: a directory listing as
//     JSON, or the raw bytes of a file, from the latest snapshot of a root
//   - GET /health, GET /ready: liveness and readiness
//
// Browse failures are logged in full and answered with an opaque 500.
package handler
