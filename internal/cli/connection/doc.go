// Package connection provides the HTTP client snapbrowse-cli uses to talk
// to a snapbrowse server.
//
// Every request is a GET. Failed requests are decoded from the server's
// error envelope into an *APIError so callers can show the code and
// request ID.
package connection
