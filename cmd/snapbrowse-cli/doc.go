// Package main provides the entry point for snapbrowse-cli.
//
// The CLI reads from a snapbrowse server:
//
//   - info: server name and version
//   - roots: configured snapshot roots
//   - ls: a directory listing in the latest snapshot of a root
//   - get: a file from the latest snapshot of a root
//
// Usage:
//
//	snapbrowse-cli [global flags] <command> [flags] [args]
//	snapbrowse-cli -s http://backup01:8000 ls home projects
//	snapbrowse-cli get -f app.log backups logs/app.log
//
// The server address defaults to SNAPBROWSE_SERVER.
package main
