// Package main provides the entry point for snapbrowse-server.
//
// snapbrowse-server exposes a read-only HTTP view over collections of
// time-stamped snapshot directories, always serving from the newest snapshot
// of each configured root.
//
// Usage:
//
//	snapbrowse-server --config /etc/snapbrowse/config.json
//
// The configuration path may also be given through SNAPSHOT_CONFIG_PATH.
// Any setting can be overridden with SNAPBROWSE_* environment variables,
// e.g. SNAPBROWSE_LOG_LEVEL=debug.
package main
