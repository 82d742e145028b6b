// Package command provides CLI command definitions for snapbrowse-cli.
//
// This package defines all CLI commands using urfave/cli/v2:
//
//   - root.go: App, global flags, client construction
//   - browse.go: info, roots, ls and get
//
// Commands parse their flags, call the server through
// connection.HTTPClient and print the result with the formatter chosen
// by --output.
package command
