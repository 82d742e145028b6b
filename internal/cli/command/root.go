package command

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/snapbrowse/internal/cli/connection"
	"github.com/yndnr/snapbrowse/internal/cli/output"
	"github.com/yndnr/snapbrowse/internal/infra/buildinfo"
)

// DefaultServer is the address used when neither --server nor
// SNAPBROWSE_SERVER is set.
const DefaultServer = "http://127.0.0.1:8000"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "snapbrowse-cli",
		Usage:   "Browse the latest snapshot of each root on a snapbrowse server",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.BuildTime),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			InfoCommand(),
			RootsCommand(),
			ListCommand(),
			GetCommand(),
		},
		Before: func(c *cli.Context) error {
			_, err := output.ParseFormat(c.String("output"))
			return err
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "snapbrowse server address",
			EnvVars: []string{"SNAPBROWSE_SERVER"},
			Value:   DefaultServer,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   string(output.FormatTable),
		},
		&cli.BoolFlag{
			Name:  "no-headers",
			Usage: "Omit the header row in table output",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Timeout for metadata requests and for the first response byte of downloads",
			Value: connection.DefaultTimeout,
		},
		&cli.StringFlag{
			Name:    "ca-file",
			Usage:   "PEM file with extra CA certificates to trust",
			EnvVars: []string{"SNAPBROWSE_CA_FILE"},
		},
		&cli.BoolFlag{
			Name:  "insecure",
			Usage: "Skip TLS certificate verification",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Server    string
	Output    output.Format
	NoHeaders bool
	Options   connection.Options
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	format, err := output.ParseFormat(c.String("output"))
	if err != nil {
		format = output.FormatTable
	}
	return &GlobalFlags{
		Server:    c.String("server"),
		Output:    format,
		NoHeaders: c.Bool("no-headers"),
		Options: connection.Options{
			Timeout:  c.Duration("timeout"),
			CAFile:   c.String("ca-file"),
			Insecure: c.Bool("insecure"),
		},
	}
}

// NewClient builds the HTTP client from the global flags.
func NewClient(c *cli.Context) (*connection.HTTPClient, error) {
	flags := ParseGlobalFlags(c)
	return connection.NewHTTPClient(flags.Server, flags.Options)
}

// Print writes data to the app's writer in the selected output format.
func Print(c *cli.Context, data any) error {
	flags := ParseGlobalFlags(c)
	return output.NewFormatter(flags.Output, flags.NoHeaders).Format(c.App.Writer, data)
}

// PrintError prints an error message to w, or stderr when w is nil.
func PrintError(w io.Writer, err error) {
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, "error: %v\n", err)
}
