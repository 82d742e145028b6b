package command

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/snapbrowse/internal/cli/connection"
	"github.com/yndnr/snapbrowse/internal/cli/output"
	"github.com/yndnr/snapbrowse/internal/core/domain"
)

// InfoCommand returns the info command.
func InfoCommand() *cli.Command {
	return &cli.Command{
		Name:  "info",
		Usage: "Show server name and version",
		Action: func(c *cli.Context) error {
			client, err := NewClient(c)
			if err != nil {
				return err
			}
			info, err := client.Info(c.Context)
			if err != nil {
				return err
			}
			return Print(c, infoView(*info))
		},
	}
}

type infoView connection.ServerInfo

func (v infoView) Table() *output.Table {
	t := output.NewTable("NAME", "VERSION")
	t.AddRow(v.Name, v.Version)
	return t
}

// RootsCommand returns the roots command.
func RootsCommand() *cli.Command {
	return &cli.Command{
		Name:  "roots",
		Usage: "List configured snapshot roots",
		Action: func(c *cli.Context) error {
			client, err := NewClient(c)
			if err != nil {
				return err
			}
			roots, err := client.Roots(c.Context)
			if err != nil {
				return err
			}
			return Print(c, rootList(roots))
		},
	}
}

type rootList []string

func (r rootList) Table() *output.Table {
	t := output.NewTable("ROOT")
	for _, name := range r {
		t.AddRow(name)
	}
	return t
}

// ListCommand returns the ls command.
func ListCommand() *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Usage:     "List a directory in the latest snapshot of a root",
		ArgsUsage: "<root> [path]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "hidden",
				Aliases: []string{"a"},
				Usage:   "Include dot-entries",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 || c.NArg() > 2 {
				return errors.New("usage: ls <root> [path]")
			}
			client, err := NewClient(c)
			if err != nil {
				return err
			}

			entries, err := client.List(c.Context, c.Args().Get(0), c.Args().Get(1), c.Bool("hidden"))
			if err != nil {
				return err
			}
			return Print(c, newEntryRows(entries))
		},
	}
}

// EntryRow is the printed form of a listing entry.
type EntryRow struct {
	Name string  `json:"name" yaml:"name"`
	Type string  `json:"type" yaml:"type"`
	Size *uint64 `json:"size,omitempty" yaml:"size,omitempty"`
}

// EntryRows is a printable directory listing.
type EntryRows []EntryRow

func newEntryRows(entries []domain.Entry) EntryRows {
	rows := make(EntryRows, 0, len(entries))
	for _, e := range entries {
		row := EntryRow{Name: e.Name, Type: "dir"}
		if !e.IsDir() {
			size := e.Details.Size
			row.Type = "file"
			row.Size = &size
		}
		rows = append(rows, row)
	}
	return rows
}

// Table implements output.Tabular.
func (r EntryRows) Table() *output.Table {
	t := output.NewTable("NAME", "TYPE", "SIZE")
	for _, row := range r {
		size := ""
		if row.Size != nil {
			size = strconv.FormatUint(*row.Size, 10)
		}
		t.AddRow(row.Name, row.Type, size)
	}
	return t
}

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Download a file from the latest snapshot of a root",
		ArgsUsage: "<root> <path>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out-file",
				Aliases: []string{"f"},
				Usage:   "Write to `FILE` instead of stdout",
			},
			&cli.BoolFlag{
				Name:    "hidden",
				Aliases: []string{"a"},
				Usage:   "Allow a dot-file as the target",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Do not show download progress",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return errors.New("usage: get <root> <path>")
			}
			client, err := NewClient(c)
			if err != nil {
				return err
			}

			root, path := c.Args().Get(0), c.Args().Get(1)
			body, size, err := client.Open(c.Context, root, path, c.Bool("hidden"))
			if errors.Is(err, connection.ErrIsDirectory) {
				return fmt.Errorf("%s: %w, use ls", path, err)
			}
			if err != nil {
				return err
			}
			defer body.Close()

			dest := c.String("out-file")
			if dest == "" || dest == "-" {
				_, err := io.Copy(c.App.Writer, body)
				return err
			}
			return download(c, body, size, dest)
		},
	}
}

// download writes body to dest through a temporary file in the same
// directory, so an interrupted download never leaves a partial dest.
func download(c *cli.Context, body io.Reader, size int64, dest string) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".part-*")
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("create output file: %w", err)
	}

	var w io.Writer = tmp
	var progress *output.ProgressWriter
	if !c.Bool("quiet") {
		progress = output.NewProgressWriter(c.App.ErrWriter, filepath.Base(dest), size)
		w = io.MultiWriter(tmp, progress)
	}

	if _, err := io.Copy(w, body); err != nil {
		tmp.Close()
		return fmt.Errorf("download: %w", err)
	}
	if progress != nil {
		progress.Finish()
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	return os.Rename(tmp.Name(), dest)
}
