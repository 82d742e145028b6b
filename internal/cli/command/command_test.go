package command

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/snapbrowse/internal/core/service"
	"github.com/yndnr/snapbrowse/internal/server/httpserver"
	"github.com/yndnr/snapbrowse/internal/storage/snapshot"
)

// newServer starts a snapbrowse router over a root "backups" whose latest
// snapshot holds logs/app.log and .env.
func newServer(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	snap := filepath.Join(root, "2024-02-01T00:00:00Z_full")
	if err := os.MkdirAll(filepath.Join(snap, "logs"), 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"logs/app.log": "hello world\n",
		".env":         "SECRET=1\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(snap, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Browser: service.NewBrowseService(
			map[string]service.Root{"backups": {Path: root, Suffix: "full"}},
			snapshot.NewResolver(),
		),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv.URL
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := App()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	err := app.Run(append([]string{"snapbrowse-cli"}, args...))
	return stdout.String(), stderr.String(), err
}

func TestInfo(t *testing.T) {
	url := newServer(t)

	stdout, _, err := run(t, "-s", url, "-o", "json", "info")
	if err != nil {
		t.Fatalf("info error = %v", err)
	}
	var info map[string]string
	if err := json.Unmarshal([]byte(stdout), &info); err != nil {
		t.Fatalf("output is not JSON: %q", stdout)
	}
	if info["name"] != "snapbrowse" || info["version"] == "" {
		t.Errorf("info = %v", info)
	}
}

func TestRoots(t *testing.T) {
	url := newServer(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"table", []string{"roots"}, "ROOT\nbackups\n"},
		{"no headers", []string{"--no-headers", "roots"}, "backups\n"},
		{"yaml", []string{"-o", "yaml", "roots"}, "- backups\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := run(t, append([]string{"-s", url}, tt.args...)...)
			if err != nil {
				t.Fatalf("roots error = %v", err)
			}
			if stdout != tt.want {
				t.Errorf("stdout = %q, want %q", stdout, tt.want)
			}
		})
	}
}

func TestList(t *testing.T) {
	url := newServer(t)

	stdout, _, err := run(t, "-s", url, "ls", "backups", "logs")
	if err != nil {
		t.Fatalf("ls error = %v", err)
	}
	if want := "NAME     TYPE  SIZE\napp.log  file  12\n"; stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
}

func TestList_Hidden(t *testing.T) {
	url := newServer(t)

	stdout, _, err := run(t, "-s", url, "-o", "json", "ls", "--hidden", "backups")
	if err != nil {
		t.Fatalf("ls error = %v", err)
	}
	var rows []EntryRow
	if err := json.Unmarshal([]byte(stdout), &rows); err != nil {
		t.Fatalf("output is not JSON: %q", stdout)
	}

	got := map[string]EntryRow{}
	for _, r := range rows {
		got[r.Name] = r
	}
	if len(got) != 2 {
		t.Fatalf("rows = %+v", rows)
	}
	if r := got["logs"]; r.Type != "dir" || r.Size != nil {
		t.Errorf("logs = %+v", r)
	}
	if r := got[".env"]; r.Type != "file" || r.Size == nil || *r.Size != 9 {
		t.Errorf(".env = %+v", r)
	}
}

func TestList_Errors(t *testing.T) {
	url := newServer(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown root", []string{"ls", "nope"}, "SB-SYS-5000"},
		{"hidden without flag", []string{"ls", "backups", ".env"}, "SB-SYS-5000"},
		{"missing root arg", []string{"ls"}, "usage"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, append([]string{"-s", url}, tt.args...)...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestGet_Stdout(t *testing.T) {
	url := newServer(t)

	stdout, stderr, err := run(t, "-s", url, "get", "backups", "logs/app.log")
	if err != nil {
		t.Fatalf("get error = %v", err)
	}
	if stdout != "hello world\n" {
		t.Errorf("stdout = %q", stdout)
	}
	if stderr != "" {
		t.Errorf("stderr = %q, want empty", stderr)
	}
}

func TestGet_File(t *testing.T) {
	url := newServer(t)
	dest := filepath.Join(t.TempDir(), "out.log")

	_, stderr, err := run(t, "-s", url, "get", "-f", dest, "backups", "logs/app.log")
	if err != nil {
		t.Fatalf("get error = %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello world\n" {
		t.Errorf("file = %q", data)
	}
	if !strings.Contains(stderr, "100%") {
		t.Errorf("stderr = %q, want progress", stderr)
	}

	entries, _ := os.ReadDir(filepath.Dir(dest))
	if len(entries) != 1 {
		t.Errorf("leftover files: %v", entries)
	}
}

func TestGet_QuietHidden(t *testing.T) {
	url := newServer(t)
	dest := filepath.Join(t.TempDir(), "env")

	_, stderr, err := run(t, "-s", url, "get", "-q", "--hidden", "-f", dest, "backups", ".env")
	if err != nil {
		t.Fatalf("get error = %v", err)
	}
	if stderr != "" {
		t.Errorf("stderr = %q, want empty", stderr)
	}
	if data, _ := os.ReadFile(dest); string(data) != "SECRET=1\n" {
		t.Errorf("file = %q", data)
	}
}

func TestGet_Directory(t *testing.T) {
	url := newServer(t)
	dest := filepath.Join(t.TempDir(), "out")

	_, _, err := run(t, "-s", url, "get", "-f", dest, "backups", "logs")
	if err == nil || !strings.Contains(err.Error(), "directory") {
		t.Errorf("error = %v, want directory error", err)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Error("no output file should be created for a directory")
	}
}

func TestBadOutputFormat(t *testing.T) {
	_, _, err := run(t, "-o", "xml", "roots")
	if err == nil || !strings.Contains(err.Error(), "unknown output format") {
		t.Errorf("error = %v", err)
	}
}

func TestParseGlobalFlags_Defaults(t *testing.T) {
	t.Setenv("SNAPBROWSE_SERVER", "")
	os.Unsetenv("SNAPBROWSE_SERVER")
	var got *GlobalFlags
	app := App()
	app.Writer = io.Discard
	app.Commands = nil
	app.Action = func(c *cli.Context) error {
		got = ParseGlobalFlags(c)
		return nil
	}
	if err := app.Run([]string{"snapbrowse-cli"}); err != nil {
		t.Fatal(err)
	}
	if got.Server != DefaultServer || got.Output != "table" || got.Options.Timeout != 30e9 {
		t.Errorf("flags = %+v", got)
	}
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	PrintError(&buf, io.ErrUnexpectedEOF)
	if buf.String() != "error: unexpected EOF\n" {
		t.Errorf("PrintError() = %q", buf.String())
	}
}
