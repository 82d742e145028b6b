package config

import (
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"strings"

	"github.com/yndnr/snapbrowse/internal/telemetry/logger"
)

// Verify validates the configuration and reports every problem found.
//
// Root directories are not required to exist: a missing directory surfaces
// per request as an I/O error, the same as one that disappears later.
func Verify(cfg *ServerConfig) error {
	var errs []error
	errs = append(errs, verifyServer(&cfg.Server)...)
	errs = append(errs, verifyRoots(cfg.SnapshotRoots)...)
	errs = append(errs, verifyLog(&cfg.Log)...)
	if cfg.Metrics.Enabled {
		switch {
		case !strings.HasPrefix(cfg.Metrics.Path, "/"):
			errs = append(errs, fmt.Errorf("metrics.path %q must start with /", cfg.Metrics.Path))
		case isReservedPath(cfg.Metrics.Path):
			errs = append(errs, fmt.Errorf("metrics.path %q collides with a built-in route", cfg.Metrics.Path))
		}
	}
	return errors.Join(errs...)
}

func verifyServer(cfg *ServerSection) []error {
	var errs []error

	if cfg.HTTP.Addr == "" {
		errs = append(errs, errors.New("server.http.addr is required"))
	} else if _, _, err := net.SplitHostPort(cfg.HTTP.Addr); err != nil {
		errs = append(errs, fmt.Errorf("server.http.addr %q: %w", cfg.HTTP.Addr, err))
	}

	if (cfg.HTTP.TLSCertFile == "") != (cfg.HTTP.TLSKeyFile == "") {
		errs = append(errs, errors.New("server.http.tls_cert_file and tls_key_file must be set together"))
	}

	if rl := cfg.HTTP.RateLimit; rl.Enabled {
		if rl.RequestsPerSecond <= 0 {
			errs = append(errs, errors.New("server.http.rate_limit.requests_per_second must be positive"))
		}
		if rl.Burst < 1 {
			errs = append(errs, errors.New("server.http.rate_limit.burst must be at least 1"))
		}
	}

	if cfg.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}
	return errs
}

func verifyRoots(roots map[string]SnapshotRoot) []error {
	var errs []error
	for name, root := range roots {
		if err := VerifyRootName(name); err != nil {
			errs = append(errs, err)
		}
		switch {
		case root.Path == "":
			errs = append(errs, fmt.Errorf("snapshot_roots %q: path is required", name))
		case !filepath.IsAbs(root.Path):
			errs = append(errs, fmt.Errorf("snapshot_roots %q: path %q must be absolute", name, root.Path))
		}
	}
	return errs
}

// VerifyRootName checks that name can be addressed as a single URL path segment.
func VerifyRootName(name string) error {
	switch {
	case name == "":
		return errors.New("snapshot_roots: root name must not be empty")
	case name == "." || name == "..":
		return fmt.Errorf("snapshot_roots: root name %q is reserved", name)
	case strings.ContainsAny(name, "/\\\x00?#"):
		return fmt.Errorf("snapshot_roots: root name %q must not contain '/', '\\', '?', '#' or NUL", name)
	}
	return nil
}

func verifyLog(cfg *LogSection) []error {
	var errs []error
	if _, err := logger.ParseLevel(cfg.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if _, err := logger.ParseFormat(cfg.Format); err != nil {
		errs = append(errs, fmt.Errorf("log.format: %w", err))
	}
	return errs
}

func isReservedPath(p string) bool {
	switch p {
	case "/", "/health", "/ready", "/info", "/roots":
		return true
	}
	return strings.HasPrefix(p, "/roots/")
}
