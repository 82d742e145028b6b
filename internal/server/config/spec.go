package config

import (
	"sort"
	"time"
)

// KeyDelimiter separates nested configuration keys for the loader.
const KeyDelimiter = "/"

// ServerConfig is the root configuration for snapbrowse-server.
type ServerConfig struct {
	Server        ServerSection           `koanf:"server"`
	SnapshotRoots map[string]SnapshotRoot `koanf:"snapshot_roots"`
	Log           LogSection              `koanf:"log"`
	Metrics       MetricsSection          `koanf:"metrics"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP            HTTPConfig    `koanf:"http"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	// WatchConfig logs a warning when the config file changes on disk.
	WatchConfig bool `koanf:"watch_config"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr        string `koanf:"addr"`
	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`

	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"`

	RateLimit          RateLimitConfig `koanf:"rate_limit"`
	CORSAllowedOrigins []string        `koanf:"cors_allowed_origins"`
	EnableAudit        bool            `koanf:"enable_audit"`
}

// TLSEnabled reports whether both TLS files are configured.
func (c HTTPConfig) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// RateLimitConfig configures per-client request rate limiting.
type RateLimitConfig struct {
	Enabled bool `koanf:"enabled"`
	// RequestsPerSecond is the sustained rate allowed per client IP.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	// Burst is the token bucket size.
	Burst int `koanf:"burst"`
}

// SnapshotRoot is one named directory holding timestamped snapshots.
type SnapshotRoot struct {
	// Path is the absolute directory containing the snapshot subdirectories.
	Path string `koanf:"path" json:"path"`
	// Suffix must end every snapshot directory name; empty matches all.
	Suffix string `koanf:"suffix" json:"suffix"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MetricsSection configures the Prometheus endpoint.
type MetricsSection struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// RootNames returns the configured root names in sorted order.
func (c *ServerConfig) RootNames() []string {
	names := make([]string, 0, len(c.SnapshotRoots))
	for name := range c.SnapshotRoots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RootPaths returns a root name to directory map.
func (c *ServerConfig) RootPaths() map[string]string {
	paths := make(map[string]string, len(c.SnapshotRoots))
	for name, root := range c.SnapshotRoots {
		paths[name] = root.Path
	}
	return paths
}
