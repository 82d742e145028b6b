package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr          = "127.0.0.1:8000"
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultIdleTimeout       = 120 * time.Second
	DefaultShutdownTimeout   = 15 * time.Second

	DefaultRateLimitRPS   = 50
	DefaultRateLimitBurst = 100

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsPath = "/metrics"
)

// Default returns the default server configuration. It has no snapshot roots.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:              DefaultHTTPAddr,
				ReadHeaderTimeout: DefaultReadHeaderTimeout,
				IdleTimeout:       DefaultIdleTimeout,
				RateLimit: RateLimitConfig{
					Enabled:           false,
					RequestsPerSecond: DefaultRateLimitRPS,
					Burst:             DefaultRateLimitBurst,
				},
				EnableAudit: true,
			},
			ShutdownTimeout: DefaultShutdownTimeout,
			WatchConfig:     true,
		},
		SnapshotRoots: map[string]SnapshotRoot{},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Metrics: MetricsSection{
			Enabled: true,
			Path:    DefaultMetricsPath,
		},
	}
}
