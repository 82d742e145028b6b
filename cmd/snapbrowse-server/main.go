package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/yndnr/snapbrowse/internal/core/service"
	"github.com/yndnr/snapbrowse/internal/infra/buildinfo"
	"github.com/yndnr/snapbrowse/internal/infra/confloader"
	"github.com/yndnr/snapbrowse/internal/infra/shutdown"
	"github.com/yndnr/snapbrowse/internal/infra/tlsroots"
	"github.com/yndnr/snapbrowse/internal/server/config"
	"github.com/yndnr/snapbrowse/internal/server/httpserver"
	"github.com/yndnr/snapbrowse/internal/storage/snapshot"
	"github.com/yndnr/snapbrowse/internal/telemetry/logger"
	"github.com/yndnr/snapbrowse/internal/telemetry/metric"
)

// configPathEnv names the environment variable holding the config file path.
const configPathEnv = "SNAPSHOT_CONFIG_PATH"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("snapbrowse-server", flag.ContinueOnError)
	var (
		configFile  = fs.String("config", os.Getenv(configPathEnv), "Path to configuration file (env "+configPathEnv+")")
		showVersion = fs.Bool("version", false, "Show version information")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintln(stdout, buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, slogLogger, err := initLogger(cfg, stdout)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	log.Info("starting snapbrowse-server",
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"config", *configFile,
		"settings", config.Sanitize(cfg),
	)
	checkRoots(log, cfg)

	metrics := initMetrics(cfg)

	browser := service.NewBrowseService(
		serviceRoots(cfg),
		snapshot.NewResolver(),
		service.WithObserver(metrics),
	)

	router := httpserver.NewRouter(routerConfig(cfg, browser, metrics, slogLogger))

	shutdownHandler := shutdown.NewHandler(cfg.Server.ShutdownTimeout)

	serverCfg := httpserver.Config{
		Addr:              cfg.Server.HTTP.Addr,
		ReadHeaderTimeout: cfg.Server.HTTP.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.HTTP.IdleTimeout,
		Logger:            slogLogger,
	}
	if cfg.Server.HTTP.TLSEnabled() {
		keyPair, err := tlsroots.LoadKeyPair(cfg.Server.HTTP.TLSCertFile, cfg.Server.HTTP.TLSKeyFile,
			tlsroots.WithLogger(slogLogger))
		if err != nil {
			return fmt.Errorf("load TLS key pair: %w", err)
		}
		if err := keyPair.Watch(); err != nil {
			log.Warn("TLS certificate reload disabled", "error", err)
		}
		shutdownHandler.OnShutdown(func(context.Context) error {
			return keyPair.Stop()
		})
		serverCfg.TLSConfig = keyPair.ServerTLSConfig()
	}

	if cfg.Server.WatchConfig {
		stop, err := watchConfig(*configFile, slogLogger, metrics)
		if err != nil {
			log.Warn("config file watch disabled", "file", *configFile, "error", err)
		} else {
			shutdownHandler.OnShutdown(func(context.Context) error {
				return stop()
			})
		}
	}

	httpServer := httpserver.New(serverCfg, router)

	// Registered last so it runs first.
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return httpServer.Shutdown(ctx)
	})

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening",
			"addr", cfg.Server.HTTP.Addr,
			"tls", httpServer.TLSEnabled(),
		)
		if err := httpServer.ListenAndServe(); err != nil {
			log.Error("HTTP server error", "error", err)
			serveErr <- err
			shutdownHandler.Trigger()
		}
	}()

	log.Info("server started, press Ctrl+C to stop")
	shutdownErr := shutdownHandler.Wait()

	select {
	case err := <-serveErr:
		return errors.Join(fmt.Errorf("serve: %w", err), shutdownErr)
	default:
	}
	if shutdownErr != nil {
		log.Error("shutdown error", "error", shutdownErr)
		return shutdownErr
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from file and environment. The file is
// required: it is the only place snapshot roots are defined.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	if configFile == "" {
		return nil, fmt.Errorf("no config file: set %s or --config", configPathEnv)
	}

	cfg := config.Default()
	l := confloader.NewLoader(
		confloader.WithDelimiter(config.KeyDelimiter),
		confloader.WithConfigFile(configFile),
	)
	if err := l.Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// initLogger initializes the structured logger.
// Returns both the logger interface and slog.Logger for components that need it.
func initLogger(cfg *config.ServerConfig, out io.Writer) (logger.Logger, *slog.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: out,
	})
	if err != nil {
		return nil, nil, err
	}

	logger.SetDefault(log)

	return log, logger.Slog(log), nil
}

func initMetrics(cfg *config.ServerConfig) *metric.Registry {
	if !cfg.Metrics.Enabled {
		return nil
	}
	reg := metric.NewRegistry()
	reg.RegisterBuildInfo(buildinfo.Version, buildinfo.Commit)
	reg.MustRegister(metric.NewRootsCollector(cfg.RootPaths()))
	return reg
}

func routerConfig(cfg *config.ServerConfig, browser *service.BrowseService, metrics *metric.Registry, log *slog.Logger) *httpserver.RouterConfig {
	rc := &httpserver.RouterConfig{
		Browser:            browser,
		Metrics:            metrics,
		Logger:             log,
		CORSAllowedOrigins: cfg.Server.HTTP.CORSAllowedOrigins,
		EnableAudit:        cfg.Server.HTTP.EnableAudit,
	}
	if cfg.Metrics.Enabled {
		rc.MetricsPath = cfg.Metrics.Path
	}
	if rl := cfg.Server.HTTP.RateLimit; rl.Enabled {
		rc.RateLimit = &httpserver.RateLimitConfig{
			RequestsPerSecond: rl.RequestsPerSecond,
			Burst:             rl.Burst,
		}
	}
	return rc
}

func serviceRoots(cfg *config.ServerConfig) map[string]service.Root {
	roots := make(map[string]service.Root, len(cfg.SnapshotRoots))
	for name, r := range cfg.SnapshotRoots {
		roots[name] = service.Root{Path: r.Path, Suffix: r.Suffix}
	}
	return roots
}

// checkRoots warns about roots that cannot be served right now. Missing
// directories are not fatal: they may be mounted later.
func checkRoots(log logger.Logger, cfg *config.ServerConfig) {
	if len(cfg.SnapshotRoots) == 0 {
		log.Warn("no snapshot roots configured")
		return
	}
	for _, name := range cfg.RootNames() {
		root := cfg.SnapshotRoots[name]
		info, err := os.Stat(root.Path)
		switch {
		case err != nil:
			log.Warn("snapshot root is not accessible", "root", name, "path", root.Path, "error", err)
		case !info.IsDir():
			log.Warn("snapshot root is not a directory", "root", name, "path", root.Path)
		default:
			log.Debug("snapshot root configured", "root", name, "path", root.Path, "suffix", root.Suffix)
		}
	}
}

// watchConfig warns when the config file changes on disk. The running
// configuration is never reloaded.
func watchConfig(path string, log *slog.Logger, metrics *metric.Registry) (func() error, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		w.Stop()
		return nil, err
	}
	w.OnChange(func(file string) {
		log.Warn("configuration file changed; restart snapbrowse-server to apply it", "file", file)
		metrics.MarkConfigStale()
	})
	w.StartAsync()
	return w.Stop, nil
}
