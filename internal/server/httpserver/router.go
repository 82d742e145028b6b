package httpserver

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/yndnr/snapbrowse/internal/server/httpserver/handler"
	"github.com/yndnr/snapbrowse/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Browser serves listings and files.
	Browser handler.Browser

	// Metrics records request metrics and serves MetricsPath. May be nil.
	Metrics *metric.Registry

	// MetricsPath is where Prometheus metrics are exposed. Empty disables
	// the endpoint.
	MetricsPath string

	// Logger for request logging.
	Logger *slog.Logger

	// RateLimit enables per-IP rate limiting when non-nil.
	RateLimit *RateLimitConfig

	// CORSAllowedOrigins enables CORS headers when non-empty.
	CORSAllowedOrigins []string

	// EnableAudit enables the per-request access log.
	EnableAudit bool
}

// DefaultRouterConfig returns default router configuration.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		MetricsPath: "/metrics",
		EnableAudit: true,
	}
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	if cfg == nil {
		cfg = DefaultRouterConfig()
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	h := handler.New(cfg.Browser, cfg.Metrics, log)

	// Order: Recover -> RequestID -> RateLimit -> Audit -> CORS -> Handler
	browse := []Middleware{Recover(log), RequestID()}
	if cfg.RateLimit != nil {
		rl := *cfg.RateLimit
		if rl.Metrics == nil {
			rl.Metrics = cfg.Metrics
		}
		browse = append(browse, RateLimit(rl))
	}
	browse = append(browse, Audit(AuditConfig{
		Logger:  log,
		Metrics: cfg.Metrics,
		Route:   routeLabel,
		Log:     cfg.EnableAudit,
	}))
	if len(cfg.CORSAllowedOrigins) > 0 {
		browse = append(browse, CORS(cfg.CORSAllowedOrigins))
	}
	browseHandler := Chain(h, browse...)

	healthHandler := Chain(h, Recover(log), RequestID())

	mux := http.NewServeMux()
	mux.Handle("GET /health", healthHandler)
	mux.Handle("GET /ready", healthHandler)

	if cfg.MetricsPath != "" && cfg.Metrics != nil {
		mux.Handle("GET "+cfg.MetricsPath, Chain(cfg.Metrics.Handler(), Recover(log)))
	}

	mux.Handle("/", browseHandler)

	return mux
}

// routeLabel maps a request path to one of the fixed route names so metric
// label cardinality stays bounded.
func routeLabel(r *http.Request) string {
	p := r.URL.Path
	switch {
	case p == "/info":
		return "/info"
	case p == "/roots":
		return "/roots"
	case strings.HasPrefix(p, "/roots/"):
		rest := strings.TrimPrefix(p, "/roots/")
		if _, after, ok := strings.Cut(rest, "/"); ok && (after == "path" || strings.HasPrefix(after, "path/")) {
			return "/roots/{name}/path"
		}
	}
	return "other"
}
