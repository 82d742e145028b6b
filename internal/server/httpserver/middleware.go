package httpserver

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/snapbrowse/internal/core/domain"
	"github.com/yndnr/snapbrowse/internal/telemetry/logger"
	"github.com/yndnr/snapbrowse/internal/telemetry/metric"
	"github.com/yndnr/snapbrowse/pkg/cmap"
)

// HeaderRequestID carries the request ID in both directions.
const HeaderRequestID = "X-Request-ID"

// maxRequestIDLen bounds client-supplied request IDs.
const maxRequestIDLen = 64

// Context keys for request-scoped values.
type contextKey string

const (
	// ContextKeyStartTime is the context key for request start time.
	ContextKeyStartTime contextKey = "start_time"
)

// Middleware wraps an http.Handler with additional functionality.
type Middleware func(http.Handler) http.Handler

// Chain chains multiple middlewares together. The first middleware is the
// outermost.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// idSource generates monotonic ULIDs. ulid.Monotonic is not safe for
// concurrent use, hence the mutex.
type idSource struct {
	mu      sync.Mutex
	entropy io.Reader
}

func newIDSource() *idSource {
	return &idSource{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (s *idSource) next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := ulid.New(ulid.Timestamp(time.Now()), s.entropy)
	if err != nil {
		return "req-unknown"
	}
	return "req-" + strings.ToLower(id.String())
}

// RequestID adds a request ID to each request. A well-formed X-Request-ID
// sent by the client is kept; otherwise a ULID-based ID is generated.
func RequestID() Middleware {
	ids := newIDSource()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(HeaderRequestID)
			if !validRequestID(requestID) {
				requestID = ids.next()
			}

			w.Header().Set(HeaderRequestID, requestID)

			ctx := logger.WithRequestID(r.Context(), requestID)
			ctx = context.WithValue(ctx, ContextKeyStartTime, time.Now())

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.', c == ':':
		default:
			return false
		}
	}
	return true
}

// GetRequestIDFromContext retrieves the request ID from context.
func GetRequestIDFromContext(ctx context.Context) string {
	return logger.RequestIDFromContext(ctx)
}

// limiterRegistry hands out one token bucket per client key.
type limiterRegistry struct {
	limiters *cmap.Map[string, *limiterEntry]
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	sweepAt  int
	sweeping atomic.Bool
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanos
}

func newLimiterRegistry(rps float64, burst int) *limiterRegistry {
	return &limiterRegistry{
		limiters: cmap.New[string, *limiterEntry](),
		limit:    rate.Limit(rps),
		burst:    burst,
		idleTTL:  10 * time.Minute,
		sweepAt:  4096,
	}
}

// getOrCreate retrieves the limiter for key, creating it on first use.
// Creating an entry once the registry holds sweepAt keys drops idle ones.
func (r *limiterRegistry) getOrCreate(key string, now time.Time) *rate.Limiter {
	e, created := r.limiters.GetOrCreate(key, func() *limiterEntry {
		return &limiterEntry{limiter: rate.NewLimiter(r.limit, r.burst)}
	})
	e.lastSeen.Store(now.UnixNano())

	if created && r.limiters.Count() > r.sweepAt && r.sweeping.CompareAndSwap(false, true) {
		r.sweep(now)
		r.sweeping.Store(false)
	}
	return e.limiter
}

func (r *limiterRegistry) sweep(now time.Time) int {
	cutoff := now.Add(-r.idleTTL).UnixNano()
	return r.limiters.DeleteFunc(func(_ string, e *limiterEntry) bool {
		return e.lastSeen.Load() < cutoff
	})
}

func (r *limiterRegistry) len() int {
	return r.limiters.Count()
}

// RateLimitConfig configures the RateLimit middleware.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	Metrics           *metric.Registry
}

// RateLimit applies per-client-IP token bucket limiting. Rejected requests
// receive 429 with a Retry-After header.
func RateLimit(cfg RateLimitConfig) Middleware {
	limiters := newLimiterRegistry(cfg.RequestsPerSecond, cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := time.Now()
			lim := limiters.getOrCreate(getClientIP(r), now)

			if !lim.AllowN(now, 1) {
				cfg.Metrics.ObserveRateLimited()
				w.Header().Set("Retry-After", "1")
				writeError(w, r, http.StatusTooManyRequests, domain.ErrRateLimited)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuditConfig configures the Audit middleware.
type AuditConfig struct {
	Logger  *slog.Logger
	Metrics *metric.Registry
	// Route maps a request to a low-cardinality route label for metrics.
	Route func(*http.Request) string
	// Log enables the per-request access log line. Metrics are recorded
	// regardless.
	Log bool
}

// Audit records every request: an access log line with status and duration,
// and request count/latency metrics.
func Audit(cfg AuditConfig) Middleware {
	route := cfg.Route
	if route == nil {
		route = func(r *http.Request) string { return r.URL.Path }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			startTime, ok := r.Context().Value(ContextKeyStartTime).(time.Time)
			if !ok {
				startTime = time.Now()
			}
			duration := time.Since(startTime)

			cfg.Metrics.ObserveRequest(route(r), r.Method, wrapped.statusCode, duration)

			if !cfg.Log || cfg.Logger == nil {
				return
			}

			attrs := []any{
				"request_id", GetRequestIDFromContext(r.Context()),
				"method", r.Method,
				"path", logger.EscapeControl(r.URL.Path),
				"status", wrapped.statusCode,
				"bytes", wrapped.written,
				"duration_ms", duration.Milliseconds(),
				"client_ip", getClientIP(r),
			}

			switch {
			case wrapped.statusCode >= 500:
				cfg.Logger.Error("request completed with error", attrs...)
			case wrapped.statusCode >= 400:
				cfg.Logger.Warn("request completed with client error", attrs...)
			default:
				cfg.Logger.Info("request completed", attrs...)
			}
		})
	}
}

// Recover recovers from panics and returns a 500 error.
func Recover(log *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					log.Error("panic recovered",
						"request_id", GetRequestIDFromContext(r.Context()),
						"error", err,
						"path", logger.EscapeControl(r.URL.Path),
					)
					writeError(w, r, http.StatusInternalServerError, domain.ErrInternal)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// CORS adds Cross-Origin Resource Sharing headers for the allowed origins.
// An empty list allows every origin.
func CORS(allowedOrigins []string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowed := len(allowedOrigins) == 0
			for _, o := range allowedOrigins {
				if o == "*" || o == origin {
					allowed = true
					break
				}
			}

			if allowed && origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Range, X-Request-ID")
				w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Range, X-Request-ID")
				w.Header().Set("Access-Control-Max-Age", "86400")
				w.Header().Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code and size.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	written     int64
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.statusCode = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(p []byte) (int, error) {
	w.wroteHeader = true
	n, err := w.ResponseWriter.Write(p)
	w.written += int64(n)
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes the JSON error envelope used by the middlewares.
func writeError(w http.ResponseWriter, r *http.Request, status int, e *domain.DomainError) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", e.Code)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{
		Code:      e.Code,
		Message:   e.Message,
		RequestID: GetRequestIDFromContext(r.Context()),
	})
}

// getClientIP returns the peer address of the connection. Forwarding
// headers are ignored since clients can set them freely.
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
