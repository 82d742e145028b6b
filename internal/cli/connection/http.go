package connection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yndnr/snapbrowse/internal/core/domain"
	"github.com/yndnr/snapbrowse/internal/infra/buildinfo"
	"github.com/yndnr/snapbrowse/internal/infra/tlsroots"
)

// DefaultTimeout bounds metadata calls and the wait for response headers.
const DefaultTimeout = 30 * time.Second

// Options configures an HTTPClient.
type Options struct {
	// Timeout bounds metadata calls and the wait for response headers.
	// File bodies are not bounded by it.
	Timeout time.Duration

	// CAFile adds a PEM bundle to the system roots.
	CAFile string

	// Insecure disables server certificate verification.
	Insecure bool

	UserAgent string
}

// HTTPClient provides HTTP communication with the server.
type HTTPClient struct {
	baseURL   string
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// NewHTTPClient creates a new HTTP client. A server without a scheme is
// treated as plain http.
func NewHTTPClient(server string, opts Options) (*HTTPClient, error) {
	baseURL := strings.TrimRight(server, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid server address %q: %w", server, err)
	}

	pool := tlsroots.NewPool()
	if opts.CAFile != "" {
		if err := pool.AddCertFile(opts.CAFile); err != nil {
			return nil, fmt.Errorf("load CA file: %w", err)
		}
	}

	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "snapbrowse-cli/" + buildinfo.Version
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = pool.ClientTLSConfig(opts.Insecure)
	transport.ResponseHeaderTimeout = opts.Timeout

	return &HTTPClient{
		baseURL:   baseURL,
		client:    &http.Client{Transport: transport},
		timeout:   opts.Timeout,
		userAgent: opts.UserAgent,
	}, nil
}

// BaseURL returns the base URL of the client.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// Get performs a GET request. The caller owns the response body.
func (c *HTTPClient) Get(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, */*")

	return c.client.Do(req)
}

// GetJSON performs a GET request bounded by the client timeout and decodes
// the JSON response into target.
func (c *HTTPClient) GetJSON(ctx context.Context, path string, query url.Values, target any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.Get(ctx, path, query)
	if err != nil {
		return err
	}
	return ParseResponse(resp, target)
}

// ServerInfo is the body of GET /info.
type ServerInfo struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
}

// Info fetches the server name and version.
func (c *HTTPClient) Info(ctx context.Context) (*ServerInfo, error) {
	var info ServerInfo
	if err := c.GetJSON(ctx, "/info", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Roots fetches the configured root names.
func (c *HTTPClient) Roots(ctx context.Context) ([]string, error) {
	var roots []string
	if err := c.GetJSON(ctx, "/roots", nil, &roots); err != nil {
		return nil, err
	}
	return roots, nil
}

// List fetches the listing of a directory inside the latest snapshot of root.
func (c *HTTPClient) List(ctx context.Context, root, path string, hidden bool) ([]domain.Entry, error) {
	var entries []domain.Entry
	if err := c.GetJSON(ctx, PathURL(root, path), hiddenQuery(hidden), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ErrIsDirectory is returned by Open when the path names a directory.
var ErrIsDirectory = errors.New("path is a directory")

// Open starts downloading a file. It returns the body and its length, or
// -1 when the server did not send one. The caller must close the body.
func (c *HTTPClient) Open(ctx context.Context, root, path string, hidden bool) (io.ReadCloser, int64, error) {
	resp, err := c.Get(ctx, PathURL(root, path), hiddenQuery(hidden))
	if err != nil {
		return nil, 0, err
	}
	if resp.StatusCode >= 400 {
		return nil, 0, ParseResponse(resp, nil)
	}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") && isListing(resp) {
		resp.Body.Close()
		return nil, 0, ErrIsDirectory
	}

	return resp.Body, resp.ContentLength, nil
}

// isListing reports whether the server answered with a directory listing
// rather than the file itself. Listings carry no Last-Modified header.
func isListing(resp *http.Response) bool {
	return resp.Header.Get("Last-Modified") == ""
}

// PathURL builds the request path for a file or directory inside a root.
// Each segment is escaped on its own so names may contain any character.
func PathURL(root, path string) string {
	var b strings.Builder
	b.WriteString("/roots/")
	b.WriteString(url.PathEscape(root))
	b.WriteString("/path/")

	first := true
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		if !first {
			b.WriteByte('/')
		}
		b.WriteString(url.PathEscape(seg))
		first = false
	}
	return b.String()
}

func hiddenQuery(hidden bool) url.Values {
	if !hidden {
		return nil
	}
	return url.Values{"hidden": {"true"}}
}

// APIError is a failed request decoded from the server's error envelope.
type APIError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	var b strings.Builder
	if e.Code != "" {
		fmt.Fprintf(&b, "[%s] ", e.Code)
	}
	if e.Message != "" {
		b.WriteString(e.Message)
	} else {
		fmt.Fprintf(&b, "request failed with status %d", e.Status)
	}
	if e.RequestID != "" {
		fmt.Fprintf(&b, " (request_id: %s)", e.RequestID)
	}
	return b.String()
}

// ParseResponse parses a JSON response body into the target struct and
// closes the body.
func ParseResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		var errResp struct {
			Code      string `json:"code"`
			Message   string `json:"message"`
			RequestID string `json:"request_id"`
		}
		if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&errResp); err == nil {
			apiErr.Code = errResp.Code
			apiErr.Message = errResp.Message
			apiErr.RequestID = errResp.RequestID
		}
		if apiErr.RequestID == "" {
			apiErr.RequestID = resp.Header.Get("X-Request-ID")
		}
		return apiErr
	}

	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}

	return nil
}
