package handler

import (
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/yndnr/snapbrowse/internal/core/domain"
	"github.com/yndnr/snapbrowse/internal/infra/buildinfo"
)

// handleInfo handles GET /info.
func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, InfoResponse{
		Name:    buildinfo.Name,
		Version: buildinfo.Version,
	})
}

// handleRoots handles GET /roots.
func (h *Handler) handleRoots(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, h.browser.RootNames())
}

// handlePath handles GET /roots/{name}/path/{path...}.
func (h *Handler) handlePath(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rootName := r.PathValue("name")

	showHidden := parseFlag(r, "hidden")

	segments := strings.Split(r.PathValue("path"), "/")
	res, err := h.browser.Serve(ctx, rootName, segments, showHidden)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	defer res.Close()

	switch res.Kind {
	case domain.ResourceDirectory:
		h.writeJSON(w, r, http.StatusOK, res.Listing)
	case domain.ResourceFile:
		cw := &countingWriter{ResponseWriter: w}
		var modTime time.Time
		if res.Info != nil {
			modTime = res.Info.ModTime()
		}
		http.ServeContent(cw, r, path.Base("/"+r.PathValue("path")), modTime, res.File)
		h.metrics.AddBytesServed(rootName, cw.n)
	}
}

// parseFlag reads an optional boolean query parameter. A bare "?name" means
// true; a value that is not a recognized boolean means false.
func parseFlag(r *http.Request, name string) bool {
	q := r.URL.Query()
	if !q.Has(name) {
		return false
	}
	switch strings.ToLower(q.Get(name)) {
	case "", "true", "on", "yes", "1":
		return true
	default:
		return false
	}
}

// countingWriter counts body bytes written through it.
type countingWriter struct {
	http.ResponseWriter
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.ResponseWriter.Write(p)
	c.n += int64(n)
	return n, err
}
