package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/yndnr/snapbrowse/internal/core/domain"
	"github.com/yndnr/snapbrowse/internal/telemetry/logger"
)

// Resolver scans snapshot roots for their latest snapshot.
// A Resolver holds no per-call state and is safe for concurrent use.
type Resolver struct {
	logger logger.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for skipped-entry diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// NewResolver creates a Resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveLatest returns the path of the newest snapshot directory directly
// under rootPath whose name carries suffix. found is false when rootPath is
// readable but holds no matching snapshot.
//
// Errors:
//   - domain.ErrIO if rootPath cannot be listed
//   - domain.ErrTimestampParse if a snapshot-shaped name has a bad timestamp
//   - ctx.Err() if ctx is cancelled mid-scan
func (r *Resolver) ResolveLatest(ctx context.Context, rootPath, suffix string) (string, bool, error) {
	entries, err := os.ReadDir(rootPath)
	if err != nil {
		return "", false, domain.ErrIO.Wrap("list snapshot root "+rootPath, err)
	}

	var (
		latest Candidate
		found  bool
	)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return "", false, err
		}

		// Info does not follow symlinks, so a symlinked snapshot is not a directory here.
		info, err := entry.Info()
		if err != nil {
			r.debug(ctx, "skipping snapshot candidate with unreadable metadata",
				"root", rootPath, "entry", entry.Name(), "error", err)
			continue
		}
		if !info.IsDir() {
			continue
		}

		name := entry.Name()
		if !utf8.ValidString(name) {
			continue
		}

		c, ok, err := ParseCandidate(name, suffix)
		if err != nil {
			return "", false, err
		}
		if !ok {
			continue
		}
		if !found || c.NewerThan(latest) {
			latest = c
			found = true
		}
	}

	if !found {
		return "", false, nil
	}
	return filepath.Join(rootPath, latest.Name), true, nil
}

func (r *Resolver) debug(ctx context.Context, msg string, args ...any) {
	l := r.logger
	if l == nil {
		l = logger.L(ctx)
	}
	l.Debug(msg, args...)
}
