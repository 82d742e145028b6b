package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/yndnr/snapbrowse/internal/core/domain"
	"github.com/yndnr/snapbrowse/internal/telemetry/logger"
)

// readDirBatch is how many directory entries are read per syscall batch.
const readDirBatch = 256

// SnapshotResolver finds the latest snapshot directory under a root.
type SnapshotResolver interface {
	ResolveLatest(ctx context.Context, rootPath, suffix string) (string, bool, error)
}

// Observer receives browse outcomes, typically for metrics.
type Observer interface {
	ObserveResolution(root, outcome string)
	ObserveListing(entries int)
	ObserveError(kind string)
}

// Resolution outcomes passed to Observer.ObserveResolution.
const (
	OutcomeFound = "found"
	OutcomeNone  = "none"
	OutcomeError = "error"
)

type noopObserver struct{}

func (noopObserver) ObserveResolution(string, string) {}
func (noopObserver) ObserveListing(int)               {}
func (noopObserver) ObserveError(string)              {}

// Root is a configured snapshot root.
type Root struct {
	Path   string
	Suffix string
}

// BrowseService serves paths from the latest snapshot of configured roots.
type BrowseService struct {
	roots    map[string]Root
	names    []string
	resolver SnapshotResolver
	observer Observer

	// entryInfo reads the metadata of a listed regular file.
	entryInfo func(fs.DirEntry) (fs.FileInfo, error)
}

// BrowseOption configures a BrowseService.
type BrowseOption func(*BrowseService)

// WithObserver sets the outcome observer.
func WithObserver(o Observer) BrowseOption {
	return func(s *BrowseService) {
		if o != nil {
			s.observer = o
		}
	}
}

// NewBrowseService creates a BrowseService over a copy of roots.
func NewBrowseService(roots map[string]Root, resolver SnapshotResolver, opts ...BrowseOption) *BrowseService {
	s := &BrowseService{
		roots:     make(map[string]Root, len(roots)),
		names:     make([]string, 0, len(roots)),
		resolver:  resolver,
		observer:  noopObserver{},
		entryInfo: fs.DirEntry.Info,
	}
	for name, root := range roots {
		s.roots[name] = root
		s.names = append(s.names, name)
	}
	sort.Strings(s.names)

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RootNames returns the configured root names, sorted.
func (s *BrowseService) RootNames() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Serve resolves segments inside the latest snapshot of rootName.
//
// Empty segments are dropped. If the last remaining segment names a hidden
// entry (leading ".") and showHidden is false the call fails with
// domain.ErrFilteredPath before touching the filesystem; intermediate hidden
// directories are not filtered. Segments that could leave the snapshot
// directory fail with domain.ErrInvalidPath.
//
// A regular file yields a ResourceFile whose File the caller must close.
// A directory yields a ResourceDirectory listing its directories and regular
// files in filesystem order; other entry types are omitted.
func (s *BrowseService) Serve(ctx context.Context, rootName string, segments []string, showHidden bool) (*domain.Resource, error) {
	segments = compactSegments(segments)
	logger.L(ctx).Debug("path request",
		"root", rootName,
		"segments", strings.Join(segments, "/"),
		"hidden", showHidden,
	)

	if n := len(segments); n > 0 && strings.HasPrefix(segments[n-1], ".") && !showHidden {
		return nil, s.fail(domain.ErrFilteredPath.WithDetails(
			fmt.Sprintf("hidden=%t, path=%s", showHidden, strings.Join(segments, "/"))))
	}

	root, ok := s.roots[rootName]
	if !ok {
		return nil, s.fail(domain.ErrUnknownRoot.WithDetails(fmt.Sprintf("root %q", rootName)))
	}

	snapshotDir, found, err := s.resolver.ResolveLatest(ctx, root.Path, root.Suffix)
	switch {
	case err != nil:
		s.observer.ObserveResolution(rootName, OutcomeError)
		return nil, s.fail(fmt.Errorf("resolve latest snapshot of %q: %w", rootName, err))
	case !found:
		s.observer.ObserveResolution(rootName, OutcomeNone)
		return nil, s.fail(domain.ErrNoSnapshots.WithDetails(fmt.Sprintf("root %q", rootName)))
	}
	s.observer.ObserveResolution(rootName, OutcomeFound)

	target, err := joinWithin(snapshotDir, segments)
	if err != nil {
		return nil, s.fail(err)
	}

	info, err := os.Stat(target)
	if err != nil {
		return nil, s.fail(domain.ErrInvalidPath.Wrap(target, err))
	}

	switch {
	case info.Mode().IsRegular():
		res, err := openFile(target)
		if err != nil {
			return nil, s.fail(err)
		}
		return res, nil
	case info.IsDir():
		entries, err := s.listDir(ctx, target)
		if err != nil {
			return nil, s.fail(err)
		}
		s.observer.ObserveListing(len(entries))
		return &domain.Resource{Kind: domain.ResourceDirectory, Listing: entries}, nil
	default:
		return nil, s.fail(domain.ErrInvalidPath.WithDetails(
			fmt.Sprintf("%s is neither a file nor a directory", target)))
	}
}

func (s *BrowseService) fail(err error) error {
	kind := string(domain.KindOf(err))
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		kind = "canceled"
	}
	s.observer.ObserveError(kind)
	return err
}

func compactSegments(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

// validateSegment rejects segments that are not a single plain name.
func validateSegment(seg string) error {
	switch {
	case seg == "." || seg == "..":
		return domain.ErrInvalidPath.WithDetails(fmt.Sprintf("segment %q is not allowed", seg))
	case strings.ContainsAny(seg, "/\\\x00"):
		return domain.ErrInvalidPath.WithDetails(fmt.Sprintf("segment %q contains a separator or NUL", seg))
	}
	return nil
}

// joinWithin joins segments onto base and guarantees the result stays under base.
func joinWithin(base string, segments []string) (string, error) {
	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, base)
	for _, seg := range segments {
		if err := validateSegment(seg); err != nil {
			return "", err
		}
		parts = append(parts, seg)
	}
	target := filepath.Join(parts...)

	rel, err := filepath.Rel(base, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", domain.ErrInvalidPath.WithDetails(fmt.Sprintf("%s escapes the snapshot", target))
	}
	return target, nil
}

func openFile(path string) (*domain.Resource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.ErrIO.Wrap("open "+path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, domain.ErrIO.Wrap("stat "+path, err)
	}
	return &domain.Resource{Kind: domain.ResourceFile, File: f, Info: info}, nil
}

// listDir enumerates dir without sorting. Any unreadable entry fails the
// whole listing.
func (s *BrowseService) listDir(ctx context.Context, dir string) ([]domain.Entry, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, domain.ErrIO.Wrap("open directory "+dir, err)
	}
	defer f.Close()

	entries := make([]domain.Entry, 0)
	for {
		batch, err := f.ReadDir(readDirBatch)
		for _, e := range batch {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			name := e.Name()
			if !utf8.ValidString(name) {
				return nil, domain.ErrInvalidName.WithDetails(
					fmt.Sprintf("%q in %s", name, dir))
			}

			switch t := e.Type(); {
			case t.IsDir():
				entries = append(entries, domain.Entry{Name: name, Details: domain.DirectoryDetails()})
			case t.IsRegular():
				info, err := s.entryInfo(e)
				if err != nil {
					return nil, domain.ErrIO.Wrap("metadata of "+filepath.Join(dir, name), err)
				}
				entries = append(entries, domain.Entry{Name: name, Details: domain.FileDetails(uint64(info.Size()))})
			}
		}
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return nil, domain.ErrIO.Wrap("read directory "+dir, err)
		}
	}
}
