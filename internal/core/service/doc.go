// Package service provides the browse service for SnapBrowse.
//
// BrowseService turns a (root name, path segments, hidden flag) request into
// either a directory listing or an open file from the latest snapshot of that
// root. It depends on a SnapshotResolver for snapshot selection and reads the
// filesystem directly for everything else.
//
// The service keeps no mutable state: the root table is copied at
// construction and every call resolves the snapshot afresh.
package service
