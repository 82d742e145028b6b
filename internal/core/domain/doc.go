// Package domain defines the core domain models for SnapBrowse.
//
// Domain models are pure values without IO dependencies. This package contains:
//
//   - Entry: one child of a listed snapshot directory (Directory | File{size})
//   - Resource: the result of serving a path (listing | open file)
//   - Errors: the closed set of browse errors and their codes
package domain
