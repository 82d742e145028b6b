// Package snapshot finds the most recent snapshot directory under a root.
//
// A snapshot root is a directory whose immediate subdirectories are named
//
//	<RFC 3339 timestamp>_<remainder ending with the root's suffix>
//
// for example "2024-02-01T00:00:00Z_full". The name is split on the first
// underscore only. Children that lack an underscore, whose remainder does not
// end with the suffix, that are not directories, or whose metadata cannot be
// read are ignored. A child that has the right shape but a malformed timestamp
// fails the whole resolution with domain.ErrTimestampParse.
//
// Resolution reads the filesystem on every call; nothing is cached.
package snapshot
