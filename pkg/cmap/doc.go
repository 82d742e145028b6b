// Package cmap provides a concurrent-safe sharded map.
//
// Keys are spread over a power-of-two number of shards, each guarded by its
// own RWMutex, so writers to different shards never contend. The HTTP rate
// limiter keeps its per-client token buckets in one.
package cmap
