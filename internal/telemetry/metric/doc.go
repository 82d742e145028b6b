// Package metric provides Prometheus metrics for SnapBrowse.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: the application registry, its metrics and HTTP handler
//   - collector.go: a scrape-time collector reporting snapshot root availability
//
// Metrics include:
//
//   - HTTP request counts and latency histograms per route
//   - Snapshot resolution outcomes per root
//   - Listing sizes and bytes served
//   - Browse error counts by kind
//
// The Observe*, Add* and Mark* methods are safe on a nil *Registry, so components
// can be built without metrics in tests.
//
// Metrics are exposed at /metrics in Prometheus format.
package metric
