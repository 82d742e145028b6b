package metric

import (
	"os"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
)

// RootsCollector reports, at scrape time, whether each configured snapshot
// root directory can be stat'ed.
type RootsCollector struct {
	roots     map[string]string
	available *prometheus.Desc
	count     *prometheus.Desc
}

// NewRootsCollector creates a collector over a root name to directory map.
// The map is copied.
func NewRootsCollector(roots map[string]string) *RootsCollector {
	cp := make(map[string]string, len(roots))
	for name, path := range roots {
		cp[name] = path
	}
	return &RootsCollector{
		roots: cp,
		available: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "root", "available"),
			"1 when the snapshot root directory exists and is a directory.",
			[]string{"root"}, nil,
		),
		count: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "roots", "configured"),
			"Number of configured snapshot roots.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *RootsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.available
	ch <- c.count
}

// Collect implements prometheus.Collector.
func (c *RootsCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.count, prometheus.GaugeValue, float64(len(c.roots)))

	names := make([]string, 0, len(c.roots))
	for name := range c.roots {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		v := 0.0
		if info, err := os.Stat(c.roots[name]); err == nil && info.IsDir() {
			v = 1
		}
		ch <- prometheus.MustNewConstMetric(c.available, prometheus.GaugeValue, v, name)
	}
}
