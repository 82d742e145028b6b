package benchmark

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

// SnapshotCounts defines how many snapshot directories a root holds.
var SnapshotCounts = []int{10, 100, 1000, 5000}

// EntryCounts defines how many entries a listed directory holds.
var EntryCounts = []int{10, 100, 1000, 10000}

var epoch = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// snapshotName returns the directory name of the i-th daily snapshot.
func snapshotName(i int, suffix string) string {
	return epoch.AddDate(0, 0, i).Format(time.RFC3339) + "_" + suffix
}

// makeRoot creates a root with count snapshots, alternating between the
// "full" and "partial" suffixes, and returns the root path and the name of
// the newest "full" snapshot.
func makeRoot(b *testing.B, count int) (string, string) {
	b.Helper()
	root := b.TempDir()
	var latest string
	for i := 0; i < count; i++ {
		suffix := "partial"
		if i%2 == 0 {
			suffix = "full"
			latest = snapshotName(i, suffix)
		}
		if err := os.Mkdir(filepath.Join(root, snapshotName(i, suffix)), 0o755); err != nil {
			b.Fatal(err)
		}
	}
	return root, latest
}

// fillDir creates count small files in dir.
func fillDir(b *testing.B, dir string, count int) {
	b.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		b.Fatal(err)
	}
	for i := 0; i < count; i++ {
		name := filepath.Join(dir, fmt.Sprintf("file-%06d.dat", i))
		if err := os.WriteFile(name, []byte("0123456789"), 0o644); err != nil {
			b.Fatal(err)
		}
	}
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithCounts runs a benchmark function with various sizes.
func runWithCounts(b *testing.B, label string, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("%s_%d", label, count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
