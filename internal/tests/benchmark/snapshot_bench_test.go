package benchmark

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/yndnr/snapbrowse/internal/storage/snapshot"
)

// BenchmarkResolveLatest benchmarks latest-snapshot selection at various
// root sizes.
func BenchmarkResolveLatest(b *testing.B) {
	runWithCounts(b, "snapshots", SnapshotCounts, func(b *testing.B, count int) {
		root, latest := makeRoot(b, count)
		r := snapshot.NewResolver()
		ctx := context.Background()

		b.ResetTimer()
		b.ReportAllocs()

		for i := 0; i < b.N; i++ {
			got, ok, err := r.ResolveLatest(ctx, root, "full")
			if err != nil || !ok {
				b.Fatalf("ResolveLatest() = %v, %v", ok, err)
			}
			if filepath.Base(got) != latest {
				b.Fatalf("ResolveLatest() = %s, want %s", got, latest)
			}
		}

		b.StopTimer()
		reportMemory(b, "mem")
	})
}

// BenchmarkResolveLatest_Parallel benchmarks concurrent resolution of the
// same root.
func BenchmarkResolveLatest_Parallel(b *testing.B) {
	root, _ := makeRoot(b, 1000)
	r := snapshot.NewResolver()

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		ctx := context.Background()
		for pb.Next() {
			if _, ok, err := r.ResolveLatest(ctx, root, "full"); err != nil || !ok {
				b.Errorf("ResolveLatest() = %v, %v", ok, err)
				return
			}
		}
	})
}

// BenchmarkParseCandidate benchmarks snapshot name parsing.
func BenchmarkParseCandidate(b *testing.B) {
	names := []struct {
		name string
		desc string
	}{
		{"2024-03-01T12:30:00Z_full", "match"},
		{"2024-03-01T12:30:00+02:00_full", "offset"},
		{"2024-03-01T12:30:00Z_partial", "other_suffix"},
		{"lost+found", "no_separator"},
	}

	for _, n := range names {
		b.Run(n.desc, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				snapshot.ParseCandidate(n.name, "full")
			}
		})
	}
}
