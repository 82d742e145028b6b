package benchmark

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/yndnr/snapbrowse/internal/core/service"
	"github.com/yndnr/snapbrowse/internal/server/httpserver"
	"github.com/yndnr/snapbrowse/internal/storage/snapshot"
	"github.com/yndnr/snapbrowse/internal/telemetry/metric"
)

func newBrowseService(b *testing.B, entries int) *service.BrowseService {
	b.Helper()
	root, latest := makeRoot(b, 100)
	fillDir(b, filepath.Join(root, latest, "data"), entries)
	return service.NewBrowseService(
		map[string]service.Root{"bench": {Path: root, Suffix: "full"}},
		snapshot.NewResolver(),
	)
}

// BenchmarkServeListing benchmarks directory listings at various sizes.
func BenchmarkServeListing(b *testing.B) {
	runWithCounts(b, "entries", EntryCounts, func(b *testing.B, count int) {
		svc := newBrowseService(b, count)
		ctx := context.Background()

		b.ResetTimer()
		b.ReportAllocs()

		for i := 0; i < b.N; i++ {
			res, err := svc.Serve(ctx, "bench", []string{"data"}, false)
			if err != nil {
				b.Fatalf("Serve() error = %v", err)
			}
			if len(res.Listing) != count {
				b.Fatalf("len(Listing) = %d, want %d", len(res.Listing), count)
			}
		}

		b.StopTimer()
		reportMemory(b, "mem")
	})
}

// BenchmarkServeFile benchmarks opening a single file.
func BenchmarkServeFile(b *testing.B) {
	svc := newBrowseService(b, 10)
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		res, err := svc.Serve(ctx, "bench", []string{"data", "file-000001.dat"}, false)
		if err != nil {
			b.Fatalf("Serve() error = %v", err)
		}
		res.Close()
	}
}

// BenchmarkHTTPListing benchmarks a listing through the full middleware
// chain, with metrics and the access log enabled.
func BenchmarkHTTPListing(b *testing.B) {
	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Browser:     newBrowseService(b, 100),
		Metrics:     metric.NewRegistry(),
		MetricsPath: "/metrics",
		Logger:      slog.New(slog.NewJSONHandler(io.Discard, nil)),
		EnableAudit: true,
	})

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/roots/bench/path/data", nil))
			if rec.Code != http.StatusOK {
				b.Errorf("status = %d", rec.Code)
				return
			}
		}
	})
}
