// Package shutdown provides graceful shutdown for SnapBrowse.
//
// This package handles process termination:
//
//   - Signal handling (SIGINT, SIGTERM)
//   - Programmatic triggers (for example a listener that failed)
//   - Timeout-bounded cleanup hooks run in reverse registration order
//
// Usage:
//
//	h := shutdown.NewHandler(10 * time.Second)
//	h.OnShutdown(srv.Shutdown)
//	err := h.Wait()
package shutdown
