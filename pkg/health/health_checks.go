package health

import (
	"context"
	"runtime"
	"time"
)

// SourceCheck reports whether the trade record source is reachable. A ping
// slower than slow marks the source as degraded.
func SourceCheck(name string, src Pinger, slow time.Duration) CheckFunc {
	return func(ctx context.Context) Check {
		check := Check{
			Name:    "source",
			Details: map[string]any{"backend": name},
		}

		start := time.Now()
		err := src.Ping(ctx)
		latency := time.Since(start)
		check.Details["latency_ms"] = latency.Milliseconds()

		switch {
		case err != nil:
			check.Status = StatusUnhealthy
			check.Message = err.Error()
		case slow > 0 && latency > slow:
			check.Status = StatusDegraded
			check.Message = "Slow response"
		default:
			check.Status = StatusHealthy
			check.Message = "Connected"
		}

		return check
	}
}

// GoroutineCheck degrades when the goroutine count exceeds limit, which
// usually means analyses are piling up behind a slow source.
func GoroutineCheck(limit int) CheckFunc {
	return func(context.Context) Check {
		n := runtime.NumGoroutine()
		check := Check{
			Name:    "goroutines",
			Details: map[string]any{"count": n, "limit": limit},
			Status:  StatusHealthy,
		}
		if n > limit {
			check.Status = StatusDegraded
			check.Message = "Too many goroutines"
		}
		return check
	}
}

// MemoryCheck creates a health check for heap usage
func MemoryCheck(getUsage func() (alloc, sys uint64)) CheckFunc {
	return func(context.Context) Check {
		check := Check{
			Name:    "memory",
			Details: make(map[string]any),
		}

		alloc, sys := getUsage()

		check.Details["alloc_bytes"] = alloc
		check.Details["sys_bytes"] = sys

		if sys > 0 && float64(alloc)/float64(sys) > 0.9 {
			check.Status = StatusDegraded
			check.Message = "High memory usage"
		} else {
			check.Status = StatusHealthy
			check.Message = "Memory usage normal"
		}

		return check
	}
}

// RuntimeMemory reads heap usage from the Go runtime.
func RuntimeMemory() (alloc, sys uint64) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc, m.Sys
}
