package health

import (
	"context"
	"time"
)

// DefaultCheckTimeout bounds each individual check.
const DefaultCheckTimeout = 5 * time.Second

// NewHealthChecker creates a new health checker
func NewHealthChecker(version string) *HealthChecker {
	return &HealthChecker{
		readyChecks: make(map[string]CheckFunc),
		liveChecks:  make(map[string]CheckFunc),
		timeout:     DefaultCheckTimeout,
		startTime:   time.Now(),
		version:     version,
	}
}

// SetTimeout changes the per-check timeout
func (hc *HealthChecker) SetTimeout(d time.Duration) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	if d > 0 {
		hc.timeout = d
	}
}

// RegisterReadinessCheck registers a readiness check
func (hc *HealthChecker) RegisterReadinessCheck(name string, check CheckFunc) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.readyChecks[name] = check
}

// RegisterLivenessCheck registers a liveness check
func (hc *HealthChecker) RegisterLivenessCheck(name string, check CheckFunc) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.liveChecks[name] = check
}

// CheckReadiness performs readiness checks
func (hc *HealthChecker) CheckReadiness(ctx context.Context) Response {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	return hc.performChecks(ctx, hc.readyChecks)
}

// CheckLiveness performs liveness checks
func (hc *HealthChecker) CheckLiveness(ctx context.Context) Response {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	return hc.performChecks(ctx, hc.liveChecks)
}

func (hc *HealthChecker) performChecks(ctx context.Context, checksMap map[string]CheckFunc) Response {
	response := Response{
		Status:    StatusHealthy,
		Version:   hc.version,
		Timestamp: time.Now().UTC(),
		Checks:    make(map[string]Check, len(checksMap)),
		Uptime:    time.Since(hc.startTime).Seconds(),
	}

	for name, checkFunc := range checksMap {
		checkCtx, cancel := context.WithTimeout(ctx, hc.timeout)
		start := time.Now()
		check := checkFunc(checkCtx)
		cancel()

		if check.Name == "" {
			check.Name = name
		}
		check.DurationMS = float64(time.Since(start).Microseconds()) / 1000
		check.LastChecked = start.UTC()
		response.Checks[name] = check

		// Worst status wins
		if check.Status.rank() > response.Status.rank() {
			response.Status = check.Status
		}
	}

	return response
}
