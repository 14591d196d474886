package health

import (
	"context"
	"sync"
	"time"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// rank orders statuses from best to worst.
func (s Status) rank() int {
	switch s {
	case StatusHealthy:
		return 0
	case StatusDegraded:
		return 1
	}
	return 2
}

// Check represents a health check for a specific component
type Check struct {
	Name        string         `json:"name"`
	Status      Status         `json:"status"`
	Message     string         `json:"message,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	LastChecked time.Time      `json:"last_checked"`
	DurationMS  float64        `json:"duration_ms"`
}

// CheckFunc performs a health check. Implementations must honour ctx.
type CheckFunc func(ctx context.Context) Check

// Pinger is implemented by dependencies that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker manages liveness and readiness checks for the server
type HealthChecker struct {
	mu          sync.RWMutex
	readyChecks map[string]CheckFunc
	liveChecks  map[string]CheckFunc
	timeout     time.Duration
	startTime   time.Time
	version     string
}

// Response represents the overall health response
type Response struct {
	Status    Status           `json:"status"`
	Version   string           `json:"version,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Checks    map[string]Check `json:"checks"`
	Uptime    float64          `json:"uptime_seconds"`
}
