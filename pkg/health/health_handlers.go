package health

import (
	"encoding/json"
	"net/http"
)

func writeResponse(w http.ResponseWriter, response Response, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(response)
}

// LivenessHandler returns an HTTP handler for liveness checks. A degraded
// process is still alive.
func (hc *HealthChecker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := hc.CheckLiveness(r.Context())

		code := http.StatusOK
		if response.Status == StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		writeResponse(w, response, code)
	}
}

// ReadinessHandler returns an HTTP handler for readiness checks
func (hc *HealthChecker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := hc.CheckReadiness(r.Context())

		// Readiness is binary - either ready or not
		code := http.StatusOK
		if response.Status != StatusHealthy {
			code = http.StatusServiceUnavailable
		}
		writeResponse(w, response, code)
	}
}
