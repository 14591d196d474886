package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/dd0wney/cluso-tradenet/pkg/logging"
)

// PanicRecovery creates middleware that turns a handler panic into a 500.
// The panic value and stack are logged, never sent to the client.
func PanicRecovery(logger logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Error("panic in HTTP handler",
						logging.String("method", r.Method),
						logging.Path(r.URL.Path),
						logging.RequestID(GetRequestID(r)),
						logging.String("panic", fmt.Sprint(rec)),
						logging.String("stack", string(debug.Stack())),
					)
					writeJSONError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// writeJSONError writes the API's error body for failures raised before a
// handler runs.
func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":   http.StatusText(status),
		"message": message,
		"code":    status,
	})
}
