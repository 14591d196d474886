package middleware

import (
	"net/http"
	"time"

	"github.com/dd0wney/cluso-tradenet/pkg/logging"
)

// Logging creates middleware that logs every request with its status and
// latency. Server errors log at warn level.
func Logging(logger logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := wrapResponseWriter(w)
			next.ServeHTTP(rw, r)

			fields := []logging.Field{
				logging.String("method", r.Method),
				logging.Path(r.URL.Path),
				logging.Int("status", rw.statusCode),
				logging.Int("bytes", rw.bytesWritten),
				logging.Latency(time.Since(start)),
			}
			if id := GetRequestID(r); id != "" {
				fields = append(fields, logging.RequestID(id))
			}

			if rw.statusCode >= http.StatusInternalServerError {
				logger.Warn("request failed", fields...)
				return
			}
			logger.Info("request", fields...)
		})
	}
}
