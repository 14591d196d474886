package middleware

import (
	"fmt"
	"net/http"
)

// DefaultMaxBodyBytes bounds GraphQL and other POST bodies.
const DefaultMaxBodyBytes int64 = 1 << 20

// BodySizeLimit creates middleware that rejects request bodies larger than
// maxBytes. Declared lengths are checked up front; chunked bodies are cut
// off by http.MaxBytesReader, whose read error the handler must report.
func BodySizeLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				writeJSONError(w, http.StatusRequestEntityTooLarge,
					fmt.Sprintf("request body exceeds %d bytes", maxBytes))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
