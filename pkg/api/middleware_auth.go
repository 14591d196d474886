package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dd0wney/cluso-tradenet/pkg/api/middleware"
	"github.com/dd0wney/cluso-tradenet/pkg/auth"
	"github.com/dd0wney/cluso-tradenet/pkg/logging"
)

// authenticate requires a valid bearer token when a token validator is
// configured and stores the claims in the request context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	if s.tokens == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			s.metrics.RecordAuthFailure()
			w.Header().Set("WWW-Authenticate", `Bearer realm="tradenet"`)
			s.respondErrorKind(w, http.StatusUnauthorized, "Authentication required", "unauthorized")
			return
		}

		claims, err := s.tokens.ValidateToken(r.Context(), token)
		if err != nil {
			s.metrics.RecordAuthFailure()
			s.logger.Warn("token rejected",
				logging.Error(err),
				logging.RequestID(middleware.GetRequestID(r)),
			)
			message := "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				message = "Token has expired"
			}
			w.Header().Set("WWW-Authenticate", `Bearer realm="tradenet", error="invalid_token"`)
			s.respondErrorKind(w, http.StatusUnauthorized, message, "unauthorized")
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
