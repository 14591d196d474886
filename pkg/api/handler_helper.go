package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dd0wney/cluso-tradenet/pkg/api/middleware"
	"github.com/dd0wney/cluso-tradenet/pkg/logging"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
	Kind    string `json:"kind,omitempty"`
}

// respondJSON encodes data before committing the status, so an unencodable
// payload becomes a 500 rather than an empty success.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		s.logger.Error("failed to encode JSON response", logging.Error(err))
		status = http.StatusInternalServerError
		body, _ = json.Marshal(ErrorResponse{
			Error:   http.StatusText(status),
			Message: "failed to encode response",
			Code:    status,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondErrorKind(w, status, message, "")
}

func (s *Server) respondErrorKind(w http.ResponseWriter, status int, message, kind string) {
	s.respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
		Kind:    kind,
	})
}

// sanitizeError converts an internal error to a user-safe message.
// The full error is logged with the request ID; only the operation name
// reaches the client.
func (s *Server) sanitizeError(r *http.Request, err error, operation string) string {
	if err == nil {
		return ""
	}
	s.logger.Error(operation+" failed",
		logging.Error(err),
		logging.RequestID(middleware.GetRequestID(r)),
		logging.Path(r.URL.Path),
	)
	return fmt.Sprintf("%s failed", operation)
}

// respondSourceError reports a failed read from the trade record source.
func (s *Server) respondSourceError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		status = http.StatusServiceUnavailable
	}
	s.respondError(w, status, s.sanitizeError(r, err, operation))
}

// queryDecoder reads typed query parameters.
// It provides a fluent interface; the first failure sticks.
type queryDecoder struct {
	r   *http.Request
	err error
}

func newQueryDecoder(r *http.Request) *queryDecoder {
	return &queryDecoder{r: r}
}

// Int sets *dst from the named parameter when present.
func (qd *queryDecoder) Int(name string, dst *int) *queryDecoder {
	if qd.err != nil {
		return qd
	}
	if v := qd.r.URL.Query().Get(name); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			qd.err = fmt.Errorf("%s must be an integer", name)
			return qd
		}
		*dst = n
	}
	return qd
}

// Float sets *dst from the named parameter when present.
func (qd *queryDecoder) Float(name string, dst *float64) *queryDecoder {
	if qd.err != nil {
		return qd
	}
	if v := qd.r.URL.Query().Get(name); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			qd.err = fmt.Errorf("%s must be a number", name)
			return qd
		}
		*dst = f
	}
	return qd
}

// Bool sets *dst from the named parameter when present.
func (qd *queryDecoder) Bool(name string, dst *bool) *queryDecoder {
	if qd.err != nil {
		return qd
	}
	if v := qd.r.URL.Query().Get(name); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			qd.err = fmt.Errorf("%s must be a boolean", name)
			return qd
		}
		*dst = b
	}
	return qd
}

// String sets *dst from the named parameter when present.
func (qd *queryDecoder) String(name string, dst *string) *queryDecoder {
	if qd.err != nil {
		return qd
	}
	if v := qd.r.URL.Query().Get(name); v != "" {
		*dst = v
	}
	return qd
}

// Validate runs fn unless decoding already failed.
func (qd *queryDecoder) Validate(fn func() error) *queryDecoder {
	if qd.err != nil {
		return qd
	}
	qd.err = fn()
	return qd
}

// Error returns the error if any occurred.
func (qd *queryDecoder) Error() error {
	return qd.err
}

// RespondError sends a 400 and returns true if decoding or validation
// failed.
func (qd *queryDecoder) RespondError(s *Server, w http.ResponseWriter) bool {
	if qd.err == nil {
		return false
	}
	s.respondErrorKind(w, http.StatusBadRequest, qd.err.Error(), "validation")
	return true
}
