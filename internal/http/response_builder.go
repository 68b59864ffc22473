package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"spendfy/internal/core"
	"spendfy/internal/log"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body. A nil body writes no
// content.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_ = json.NewEncoder(w).Encode(b.body)
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Status    int               `json:"status"`
	Error     string            `json:"error"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	Timestamp string            `json:"timestamp"`
}

// ErrorResponse creates an error response with the standard body.
func ErrorResponse(statusCode int, message string, fields map[string]string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Body(ErrorBody{
			Status:    statusCode,
			Error:     http.StatusText(statusCode),
			Message:   message,
			Fields:    fields,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
}

// StatusFor maps a service error to its HTTP status. Ownership mismatches
// are reported as 400, like other business rule violations.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrAuthenticationFailed):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrUnauthenticated):
		return http.StatusForbidden
	case errors.Is(err, core.ErrValidation),
		errors.Is(err, core.ErrInvalidRange),
		errors.Is(err, core.ErrDuplicateIdentity),
		errors.Is(err, core.ErrConflict),
		errors.Is(err, core.ErrForbidden):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

const internalErrorMessage = "An unexpected error occurred"

// writeError renders err. Unclassified errors are logged and replaced by a
// generic message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)

	var cerr *core.Error
	if status == http.StatusInternalServerError || !errors.As(err, &cerr) {
		log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(),
			"Request failed", err, log.ComponentHTTP, r.Method+" "+r.Pattern,
			log.NewFields().WithErrorType(log.ErrorTypeInternal))
		ErrorResponse(http.StatusInternalServerError, internalErrorMessage, nil).Write(w)
		return
	}
	ErrorResponse(status, cerr.Message, cerr.Fields).Write(w)
}

func (s *Server) writeRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(),
		"Rate limit exceeded",
		log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil).Write(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	NewJSONResponse().Status(status).Body(v).Write(w)
}
