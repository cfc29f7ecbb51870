// Package http serves the drivefin JSON API.
//
// Every response body is an envelope {code, message, data}. code is OK on
// success and a stable upper-case identifier otherwise.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"drivefin/internal/auth"
	"drivefin/internal/core"
	"drivefin/internal/goals"
	"drivefin/internal/log"
	"drivefin/internal/services"
	"drivefin/internal/storage"
	"drivefin/internal/store"
)

// Envelope codes.
const (
	CodeOK              = "OK"
	CodeBadRequest      = "BAD_REQUEST"
	CodeValidation      = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodePaymentRequired = "PAYMENT_REQUIRED"
	CodeConflict        = "CONFLICT"
	CodeRateLimited     = "RATE_LIMIT_EXCEEDED"
	CodeUnavailable     = "SERVICE_UNAVAILABLE"
	CodeInternal        = "INTERNAL_ERROR"
)

type Envelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ResponseBuilder assembles an enveloped JSON response.
type ResponseBuilder struct {
	statusCode int
	envelope   Envelope
	headers    map[string]string
}

func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		envelope:   Envelope{Code: CodeOK, Message: "success"},
		headers:    make(map[string]string),
	}
}

func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

func (b *ResponseBuilder) Code(code string) *ResponseBuilder {
	b.envelope.Code = code
	return b
}

func (b *ResponseBuilder) Message(msg string) *ResponseBuilder {
	b.envelope.Message = msg
	return b
}

func (b *ResponseBuilder) Data(data any) *ResponseBuilder {
	b.envelope.Data = data
	return b
}

func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if b.statusCode == http.StatusNoContent {
		return
	}
	_ = json.NewEncoder(w).Encode(b.envelope)
}

func OK(data any) *ResponseBuilder {
	return NewResponse().Data(data)
}

func Created(data any) *ResponseBuilder {
	return NewResponse().Status(http.StatusCreated).Message("created").Data(data)
}

func ErrorResponse(statusCode int, code, message string) *ResponseBuilder {
	return NewResponse().Status(statusCode).Code(code).Message(message)
}

func BadRequestError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, CodeBadRequest, message)
}

// ValidationError reports field messages in data when fields is non-empty.
func ValidationError(message string, fields map[string]string) *ResponseBuilder {
	b := ErrorResponse(http.StatusUnprocessableEntity, CodeValidation, message)
	if len(fields) > 0 {
		b.Data(map[string]any{"fields": fields})
	}
	return b
}

func NotFoundError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusNotFound, CodeNotFound, message)
}

func UnauthorizedError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusUnauthorized, CodeUnauthorized, message).
		Header("WWW-Authenticate", `Bearer realm="drivefin"`)
}

func ConflictError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusConflict, CodeConflict, message)
}

func InternalServerError() *ResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, CodeInternal, "internal error")
}

var validationErrors = []error{
	store.ErrUnknownDomain,
	core.ErrEmptyTitle,
	core.ErrInvalidTarget,
	core.ErrNegativeCurrent,
	core.ErrCurrentOverTarget,
	core.ErrInvalidCategory,
	core.ErrInvalidStatus,
	core.ErrInvalidKind,
	core.ErrInvalidAmount,
	core.ErrEmptyDescription,
	core.ErrDescriptionLength,
	core.ErrEmptyName,
	core.ErrMissingDate,
	core.ErrEndBeforeStart,
	services.ErrUsernameRequired,
	services.ErrInvalidEmail,
	auth.ErrWeakPassword,
}

var conflictErrors = []error{
	storage.ErrAlreadyExists,
	services.ErrUsernameTaken,
	services.ErrEmailTaken,
	services.ErrSessionActive,
	services.ErrSessionEnded,
}

// errorFor maps a service error to its response. Unknown errors become a
// 500 and are logged; their text never reaches the client.
func errorFor(r *http.Request, err error) *ResponseBuilder {
	var fields goals.FieldErrors
	switch {
	case errors.As(err, &fields):
		return ValidationError("invalid goal", fields)
	case errors.Is(err, storage.ErrNotFound):
		return NotFoundError("record not found")
	case errors.Is(err, auth.ErrInvalidCredentials):
		return UnauthorizedError("invalid credentials")
	case errors.Is(err, auth.ErrInvalidToken):
		return UnauthorizedError("invalid or expired token")
	case errors.Is(err, store.ErrMalformedAction), errors.Is(err, errBadBody):
		return BadRequestError(err.Error())
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return ValidationError(err.Error(), nil)
		}
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return ConflictError(err.Error())
		}
	}

	logger := log.FromContext(r.Context())
	log.NewStructuredLogger(logger).LogError(r.Context(), "Request failed", err, log.ComponentHTTP, r.Method+" "+r.URL.Path,
		log.NewFields().WithErrorType(log.ErrorTypeInternal))
	return InternalServerError()
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	errorFor(r, err).Write(w)
}
