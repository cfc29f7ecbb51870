// Package trace assigns request ids and logs request start and end.
package trace

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"drivefin/internal/log"
)

type ContextKey string

const (
	RequestIDKey    ContextKey = "request_id"
	RequestIDHeader            = "X-Request-ID"
	maxRequestIDLen            = 64
)

// Observer receives one call per finished request. route is the matched
// ServeMux pattern, or "unmatched".
type Observer interface {
	ObserveRequest(method, route string, code int, elapsed time.Duration)
}

type Middleware struct {
	extractIP func(*http.Request) string
	logger    *log.Logger
	observer  Observer
	total     atomic.Int64
}

type Option func(*Middleware)

func WithObserver(o Observer) Option {
	return func(m *Middleware) { m.observer = o }
}

func NewMiddleware(logger *log.Logger, extractIP func(*http.Request) string, opts ...Option) *Middleware {
	m := &Middleware{extractIP: extractIP, logger: logger}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Middleware) Middleware(next http.Handler) http.Handler {
	sl := log.NewStructuredLogger(m.logger)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.total.Add(1)

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}

		requestID := incomingID(r)
		if requestID == "" {
			requestID = GenerateRequestID()
		}
		w.Header().Set(RequestIDHeader, requestID)

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		ctx = log.WithLogger(ctx, m.logger.With(log.FieldRequestID, requestID))
		r = r.WithContext(ctx)

		sl.LogHTTPStart(ctx, r, clientIP)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		elapsed := time.Since(start)
		sl.LogHTTPEnd(ctx, r, rw.statusCode, elapsed.Milliseconds(), clientIP)
		if m.observer != nil {
			// ServeMux fills Pattern on this same request value.
			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			m.observer.ObserveRequest(r.Method, route, rw.statusCode, elapsed)
		}
	})
}

// TotalRequests counts requests seen since start.
func (m *Middleware) TotalRequests() int64 {
	return m.total.Load()
}

func incomingID(r *http.Request) string {
	id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
	if id == "" || len(id) > maxRequestIDLen {
		return ""
	}
	for _, c := range id {
		if c < 0x21 || c > 0x7e {
			return ""
		}
	}
	return id
}

type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func GenerateRequestID() string {
	return "req_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
