package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"drivefin/internal/auth"
	"drivefin/internal/core"
	"drivefin/internal/goals"
	"drivefin/internal/services"
	"drivefin/internal/storage"
	"drivefin/internal/store"
)

func TestResponseBuilderWrite(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(map[string]int{"n": 1}).Header("X-Test", "yes").Write(rec)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "yes", rec.Header().Get("X-Test"))
	assert.JSONEq(t, `{"code":"OK","message":"success","data":{"n":1}}`, rec.Body.String())
}

func TestResponseBuilderNoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	NewResponse().Status(http.StatusNoContent).Write(rec)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestValidationErrorFields(t *testing.T) {
	rec := httptest.NewRecorder()
	ValidationError("bad", nil).Write(rec)
	assert.JSONEq(t, `{"code":"VALIDATION_ERROR","message":"bad"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	ValidationError("bad", map[string]string{"title": "required"}).Write(rec)
	assert.JSONEq(t, `{"code":"VALIDATION_ERROR","message":"bad","data":{"fields":{"title":"required"}}}`, rec.Body.String())
}

func TestErrorFor(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"field errors", goals.FieldErrors{"title": "required"}, http.StatusUnprocessableEntity, CodeValidation},
		{"not found", fmt.Errorf("get goal: %w", storage.ErrNotFound), http.StatusNotFound, CodeNotFound},
		{"credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized, CodeUnauthorized},
		{"token", auth.ErrInvalidToken, http.StatusUnauthorized, CodeUnauthorized},
		{"malformed action", store.ErrMalformedAction, http.StatusBadRequest, CodeBadRequest},
		{"bad body", errBadBody, http.StatusBadRequest, CodeBadRequest},
		{"domain rule", core.ErrInvalidAmount, http.StatusUnprocessableEntity, CodeValidation},
		{"weak password", auth.ErrWeakPassword, http.StatusUnprocessableEntity, CodeValidation},
		{"duplicate", services.ErrEmailTaken, http.StatusConflict, CodeConflict},
		{"active session", services.ErrSessionActive, http.StatusConflict, CodeConflict},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			rec := httptest.NewRecorder()
			writeError(rec, req, tt.err)
			assert.Equal(t, tt.status, rec.Code)
			env, _ := decode[any](t, rec)
			assert.Equal(t, tt.code, env.Code)
			assert.NotContains(t, rec.Body.String(), "disk on fire")
		})
	}
}
