package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mrlokans/bookshelf/internal/apperr"
)

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	router := gin.New()
	router.Use(RequestLogger(zap.New(core)))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/missing", func(c *gin.Context) { respondError(c, apperr.NotFound("Book not found")) })
	router.GET("/boom", func(c *gin.Context) { respondError(c, apperr.Unexpected("Failed", errors.New("disk full"))) })

	for _, path := range []string{"/ok?page=2", "/missing", "/boom"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 3)

	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "page=2", entries[0].ContextMap()["query"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, int64(http.StatusNotFound), entries[1].ContextMap()["status_code"])

	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Contains(t, entries[2].ContextMap()["gin_errors"], "disk full")
}

func TestRecoveryMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	router := gin.New()
	router.Use(RecoveryMiddleware(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) { panic("unexpected nil") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Something went wrong"}`, w.Body.String())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Panic recovered", logs.All()[0].Message)
}

func TestRespondError_HidesCause(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", apperr.Validation("Invalid role"), http.StatusBadRequest, "Invalid role"},
		{"conflict", apperr.Conflict("Email already exists"), http.StatusBadRequest, "Email already exists"},
		{"unauthenticated", apperr.Unauthenticated("Log in"), http.StatusUnauthorized, "Log in"},
		{"forbidden", apperr.Forbidden("No"), http.StatusForbidden, "No"},
		{"not found", apperr.NotFound("Book not found"), http.StatusNotFound, "Book not found"},
		{"rate limited", apperr.RateLimited("Slow down"), http.StatusTooManyRequests, "Slow down"},
		{"unexpected", apperr.Unexpected("Failed to delete book", errors.New("sql: tx done")), http.StatusInternalServerError, "Failed to delete book"},
		{"unclassified", errors.New("raw driver error"), http.StatusInternalServerError, msgInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			body := decode(t, w)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.message, body["message"])
			assert.Len(t, c.Errors, 1)
		})
	}
}

func TestBindingRules(t *testing.T) {
	type sample struct {
		Name string `json:"name" binding:"required"`
		Kind string `json:"kind" binding:"omitempty,oneof=a b"`
		Size int    `json:"size" binding:"omitempty,max=3"`
	}
	requiredErr := apperr.Validation("Name is required")
	kindErr := apperr.Validation("Bad kind")
	rules := bindingRules{"required": requiredErr, "oneof": kindErr}

	bindErr := func(body string) error {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = req
		var s sample
		return c.ShouldBind(&s)
	}

	assert.Equal(t, requiredErr, rules.bindingError(bindErr(`{}`)))
	assert.Equal(t, kindErr, rules.bindingError(bindErr(`{"name":"x","kind":"c"}`)))
	// Tags without a rule fall back to the required message
	assert.Equal(t, requiredErr, rules.bindingError(bindErr(`{"name":"x","size":9}`)))
	assert.Equal(t, errInvalidBody, rules.bindingError(bindErr(`{"name":`)))
	assert.Equal(t, errInvalidBody, bindingRules{}.bindingError(bindErr(`{}`)))
	assert.Equal(t, errFileTooLarge, rules.bindingError(&http.MaxBytesError{Limit: 10}))
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

func TestHealthController(t *testing.T) {
	tests := []struct {
		name     string
		database Pinger
		status   int
		health   string
		check    string
	}{
		{"healthy", stubPinger{}, http.StatusOK, "healthy", "ok"},
		{"database down", stubPinger{err: errors.New("connection refused")}, http.StatusServiceUnavailable, "unhealthy", "error: connection refused"},
		{"no database", nil, http.StatusServiceUnavailable, "unhealthy", "not configured"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			controller := NewHealthController(tt.database, "1.0.0")
			router := gin.New()
			router.GET("/health", controller.Status)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.status, w.Code)
			body := decode(t, w)
			assert.Equal(t, tt.health, body["status"])
			assert.Equal(t, "1.0.0", body["version"])
			assert.Equal(t, tt.check, body["checks"].(map[string]any)["database"])
		})
	}
}
