package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetTraceID(t *testing.T) {
	newCtx := func(headers map[string]string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		for k, v := range headers {
			c.Request.Header.Set(k, v)
		}
		return c
	}

	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736",
		GetTraceID(newCtx(map[string]string{TraceParentHeader: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"})))
	assert.Equal(t, "abc", GetTraceID(newCtx(map[string]string{TraceIDHeader: "abc"})))
	assert.Len(t, GetTraceID(newCtx(nil)), 32)
}

func TestLoggingMiddleware_SetsTraceHeaderAndLogger(t *testing.T) {
	r := gin.New()
	r.Use(LoggingMiddleware(zap.NewNop()))
	r.GET("/x", func(c *gin.Context) {
		assert.NotNil(t, GetLoggerFromGinContext(c))
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(TraceIDHeader, "trace-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "trace-1", w.Header().Get(TraceIDHeader))
}

func TestNewLogger(t *testing.T) {
	l, err := NewLogger("debug", "json")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zap.DebugLevel))

	l, err = NewLogger("warn", "console")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zap.InfoLevel))

	_, err = NewLogger("loud", "json")
	assert.Error(t, err)
}
