package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"transfer/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(buf *bytes.Buffer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.Use(TraceLoggerMiddleware(logger.NewWithWriter("development", buf)))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})
	return r
}

func TestRequestIDMiddleware_AssignsID(t *testing.T) {
	var buf bytes.Buffer
	w := httptest.NewRecorder()
	newTestRouter(&buf).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	id := w.Header().Get(requestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, w.Body.String())
}

func TestRequestIDMiddleware_KeepsValidCallerID(t *testing.T) {
	var buf bytes.Buffer
	callerID := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, callerID)

	w := httptest.NewRecorder()
	newTestRouter(&buf).ServeHTTP(w, req)

	assert.Equal(t, callerID, w.Header().Get(requestIDHeader))
}

func TestRequestIDMiddleware_ReplacesGarbage(t *testing.T) {
	var buf bytes.Buffer
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "<script>")

	w := httptest.NewRecorder()
	newTestRouter(&buf).ServeHTTP(w, req)

	assert.NotEqual(t, "<script>", w.Header().Get(requestIDHeader))
}

func TestTraceLoggerMiddleware_LogsCompletion(t *testing.T) {
	var buf bytes.Buffer
	w := httptest.NewRecorder()
	newTestRouter(&buf).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	out := buf.String()
	assert.Contains(t, out, `"message":"request completed"`)
	assert.Contains(t, out, `"status":200`)
	assert.Contains(t, out, `"path":"/ping"`)
	assert.Contains(t, out, w.Header().Get(requestIDHeader))
}
