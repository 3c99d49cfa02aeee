package middleware

import (
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"syscall"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestRequestIDGeneratesWhenMissing(t *testing.T) {
	r := newTestRouter()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) {
		assert.NotEmpty(t, c.GetString("request_id"))
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRequestIDEchoesValidHeader(t *testing.T) {
	r := newTestRouter()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
}

func TestSanitizeRequestID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"valid id", "req-123", "req-123"},
		{"empty", "", ""},
		{"control character", "req\n123", ""},
		{"space", "req 123", ""},
		{"too long", string(make([]byte, 65)), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeRequestID(tt.input))
		})
	}
}

func TestAllowsAnyOrigin(t *testing.T) {
	assert.True(t, allowsAnyOrigin(nil))
	assert.True(t, allowsAnyOrigin([]string{"*"}))
	assert.True(t, allowsAnyOrigin([]string{"https://app.example.com", "*"}))
	assert.False(t, allowsAnyOrigin([]string{"https://app.example.com"}))
}

func TestRecoveryReturnsInternalError(t *testing.T) {
	r := newTestRouter()
	r.Use(Recovery())
	r.GET("/boom", func(c *gin.Context) {
		panic("algo salió mal")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
}

func TestIsBrokenConnection(t *testing.T) {
	pipeErr := &net.OpError{
		Op:  "write",
		Err: &os.SyscallError{Syscall: "write", Err: syscall.EPIPE},
	}
	resetErr := &net.OpError{
		Op:  "write",
		Err: &os.SyscallError{Syscall: "write", Err: syscall.ECONNRESET},
	}

	assert.True(t, isBrokenConnection(pipeErr))
	assert.True(t, isBrokenConnection(resetErr))
	assert.False(t, isBrokenConnection(fmt.Errorf("timeout")))
	assert.False(t, isBrokenConnection("not an error"))
}
