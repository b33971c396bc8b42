package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	options "github.com/ariel1441/ai-rag-project-sub000/pkg/options/server/http"
)

func TestNewServer_DefaultChainSetsRequestID(t *testing.T) {
	s := NewServer(nil)
	s.Engine().GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	s.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestNewServer_CORSEnabledByOption(t *testing.T) {
	opts := options.NewOptions()
	opts.CORSAllowedOrigins = []string{"https://app.example.com"}
	s := NewServer(opts)
	s.Engine().GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://app.example.com")
	s.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	// Without the option no CORS headers appear.
	s2 := NewServer(options.NewOptions())
	s2.Engine().GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req2.Header.Set("Origin", "https://app.example.com")
	s2.Engine().ServeHTTP(w2, req2)
	assert.Empty(t, w2.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewServer_RequestTimeoutWiredIntoContext(t *testing.T) {
	opts := options.NewOptions()
	opts.RequestTimeout = 250 * time.Millisecond
	s := NewServer(opts)

	s.Engine().GET("/ping", func(c *gin.Context) {
		deadline, ok := c.Request.Context().Deadline()
		require.True(t, ok, "request context must carry a deadline")
		assert.WithinDuration(t, time.Now().Add(opts.RequestTimeout), deadline, 100*time.Millisecond)
		c.String(http.StatusOK, "pong")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	s.Engine().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
