package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func brotliRouter(body string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(BrotliWithConfig(BrotliConfig{Quality: 5, MinLength: 64}))
	r.GET("/paper", func(c *gin.Context) {
		// two writes so the tail lands after the switch to brotli
		c.Writer.WriteString(body[:len(body)/2])
		c.Writer.WriteString(body[len(body)/2:])
	})
	return r
}

func TestBrotli_CompressesLargeBodies(t *testing.T) {
	body := strings.Repeat("Monitor vital signs every 15 minutes. ", 20)
	r := brotliRouter(body)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/paper", nil)
	req.Header.Set("Accept-Encoding", "gzip, br")
	r.ServeHTTP(w, req)

	assert.Equal(t, "br", w.Header().Get("Content-Encoding"))
	plain, err := io.ReadAll(brotli.NewReader(bytes.NewReader(w.Body.Bytes())))
	require.NoError(t, err)
	assert.Equal(t, body, string(plain))
}

func TestBrotli_PassesThroughSmallBodies(t *testing.T) {
	r := brotliRouter("ok, short body")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/paper", nil)
	req.Header.Set("Accept-Encoding", "br")
	r.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, "ok, short body", w.Body.String())
}

func TestBrotli_RespectsAcceptEncoding(t *testing.T) {
	body := strings.Repeat("x", 500)
	r := brotliRouter(body)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/paper", nil))

	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, body, w.Body.String())
}
