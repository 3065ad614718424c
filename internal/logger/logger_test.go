package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessLog_LevelsByStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	r := gin.New()
	r.Use(AccessLog(zerolog.New(&buf)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	tests := []struct {
		path  string
		level string
	}{
		{"/ok", "info"},
		{"/missing", "warn"},
		{"/boom", "error"},
	}
	for _, tc := range tests {
		buf.Reset()
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tc.path, nil))

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line), tc.path)
		assert.Equal(t, tc.level, line["level"], tc.path)
		assert.Equal(t, tc.path, line["path"])
		assert.Equal(t, "http", line["component"])
	}
}

func TestSetup_FallsBackToInfo(t *testing.T) {
	Setup("not-a-level", "json")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	Setup("debug", "json")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}
