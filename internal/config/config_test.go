package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvInt(t *testing.T) {
	t.Setenv("NP_TEST_INT", "42")
	assert.Equal(t, 42, getEnvInt("NP_TEST_INT", 7))

	t.Setenv("NP_TEST_INT", "not-a-number")
	assert.Equal(t, 7, getEnvInt("NP_TEST_INT", 7))

	t.Setenv("NP_TEST_INT", "-3")
	assert.Equal(t, 7, getEnvInt("NP_TEST_INT", 7))

	assert.Equal(t, 7, getEnvInt("NP_TEST_INT_UNSET", 7))
}

func TestParseOrigins(t *testing.T) {
	assert.Nil(t, parseOrigins(""))
	assert.Equal(t,
		[]string{"https://a.example", "https://b.example"},
		parseOrigins(" https://a.example, ,https://b.example "),
	)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("JWT_EXPIRY_HOURS", "2")
	t.Setenv("MAX_UPLOAD_MB", "3")
	t.Setenv("ALLOWED_ORIGINS", "https://nurseprep.example")

	cfg := Load()
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, int64(3<<20), cfg.MaxUploadBytes)
	assert.Equal(t, []string{"https://nurseprep.example"}, cfg.AllowedOrigins)
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "exam:e1:monitor", CacheKey.ExamMonitorChannel("e1"))
}
