package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func fixedClock(t *time.Time) func() time.Time {
	return func() time.Time { return *t }
}

func TestRateLimiter_BurstThenRefill(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	defer rl.Close()
	now := time.Unix(1_700_000_000, 0)
	rl.now = fixedClock(&now)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("10.0.0.1"), "request %d", i)
	}
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "other IPs have their own bucket")

	now = now.Add(21 * time.Second)
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
}

func TestRateLimiter_CleanupDropsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Close()
	now := time.Unix(1_700_000_000, 0)
	rl.now = fixedClock(&now)

	rl.Allow("10.0.0.1")
	now = now.Add(4 * time.Minute)
	rl.cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Empty(t, rl.visitors)
}

func TestRateLimiter_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(1, time.Hour)
	defer rl.Close()

	r := gin.New()
	r.POST("/login", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do())
	assert.Equal(t, http.StatusTooManyRequests, do())
}
