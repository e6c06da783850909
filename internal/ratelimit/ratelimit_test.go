package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestKeyedRateLimiter_Allow(t *testing.T) {
	krl := New(1, 2)
	defer krl.Stop()

	assert.True(t, krl.Allow("a"))
	assert.True(t, krl.Allow("a"))
	assert.False(t, krl.Allow("a"), "burst exhausted")

	assert.True(t, krl.Allow("b"), "keys are independent")
	assert.Equal(t, 2, krl.Len())
}

func TestKeyedRateLimiter_EvictIdle(t *testing.T) {
	krl := New(1, 1)
	defer krl.Stop()

	krl.Allow("old")
	krl.Allow("fresh")

	krl.mu.Lock()
	krl.limiters["old"].lastSeen = time.Now().Add(-2 * idleTTL)
	krl.mu.Unlock()

	krl.evictIdle(time.Now())
	assert.Equal(t, 1, krl.Len())
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	krl := New(0.001, 1)
	defer krl.Stop()

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if uid := c.GetHeader("X-User"); uid != "" {
			c.Set("user_id", uid)
		}
		c.Next()
	})
	router.POST("/rate", krl.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	send := func(user string) int {
		req := httptest.NewRequest("POST", "/rate", nil)
		req.Header.Set("X-User", user)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		return resp.Code
	}

	assert.Equal(t, http.StatusCreated, send("alice"))
	assert.Equal(t, http.StatusTooManyRequests, send("alice"))
	assert.Equal(t, http.StatusCreated, send("bob"))
}
