package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-management/backend/internal/testhelpers"
)

func limitedRouter(rl *RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(Actor())
	r.POST("/recipes", rl.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return r
}

func post(r http.Handler, who string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/recipes", nil)
	if who != "" {
		req.Header.Set(ActorHeader, who)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiterFailsOpen(t *testing.T) {
	observe(t)
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	r := limitedRouter(NewRateLimiter(client, RateLimitConfig{Window: time.Minute, Limit: 1}))
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusCreated, post(r, "alice").Code)
	}
}

func TestRateLimiterWithRedis(t *testing.T) {
	client := testhelpers.StartRedis(t)
	rl := NewRateLimiter(client, RateLimitConfig{Window: time.Hour, Limit: 2})
	r := limitedRouter(rl)

	first := post(r, "alice")
	require.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	require.Equal(t, http.StatusCreated, post(r, "alice").Code)

	limited := post(r, "alice")
	require.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "0", limited.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, limited.Header().Get("Retry-After"))
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(limited.Body.Bytes(), &body))
	assert.Equal(t, "RATE_LIMITED", body.Error.Code)

	// Counters are per caller.
	assert.Equal(t, http.StatusCreated, post(r, "bob").Code)
	assert.Equal(t, http.StatusCreated, post(r, "").Code)
}
