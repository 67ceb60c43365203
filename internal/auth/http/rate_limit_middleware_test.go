package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	authDomain "github.com/allisson/vouch/internal/auth/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newRateLimitedRouter(ctx context.Context, rps float64, burst int) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		userID := c.GetHeader("X-Test-User")
		if userID != "" {
			identity := &authDomain.Identity{UserID: userID, Role: authDomain.RoleUser}
			c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), identity))
		}
		c.Next()
	})
	router.Use(RateLimitMiddleware(ctx, rps, burst, newTestLogger()))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func sendAs(router *gin.Engine, userID string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if userID != "" {
		req.Header.Set("X-Test-User", userID)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware_AllowsRequestsWithinLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	router := newRateLimitedRouter(ctx, 10.0, 20)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, sendAs(router, "user-1").Code)
	}
}

func TestRateLimitMiddleware_BlocksRequestsExceedingLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	router := newRateLimitedRouter(ctx, 1.0, 2)

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, sendAs(router, "user-1").Code)
	}

	w := sendAs(router, "user-1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate_limit_exceeded")
}

func TestRateLimitMiddleware_IndependentPerIdentity(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	router := newRateLimitedRouter(ctx, 1.0, 1)

	assert.Equal(t, http.StatusOK, sendAs(router, "user-1").Code)
	assert.Equal(t, http.StatusTooManyRequests, sendAs(router, "user-1").Code)
	assert.Equal(t, http.StatusOK, sendAs(router, "user-2").Code)
}

func TestRateLimitMiddleware_RequiresIdentity(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	router := newRateLimitedRouter(ctx, 10.0, 20)

	assert.Equal(t, http.StatusUnauthorized, sendAs(router, "").Code)
}

func TestRateLimiterStore_EvictIdle(t *testing.T) {
	store := &rateLimiterStore{rps: 1, burst: 1}
	store.getLimiter("user-1")
	store.getLimiter("user-2")

	entry, ok := store.limiters.Load("user-1")
	assert.True(t, ok)
	entry.(*rateLimiterEntry).lastAccess = time.Now().Add(-2 * time.Hour)

	store.evictIdle(time.Now().Add(-time.Hour))

	_, ok = store.limiters.Load("user-1")
	assert.False(t, ok)
	_, ok = store.limiters.Load("user-2")
	assert.True(t, ok)
}

func TestRateLimiterStore_CleanupStopsWithContext(t *testing.T) {
	store := &rateLimiterStore{rps: 1, burst: 1}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		store.cleanupStale(ctx, 10*time.Millisecond, time.Hour)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup goroutine did not stop")
	}
}
